package mdi

import (
	"fmt"
	"strconv"
	"strings"
)

// Options holds the communicator configuration, parsed once from the
// "-role DRIVER -name efprobe -method TCP -port 8021" style string that the
// engine ecosystem uses. No defaults are silently invented for role or port.
type Options struct {
	Role     string
	Name     string
	Method   string
	Hostname string
	Port     int
}

// ParseOptions parses a communicator configuration string. The role must be
// DRIVER and the method TCP; the hostname defaults to localhost, which is the
// common co-scheduled case.
func ParseOptions(s string) (*Options, error) {
	opts := &Options{Hostname: "localhost"}
	fields := strings.Fields(s)
	for i := 0; i < len(fields); i++ {
		key := fields[i]
		if !strings.HasPrefix(key, "-") {
			return nil, fmt.Errorf("%w: unexpected token %q", ErrBadOptions, key)
		}
		if i+1 >= len(fields) {
			return nil, fmt.Errorf("%w: option %s has no value", ErrBadOptions, key)
		}
		val := fields[i+1]
		i++
		switch key {
		case "-role":
			opts.Role = val
		case "-name":
			opts.Name = val
		case "-method":
			opts.Method = strings.ToUpper(val)
		case "-hostname":
			opts.Hostname = val
		case "-port":
			p, err := strconv.Atoi(val)
			if err != nil || p <= 0 {
				return nil, fmt.Errorf("%w: bad port %q", ErrBadOptions, val)
			}
			opts.Port = p
		default:
			return nil, fmt.Errorf("%w: unknown option %s", ErrBadOptions, key)
		}
	}
	if opts.Role != "DRIVER" {
		return nil, fmt.Errorf("%w: got role %q", ErrNotDriver, opts.Role)
	}
	if opts.Method != "TCP" {
		return nil, fmt.Errorf("%w: unsupported method %q", ErrBadOptions, opts.Method)
	}
	if opts.Port == 0 {
		return nil, fmt.Errorf("%w: missing -port", ErrBadOptions)
	}
	return opts, nil
}
