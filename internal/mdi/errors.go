package mdi

import "errors"

var (
	// ErrBadOptions indicates a malformed communicator configuration string.
	ErrBadOptions = errors.New("mdi: invalid communicator options")

	// ErrNotDriver indicates the configured role is not DRIVER.
	ErrNotDriver = errors.New("mdi: must be configured with role DRIVER")

	// ErrCommandTooLong indicates a command token longer than CommandLength.
	ErrCommandTooLong = errors.New("mdi: command token exceeds fixed length")

	// ErrClosed indicates use of a communicator after Close.
	ErrClosed = errors.New("mdi: communicator closed")
)
