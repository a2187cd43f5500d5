package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDataDir = ".efprobe"
)

type Config struct {
	// MDI is the communicator configuration string, e.g.
	// "-role DRIVER -name efprobe -method TCP -port 8021".
	MDI        string `yaml:"mdi"`
	Snapshot   string `yaml:"snapshot"`
	Probes     string `yaml:"probes"`
	ByMolecule bool   `yaml:"by_molecule"`
	ByResidue  bool   `yaml:"by_residue"`
	DataDir    string `yaml:"data_dir"`
}

func DefaultConfig() *Config {
	return &Config{
		DataDir: DefaultDataDir,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
