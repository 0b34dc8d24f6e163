package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// tableConfig is the optional YAML file accepted by the table command.
//
//	columns: 3
//	rows: 1000
//	labels: [ts, bid, ask]
//	delimiter: ","
//	temp_dir: /var/tmp
type tableConfig struct {
	Columns   uint64   `yaml:"columns"`
	Rows      uint64   `yaml:"rows"`
	Labels    []string `yaml:"labels"`
	Delimiter string   `yaml:"delimiter"`
	TempDir   string   `yaml:"temp_dir"`
}

func loadTableConfig(path string) (tableConfig, error) {
	var cfg tableConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, nil
}

// delimiterByte validates a single-byte delimiter; "" means the default.
func delimiterByte(s string) (byte, error) {
	switch len(s) {
	case 0:
		return 0, nil
	case 1:
		return s[0], nil
	}
	if s == `\t` {
		return '\t', nil
	}
	return 0, fmt.Errorf("delimiter must be a single byte, got %q", s)
}
