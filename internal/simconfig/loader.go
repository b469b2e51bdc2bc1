package simconfig

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a portfolio definition file. Unknown YAML fields fail
// immediately so typos never silently fall back to defaults.
func Load(path string) (*Config, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read portfolio config: %w", err)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, nil, fmt.Errorf("decode portfolio config %s: %w", path, err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, data, fmt.Errorf("validate portfolio config %s: %w", path, err)
	}

	return &cfg, data, nil
}

// Hash returns the SHA-256 of the config's canonical JSON form.
// Struct field order makes the hash reproducible across runs; the hash
// ties a report to the exact configuration that produced it.
func Hash(cfg *Config) (string, error) {
	jsonBytes, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}

// LoadDefault loads the config from the path, or from FRONTIER_CONFIG
// when path is empty.
func LoadDefault(path string) (*Config, []byte, error) {
	if path == "" {
		path = os.Getenv("FRONTIER_CONFIG")
	}
	if path == "" {
		return nil, nil, fmt.Errorf("no portfolio config: pass --config or set FRONTIER_CONFIG")
	}
	return Load(path)
}
