package profile

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mbaylis/ocspkit/profiles"
)

// profileYAML is the YAML representation of a Profile.
type profileYAML struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	Hash string `yaml:"hash"`

	Nonce *nonceYAML `yaml:"nonce,omitempty"`

	RequestorName string `yaml:"requestor_name,omitempty"`
}

type nonceYAML struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size,omitempty"`
}

// Load resolves a profile by name or path. A value containing a path
// separator or a .yaml/.yml suffix is read from disk; anything else is
// looked up among the embedded built-in profiles.
func Load(nameOrPath string) (*Profile, error) {
	if strings.ContainsRune(nameOrPath, os.PathSeparator) ||
		strings.HasSuffix(nameOrPath, ".yaml") || strings.HasSuffix(nameOrPath, ".yml") {
		return LoadFromFile(nameOrPath)
	}

	data, err := profiles.FS.ReadFile(nameOrPath + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("unknown built-in profile %q (built-ins: %s)", nameOrPath, strings.Join(BuiltinNames(), ", "))
	}
	return LoadFromBytes(data)
}

// LoadFromFile loads a profile from a YAML file.
func LoadFromFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes loads a profile from YAML bytes.
func LoadFromBytes(data []byte) (*Profile, error) {
	var py profileYAML
	if err := yaml.Unmarshal(data, &py); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	p := &Profile{
		Name:          py.Name,
		Description:   py.Description,
		RequestorName: py.RequestorName,
	}

	if py.Hash == "" {
		return nil, fmt.Errorf("profile %q: hash is required", py.Name)
	}
	hash, err := HashByName(py.Hash)
	if err != nil {
		return nil, fmt.Errorf("profile %q: %w", py.Name, err)
	}
	p.Hash = hash

	if py.Nonce != nil && py.Nonce.Enabled {
		p.NonceEnabled = true
		p.NonceSize = py.Nonce.Size
		if p.NonceSize == 0 {
			p.NonceSize = defaultNonceSize
		}
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// BuiltinNames lists the embedded profiles, without the .yaml suffix.
func BuiltinNames() []string {
	entries, err := profiles.FS.ReadDir(".")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".yaml"); ok {
			names = append(names, name)
		}
	}
	return names
}
