// Package config loads the generator's setup-time YAML documents: generator options, the
// register description, the paging description, and choice-tree weights (spec.md §6's
// "CLI / env / disk" interfaces). None of this runs the template language or the choice-tree
// engine itself -- it is setup-time plumbing feeding internal/gen and internal/register, the way
// sarchlab-zeonica's core.LoadProgramFileFromYAML loads its own program description with
// gopkg.in/yaml.v3 and os.ReadFile.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// GeneratorConfig is the top-level generator options document: reset/boot PC, the max instruction
// count, and the target machine's memory banks (spec.md §6: "Reset PC, boot PC, and max-instruction
// count are numeric options").
type GeneratorConfig struct {
	ResetPC         uint64       `yaml:"reset_pc"`
	BootPC          uint64       `yaml:"boot_pc"`
	MaxInstructions int          `yaml:"max_instructions"`
	MachineType     string       `yaml:"machine_type"`
	BigEndian       bool         `yaml:"big_endian"`
	Banks           []BankConfig `yaml:"banks"`
}

// BankConfig describes one named memory bank to create at startup.
type BankConfig struct {
	Name string `yaml:"name"`
	Size uint64 `yaml:"size"`
}

// RegisterConfig is one entry in a register-description file: the architectural registers the
// arena should be populated with before generation starts.
type RegisterConfig struct {
	Name  string   `yaml:"name"`
	Kind  string   `yaml:"kind"`
	Size  uint8    `yaml:"size"`
	Attrs []string `yaml:"attrs"`
}

// RegisterDescription is a full register-description file: an ordered list of registers.
type RegisterDescription struct {
	Registers []RegisterConfig `yaml:"registers"`
}

// PagingConfig describes one paging regime's page size and supported translation granules, a
// paging-description file's top-level shape.
type PagingConfig struct {
	Regime    string   `yaml:"regime"`
	PageSizes []uint64 `yaml:"page_sizes"`
	Levels    int      `yaml:"levels"`
}

// PagingDescription is a full paging-description file: one entry per address-translation regime.
type PagingDescription struct {
	Regimes []PagingConfig `yaml:"regimes"`
}

// Choice is one weighted option in a choice-tree entry.
type Choice struct {
	Value  string `yaml:"value"`
	Weight int    `yaml:"weight"`
}

// ChoiceTree is a choices file: named decision points, each a list of weighted Choices, consulted
// by agents when the front end hasn't pinned a specific value (spec.md §1 Non-goals: the core
// consumes choice weights, it does not implement the choice-tree loader itself).
type ChoiceTree struct {
	Choices map[string][]Choice `yaml:"choices"`
}

// Option configures how Load reads a document.
type Option func(*loadOptions)

type loadOptions struct {
	strict bool
}

// WithStrict rejects YAML fields that don't match the target type, the way a malformed
// configuration file should fail loudly at setup time rather than silently drop a typo'd key.
func WithStrict() Option {
	return func(o *loadOptions) { o.strict = true }
}

// Load reads the YAML document at path into v, which must be a pointer to one of this package's
// document types (or any value yaml.v3 can decode into).
func Load(path string, v any, opts ...Option) error {
	o := &loadOptions{}
	for _, opt := range opts {
		opt(o)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(o.strict)

	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("config: %s: %w", path, err)
	}

	return nil
}

// LoadGeneratorConfig loads a generator options document.
func LoadGeneratorConfig(path string, opts ...Option) (*GeneratorConfig, error) {
	var cfg GeneratorConfig
	if err := Load(path, &cfg, opts...); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadRegisterDescription loads a register-description document.
func LoadRegisterDescription(path string, opts ...Option) (*RegisterDescription, error) {
	var desc RegisterDescription
	if err := Load(path, &desc, opts...); err != nil {
		return nil, err
	}

	return &desc, nil
}

// LoadPagingDescription loads a paging-description document.
func LoadPagingDescription(path string, opts ...Option) (*PagingDescription, error) {
	var desc PagingDescription
	if err := Load(path, &desc, opts...); err != nil {
		return nil, err
	}

	return &desc, nil
}

// LoadChoiceTree loads a choices document.
func LoadChoiceTree(path string, opts ...Option) (*ChoiceTree, error) {
	var tree ChoiceTree
	if err := Load(path, &tree, opts...); err != nil {
		return nil, err
	}

	return &tree, nil
}
