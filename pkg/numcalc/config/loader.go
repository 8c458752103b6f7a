// Package config loads a numcalc Context's constants and variables from a
// TOML or YAML file, letting a CLI or server ship a default symbol table
// without hand-wiring it in Go. The codec is chosen by file extension.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/fieldcraft/numcalc/pkg/numcalc"
)

// Document is the on-disk shape of a context config file: string-keyed
// constants and variables, serialized as decimal text so the same file
// works regardless of which numeric backend loads it.
type Document struct {
	Constants map[string]string `toml:"constants" yaml:"constants"`
	Variables map[string]string `toml:"variables" yaml:"variables"`

	CaseSensitive bool `toml:"case_sensitive" yaml:"case_sensitive"`
	StepBudget    int  `toml:"step_budget" yaml:"step_budget"`
}

// Load reads path (.toml or .yaml/.yml) into a Document.
func Load(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("numcalc/config: %w", err)
	}

	var doc Document
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(raw), &doc); err != nil {
			return nil, fmt.Errorf("numcalc/config: parsing %s as TOML: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("numcalc/config: parsing %s as YAML: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("numcalc/config: unrecognized config extension %q (want .toml, .yaml, or .yml)", ext)
	}

	return &doc, nil
}

// Apply parses every constant/variable value through ctx.Backend and writes
// it into ctx. ctx.CaseSensitive/StepBudget are left untouched unless the
// document explicitly overrides them: case_sensitive only ever flips
// CaseSensitive on (a document can't re-enable case-insensitivity once a
// caller has turned it on some other way), and a zero StepBudget in the
// document means "not set", matching the Context default of unbounded.
func Apply[T any](doc *Document, ctx *numcalc.Context[T]) error {
	for name, lit := range doc.Constants {
		v, err := ctx.Backend.Parse(lit)
		if err != nil {
			return fmt.Errorf("numcalc/config: constant %q: %w", name, err)
		}
		ctx.SetConstant(name, v)
	}
	for name, lit := range doc.Variables {
		v, err := ctx.Backend.Parse(lit)
		if err != nil {
			return fmt.Errorf("numcalc/config: variable %q: %w", name, err)
		}
		ctx.SetVariable(name, v)
	}
	if doc.CaseSensitive {
		ctx.CaseSensitive = true
	}
	if doc.StepBudget != 0 {
		ctx.StepBudget = doc.StepBudget
	}
	return nil
}

// LoadInto is the common-case helper: Load path, then Apply it to ctx.
func LoadInto[T any](path string, ctx *numcalc.Context[T]) error {
	doc, err := Load(path)
	if err != nil {
		return err
	}
	return Apply(doc, ctx)
}
