package responder

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type ruleFile struct {
	Rules []RuleSpec `yaml:"rules"`
}

// LoadRules reads a YAML rule table from path. The file replaces the built-in
// table entirely, so it should end with a catch-all ("always: true") rule.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	return ParseRules(data)
}

func ParseRules(data []byte) ([]Rule, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var file ruleFile
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("rules file is empty")
		}
		return nil, fmt.Errorf("failed to parse rules file: %w", err)
	}
	if len(file.Rules) == 0 {
		return nil, fmt.Errorf("rules file defines no rules")
	}

	return Compile(file.Rules)
}
