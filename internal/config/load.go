package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "https://reefview.local/schema/tunables.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func settingsSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
		if err != nil {
			schemaErr = fmt.Errorf("parse settings schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			schemaErr = fmt.Errorf("add settings schema: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}

// Load reads a YAML settings file and returns it merged onto Defaults. An
// empty path returns the defaults.
func Load(path string) (Tunables, error) {
	t := Defaults()
	if path == "" {
		return t, nil
	}
	if !filepath.IsAbs(path) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return t, fmt.Errorf("failed to resolve path %s: %w", path, err)
		}
		path = abs
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return Parse(content)
}

// Parse validates a YAML document against the settings schema and decodes it
// onto Defaults.
func Parse(content []byte) (Tunables, error) {
	t := Defaults()
	if len(bytes.TrimSpace(content)) == 0 {
		return t, nil
	}
	if err := Validate(content); err != nil {
		return t, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return Defaults(), fmt.Errorf("failed to parse YAML: %w", err)
	}
	return t, nil
}

// Validate checks a YAML document against the settings schema.
func Validate(content []byte) error {
	var doc any
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	if doc == nil {
		return nil
	}
	// Round-trip through JSON so the validator sees plain JSON values.
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("settings are not representable as JSON: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("decode settings: %w", err)
	}
	sch, err := settingsSchema()
	if err != nil {
		return err
	}
	if err := sch.Validate(inst); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("invalid settings: %v", verr)
		}
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}
