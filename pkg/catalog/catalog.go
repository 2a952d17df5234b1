// Package catalog reads company catalogs from YAML or JSON documents of the
// form {"companies": [...]} using the column names of the company table.
package catalog

import (
	_ "embed"
	"fmt"
	"io"
	"time"

	"github.com/aretw0/mentorai/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

//go:embed sample.yaml
var sample []byte

type document struct {
	Companies []map[string]any `yaml:"companies"`
}

// Sample returns the built-in demo catalog.
func Sample() []domain.Company {
	companies, err := Parse(sample)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded sample is invalid: %v", err))
	}
	return companies
}

// Read parses a catalog from r.
func Read(r io.Reader) ([]domain.Company, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a catalog. JSON is accepted as a subset of YAML. Companies
// must have an id and a name; ids must be unique.
func Parse(data []byte) ([]domain.Company, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	out := make([]domain.Company, 0, len(doc.Companies))
	seen := make(map[string]bool, len(doc.Companies))
	for i, raw := range doc.Companies {
		var c domain.Company
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			TagName:          "json",
			Result:           &c,
			WeaklyTypedInput: true,
			ErrorUnused:      true,
			DecodeHook:       mapstructure.StringToTimeHookFunc(time.RFC3339),
		})
		if err != nil {
			return nil, err
		}
		if err := dec.Decode(raw); err != nil {
			return nil, fmt.Errorf("company %d: %w", i, err)
		}
		if c.ID == "" || c.Name == "" {
			return nil, fmt.Errorf("%w: company %d needs id and company_name", domain.ErrValidation, i)
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("%w: duplicate company id %q", domain.ErrValidation, c.ID)
		}
		seen[c.ID] = true
		out = append(out, c)
	}
	return out, nil
}
