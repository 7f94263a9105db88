// Package input loads declarative type descriptions — the input model the
// pipeline consumes — from YAML documents.
package input

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/opforge/opforge/internal/model"
)

// Document is the top-level input-model file.
type Document struct {
	Types []model.TypeDescription `yaml:"types"`
}

// Load reads and validates an input-model file.
func Load(path string) ([]model.TypeDescription, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input model: %w", err)
	}
	types, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return types, nil
}

// Parse decodes and validates an input-model document. Validation covers the
// description structure only — marker recognition and per-kind shape rules
// belong to the classifier, which tolerates anything Parse lets through.
func Parse(data []byte) ([]model.TypeDescription, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse input model: %w", err)
	}
	if len(doc.Types) == 0 {
		return nil, fmt.Errorf("input model declares no types")
	}

	seen := map[string]bool{}
	for i := range doc.Types {
		td := &doc.Types[i]
		if err := validateType(td); err != nil {
			return nil, err
		}
		if seen[td.Name] {
			return nil, fmt.Errorf("duplicate type %q", td.Name)
		}
		seen[td.Name] = true
	}
	return doc.Types, nil
}

func validateType(td *model.TypeDescription) error {
	if td.Name == "" {
		return fmt.Errorf("type with empty name")
	}
	if td.Construction == "" {
		td.Construction = model.MutableAssignment
	}
	if !model.ValidConstructionShape(string(td.Construction)) {
		return fmt.Errorf("type %s: unknown construction shape %q", td.Name, td.Construction)
	}

	for i := range td.Members {
		md := &td.Members[i]
		if md.Name == "" {
			return fmt.Errorf("type %s: member with empty name", td.Name)
		}
		if md.ReturnShape == "" {
			md.ReturnShape = model.ReturnVoid
		}
		if !model.ValidReturnShape(string(md.ReturnShape)) {
			return fmt.Errorf("type %s: member %s: unknown return shape %q", td.Name, md.Name, md.ReturnShape)
		}
		if err := validateParams(td.Name, md.Name, md.Parameters); err != nil {
			return err
		}
	}

	for _, provider := range td.AuthProviders {
		if provider.Name == "" {
			return fmt.Errorf("type %s: auth provider with empty name", td.Name)
		}
		for _, method := range provider.Methods {
			if method.Name == "" {
				return fmt.Errorf("type %s: provider %s: method with empty name", td.Name, provider.Name)
			}
			if _, err := model.ParseCoverage(method.Covers); err != nil {
				return fmt.Errorf("type %s: provider %s: method %s: %w", td.Name, provider.Name, method.Name, err)
			}
			if err := validateParams(td.Name, provider.Name+"."+method.Name, method.Parameters); err != nil {
				return err
			}
		}
	}

	propSeen := map[string]bool{}
	for _, p := range td.Properties {
		if p.Name == "" {
			return fmt.Errorf("type %s: property with empty name", td.Name)
		}
		if propSeen[p.Name] {
			return fmt.Errorf("type %s: duplicate property %q", td.Name, p.Name)
		}
		propSeen[p.Name] = true
	}
	return nil
}

func validateParams(typeName, where string, params []model.ParameterDescription) error {
	for i := range params {
		p := &params[i]
		if p.Role == "" {
			p.Role = model.RoleBusiness
		}
		if !model.ValidRole(string(p.Role)) {
			return fmt.Errorf("type %s: %s: parameter %s: unknown role %q", typeName, where, p.Name, p.Role)
		}
	}
	return nil
}
