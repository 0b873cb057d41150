package profile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"simsetgo/pkg/engine"
	"simsetgo/pkg/simvar"
)

// profileDoc is the YAML file shape of a profile.
type profileDoc struct {
	Name     string    `yaml:"name"`
	Aircraft string    `yaml:"aircraft,omitempty"`
	Items    []itemDoc `yaml:"items"`
}

type itemDoc struct {
	Name     string       `yaml:"name"`
	Unit     string       `yaml:"unit,omitempty"`
	Type     string       `yaml:"type,omitempty"`
	Settable *bool        `yaml:"settable,omitempty"`
	Value    string       `yaml:"value"`
	Mappings []mappingDoc `yaml:"mappings,omitempty"`
}

type mappingDoc struct {
	Match string  `yaml:"match"`
	Event string  `yaml:"event"`
	Param float64 `yaml:"param,omitempty"`
}

// Export renders a profile as YAML.
func Export(p *Profile) ([]byte, error) {
	doc := profileDoc{Name: p.Name, Aircraft: p.Aircraft}
	for _, it := range p.Items {
		d := itemDoc{
			Name:  it.Name,
			Unit:  it.Unit,
			Type:  it.Type.String(),
			Value: it.Value,
		}
		if !it.Settable {
			settable := false
			d.Settable = &settable
		}
		for _, m := range it.Mappings {
			d.Mappings = append(d.Mappings, mappingDoc{
				Match: m.MatchValue,
				Event: m.EventName,
				Param: m.Param,
			})
		}
		doc.Items = append(doc.Items, d)
	}
	return yaml.Marshal(&doc)
}

// Import parses a YAML profile.
func Import(data []byte) (*Profile, error) {
	var doc profileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	if doc.Name == "" {
		return nil, fmt.Errorf("profile has no name")
	}

	p := &Profile{Name: doc.Name, Aircraft: doc.Aircraft}
	for _, d := range doc.Items {
		it := engine.Item{
			Name:     d.Name,
			Unit:     d.Unit,
			Type:     simvar.ParseDataType(d.Type),
			Settable: d.Settable == nil || *d.Settable,
			Value:    d.Value,
		}
		for _, m := range d.Mappings {
			it.Mappings = append(it.Mappings, engine.EventMapping{
				MatchValue: m.Match,
				EventName:  m.Event,
				Param:      m.Param,
			})
		}
		p.Items = append(p.Items, it)
	}
	return p, nil
}

// ExportFile writes a profile to a YAML file.
func ExportFile(p *Profile, path string) error {
	data, err := Export(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ImportFile reads a profile from a YAML file.
func ImportFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}
	return Import(data)
}
