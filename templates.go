package tropiiify

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// templateFile accepts both the YAML layout ({id, name, fields}) and Tropy
// .ttp exports ({"@id", "name", "field"}); JSON parses as YAML.
type templateFile struct {
	ID        string          `yaml:"id"`
	LDID      string          `yaml:"@id"`
	Name      string          `yaml:"name"`
	Fields    []TemplateField `yaml:"fields"`
	TTPFields []TemplateField `yaml:"field"`
}

// ReadTemplateFile parses a template definition from path.
func ReadTemplateFile(path string) (Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Template{}, fmt.Errorf("read template: %w", err)
	}
	var f templateFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Template{}, fmt.Errorf("parse template %s: %w", path, err)
	}
	t := Template{ID: f.ID, Name: f.Name, Fields: f.Fields}
	if t.ID == "" {
		t.ID = f.LDID
	}
	if len(t.Fields) == 0 {
		t.Fields = f.TTPFields
	}
	if t.ID == "" {
		return Template{}, fmt.Errorf("parse template %s: missing id", path)
	}
	return t, nil
}
