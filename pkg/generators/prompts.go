package generators

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed prompts/*.yaml
var promptFS embed.FS

// promptDef is one embedded prompt definition.
type promptDef struct {
	Name   string `yaml:"name"`
	Title  string `yaml:"title"`
	System string `yaml:"system"`
	Prompt string `yaml:"prompt"`

	tmpl *template.Template
}

func (p *promptDef) render(data any) (string, error) {
	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("generators: render %s prompt: %w", p.Name, err)
	}

	return buf.String(), nil
}

func loadPrompt(kind Kind) (*promptDef, error) {
	data, err := promptFS.ReadFile("prompts/" + string(kind) + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("generators: read %s prompt: %w", kind, err)
	}

	var p promptDef
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("generators: parse %s prompt: %w", kind, err)
	}

	p.tmpl, err = template.New(p.Name).Option("missingkey=error").Parse(p.Prompt)
	if err != nil {
		return nil, fmt.Errorf("generators: parse %s template: %w", kind, err)
	}

	return &p, nil
}

// prompts is loaded once at init; a broken embedded file is a build defect.
var prompts = func() map[Kind]*promptDef {
	out := make(map[Kind]*promptDef, len(Kinds()))
	for _, k := range Kinds() {
		p, err := loadPrompt(k)
		if err != nil {
			panic(err)
		}
		out[k] = p
	}

	return out
}()
