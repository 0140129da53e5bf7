package template

import (
	"fmt"
	"os"
)

// Default is the template written to the template path on first run.
// The layout follows the Readwise convention for Logseq book pages:
// page properties first, then one block per highlight with an optional
// nested note block.
const Default = `- author:: [[{{ author }}]]
- full-title:: "{{ title }}"
- category:: #books
- tags:: #[[reading]]
- Highlights first synced by [[{{ sync_date }}]]
{% for highlight in highlights %}
  - > {{ highlight.text }}{% if highlight.page %} (Page {{ highlight.page }}){% endif %}
    {% if highlight.note %}- Note:: {{ highlight.note }}{% endif %}
{% endfor %}
`

// LoadFile reads and compiles the template at path, writing the default
// template there first when the file does not exist yet so the user has
// something to customize.
func LoadFile(path string) (*Template, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, []byte(Default), 0o644); err != nil {
			return nil, fmt.Errorf("template: write default %s: %w", path, err)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("template: read %s: %w", path, err)
	}
	t, err := Compile(string(data))
	if err != nil {
		return nil, fmt.Errorf("template: compile %s: %w", path, err)
	}
	return t, nil
}
