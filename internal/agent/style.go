package agent

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// StyleFile is the workspace file holding the author's style guide.
const StyleFile = "STYLE.md"

// StyleGuide is the parsed STYLE.md: YAML front matter plus free-form notes.
type StyleGuide struct {
	Tone  string `yaml:"tone"`
	POV   string `yaml:"pov"`
	Tense string `yaml:"tense"`
	Genre string `yaml:"genre"`
	Notes string `yaml:"-"`
}

// Empty reports whether the guide carries nothing worth showing the model.
func (g StyleGuide) Empty() bool {
	return g == StyleGuide{}
}

// LoadStyleGuide reads STYLE.md from workspace. A missing file yields an
// empty guide; malformed front matter is an error.
func LoadStyleGuide(workspace string) (StyleGuide, error) {
	data, err := os.ReadFile(filepath.Join(workspace, StyleFile))
	if os.IsNotExist(err) {
		return StyleGuide{}, nil
	}
	if err != nil {
		return StyleGuide{}, fmt.Errorf("read %s: %w", StyleFile, err)
	}
	return parseStyleGuide(string(data))
}

func parseStyleGuide(content string) (StyleGuide, error) {
	content = strings.TrimPrefix(content, "\ufeff")
	if !strings.HasPrefix(content, "---") {
		return StyleGuide{Notes: strings.TrimSpace(content)}, nil
	}

	// YAML block between the first --- and the next line starting with ---.
	rest := content[3:]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return StyleGuide{Notes: strings.TrimSpace(content)}, nil
	}

	var g StyleGuide
	if err := yaml.Unmarshal([]byte(rest[:end]), &g); err != nil {
		return StyleGuide{}, fmt.Errorf("parse %s front matter: %w", StyleFile, err)
	}
	body := rest[end+4:]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	} else {
		body = ""
	}
	g.Notes = strings.TrimSpace(body)
	return g, nil
}

// Render formats the guide as a prompt section body.
func (g StyleGuide) Render() string {
	var lines []string
	for _, kv := range [][2]string{
		{"Tone", g.Tone},
		{"Point of view", g.POV},
		{"Tense", g.Tense},
		{"Genre", g.Genre},
	} {
		if kv[1] != "" {
			lines = append(lines, fmt.Sprintf("- %s: %s", kv[0], kv[1]))
		}
	}
	if g.Notes != "" {
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, g.Notes)
	}
	return strings.Join(lines, "\n")
}
