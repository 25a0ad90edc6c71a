// Package profile loads the static content shown on the portfolio page.
package profile

import (
	"bytes"
	"fmt"
	"html/template"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"gopkg.in/yaml.v3"
)

type Quote struct {
	Text   string `yaml:"text" validate:"required"`
	Author string `yaml:"author" validate:"required"`
}

type SkillGroup struct {
	Title string   `yaml:"title" validate:"required"`
	Items []string `yaml:"items" validate:"min=1,dive,required"`
}

type Job struct {
	Role    string   `yaml:"role" validate:"required"`
	Company string   `yaml:"company" validate:"required"`
	Period  string   `yaml:"period"`
	Bullets []string `yaml:"bullets"`
}

type Links struct {
	GitHub   string `yaml:"github" validate:"omitempty,url"`
	LinkedIn string `yaml:"linkedin" validate:"omitempty,url"`
	Resume   string `yaml:"resume"`
	Email    string `yaml:"email" validate:"omitempty,email"`
}

// Section headings for the page.
type Heading struct {
	Title    string `yaml:"title"`
	Subtitle string `yaml:"subtitle"`
}

type Profile struct {
	Name         string `yaml:"name" validate:"required"`
	Title        string `yaml:"title"`
	Availability string `yaml:"availability"`
	// Phrases feed the hero typewriter.
	Phrases    []string           `yaml:"phrases" validate:"min=1,dive,required"`
	TypeSpeed  int                `yaml:"typeSpeedMs" validate:"gte=0"`
	TypePause  int                `yaml:"typePauseMs" validate:"gte=0"`
	About      string             `yaml:"about"`
	Philosophy string             `yaml:"philosophy"`
	Stack      []string           `yaml:"stack"`
	Skills     []SkillGroup       `yaml:"skills" validate:"dive"`
	Experience []Job              `yaml:"experience" validate:"dive"`
	Certs      []string           `yaml:"certifications"`
	Quotes     []Quote            `yaml:"quotes" validate:"dive"`
	Links      Links              `yaml:"links"`
	Scene      string             `yaml:"scene" validate:"omitempty,url"`
	Portrait   string             `yaml:"portrait"`
	Headings   map[string]Heading `yaml:"headings"`
	Footer     string             `yaml:"footer"`

	aboutHTML template.HTML
}

var policy = bluemonday.UGCPolicy()

// Parse decodes and validates a YAML profile.
func Parse(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(&p); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(p.About), &buf); err != nil {
		return nil, fmt.Errorf("render about: %w", err)
	}
	p.aboutHTML = template.HTML(policy.SanitizeBytes(buf.Bytes()))
	return &p, nil
}

// Load reads a profile from path.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	return Parse(data)
}

// AboutHTML is the sanitized rendering of the About markdown.
func (p *Profile) AboutHTML() template.HTML {
	return p.aboutHTML
}

// Heading returns the title and subtitle for a section.
func (p *Profile) Heading(id string) Heading {
	return p.Headings[id]
}
