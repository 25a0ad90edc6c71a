package main

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"time"

	"github.com/Zachkp/portfolio/internal/profile"
	"github.com/Zachkp/portfolio/internal/sections"
	"github.com/Zachkp/portfolio/internal/typewriter"
)

var (
	//go:embed content/profile.yaml
	defaultProfile []byte

	//go:embed templates/*.html
	templateFS embed.FS

	//go:embed static
	staticFS embed.FS
)

// loadProfile reads the profile at path, or the embedded one when path is empty.
func loadProfile(path string) (*profile.Profile, error) {
	if path != "" {
		return profile.Load(path)
	}
	return profile.Parse(defaultProfile)
}

// sectionTemplate names the body template of a page section.
func sectionTemplate(id sections.ID) string {
	return "section-" + string(id)
}

// loadTemplates parses the page templates. The page ranges over
// sections.All() and renders each body with the "section" func, so a section
// without a body template fails the render.
func loadTemplates() (*template.Template, error) {
	var tmpl *template.Template
	funcs := template.FuncMap{
		"section": func(id sections.ID, data any) (template.HTML, error) {
			var buf bytes.Buffer
			if err := tmpl.ExecuteTemplate(&buf, sectionTemplate(id), data); err != nil {
				return "", err
			}
			return template.HTML(buf.String()), nil
		},
	}
	tmpl, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	for _, s := range sections.All() {
		if tmpl.Lookup(sectionTemplate(s.ID)) == nil {
			return nil, fmt.Errorf("no template for section %q", s.ID)
		}
	}
	return tmpl, nil
}

func staticFiles() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic("static files missing from binary: " + err.Error())
	}
	return sub
}

// typeOptions picks the typewriter timing: explicit overrides first, then the
// profile's values, then the animator defaults.
func typeOptions(speed, pause time.Duration, p *profile.Profile) typewriter.Options {
	if speed <= 0 {
		speed = time.Duration(p.TypeSpeed) * time.Millisecond
	}
	if pause <= 0 {
		pause = time.Duration(p.TypePause) * time.Millisecond
	}
	return typewriter.Options{Speed: speed, Pause: pause}
}

// subscribeFrames forwards every visible text change of a. Frames are dropped
// if the reader falls behind.
func subscribeFrames(a *typewriter.Animator) <-chan string {
	frames := make(chan string, 16)
	a.OnChange(func(s typewriter.State) {
		select {
		case frames <- s.Text:
		default:
		}
	})
	return frames
}
