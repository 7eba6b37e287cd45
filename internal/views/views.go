// Package views renders the server-side HTML pages.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strconv"
	"strings"
	"time"

	"liftlog/internal/auth"
	"liftlog/internal/models"
	"liftlog/internal/route"
)

//go:embed templates static
var files embed.FS

// Page names accepted by Render.
const (
	PageCatalog = "catalog"
	PageDetail  = "detail"
	PageLog     = "log"
	PageLogin   = "login"
	PageSignup  = "signup"
	PageLoading = "loading"
)

// Templates holds all page templates, keyed by page name.
type Templates struct {
	pages map[string]*template.Template
}

// Load parses the embedded templates. Each page gets its own clone of the
// layout and partials so every page can define "content".
func Load() (*Templates, error) {
	base, err := template.New("base").Funcs(funcMap()).ParseFS(files, "templates/layout.html", "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	pageFiles, err := fs.Glob(files, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("glob pages: %w", err)
	}

	pages := make(map[string]*template.Template, len(pageFiles))
	for _, f := range pageFiles {
		name := strings.TrimSuffix(path.Base(f), ".html")
		if name == "layout" {
			continue
		}
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout for %s: %w", name, err)
		}
		if _, err := clone.ParseFS(files, f); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		pages[name] = clone
	}
	return &Templates{pages: pages}, nil
}

// Render executes page inside the layout. Output is buffered so a failing
// template never leaves a half-written response.
func (t *Templates) Render(w io.Writer, page string, data *Page) error {
	tmpl, ok := t.pages[page]
	if !ok {
		return fmt.Errorf("template %q not found", page)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

// Static returns the stylesheet and other assets served under /static.
func Static() fs.FS {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic("views: static assets missing: " + err.Error())
	}
	return sub
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"href":       route.Href,
		"detailHref": func(id string) string { return route.Href(route.DetailFragment(id)) },
		"logHref":    func(title, id string) string { return route.Href(route.LogFragment(title, id)) },
		"targets":    Targets,
		"tracking":   Tracking,
		"summary":    Summary,
		"greeting":   Greeting,
		"date": func(t time.Time) string {
			if t.IsZero() {
				return "—"
			}
			return t.Local().Format("Jan 2, 2006")
		},
		"derefStr": func(p *string) string {
			if p == nil {
				return ""
			}
			return *p
		},
		"firstTags": func(tags models.StringList) []string {
			if len(tags) > 3 {
				return tags[:3]
			}
			return tags
		},
	}
}

// Targets lists the muscles a template works.
func Targets(muscles models.StringList) string {
	if len(muscles) == 0 {
		return "Full body / unspecified"
	}
	return strings.Join(muscles, ", ")
}

// Tracking describes how a template is tracked, e.g. "Reps-based · 4 sets · 8-12 reps".
func Tracking(t models.WorkoutTemplate) string {
	var b strings.Builder
	if t.TrackingType == models.TrackingReps {
		b.WriteString("Reps-based")
		if t.SuggestedSets != nil && *t.SuggestedSets != 0 {
			b.WriteString(" · " + strconv.Itoa(*t.SuggestedSets) + " sets")
		}
		if t.SuggestedReps != nil && *t.SuggestedReps != "" {
			b.WriteString(" · " + *t.SuggestedReps + " reps")
		}
		return b.String()
	}
	b.WriteString("Time-based")
	if t.SuggestedDurationMinutes != nil && *t.SuggestedDurationMinutes != 0 {
		b.WriteString(" · " + strconv.Itoa(*t.SuggestedDurationMinutes) + " min")
	}
	return b.String()
}

// Summary is the one-line tracking summary shown for a log entry.
func Summary(e models.WorkoutLogEntry) string {
	if e.TrackingType == models.TrackingReps {
		sets, reps := "—", "—"
		if e.Sets != nil && *e.Sets != 0 {
			sets = strconv.Itoa(*e.Sets)
		}
		if e.Reps != nil && *e.Reps != "" {
			reps = *e.Reps
		}
		return sets + " sets · " + reps + " reps"
	}
	if e.DurationMinutes != nil && *e.DurationMinutes != 0 {
		return strconv.Itoa(*e.DurationMinutes) + " min"
	}
	return "—"
}

// Greeting is the name shown for the signed-in user.
func Greeting(id *auth.Identity) string {
	if id == nil {
		return ""
	}
	if id.DisplayName != "" {
		return id.DisplayName
	}
	return id.Email
}
