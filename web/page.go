// Package web renders the registration page.
package web

import (
	"embed"
	"html/template"
	"io"

	"nutriflow/form"
	"nutriflow/models"
)

//go:embed templates/*.html
var templates embed.FS

type DietOption struct {
	Name        string
	Slug        string
	Description string
	Selected    bool
}

type PageData struct {
	Title   string
	Tagline string
	FormID  string
	Values  form.Values
	Status  string
	Diets   []DietOption
}

type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templates, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{tmpl: tmpl}, nil
}

// NewPageData prepares the page for one form snapshot.
func NewPageData(formID string, snap form.Snapshot) PageData {
	diets := models.Diets()
	opts := make([]DietOption, 0, len(diets))
	for _, d := range diets {
		opts = append(opts, DietOption{
			Name:        d.String(),
			Slug:        d.Slug(),
			Description: d.Description(),
			Selected:    d == snap.Values.Diet,
		})
	}
	return PageData{
		Title:   "NutriFlow",
		Tagline: "Personalised diets & schedules for every lifestyle.",
		FormID:  formID,
		Values:  snap.Values,
		Status:  snap.Status,
		Diets:   opts,
	}
}

func (r *Renderer) Page(w io.Writer, data PageData) error {
	return r.tmpl.ExecuteTemplate(w, "index.html", data)
}
