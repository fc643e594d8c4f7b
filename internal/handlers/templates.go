package handlers

import (
	"embed"
	"fmt"
	"html/template"
	"net/url"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"price":      func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"pathEscape": url.PathEscape,
}

// ParseTemplates parses the embedded page templates.
func ParseTemplates() (*template.Template, error) {
	return template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
}

// LoadTemplates installs the page templates on r.
func LoadTemplates(r *gin.Engine) error {
	tmpl, err := ParseTemplates()
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)
	return nil
}
