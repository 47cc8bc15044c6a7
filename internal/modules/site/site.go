// Package site serves the marketing pages from embedded Markdown.
package site

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
)

//go:embed pages/*.md
var pagesFS embed.FS

var markdownEngine = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Typographer,
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithXHTML(),
	),
)

var layout = template.Must(template.New("layout").Parse(`<!DOCTYPE html>
<html lang="en">
  <head>
    <meta charset="UTF-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1.0" />
    <title>{{.Title}} | LegalAI</title>
    <style>
      body { font-family: system-ui, sans-serif; max-width: 860px; margin: 0 auto; padding: 0 1rem; color: #1f2937; line-height: 1.6; }
      nav { display: flex; gap: 1rem; padding: 1rem 0; border-bottom: 1px solid #e5e7eb; }
      nav a { color: #1d4ed8; text-decoration: none; }
      table { border-collapse: collapse; }
      th, td { border: 1px solid #e5e7eb; padding: 0.4rem 0.8rem; text-align: left; }
      footer { margin: 3rem 0 1rem; font-size: 0.85em; opacity: 0.7; }
    </style>
  </head>
  <body>
    <nav>{{range .Nav}}<a href="{{.Path}}">{{.Label}}</a>{{end}}</nav>
    <main>{{.Body}}</main>
    <footer>LegalAI is not a law firm and does not provide legal advice.</footer>
  </body>
</html>`))

type navItem struct {
	Path  string
	Label string
	file  string
}

var navigation = []navItem{
	{Path: "/", Label: "Home", file: "home.md"},
	{Path: "/features", Label: "Features", file: "features.md"},
	{Path: "/pricing", Label: "Pricing", file: "pricing.md"},
	{Path: "/faq", Label: "FAQ", file: "faq.md"},
	{Path: "/about", Label: "About", file: "about.md"},
}

type page struct {
	title string
	html  []byte
}

// Site holds every page rendered once at startup.
type Site struct {
	pages    map[string]page
	notFound page
}

func New() (*Site, error) {
	s := &Site{pages: make(map[string]page, len(navigation))}
	for _, item := range navigation {
		p, err := renderPage(item.file)
		if err != nil {
			return nil, err
		}
		s.pages[item.Path] = p
	}
	nf, err := renderPage("404.md")
	if err != nil {
		return nil, err
	}
	s.notFound = nf
	return s, nil
}

func renderPage(file string) (page, error) {
	src, err := pagesFS.ReadFile("pages/" + file)
	if err != nil {
		return page{}, fmt.Errorf("read page %s: %w", file, err)
	}

	var body bytes.Buffer
	if err := markdownEngine.Convert(src, &body); err != nil {
		return page{}, fmt.Errorf("render page %s: %w", file, err)
	}

	var out bytes.Buffer
	err = layout.Execute(&out, struct {
		Title string
		Nav   []navItem
		Body  template.HTML
	}{
		Title: pageTitle(src),
		Nav:   navigation,
		Body:  template.HTML(body.String()),
	})
	if err != nil {
		return page{}, fmt.Errorf("layout page %s: %w", file, err)
	}
	return page{title: pageTitle(src), html: out.Bytes()}, nil
}

// pageTitle is the text of the first "# " heading.
func pageTitle(src []byte) string {
	for _, line := range strings.Split(string(src), "\n") {
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return "LegalAI"
}

func (s *Site) RegisterRoutes(r gin.IRoutes) {
	for path := range s.pages {
		r.GET(path, s.serve(path))
	}
}

func (s *Site) serve(path string) gin.HandlerFunc {
	p := s.pages[path]
	return func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", p.html)
	}
}

// NotFound writes the 404 page.
func (s *Site) NotFound(c *gin.Context) {
	c.Data(http.StatusNotFound, "text/html; charset=utf-8", s.notFound.html)
}
