// Package render turns composed routines into output documents.
//
// # Formats
//
//   - [FormatText]: the plain-text routine sheet
//   - [FormatJSON]: the routine as an indented JSON document
//   - [FormatHTML]: the routine builder page with the routine filled in
//   - [FormatStyled]: the text sheet with terminal colors and borders
//
// Text and HTML use templates embedded in the binary. Formation diagrams
// are passed through untouched; their internal spacing is significant.
//
//	data, err := render.Render(r, render.FormatText)
package render

import (
	"bytes"
	"embed"
	"encoding/json"
	htmltemplate "html/template"
	"text/template"

	"github.com/matzehuels/cheertower/pkg/errors"
	"github.com/matzehuels/cheertower/pkg/routine"
)

// Output formats.
const (
	FormatText   = "text"
	FormatJSON   = "json"
	FormatHTML   = "html"
	FormatStyled = "styled"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatText:   true,
	FormatJSON:   true,
	FormatHTML:   true,
	FormatStyled: true,
}

// ContentTypes maps each format to its HTTP content type.
var ContentTypes = map[string]string{
	FormatText:   "text/plain; charset=utf-8",
	FormatJSON:   "application/json",
	FormatHTML:   "text/html; charset=utf-8",
	FormatStyled: "text/plain; charset=utf-8",
}

//go:embed templates/*.tmpl
var templateFS embed.FS

var funcs = map[string]any{
	"inc": func(i int) int { return i + 1 },
}

var (
	textTmpl = template.Must(template.New("routine.txt.tmpl").Funcs(funcs).
			ParseFS(templateFS, "templates/routine.txt.tmpl"))
	htmlTmpl = htmltemplate.Must(htmltemplate.New("index.html.tmpl").Funcs(funcs).
			ParseFS(templateFS, "templates/index.html.tmpl"))
)

// ValidateFormat checks that a format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: text, json, html, styled)", format)
	}
	return nil
}

// Render produces r in the given format.
func Render(r *routine.Routine, format string) ([]byte, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}
	switch format {
	case FormatJSON:
		return JSON(r)
	case FormatHTML:
		return HTML(NewPage(r.Request, r, ""))
	case FormatStyled:
		return []byte(Styled(r)), nil
	}
	return Text(r)
}

// Text renders the plain-text routine sheet.
func Text(r *routine.Routine) ([]byte, error) {
	var buf bytes.Buffer
	if err := textTmpl.Execute(&buf, r); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render text")
	}
	return buf.Bytes(), nil
}

// JSON renders the routine as indented JSON.
func JSON(r *routine.Routine) ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render json")
	}
	return data, nil
}

// Page is the data behind the routine builder page.
type Page struct {
	Request routine.Request
	Routine *routine.Routine
	Error   string

	Levels     []string
	FocusAreas []string
	Sections   []routine.SectionSpec

	MinTeamSize, MaxTeamSize int
	MinLength, MaxLength     int
}

// NewPage builds page data with the form pre-filled from req. An empty
// request gets sensible form defaults.
func NewPage(req routine.Request, r *routine.Routine, errMsg string) Page {
	if req.TeamSize == 0 {
		req.TeamSize = 12
	}
	if req.LengthMinutes == 0 {
		req.LengthMinutes = 2
	}
	if len(req.Sections) == 0 {
		req.Sections = routine.SectionNames()
	}
	return Page{
		Request:     req,
		Routine:     r,
		Error:       errMsg,
		Levels:      routine.Levels(),
		FocusAreas:  routine.FocusAreas(),
		Sections:    routine.Catalog(),
		MinTeamSize: routine.MinTeamSize,
		MaxTeamSize: routine.MaxTeamSize,
		MinLength:   routine.MinLength,
		MaxLength:   routine.MaxLength,
	}
}

// Selected reports whether the form has the named section checked.
func (p Page) Selected(name string) bool {
	for _, s := range p.Request.Sections {
		if s == name {
			return true
		}
	}
	return false
}

// HTML renders the routine builder page.
func HTML(p Page) ([]byte, error) {
	var buf bytes.Buffer
	if err := htmlTmpl.Execute(&buf, p); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render html")
	}
	return buf.Bytes(), nil
}
