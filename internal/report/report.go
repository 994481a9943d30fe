// Package report renders check results for the terminal and for machines.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"nitpick/internal/checker"
)

// Semantic colors, shared with the rest of the CLI output.
var (
	successColor = lipgloss.Color("#8BC34A")
	warningColor = lipgloss.Color("#FFC107")
	errorColor   = lipgloss.Color("#e53935")
	mutedColor   = lipgloss.Color("#808080")
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(successColor)
	warnStyle    = lipgloss.NewStyle().Foreground(warningColor)
	errorStyle   = lipgloss.NewStyle().Foreground(errorColor).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)
)

// Renderer writes check results. Plain mode drops all styling, for pipes and
// CI logs.
type Renderer struct {
	w     io.Writer
	plain bool
}

// New builds a Renderer writing to w.
func New(w io.Writer, plain bool) *Renderer {
	return &Renderer{w: w, plain: plain}
}

func (r *Renderer) style(s lipgloss.Style, text string) string {
	if r.plain {
		return text
	}
	return s.Render(text)
}

// Render writes the human-readable report: one line per unresolved reference,
// then the summary. Suppressed references appear only with verbose.
func (r *Renderer) Render(result *checker.Result, verbose bool) error {
	for _, f := range result.Unresolved {
		line := fmt.Sprintf("%s:%d: unresolved reference %s `%s`",
			f.Ref.File, f.Ref.Line, f.Ref.Tag(), f.Ref.Target)
		if f.Ref.Line == 0 {
			line = fmt.Sprintf("%s: unresolved reference %s `%s`",
				f.Ref.File, f.Ref.Tag(), f.Ref.Target)
		}
		fmt.Fprintln(r.w, r.style(errorStyle, line))
	}

	if verbose {
		for _, f := range result.Suppressed {
			fmt.Fprintln(r.w, r.style(mutedStyle,
				fmt.Sprintf("%s: suppressed %s `%s` (exception list)",
					f.Ref.File, f.Ref.Tag(), f.Ref.Target)))
		}
	}

	fmt.Fprintln(r.w, r.style(headerStyle, "summary"))
	fmt.Fprintf(r.w, "  references checked: %d\n", result.RefsTotal)
	fmt.Fprintf(r.w, "  resolved:           %d\n", result.Resolved)
	fmt.Fprintf(r.w, "  suppressed:         %s\n",
		r.style(mutedStyle, fmt.Sprintf("%d", len(result.Suppressed))))

	unresolved := fmt.Sprintf("%d", len(result.Unresolved))
	if result.Failed() {
		fmt.Fprintf(r.w, "  unresolved:         %s\n", r.style(errorStyle, unresolved))
	} else {
		fmt.Fprintf(r.w, "  unresolved:         %s\n", r.style(successStyle, unresolved))
	}

	if n := len(result.Unused); n > 0 {
		fmt.Fprintf(r.w, "  unused exceptions:  %s\n",
			r.style(warnStyle, fmt.Sprintf("%d (run `nitpick lint` for the list)", n)))
	}
	return nil
}

// jsonReport is the machine-readable shape of a run.
type jsonReport struct {
	RefsTotal  int          `json:"refs_total"`
	Resolved   int          `json:"resolved"`
	Unresolved []jsonRef    `json:"unresolved"`
	Suppressed []jsonRef    `json:"suppressed"`
	Unused     []jsonUnused `json:"unused_exceptions,omitempty"`
	Failed     bool         `json:"failed"`
}

type jsonRef struct {
	File   string `json:"file"`
	Line   int    `json:"line,omitempty"`
	Tag    string `json:"tag"`
	Target string `json:"target"`
}

type jsonUnused struct {
	Domain string `json:"domain"`
	Name   string `json:"name"`
	Line   int    `json:"line"`
}

// RenderJSON writes the result as a single JSON document.
func (r *Renderer) RenderJSON(result *checker.Result) error {
	out := jsonReport{
		RefsTotal: result.RefsTotal,
		Resolved:  result.Resolved,
		Failed:    result.Failed(),
	}
	for _, f := range result.Unresolved {
		out.Unresolved = append(out.Unresolved, jsonRef{
			File: f.Ref.File, Line: f.Ref.Line, Tag: f.Ref.Tag(), Target: f.Ref.Target,
		})
	}
	for _, f := range result.Suppressed {
		out.Suppressed = append(out.Suppressed, jsonRef{
			File: f.Ref.File, Line: f.Ref.Line, Tag: f.Ref.Tag(), Target: f.Ref.Target,
		})
	}
	for _, e := range result.Unused {
		out.Unused = append(out.Unused, jsonUnused{Domain: e.Domain, Name: e.Name, Line: e.Line})
	}

	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
