// Package output renders CLI results for terminals, pipes and scripts.
//
// The renderer picks a mode once: styled text on a terminal, markdown
// when piped, or JSON when asked. Commands branch on EffectiveMode.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/leapstack-labs/leapxfer/internal/preview"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Mode is the requested output mode.
type Mode string

// Output modes.
const (
	ModeAuto     Mode = "auto"
	ModeText     Mode = "text"
	ModeMarkdown Mode = "markdown"
	ModeHTML     Mode = "html"
	ModeCSV      Mode = "csv"
	ModeJSON     Mode = "json"
)

// Renderer writes command output to w and diagnostics to errw.
type Renderer struct {
	w      io.Writer
	errw   io.Writer
	mode   Mode
	isTTY  bool
	styles *Styles
}

// NewRenderer creates a renderer. An empty or unknown mode behaves as ModeAuto.
func NewRenderer(w, errw io.Writer, mode Mode) *Renderer {
	if mode == "md" {
		mode = ModeMarkdown
	}
	tty := isTerminal(w)
	profile := termenv.Ascii
	if tty {
		profile = termenv.NewOutput(w).EnvColorProfile()
	}
	lr := lipgloss.NewRenderer(w, termenv.WithProfile(profile))
	return &Renderer{
		w:      w,
		errw:   errw,
		mode:   mode,
		isTTY:  tty,
		styles: newStyles(lr),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // fd fits in int
}

// EffectiveMode resolves ModeAuto against the writer.
func (r *Renderer) EffectiveMode() Mode {
	switch r.mode {
	case ModeText, ModeMarkdown, ModeHTML, ModeCSV, ModeJSON:
		return r.mode
	}
	if r.isTTY {
		return ModeText
	}
	return ModeMarkdown
}

// PreviewFormat maps the effective mode to a table preview format.
func (r *Renderer) PreviewFormat() preview.Format {
	switch r.EffectiveMode() {
	case ModeText:
		return preview.FormatText
	case ModeHTML:
		return preview.FormatHTML
	case ModeCSV:
		return preview.FormatCSV
	case ModeJSON:
		return preview.FormatJSON
	default:
		return preview.FormatMarkdown
	}
}

// IsTTY reports whether output goes to a terminal.
func (r *Renderer) IsTTY() bool { return r.isTTY }

// Writer returns the output writer.
func (r *Renderer) Writer() io.Writer { return r.w }

// ErrWriter returns the diagnostics writer.
func (r *Renderer) ErrWriter() io.Writer { return r.errw }

// Styles returns the renderer's styles.
func (r *Renderer) Styles() *Styles { return r.styles }

// Println writes a line to the output.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.w, a...)
}

// Printf writes formatted output.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.w, format, a...)
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Header writes a level-1 header in the current mode.
func (r *Renderer) Header(title string) {
	if r.EffectiveMode() == ModeText {
		r.Println(r.styles.Header1.Render(title))
		return
	}
	r.Println(FormatHeader(1, title))
}

// Muted writes secondary text.
func (r *Renderer) Muted(s string) {
	if r.EffectiveMode() == ModeText {
		r.Println(r.styles.Muted.Render(s))
		return
	}
	r.Println("_" + s + "_")
}

// Success writes a success message to the output.
func (r *Renderer) Success(s string) {
	r.Println(r.styles.Success.Render("✓ " + s))
}

// Warning writes a warning to the diagnostics writer.
func (r *Renderer) Warning(s string) {
	_, _ = fmt.Fprintln(r.errw, r.styles.Warning.Render("! "+s))
}

// Error writes an error to the diagnostics writer.
func (r *Renderer) Error(s string) {
	_, _ = fmt.Fprintln(r.errw, r.styles.Error.Render("✗ "+s))
}

// StatusLine writes "name status" with a detail, styled by ok.
func (r *Renderer) StatusLine(name string, ok bool, detail string) {
	status := r.styles.StatusSuccess.Render("ok")
	if !ok {
		status = r.styles.StatusFailed.Render("FAIL")
	}
	line := fmt.Sprintf("%-4s %s", status, name)
	if detail != "" {
		line += "  " + r.styles.Muted.Render(detail)
	}
	r.Println(line)
}
