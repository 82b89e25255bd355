package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/njchilds90/gosolve"
	"github.com/njchilds90/gosolve/sigfig"
)

var (
	colorAnswer  = lipgloss.Color("#2CD7C7")
	colorWarning = lipgloss.Color("#F4D03F")
	colorError   = lipgloss.Color("#E74C3C")
	colorMuted   = lipgloss.Color("#2C4A54")

	styleAnswer  = lipgloss.NewStyle().Bold(true).Foreground(colorAnswer)
	styleWarning = lipgloss.NewStyle().Foreground(colorWarning)
	styleError   = lipgloss.NewStyle().Foreground(colorError)
	styleMuted   = lipgloss.NewStyle().Foreground(colorMuted)
)

// printer writes command results, styled only when writing to a terminal
// or when colour is forced.
type printer struct {
	w       io.Writer
	errW    io.Writer
	styled  bool
	sigFigs int
}

func newPrinter(w, errW io.Writer, color string, sigFigs int) *printer {
	styled := false
	switch color {
	case "always":
		styled = true
	case "auto":
		if f, ok := w.(*os.File); ok {
			styled = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
	}
	return &printer{w: w, errW: errW, styled: styled, sigFigs: sigFigs}
}

func (p *printer) render(s lipgloss.Style, text string) string {
	if !p.styled {
		return text
	}
	return s.Render(text)
}

func (p *printer) number(v float64) string {
	if p.sigFigs > 0 {
		return sigfig.Format(v, p.sigFigs)
	}
	return gosolve.FormatNumber(v)
}

func (p *printer) answer(name string, v float64) {
	text := p.number(v)
	if name != "" {
		text = name + " = " + text
	}
	fmt.Fprintln(p.w, p.render(styleAnswer, text))
}

func (p *printer) line(text string) {
	fmt.Fprintln(p.w, text)
}

func (p *printer) warnings(ws []error) {
	for _, w := range ws {
		fmt.Fprintln(p.w, p.render(styleWarning, "warning: "+w.Error()))
	}
}

func (p *printer) steps(res *gosolve.Result) {
	for _, line := range strings.Split(strings.TrimRight(res.Log(), "\n"), "\n") {
		if line != "" {
			fmt.Fprintln(p.w, p.render(styleMuted, line))
		}
	}
}

// reported marks an error that has already been printed.
type reported struct{ error }

func (r reported) Unwrap() error { return r.error }

func (p *printer) fail(err error) error {
	fmt.Fprintln(p.errW, p.render(styleError, "error: "+err.Error()))
	return reported{err}
}
