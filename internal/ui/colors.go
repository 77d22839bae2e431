package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/desertthunder/listify/internal/models"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t).MarginBottom(1),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

// Notice renders n in the style of its level.
func (p *Palette) Notice(n models.Notice) string {
	switch n.Level {
	case models.NoticeSuccess:
		return p.ok.Render(n.Message)
	case models.NoticeWarning:
		return p.warn.Render(n.Message)
	case models.NoticeError:
		return p.err.Render(n.Message)
	default:
		return p.help.Render(n.Message)
	}
}
