package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/desertthunder/curator/internal/models"
)

var styles = NewPalette(Colors{
	Title: "#7D56F4",
	OK:    "#04B575",
	Err:   "#FF0000",
	Warn:  "#FFA500",
	Info:  "#3C9EE7",
	Help:  "#626262",
})

// Colors names the foreground color of each palette role.
type Colors struct {
	Title, OK, Err, Warn, Info, Help string
}

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	info  lipgloss.Style
	help  lipgloss.Style
}

func NewPalette(c Colors) *Palette {
	return &Palette{
		title: bold(c.Title).MarginBottom(1),
		ok:    bold(c.OK),
		err:   bold(c.Err),
		warn:  foreground(c.Warn),
		info:  foreground(c.Info),
		help:  foreground(c.Help).Italic(true),
	}
}

// badge renders a membership status as a colored [status] tag.
func (p *Palette) badge(s models.MembershipStatus) string {
	label := "[" + string(s) + "]"
	switch s {
	case models.MembershipApproved:
		return p.ok.Render(label)
	case models.MembershipRejected:
		return p.err.Render(label)
	case models.MembershipSynced:
		return p.info.Render(label)
	default:
		return p.warn.Render(label)
	}
}

func foreground(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func bold(fg string) lipgloss.Style {
	return foreground(fg).Bold(true)
}
