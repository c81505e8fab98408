package tui

import (
	"strconv"
	"strings"

	"github.com/productkb/kbctl/pkg/models"
)

// renderDetail renders the per-item view opened from a table row.
func renderDetail(it *models.Item, width int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(it.Name))
	b.WriteString("  ")
	b.WriteString(mutedStyle.Render("(" + it.ID + ")"))
	b.WriteString("\n\n")

	if it.Desc != "" {
		b.WriteString(it.Desc)
		b.WriteString("\n\n")
	}
	if len(it.Tags) > 0 {
		b.WriteString(accentStyle.Render("tags: "))
		b.WriteString(models.JoinList(it.Tags))
		b.WriteString("\n")
	}
	if len(it.Images) > 0 {
		b.WriteString(accentStyle.Render("images: "))
		b.WriteString(badgeStyle.Render(strconv.Itoa(len(it.Images))))
		b.WriteString("\n")
		for _, u := range it.Images {
			b.WriteString("  " + u + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("esc: back  e: edit  d: delete"))
	return modalStyle.Width(min(width-2, 80)).Render(b.String())
}
