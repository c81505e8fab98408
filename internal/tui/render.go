package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/productkb/kbctl/internal/catalog"
	"github.com/productkb/kbctl/pkg/models"
)

// totalPages computes the page count for a result set, never less than 1.
func totalPages(total, pageSize int) int {
	if pageSize <= 0 {
		return 1
	}
	n := (total + pageSize - 1) / pageSize
	if n < 1 {
		n = 1
	}
	return n
}

// imageBadge renders the "+N" marker shown next to names of items carrying
// more than one image. Items with zero or one image get no badge.
func imageBadge(it *models.Item) string {
	if len(it.Images) <= 1 {
		return ""
	}
	return fmt.Sprintf("+%d", len(it.Images)-1)
}

// renderTable renders one search result page. It takes the result as its
// only data input so it can be exercised without a terminal.
func renderTable(res *catalog.SearchResult, cursor, width int) string {
	if res == nil {
		return mutedStyle.Render("loading…")
	}
	if len(res.Items) == 0 {
		return mutedStyle.Render("no items")
	}

	idW, nameW, tagsW := columnWidths(width)

	var b strings.Builder
	b.WriteString(headerStyle.Render(
		pad("ID", idW) + pad("NAME", nameW) + pad("TAGS", tagsW) + "DESCRIPTION",
	))
	b.WriteString("\n")

	for i := range res.Items {
		it := &res.Items[i]
		// Badge stays unstyled inside the cell so padding math holds.
		name := it.Name
		if badge := imageBadge(it); badge != "" {
			name += " " + badge
		}
		line := pad(truncate(it.ID, idW-1), idW) +
			pad(truncate(name, nameW-1), nameW) +
			pad(truncate(models.JoinList(it.Tags), tagsW-1), tagsW) +
			truncate(it.Desc, width-idW-nameW-tagsW)
		if i == cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// renderPager renders the "page x/y" footer with prev/next arrows greyed
// out at the boundaries.
func renderPager(page, pages, pageSize, total int) string {
	prev := "←"
	if page <= 1 {
		prev = mutedStyle.Render("←")
	}
	next := "→"
	if page >= pages {
		next = mutedStyle.Render("→")
	}
	return fmt.Sprintf("%s page %d/%d %s  %s",
		prev, page, pages, next,
		mutedStyle.Render(fmt.Sprintf("%d items, %d per page", total, pageSize)),
	)
}

func columnWidths(width int) (id, name, tags int) {
	if width < 60 {
		width = 60
	}
	id = width / 6
	name = width / 4
	tags = width / 5
	return id, name, tags
}

// pad and truncate measure in terminal cells, not bytes, so wide and
// multibyte runes keep the columns aligned.
func pad(s string, w int) string {
	if d := w - lipgloss.Width(s); d > 0 {
		return s + strings.Repeat(" ", d)
	}
	return s
}

func truncate(s string, w int) string {
	if w < 1 {
		return ""
	}
	if lipgloss.Width(s) <= w {
		return s
	}
	if w == 1 {
		return "…"
	}
	var b strings.Builder
	used := 0
	for _, r := range s {
		rw := lipgloss.Width(string(r))
		if used+rw > w-1 {
			break
		}
		b.WriteRune(r)
		used += rw
	}
	return b.String() + "…"
}
