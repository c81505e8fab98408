package tui

import (
	"fmt"
	"strings"
)

type confirmFocus int

const (
	confirmFocusCancel confirmFocus = iota
	confirmFocusDelete
)

// confirmDelete asks before a remove. Cancel has initial focus so a
// double-tap of enter never deletes.
type confirmDelete struct {
	id    string
	focus confirmFocus
}

func (c *confirmDelete) toggle() {
	if c.focus == confirmFocusCancel {
		c.focus = confirmFocusDelete
	} else {
		c.focus = confirmFocusCancel
	}
}

func (c *confirmDelete) view(width int) string {
	// No nested borders; some terminals render background artifacts.
	del := "[ delete ]"
	cancel := "[ cancel ]"
	if c.focus == confirmFocusDelete {
		del = selectedStyle.Render(del)
	} else {
		cancel = selectedStyle.Render(cancel)
	}

	content := strings.Join([]string{
		titleStyle.Render("Delete item"),
		"",
		fmt.Sprintf("Delete %q? This cannot be undone.", c.id),
		"",
		cancel + "  " + del,
		"",
		helpStyle.Render("tab: focus  enter: select  esc: cancel"),
	}, "\n")
	return modalStyle.Width(min(width-2, 60)).Render(content)
}
