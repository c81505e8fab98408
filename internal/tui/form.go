package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/productkb/kbctl/internal/catalog"
	"github.com/productkb/kbctl/pkg/models"
)

// Form field indices. The id field is first so a fresh add dialog starts
// there; edit dialogs skip it because the id is immutable.
const (
	fieldID = iota
	fieldName
	fieldDesc
	fieldTags
	fieldImages
	fieldFiles
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"ID", "Name", "Description", "Tags (comma-separated)",
	"Image URLs (comma-separated)", "Upload files (comma-separated paths)",
}

// itemForm is the add/edit dialog. editID is empty while adding; while
// editing it names the record being changed and the id input is disabled.
type itemForm struct {
	editID     string
	inputs     [fieldCount]textinput.Model
	focus      int
	withUpload bool
	err        string
}

func newForm(withUpload bool) *itemForm {
	f := &itemForm{withUpload: withUpload}
	for i := range f.inputs {
		ti := textinput.New()
		ti.Prompt = "> "
		ti.CharLimit = 512
		f.inputs[i] = ti
	}
	f.inputs[fieldID].Placeholder = "unique id (ctrl+g to generate)"
	f.inputs[fieldName].Placeholder = "display name"
	return f
}

// newAddForm opens the dialog with cleared fields and an editable id.
func newAddForm(withUpload bool) *itemForm {
	f := newForm(withUpload)
	f.focus = fieldID
	f.inputs[fieldID].Focus()
	return f
}

// newEditForm opens the dialog pre-filled from the fetched record. The id
// field shows the id but never takes focus.
func newEditForm(it *models.Item, withUpload bool) *itemForm {
	f := newForm(withUpload)
	f.editID = it.ID
	f.inputs[fieldID].SetValue(it.ID)
	f.inputs[fieldName].SetValue(it.Name)
	f.inputs[fieldDesc].SetValue(it.Desc)
	f.inputs[fieldTags].SetValue(models.JoinList(it.Tags))
	f.inputs[fieldImages].SetValue(models.JoinList(it.Images))
	f.focus = fieldName
	f.inputs[fieldName].Focus()
	return f
}

// lastField is the last focusable field for the active configuration.
func (f *itemForm) lastField() int {
	if f.withUpload {
		return fieldFiles
	}
	return fieldImages
}

// focusable reports whether the field can take focus.
func (f *itemForm) focusable(i int) bool {
	if i == fieldID && f.editID != "" {
		return false // id is immutable once set
	}
	if i == fieldFiles && !f.withUpload {
		return false
	}
	return true
}

func (f *itemForm) setFocus(i int) {
	f.inputs[f.focus].Blur()
	f.focus = i
	f.inputs[i].Focus()
}

// nextField moves focus by delta, skipping non-focusable fields.
func (f *itemForm) nextField(delta int) {
	i := f.focus
	for {
		i += delta
		if i > f.lastField() {
			i = 0
		}
		if i < 0 {
			i = f.lastField()
		}
		if f.focusable(i) {
			f.setFocus(i)
			return
		}
	}
}

// update forwards one key to the focused input.
func (f *itemForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

// collect validates the dialog and builds either a new item (adding) or a
// patch (editing). A *catalog.ValidationError keeps the dialog open.
func (f *itemForm) collect() (*models.Item, *catalog.Patch, []string, error) {
	id := strings.TrimSpace(f.inputs[fieldID].Value())
	name := strings.TrimSpace(f.inputs[fieldName].Value())
	if id == "" {
		return nil, nil, nil, &catalog.ValidationError{Field: "id"}
	}
	if name == "" {
		return nil, nil, nil, &catalog.ValidationError{Field: "name"}
	}

	desc := strings.TrimSpace(f.inputs[fieldDesc].Value())
	tags := models.SplitList(f.inputs[fieldTags].Value())
	imagesText := strings.TrimSpace(f.inputs[fieldImages].Value())
	files := models.SplitList(f.inputs[fieldFiles].Value())

	if f.editID != "" {
		patch := &catalog.Patch{Name: &name, Desc: &desc, Tags: tags}
		if patch.Tags == nil {
			// A blanked tags field clears the stored tags.
			patch.Tags = []string{}
		}
		// Images only join the patch when the field holds something, so a
		// cleared field leaves the stored list untouched.
		if imagesText != "" {
			patch.Images = models.SplitList(imagesText)
		}
		return nil, patch, files, nil
	}

	item := &models.Item{
		ID:     id,
		Name:   name,
		Desc:   desc,
		Tags:   tags,
		Images: models.SplitList(imagesText),
	}
	return item, nil, files, nil
}

// name returns the display name currently in the dialog (for uploads).
func (f *itemForm) name() string {
	return strings.TrimSpace(f.inputs[fieldName].Value())
}

// id returns the record id the dialog will save to.
func (f *itemForm) id() string {
	if f.editID != "" {
		return f.editID
	}
	return strings.TrimSpace(f.inputs[fieldID].Value())
}

func (f *itemForm) view(width int) string {
	var b strings.Builder
	title := "Add item"
	if f.editID != "" {
		title = "Edit " + f.editID
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	for i := 0; i <= f.lastField(); i++ {
		if i == fieldFiles && !f.withUpload {
			continue
		}
		label := fieldLabels[i]
		if i == fieldID && f.editID != "" {
			label += " (immutable)"
		}
		b.WriteString(mutedStyle.Render(label))
		b.WriteString("\n")
		b.WriteString(f.inputs[i].View())
		b.WriteString("\n")
	}

	if f.err != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(f.err))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab: next field  enter: save  esc: cancel"))
	return modalStyle.Width(min(width-2, 72)).Render(b.String())
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
