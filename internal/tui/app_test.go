package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/productkb/kbctl/internal/catalog"
	"github.com/productkb/kbctl/pkg/models"
)

// fakeRepo is an in-memory Repository for driving the model without a
// database or server.
type fakeRepo struct {
	items     []models.Item
	searchErr error
}

var _ catalog.Repository = (*fakeRepo)(nil)

func (f *fakeRepo) Search(_ context.Context, query string, limit, offset int) (*catalog.SearchResult, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	q := strings.ToLower(strings.TrimSpace(query))
	matched := []models.Item{}
	for _, it := range f.items {
		blob := strings.ToLower(it.ID + " " + it.Name + " " + it.Desc)
		if q == "" || strings.Contains(blob, q) {
			matched = append(matched, *it.Clone())
		}
	}
	total := len(matched)
	if limit <= 0 {
		limit = catalog.DefaultLimit
	}
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return &catalog.SearchResult{Total: total, Items: matched[offset:end]}, nil
}

func (f *fakeRepo) Create(_ context.Context, it *models.Item) error {
	for i := range f.items {
		if f.items[i].ID == it.ID {
			return catalog.ErrDuplicateID
		}
	}
	f.items = append(f.items, *it.Clone())
	return nil
}

func (f *fakeRepo) Get(_ context.Context, id string) (*models.Item, error) {
	for i := range f.items {
		if f.items[i].ID == id {
			return f.items[i].Clone(), nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (f *fakeRepo) Update(_ context.Context, id string, patch catalog.Patch) error {
	for i := range f.items {
		if f.items[i].ID != id {
			continue
		}
		if patch.Name != nil {
			f.items[i].Name = *patch.Name
		}
		if patch.Desc != nil {
			f.items[i].Desc = *patch.Desc
		}
		if patch.Tags != nil {
			f.items[i].Tags = patch.Tags
		}
		if patch.Images != nil {
			f.items[i].Images = patch.Images
		}
		return nil
	}
	return catalog.ErrNotFound
}

func (f *fakeRepo) Remove(_ context.Context, id string) error {
	kept := f.items[:0]
	for _, it := range f.items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	f.items = kept
	return nil
}

func seedRepo(n int) *fakeRepo {
	repo := &fakeRepo{}
	for i := 0; i < n; i++ {
		repo.items = append(repo.items, models.Item{
			ID:   fmt.Sprintf("id-%03d", i),
			Name: fmt.Sprintf("Item %d", i),
		})
	}
	return repo
}

func newTestModel(repo catalog.Repository, pageSize int) Model {
	return New(repo, nil, pageSize, zap.NewNop())
}

// step executes cmd and feeds the resulting message back into the model,
// mirroring one turn of the runtime loop.
func step(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	nm, _ := m.Update(cmd())
	return nm.(Model)
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestInitialSearch(t *testing.T) {
	m := newTestModel(seedRepo(25), 10)
	m = step(t, m, m.Init())

	if m.result == nil {
		t.Fatal("no result after initial search")
	}
	if m.result.Total != 25 {
		t.Errorf("Total = %d, want 25", m.result.Total)
	}
	if len(m.result.Items) != 10 {
		t.Errorf("page length = %d, want 10", len(m.result.Items))
	}
}

func TestSearchErrorLandsOnStatusLine(t *testing.T) {
	repo := &fakeRepo{searchErr: errors.New("backend unreachable")}
	m := newTestModel(repo, 10)
	m = step(t, m, m.Init())

	if m.status != "backend unreachable" {
		t.Errorf("status = %q", m.status)
	}
}

func TestPageNavigation(t *testing.T) {
	m := newTestModel(seedRepo(25), 10)
	m = step(t, m, m.Init())

	nm, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = step(t, nm.(Model), cmd)
	if m.page != 2 {
		t.Fatalf("page = %d, want 2", m.page)
	}

	nm, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = step(t, nm.(Model), cmd)
	if m.page != 3 {
		t.Fatalf("page = %d, want 3", m.page)
	}
	if len(m.result.Items) != 5 {
		t.Errorf("last page length = %d, want 5", len(m.result.Items))
	}

	// Already on the last page: right must not move or issue a command.
	nm, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = nm.(Model)
	if cmd != nil || m.page != 3 {
		t.Errorf("page = %d after right at last page, cmd nil = %v", m.page, cmd == nil)
	}

	nm, cmd = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m = step(t, nm.(Model), cmd)
	if m.page != 2 {
		t.Errorf("page = %d, want 2", m.page)
	}
}

func TestTypingResetsToFirstPage(t *testing.T) {
	m := newTestModel(seedRepo(25), 10)
	m = step(t, m, m.Init())
	nm, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = step(t, nm.(Model), cmd)

	nm, _ = m.Update(keyRune('/'))
	m = nm.(Model)
	if !m.queryFocused {
		t.Fatal("query not focused after /")
	}

	nm, _ = m.Update(keyRune('7'))
	m = nm.(Model)
	if m.page != 1 {
		t.Errorf("page = %d after typing, want 1", m.page)
	}
}

func TestPageSizeChangeResetsPage(t *testing.T) {
	m := newTestModel(seedRepo(25), 10)
	m = step(t, m, m.Init())
	nm, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = step(t, nm.(Model), cmd)

	nm, cmd = m.Update(keyRune('+'))
	m = step(t, nm.(Model), cmd)
	if m.pageSize != 20 {
		t.Errorf("pageSize = %d, want 20", m.pageSize)
	}
	if m.page != 1 {
		t.Errorf("page = %d, want 1", m.page)
	}
	if len(m.result.Items) != 20 {
		t.Errorf("page length = %d, want 20", len(m.result.Items))
	}
}

func TestStepPageSizeClamps(t *testing.T) {
	if got := stepPageSize(50, 1); got != 50 {
		t.Errorf("stepPageSize(50, 1) = %d", got)
	}
	if got := stepPageSize(5, -1); got != 5 {
		t.Errorf("stepPageSize(5, -1) = %d", got)
	}
	if got := stepPageSize(10, 1); got != 20 {
		t.Errorf("stepPageSize(10, 1) = %d", got)
	}
}

func TestDeleteConfirmCancel(t *testing.T) {
	repo := seedRepo(3)
	m := newTestModel(repo, 10)
	m = step(t, m, m.Init())

	nm, _ := m.Update(keyRune('d'))
	m = nm.(Model)
	if m.confirm == nil {
		t.Fatal("no confirm dialog after d")
	}
	if m.confirm.id != "id-000" {
		t.Errorf("confirm target = %q", m.confirm.id)
	}

	// Enter with default focus lands on cancel, nothing is deleted.
	nm, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = nm.(Model)
	if cmd != nil || m.confirm != nil {
		t.Fatal("cancel did not close the dialog cleanly")
	}
	if len(repo.items) != 3 {
		t.Errorf("item count = %d after cancel, want 3", len(repo.items))
	}
}

func TestDeleteConfirmFlow(t *testing.T) {
	repo := seedRepo(3)
	m := newTestModel(repo, 10)
	m = step(t, m, m.Init())

	nm, _ := m.Update(keyRune('d'))
	m = nm.(Model)
	nm, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = nm.(Model)
	nm, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = step(t, nm.(Model), cmd) // runs the delete, yields deleteDoneMsg
	if m.confirm != nil {
		t.Fatal("confirm dialog still open after delete")
	}
	// The delete handler schedules a refresh.
	m = step(t, m, m.searchCmd())
	if m.result.Total != 2 {
		t.Errorf("Total = %d after delete, want 2", m.result.Total)
	}
	if len(repo.items) != 2 {
		t.Errorf("backing store has %d items, want 2", len(repo.items))
	}
}

func TestSaveValidationKeepsFormOpen(t *testing.T) {
	m := newTestModel(seedRepo(1), 10)
	m = step(t, m, m.Init())

	nm, _ := m.Update(keyRune('a'))
	m = nm.(Model)
	if m.form == nil {
		t.Fatal("no form after a")
	}

	nm, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = nm.(Model)
	if cmd != nil {
		t.Fatal("validation failure still issued a save command")
	}
	if m.form == nil {
		t.Fatal("form closed on validation failure")
	}
	if !strings.Contains(m.form.err, "id") {
		t.Errorf("form error = %q, want the missing field named", m.form.err)
	}
}

func TestSaveSuccessClosesFormAndRefreshes(t *testing.T) {
	repo := seedRepo(1)
	m := newTestModel(repo, 10)
	m = step(t, m, m.Init())

	nm, _ := m.Update(keyRune('a'))
	m = nm.(Model)
	m.form.inputs[fieldID].SetValue("new-1")
	m.form.inputs[fieldName].SetValue("Fresh Item")

	nm, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = step(t, nm.(Model), cmd) // runs the save, yields saveDoneMsg
	if m.form != nil {
		t.Fatal("form still open after successful save")
	}
	if !strings.Contains(m.status, "new-1") {
		t.Errorf("status = %q, want the saved id", m.status)
	}
	m = step(t, m, m.searchCmd())
	if m.result.Total != 2 {
		t.Errorf("Total = %d after save, want 2", m.result.Total)
	}
}

func TestSaveDuplicateKeepsFormOpen(t *testing.T) {
	repo := seedRepo(1)
	m := newTestModel(repo, 10)
	m = step(t, m, m.Init())

	nm, _ := m.Update(keyRune('a'))
	m = nm.(Model)
	m.form.inputs[fieldID].SetValue("id-000")
	m.form.inputs[fieldName].SetValue("Clash")

	nm, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = step(t, nm.(Model), cmd)
	if m.form == nil {
		t.Fatal("form closed after duplicate id rejection")
	}
	if m.form.err == "" {
		t.Error("no error surfaced in the form")
	}
	if len(repo.items) != 1 {
		t.Errorf("item count = %d, want 1", len(repo.items))
	}
}

func TestEditFlow(t *testing.T) {
	repo := seedRepo(2)
	m := newTestModel(repo, 10)
	m = step(t, m, m.Init())

	nm, cmd := m.Update(keyRune('e'))
	m = step(t, nm.(Model), cmd) // runs the load, yields itemLoadedMsg
	if m.form == nil {
		t.Fatal("no form after edit load")
	}
	if m.form.editID != "id-000" {
		t.Errorf("editID = %q", m.form.editID)
	}

	m.form.inputs[fieldName].SetValue("Renamed")
	nm, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = step(t, nm.(Model), cmd)
	if m.form != nil {
		t.Fatal("form still open after edit save")
	}
	if repo.items[0].Name != "Renamed" {
		t.Errorf("stored name = %q, want Renamed", repo.items[0].Name)
	}
	if repo.items[0].ID != "id-000" {
		t.Errorf("id changed to %q during edit", repo.items[0].ID)
	}
}

func TestDetailOpenAndClose(t *testing.T) {
	m := newTestModel(seedRepo(2), 10)
	m = step(t, m, m.Init())

	nm, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = step(t, nm.(Model), cmd)
	if m.detail == nil {
		t.Fatal("no detail view after enter")
	}
	if m.detail.ID != "id-000" {
		t.Errorf("detail id = %q", m.detail.ID)
	}

	nm, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = nm.(Model)
	if m.detail != nil {
		t.Fatal("detail view still open after esc")
	}
}

func TestDeleteOnLastPagePullsPageBack(t *testing.T) {
	repo := seedRepo(11)
	m := newTestModel(repo, 10)
	m = step(t, m, m.Init())
	nm, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = step(t, nm.(Model), cmd)
	if m.page != 2 {
		t.Fatalf("page = %d, want 2", m.page)
	}

	// Remove the only item on page 2, then refresh.
	if err := repo.Remove(context.Background(), "id-010"); err != nil {
		t.Fatal(err)
	}
	m = step(t, m, m.searchCmd())
	// The shrunken result pulls the page back and re-queries.
	m = step(t, m, m.searchCmd())
	if m.page != 1 {
		t.Errorf("page = %d after shrink, want 1", m.page)
	}
	if len(m.result.Items) != 10 {
		t.Errorf("page length = %d, want 10", len(m.result.Items))
	}
}

func TestViewRendersTable(t *testing.T) {
	m := newTestModel(seedRepo(3), 10)
	m = step(t, m, m.Init())

	out := m.View()
	if !strings.Contains(out, "Product Catalog") {
		t.Error("view missing title")
	}
	if !strings.Contains(out, "id-001") {
		t.Error("view missing table rows")
	}
	if !strings.Contains(out, "page 1/1") {
		t.Error("view missing pager")
	}
}
