// Package tui is the interactive catalog browser: a searchable, paginated
// item table with an add/edit dialog, backed by whichever repository the
// process was started with.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/productkb/kbctl/internal/catalog"
	"github.com/productkb/kbctl/pkg/models"
)

// pageSizes are the page sizes the +/- keys cycle through.
var pageSizes = []int{5, 10, 20, 50}

// Run starts the interactive browser and blocks until the user quits.
func Run(repo catalog.Repository, uploader *catalog.Uploader, pageSize int, logger *zap.Logger) error {
	p := tea.NewProgram(New(repo, uploader, pageSize, logger), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

type searchDoneMsg struct {
	res *catalog.SearchResult
	err error
}

type itemLoadedMsg struct {
	item    *models.Item
	forEdit bool
	err     error
}

type saveDoneMsg struct {
	id        string
	saveErr   error
	uploadErr error
}

type deleteDoneMsg struct {
	err error
}

// Model is the whole view-controller state: backend binding, paging
// cursor, and dialog target are explicit fields here, not package globals.
type Model struct {
	repo     catalog.Repository
	uploader *catalog.Uploader // nil when the backend has no upload endpoint
	logger   *zap.Logger

	width  int
	height int

	query        textinput.Model
	queryFocused bool
	page         int // 1-based
	pageSize     int
	result       *catalog.SearchResult
	cursor       int
	status       string

	form    *itemForm
	confirm *confirmDelete
	detail  *models.Item
}

// New builds the initial model. pageSize falls back to 10 when
// non-positive.
func New(repo catalog.Repository, uploader *catalog.Uploader, pageSize int, logger *zap.Logger) Model {
	if pageSize <= 0 {
		pageSize = 10
	}
	q := textinput.New()
	q.Prompt = "search: "
	q.Placeholder = "type to filter"
	q.CharLimit = 256
	return Model{
		repo:     repo,
		uploader: uploader,
		logger:   logger,
		query:    q,
		page:     1,
		pageSize: pageSize,
		width:    80,
		height:   24,
	}
}

func (m Model) Init() tea.Cmd { return m.searchCmd() }

// searchCmd issues the search for the current query and page. Offset is
// derived from the 1-based page.
func (m Model) searchCmd() tea.Cmd {
	repo := m.repo
	query := m.query.Value()
	limit := m.pageSize
	offset := (m.page - 1) * m.pageSize
	return func() tea.Msg {
		res, err := repo.Search(context.Background(), query, limit, offset)
		return searchDoneMsg{res: res, err: err}
	}
}

func (m Model) loadCmd(id string, forEdit bool) tea.Cmd {
	repo := m.repo
	return func() tea.Msg {
		it, err := repo.Get(context.Background(), id)
		return itemLoadedMsg{item: it, forEdit: forEdit, err: err}
	}
}

func (m Model) deleteCmd(id string) tea.Cmd {
	repo := m.repo
	return func() tea.Msg {
		return deleteDoneMsg{err: repo.Remove(context.Background(), id)}
	}
}

// saveCmd runs create/update and then, when files were selected and an
// uploader exists, the image upload. The upload error is reported
// separately: the completed save is never rolled back.
func (m Model) saveCmd(item *models.Item, patch *catalog.Patch, id, name string, files []string) tea.Cmd {
	repo := m.repo
	uploader := m.uploader
	return func() tea.Msg {
		ctx := context.Background()
		var saveErr error
		if patch != nil {
			saveErr = repo.Update(ctx, id, *patch)
		} else {
			saveErr = repo.Create(ctx, item)
		}
		if saveErr != nil {
			return saveDoneMsg{id: id, saveErr: saveErr}
		}
		var upErr error
		if uploader != nil && len(files) > 0 {
			upErr = uploader.Upload(ctx, id, name, files)
		}
		return saveDoneMsg{id: id, uploadErr: upErr}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case searchDoneMsg:
		if msg.err != nil {
			m.logger.Warn("search failed", zap.Error(msg.err))
			m.status = msg.err.Error()
			return m, nil
		}
		m.result = msg.res
		// A delete on the last page can leave the cursor past the end or
		// the page past the last one; pull both back in.
		if pages := totalPages(msg.res.Total, m.pageSize); m.page > pages {
			m.page = pages
			return m, m.searchCmd()
		}
		if m.cursor >= len(msg.res.Items) {
			m.cursor = len(msg.res.Items) - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
		return m, nil

	case itemLoadedMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, nil
		}
		if msg.forEdit {
			m.form = newEditForm(msg.item, m.uploader != nil)
		} else {
			m.detail = msg.item
		}
		return m, nil

	case saveDoneMsg:
		if msg.saveErr != nil {
			// Dialog stays open with the error surfaced.
			if m.form != nil {
				m.form.err = msg.saveErr.Error()
			} else {
				m.status = msg.saveErr.Error()
			}
			return m, nil
		}
		m.form = nil
		m.status = "saved " + msg.id
		if msg.uploadErr != nil {
			m.status = msg.uploadErr.Error()
		}
		return m, m.searchCmd()

	case deleteDoneMsg:
		m.confirm = nil
		m.detail = nil
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, nil
		}
		m.status = "deleted"
		return m, m.searchCmd()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch {
	case m.form != nil:
		return m.handleFormKey(msg)
	case m.confirm != nil:
		return m.handleConfirmKey(msg)
	case m.detail != nil:
		return m.handleDetailKey(msg)
	}
	return m.handleTableKey(msg)
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.form = nil
		return m, nil
	case "tab", "down":
		m.form.nextField(1)
		return m, nil
	case "shift+tab", "up":
		m.form.nextField(-1)
		return m, nil
	case "ctrl+g":
		if m.form.editID == "" {
			m.form.inputs[fieldID].SetValue(uuid.NewString())
		}
		return m, nil
	case "enter":
		item, patch, files, err := m.form.collect()
		if err != nil {
			m.form.err = err.Error()
			return m, nil
		}
		m.form.err = ""
		return m, m.saveCmd(item, patch, m.form.id(), m.form.name(), files)
	}
	return m, m.form.update(msg)
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.confirm = nil
		return m, nil
	case "tab", "left", "right":
		m.confirm.toggle()
		return m, nil
	case "enter":
		if m.confirm.focus == confirmFocusDelete {
			return m, m.deleteCmd(m.confirm.id)
		}
		m.confirm = nil
		return m, nil
	}
	return m, nil
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "backspace", "q":
		m.detail = nil
		return m, nil
	case "e":
		return m, m.loadCmd(m.detail.ID, true)
	case "d":
		m.confirm = &confirmDelete{id: m.detail.ID}
		return m, nil
	}
	return m, nil
}

func (m Model) handleTableKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.queryFocused {
		switch msg.String() {
		case "esc", "enter":
			m.queryFocused = false
			m.query.Blur()
			return m, nil
		}
		before := m.query.Value()
		var cmd tea.Cmd
		m.query, cmd = m.query.Update(msg)
		if m.query.Value() != before {
			// Every keystroke re-runs the search from page 1.
			m.page = 1
			return m, tea.Batch(cmd, m.searchCmd())
		}
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "/":
		m.queryFocused = true
		return m, m.query.Focus()
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "j":
		if m.result != nil && m.cursor < len(m.result.Items)-1 {
			m.cursor++
		}
		return m, nil
	case "left", "h":
		if m.page > 1 {
			m.page--
			return m, m.searchCmd()
		}
		return m, nil
	case "right", "l":
		if m.result != nil && m.page < totalPages(m.result.Total, m.pageSize) {
			m.page++
			return m, m.searchCmd()
		}
		return m, nil
	case "+", "=":
		m.pageSize = stepPageSize(m.pageSize, 1)
		m.page = 1
		return m, m.searchCmd()
	case "-":
		m.pageSize = stepPageSize(m.pageSize, -1)
		m.page = 1
		return m, m.searchCmd()
	case "a":
		m.form = newAddForm(m.uploader != nil)
		return m, nil
	case "e":
		if it := m.selected(); it != nil {
			return m, m.loadCmd(it.ID, true)
		}
		return m, nil
	case "d":
		if it := m.selected(); it != nil {
			m.confirm = &confirmDelete{id: it.ID}
		}
		return m, nil
	case "enter":
		if it := m.selected(); it != nil {
			return m, m.loadCmd(it.ID, false)
		}
		return m, nil
	case "r":
		return m, m.searchCmd()
	}
	return m, nil
}

// selected returns the item under the cursor, or nil on an empty page.
func (m Model) selected() *models.Item {
	if m.result == nil || m.cursor < 0 || m.cursor >= len(m.result.Items) {
		return nil
	}
	return &m.result.Items[m.cursor]
}

// stepPageSize moves through pageSizes in the given direction, clamping at
// the ends.
func stepPageSize(current, delta int) int {
	idx := 0
	for i, s := range pageSizes {
		if s == current {
			idx = i
			break
		}
	}
	idx += delta
	if idx < 0 {
		idx = 0
	}
	if idx >= len(pageSizes) {
		idx = len(pageSizes) - 1
	}
	return pageSizes[idx]
}

func (m Model) View() string {
	header := titleStyle.Render("Product Catalog")

	var body string
	switch {
	case m.form != nil:
		body = m.form.view(m.width)
	case m.confirm != nil:
		body = m.confirm.view(m.width)
	case m.detail != nil:
		body = renderDetail(m.detail, m.width)
	default:
		var total int
		if m.result != nil {
			total = m.result.Total
		}
		body = strings.Join([]string{
			m.query.View(),
			"",
			renderTable(m.result, m.cursor, m.width),
			renderPager(m.page, m.pagesNow(), m.pageSize, total),
		}, "\n")
	}

	footer := helpStyle.Render("/: search  a: add  e: edit  d: delete  enter: detail  ←/→: page  +/-: page size  q: quit")
	if m.status != "" {
		footer = errorStyle.Render(m.status) + "\n" + footer
	}
	return fmt.Sprintf("%s\n\n%s\n\n%s", header, body, footer)
}

func (m Model) pagesNow() int {
	if m.result == nil {
		return 1
	}
	return totalPages(m.result.Total, m.pageSize)
}
