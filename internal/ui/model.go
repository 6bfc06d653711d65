package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/oshokin/release-installer/internal/domain/release"
	"github.com/oshokin/release-installer/internal/logger"
	"github.com/oshokin/release-installer/internal/service/controller"
	"github.com/oshokin/release-installer/internal/service/executor"
	"github.com/oshokin/release-installer/internal/service/privilege"
)

// Controller is the part of controller.Controller the picker drives.
type Controller interface {
	Refresh(ctx context.Context) error
	Snapshot() *release.Snapshot
	Select(i int) error
	Install(ctx context.Context, onComplete func(release.Outcome)) (*executor.Handle, error)
	Busy() bool
	InstalledLabel() string
	Compare(i int) controller.Relation
	LatestIndex() (int, bool)
}

// Model is the bubbletea model of the picker.
type Model struct {
	ctx     context.Context //nolint:containedctx // Commands run outside Update and need the program context.
	ctrl    Controller
	keys    KeyMap
	list    list.Model
	spinner spinner.Model

	refreshing bool
	installing bool
	status     string
	statusErr  bool
	// relaunched is set when an elevated copy took over.
	relaunched bool
}

// NewModel creates the picker for ctrl.
func NewModel(ctx context.Context, ctrl Controller) *Model {
	keys := DefaultKeyMap()

	releases := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	releases.Title = "Releases"
	releases.DisableQuitKeybindings()
	releases.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Refresh, keys.Install, keys.Quit}
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styleSpinner

	return &Model{
		ctx:        ctx,
		ctrl:       ctrl,
		keys:       keys,
		list:       releases,
		spinner:    s,
		refreshing: true,
		status:     "Loading releases",
	}
}

// Relaunched reports whether the picker quit because an elevated copy was started.
func (m *Model) Relaunched() bool {
	return m.relaunched
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.refreshCmd(), m.spinner.Tick)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h, v := styleContainer.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v-4)

		return m, nil

	case refreshDoneMsg:
		m.refreshing = false

		if msg.err != nil {
			m.setError(fmt.Sprintf("Refresh failed (%s): %v", release.Classify(msg.err), msg.err))
			return m, nil
		}

		cmd := m.rebuildItems()
		m.setStatus(fmt.Sprintf("%d releases available", m.ctrl.Snapshot().Len()))

		return m, cmd

	case postedMsg:
		msg.fn()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Refresh):
			return m, m.startRefresh()
		case key.Matches(msg, m.keys.Install):
			return m, m.startInstall()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(styleTitle.Render("Release installer"))
	b.WriteString("  ")
	b.WriteString(styleInstalled.Render("installed: " + m.ctrl.InstalledLabel()))
	b.WriteString("\n\n")
	b.WriteString(m.list.View())
	b.WriteString("\n")

	if m.refreshing || m.installing {
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
	}

	switch {
	case m.statusErr:
		b.WriteString(styleError.Render(m.status))
	case m.installing || m.refreshing:
		b.WriteString(styleStatus.Render(m.status))
	default:
		b.WriteString(styleSuccess.Render(m.status))
	}

	return styleContainer.Render(b.String())
}

func (m *Model) startRefresh() tea.Cmd {
	if m.refreshing {
		return nil
	}

	m.refreshing = true
	m.status, m.statusErr = "Refreshing releases", false

	return tea.Batch(m.refreshCmd(), m.spinner.Tick)
}

// startInstall submits the highlighted release; it is ignored while an install runs.
func (m *Model) startInstall() tea.Cmd {
	if m.installing || m.ctrl.Busy() {
		return nil
	}

	item, ok := m.list.SelectedItem().(releaseItem)
	if !ok {
		return nil
	}

	if err := m.ctrl.Select(item.index); err != nil {
		m.setError(err.Error())
		return nil
	}

	_, err := m.ctrl.Install(m.ctx, func(outcome release.Outcome) {
		m.finishInstall(item.descriptor, outcome)
	})

	switch {
	case errors.Is(err, privilege.ErrRelaunched):
		m.relaunched = true
		return tea.Quit
	case errors.Is(err, executor.ErrBusy):
		return nil
	case err != nil:
		m.setError(fmt.Sprintf("Install failed (%s): %v", release.Classify(err), err))
		return nil
	}

	m.installing = true
	m.status, m.statusErr = "Installing version "+item.descriptor.Version, false

	return m.spinner.Tick
}

// finishInstall runs on the update loop once the executor reports back.
func (m *Model) finishInstall(descriptor release.Descriptor, outcome release.Outcome) {
	m.installing = false

	if !outcome.Succeeded {
		logger.ErrorKV(m.ctx, "Install failed", "version", descriptor.Version, "error", outcome.Err)
		m.setError(fmt.Sprintf("Install of %s failed (%s): %v",
			descriptor.Version, release.Classify(outcome.Err), outcome.Err))

		return
	}

	m.setStatus("Installed version " + descriptor.Version)
	_ = m.rebuildItems()
}

func (m *Model) rebuildItems() tea.Cmd {
	snapshot := m.ctrl.Snapshot()
	latest, hasLatest := m.ctrl.LatestIndex()

	items := make([]list.Item, 0, snapshot.Len())
	for i, descriptor := range snapshot.Descriptors() {
		items = append(items, releaseItem{
			index:      i,
			descriptor: descriptor,
			relation:   m.ctrl.Compare(i),
			latest:     hasLatest && i == latest,
		})
	}

	return m.list.SetItems(items)
}

func (m *Model) setStatus(status string) {
	m.status, m.statusErr = status, false
}

func (m *Model) setError(status string) {
	m.status, m.statusErr = status, true
}

// Run shows the picker until the operator quits or ctx is canceled.
func Run(ctx context.Context, ctrl Controller, home *Home) (*Model, error) {
	model := NewModel(ctx, ctrl)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	home.attach(program)

	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return model, fmt.Errorf("run picker: %w", err)
	}

	return model, nil
}
