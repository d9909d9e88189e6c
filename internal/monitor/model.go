package monitor

import (
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/pulse/internal/dashboard"
	"github.com/rileyhilliard/pulse/internal/series"
)

// LayoutMode represents the responsive layout mode based on terminal size.
type LayoutMode int

const (
	// LayoutMinimal is for terminals < 80 columns: single-row sparklines, single column
	LayoutMinimal LayoutMode = iota
	// LayoutCompact is for terminals 80-120 columns: braille graphs, two columns
	LayoutCompact
	// LayoutStandard is for terminals 120-160 columns: full cards, three columns
	LayoutStandard
	// LayoutWide is for terminals 160+ columns: wider cards
	LayoutWide
)

// Width breakpoints for layout modes
const (
	BreakpointCompact  = 80
	BreakpointStandard = 120
	BreakpointWide     = 160
)

// Height breakpoints for layout adjustments
const (
	HeightMinimal  = 24
	HeightStandard = 40
)

// DefaultUnit is shown next to readings whose device metadata carries no unit.
const DefaultUnit = "°C"

// Source supplies dashboard snapshots. *dashboard.Controller implements it.
type Source interface {
	CurrentView() dashboard.View
	Subscribe() (<-chan dashboard.View, func())
}

// Options tune the dashboard model.
type Options struct {
	// Unit is the fallback unit label. Empty uses DefaultUnit.
	Unit string
	// Logout drops the active credential. Nil disables the logout key.
	Logout func()
}

// Model is the Bubble Tea model for the telemetry dashboard.
type Model struct {
	source      Source
	views       <-chan dashboard.View
	unsubscribe func()
	logout      func()
	unit        string

	view     dashboard.View
	channels []dashboard.Channel // view.Channels in display order

	selected  int
	sortOrder SortOrder
	viewMode  ViewMode
	showHelp  bool
	width     int
	height    int
	quitting  bool

	// Animation state
	spinnerFrame int

	// Detail view viewport for scrollable content
	detailViewport viewport.Model
	viewportReady  bool
}

// viewMsg carries a published dashboard snapshot.
type viewMsg dashboard.View

// viewsClosedMsg signals the source stopped publishing.
type viewsClosedMsg struct{}

// spinnerTickMsg signals a spinner animation frame update.
type spinnerTickMsg time.Time

// spinnerInterval is the animation frame rate for the connecting spinner
const spinnerInterval = 150 * time.Millisecond

// NewModel subscribes to src and seeds the model with its current view.
// Call Close once the program exits to release the subscription.
func NewModel(src Source, opts Options) Model {
	unit := opts.Unit
	if unit == "" {
		unit = DefaultUnit
	}

	views, unsubscribe := src.Subscribe()
	m := Model{
		source:      src,
		views:       views,
		unsubscribe: unsubscribe,
		logout:      opts.Logout,
		unit:        unit,
	}
	m.setView(src.CurrentView())
	return m
}

// Close releases the view subscription.
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Init starts listening for views and the spinner animation.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForView(m.views),
		m.spinnerTickCmd(),
	)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		handled, cmd := m.HandleKeyMsg(msg)
		if handled {
			return m, cmd
		}
		if m.viewMode == ViewDetail && m.viewportReady {
			var vpCmd tea.Cmd
			m.detailViewport, vpCmd = m.detailViewport.Update(msg)
			return m, vpCmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Reserve space for header and footer
		headerHeight := 3
		footerHeight := 2
		viewportHeight := m.height - headerHeight - footerHeight
		if viewportHeight < 1 {
			viewportHeight = 1
		}

		if !m.viewportReady {
			m.detailViewport = viewport.New(m.width, viewportHeight)
			m.detailViewport.YPosition = headerHeight
			m.viewportReady = true
		} else {
			m.detailViewport.Width = m.width
			m.detailViewport.Height = viewportHeight
		}

		if m.viewMode == ViewDetail {
			m.updateDetailViewportContent()
		}

	case spinnerTickMsg:
		m.spinnerFrame = (m.spinnerFrame + 1) % 10000
		return m, m.spinnerTickCmd()

	case viewMsg:
		m.setView(dashboard.View(msg))
		if m.viewMode == ViewDetail {
			m.updateDetailViewportContent()
		}
		return m, waitForView(m.views)

	case viewsClosedMsg:
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.renderDashboard()
}

// waitForView blocks on the next published view.
func waitForView(views <-chan dashboard.View) tea.Cmd {
	return func() tea.Msg {
		v, ok := <-views
		if !ok {
			return viewsClosedMsg{}
		}
		return viewMsg(v)
	}
}

// spinnerTickCmd returns a command that sends a spinner tick for animation.
func (m Model) spinnerTickCmd() tea.Cmd {
	return tea.Tick(spinnerInterval, func(t time.Time) tea.Msg {
		return spinnerTickMsg(t)
	})
}

// setView replaces the snapshot, keeping the selected channel selected when
// it is still present. A new epoch drops back to the list.
func (m *Model) setView(v dashboard.View) {
	selectedKey := m.SelectedKey()
	if v.Epoch != m.view.Epoch {
		m.viewMode = ViewList
		selectedKey = ""
	}

	m.view = v
	m.channels = make([]dashboard.Channel, len(v.Channels))
	copy(m.channels, v.Channels)
	m.sortChannels()
	m.selectKey(selectedKey)
}

// CurrentView returns the snapshot being rendered.
func (m Model) CurrentView() dashboard.View {
	return m.view
}

// Channels returns channels in display order.
func (m Model) Channels() []dashboard.Channel {
	return m.channels
}

// SelectedKey returns the key of the selected channel, or "" when none.
func (m Model) SelectedKey() series.Key {
	if ch, ok := m.SelectedChannel(); ok {
		return ch.Key
	}
	return ""
}

// SelectedChannel returns the selected channel.
func (m Model) SelectedChannel() (dashboard.Channel, bool) {
	if m.selected >= 0 && m.selected < len(m.channels) {
		return m.channels[m.selected], true
	}
	return dashboard.Channel{}, false
}

// UnitFor returns the unit label shown for a channel.
func (m Model) UnitFor(ch dashboard.Channel) string {
	if ch.Unit != "" {
		return ch.Unit
	}
	return m.unit
}

// SecondsSinceUpdate returns how many seconds have passed since the view was built.
func (m Model) SecondsSinceUpdate() int {
	if m.view.UpdatedAt.IsZero() {
		return 0
	}
	return int(time.Since(m.view.UpdatedAt).Seconds())
}

// LayoutMode returns the current layout mode based on terminal width.
func (m Model) LayoutMode() LayoutMode {
	switch {
	case m.width >= BreakpointWide:
		return LayoutWide
	case m.width >= BreakpointStandard:
		return LayoutStandard
	case m.width >= BreakpointCompact:
		return LayoutCompact
	default:
		return LayoutMinimal
	}
}

// ShowFooter returns true if the terminal is tall enough to show the footer.
func (m Model) ShowFooter() bool {
	return m.height == 0 || m.height >= HeightMinimal
}

// selectKey points the selection at key, falling back to the first channel.
func (m *Model) selectKey(key series.Key) {
	m.selected = 0
	if len(m.channels) == 0 {
		m.selected = -1
		return
	}
	for i, ch := range m.channels {
		if ch.Key == key {
			m.selected = i
			return
		}
	}
}

// sortChannels orders channels by the current sort order.
func (m *Model) sortChannels() {
	switch m.sortOrder {
	case SortByLabel:
		sort.SliceStable(m.channels, func(i, j int) bool {
			if m.channels[i].Label != m.channels[j].Label {
				return m.channels[i].Label < m.channels[j].Label
			}
			return m.channels[i].Key < m.channels[j].Key
		})

	case SortByLatest:
		sort.SliceStable(m.channels, func(i, j int) bool {
			li, okI := m.channels[i].Last()
			lj, okJ := m.channels[j].Last()
			// Channels without samples go to the end
			if okI != okJ {
				return okI
			}
			if li.Value != lj.Value {
				return li.Value > lj.Value
			}
			return m.channels[i].Key < m.channels[j].Key
		})

	default:
		sort.SliceStable(m.channels, func(i, j int) bool {
			return m.channels[i].Key < m.channels[j].Key
		})
	}
}
