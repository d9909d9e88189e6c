package monitor

import tea "github.com/charmbracelet/bubbletea"

// SortOrder defines how channels are sorted in the dashboard.
type SortOrder int

const (
	SortByKey SortOrder = iota
	SortByLabel
	SortByLatest
)

// String returns a human-readable label for the sort order.
func (s SortOrder) String() string {
	switch s {
	case SortByLabel:
		return "name"
	case SortByLatest:
		return "latest"
	default:
		return "key"
	}
}

// Next cycles to the next sort order.
func (s SortOrder) Next() SortOrder {
	return SortOrder((int(s) + 1) % 3)
}

// ViewMode defines the current display mode of the dashboard.
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
)

// Key bindings as constants for consistency.
const (
	KeyQuit        = "q"
	KeyQuitAlt     = "ctrl+c"
	KeyRefresh     = "r"
	KeyCycleSort   = "s"
	KeyLogout      = "L"
	KeySelectPrev  = "up"
	KeySelectPrevK = "k"
	KeySelectNext  = "down"
	KeySelectNextJ = "j"
	KeySelectFirst = "home"
	KeySelectLast  = "end"
	KeyExpand      = "enter"
	KeyCollapse    = "esc"
	KeyToggleHelp  = "?"
)

// HandleKeyMsg processes keyboard input and returns updated model state and command.
// Returns true if the key was handled, false otherwise.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	key := msg.String()

	// Help toggle takes priority
	if key == KeyToggleHelp {
		m.showHelp = !m.showHelp
		return true, nil
	}

	// If help is showing, Esc closes it
	if m.showHelp && key == KeyCollapse {
		m.showHelp = false
		return true, nil
	}

	switch key {
	case KeyQuit, KeyQuitAlt:
		m.quitting = true
		return true, tea.Quit

	case KeyRefresh:
		m.setView(m.source.CurrentView())
		if m.viewMode == ViewDetail {
			m.updateDetailViewportContent()
		}
		return true, nil

	case KeyLogout:
		if m.logout == nil {
			return true, nil
		}
		logout := m.logout
		return true, func() tea.Msg {
			logout()
			return nil
		}

	case KeyCollapse:
		m.viewMode = ViewList
		return true, nil
	}

	// Up/down scroll the viewport in the detail view
	if m.viewMode == ViewDetail {
		return false, nil
	}

	switch key {
	case KeyCycleSort:
		selected := m.SelectedKey()
		m.sortOrder = m.sortOrder.Next()
		m.sortChannels()
		m.selectKey(selected)
		return true, nil

	case KeySelectPrev, KeySelectPrevK:
		if m.selected > 0 {
			m.selected--
		}
		return true, nil

	case KeySelectNext, KeySelectNextJ:
		if m.selected < len(m.channels)-1 {
			m.selected++
		}
		return true, nil

	case KeySelectFirst:
		if len(m.channels) > 0 {
			m.selected = 0
		}
		return true, nil

	case KeySelectLast:
		if len(m.channels) > 0 {
			m.selected = len(m.channels) - 1
		}
		return true, nil

	case KeyExpand:
		if len(m.channels) > 0 {
			m.viewMode = ViewDetail
			m.updateDetailViewportContent()
			m.detailViewport.GotoTop()
		}
		return true, nil
	}

	return false, nil
}
