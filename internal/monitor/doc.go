// Package monitor implements the real-time TUI dashboard for sensor telemetry.
//
// The dashboard renders dashboard.View snapshots: one card per channel with
// the latest reading, its range over the buffered window and a braille graph,
// plus the session state in the header.
//
// # Architecture
//
// The package uses the Bubble Tea framework (Model-Update-View):
//
//   - Model: Holds the current snapshot, selection, sort order and layout
//   - Update: Processes keystrokes, window resizes and published views
//   - View: Renders the current state to a string for display
//
// Views arrive from a Source (normally *dashboard.Controller). The model
// never reads the series registry directly, so rendering can't stall routing.
//
// # Layout Modes
//
// The dashboard adapts to terminal width:
//
//	LayoutMinimal  (<80 cols)  - Single column, block sparklines
//	LayoutCompact  (80-120)    - Braille graphs with a time axis
//	LayoutStandard (120-160)   - Three columns
//	LayoutWide     (160+)      - Wider cards
//
// # Keyboard Shortcuts
//
//	q, Ctrl+C   - Quit
//	r           - Redraw from the latest snapshot
//	s           - Cycle sort order (key/name/latest)
//	j/k, ↑/↓    - Navigate channels
//	Enter       - Expand channel detail view
//	Esc         - Collapse / go back
//	L           - Log out
//	?           - Toggle help overlay
package monitor
