package components

import (
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/evertras/bubble-table/table"

	"github.com/allbin/go-splitflap/internal/hexfmt"
	"github.com/allbin/go-splitflap/internal/tui/styles"
)

const (
	columnKeyTime  = "time"
	columnKeyDir   = "dir"
	columnKeyHex   = "hex"
	columnKeyASCII = "ascii"
	columnKeyBytes = "bytes"

	// DefaultTrafficLimit is how many entries the table keeps
	DefaultTrafficLimit = 500
)

// Entry is one chunk read from or packet written to the display
type Entry struct {
	At   time.Time
	Data []byte
	TX   bool
}

// Traffic is a table of recent traffic, newest first
type Traffic struct {
	table     table.Model
	entries   []Entry
	limit     int
	showASCII bool
	focused   bool
	width     int
	height    int
}

func NewTraffic(limit int) *Traffic {
	if limit <= 0 {
		limit = DefaultTrafficLimit
	}
	t := &Traffic{
		limit:     limit,
		showASCII: true,
		width:     80,
		height:    10,
	}
	t.rebuild()
	return t
}

func (t *Traffic) columns() []table.Column {
	cols := []table.Column{
		table.NewColumn(columnKeyTime, "Time", 14),
		table.NewColumn(columnKeyDir, "↕", 4),
		table.NewFlexColumn(columnKeyHex, "Hex", 3),
	}
	if t.showASCII {
		cols = append(cols, table.NewFlexColumn(columnKeyASCII, "ASCII", 1))
	}
	return append(cols, table.NewColumn(columnKeyBytes, "Bytes", 6))
}

func (t *Traffic) rows() []table.Row {
	rows := make([]table.Row, 0, len(t.entries))
	for i := len(t.entries) - 1; i >= 0; i-- {
		e := t.entries[i]
		dir := table.NewStyledCell("RX", styles.RXStyle)
		if e.TX {
			dir = table.NewStyledCell("TX", styles.TXStyle)
		}
		rows = append(rows, table.NewRow(table.RowData{
			columnKeyTime:  e.At.Format("15:04:05.000"),
			columnKeyDir:   dir,
			columnKeyHex:   hexfmt.Dump(e.Data),
			columnKeyASCII: hexfmt.ASCII(e.Data),
			columnKeyBytes: strconv.Itoa(len(e.Data)),
		}))
	}
	return rows
}

// rebuild recreates the table after a column, size or data change
func (t *Traffic) rebuild() {
	pageSize := t.height - 4
	if pageSize < 1 {
		pageSize = 1
	}
	t.table = table.New(t.columns()).
		WithRows(t.rows()).
		WithTargetWidth(t.width).
		WithPageSize(pageSize).
		HeaderStyle(lipgloss.NewStyle().Bold(true).Foreground(styles.Text)).
		WithBaseStyle(lipgloss.NewStyle().Foreground(styles.Subtext1).BorderForeground(styles.Surface1).Align(lipgloss.Left)).
		Focused(t.focused)
}

// Add records an entry, evicting the oldest beyond the limit
func (t *Traffic) Add(e Entry) {
	t.entries = append(t.entries, e)
	if over := len(t.entries) - t.limit; over > 0 {
		t.entries = append(t.entries[:0], t.entries[over:]...)
	}
	t.table = t.table.WithRows(t.rows())
}

func (t *Traffic) Entries() []Entry {
	return t.entries
}

func (t *Traffic) Clear() {
	t.entries = nil
	t.table = t.table.WithRows(nil)
}

func (t *Traffic) ToggleASCII() {
	t.showASCII = !t.showASCII
	t.rebuild()
}

func (t *Traffic) ShowsASCII() bool {
	return t.showASCII
}

// SetFocused enables keyboard paging through the table
func (t *Traffic) SetFocused(focused bool) {
	t.focused = focused
	t.table = t.table.Focused(focused)
}

func (t *Traffic) SetSize(width, height int) {
	t.width, t.height = width, height
	t.rebuild()
}

func (t *Traffic) Update(msg tea.Msg) tea.Cmd {
	if !t.focused {
		return nil
	}
	var cmd tea.Cmd
	t.table, cmd = t.table.Update(msg)
	return cmd
}

func (t *Traffic) View() string {
	return t.table.View()
}
