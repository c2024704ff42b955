package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/mpetrenko/leadglass/internal/lead"
	"github.com/mpetrenko/leadglass/internal/state"
)

func (m Model) renderMain() string {
	if m.confirmDelete {
		return m.renderDeleteConfirm()
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")
	b.WriteString(m.renderContent())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	return b.String()
}

func (m Model) renderHeader() string {
	styles := m.theme.Styles()

	parts := []string{styles.Logo.Render("leadglass")}

	meta := m.currentMeta()
	switch meta.Source {
	case state.SourceRemote:
		parts = append(parts, styles.SuccessText.Render("● live"))
	case state.SourceCache:
		parts = append(parts, styles.WarningText.Render("● cached"))
	default:
		parts = append(parts, styles.MutedText.Render("● connecting"))
	}

	if !meta.UpdatedAt.IsZero() {
		parts = append(parts, styles.MutedText.Render(relativeAge(meta.UpdatedAt)))
	}
	if meta.Err != nil && meta.Source != state.SourceNone {
		parts = append(parts, styles.DangerText.Render("sync error"))
	}

	if m.status != "" && time.Now().Before(m.statusUntil) {
		style := styles.InfoText
		switch m.statusLevel {
		case statusSuccess:
			style = styles.SuccessText
		case statusError:
			style = styles.DangerText
		}
		parts = append(parts, style.Render(truncate(m.status, 60)))
	}

	return styles.Header.Width(m.width).Render(strings.Join(parts, "  "))
}

func (m Model) renderTabs() string {
	styles := m.theme.Styles()

	labels := []string{
		fmt.Sprintf("1 Results (%d)", len(m.snapshot.Results)),
		fmt.Sprintf("2 History (%d)", len(m.snapshot.History)),
		fmt.Sprintf("3 Contacts (%d)", len(m.snapshot.Contacts)),
	}
	rendered := make([]string, len(labels))
	for i, label := range labels {
		if state.Dataset(i) == m.view {
			rendered[i] = styles.TabActive.Render(label)
		} else {
			rendered[i] = styles.TabInactive.Render(label)
		}
	}
	return " " + strings.Join(rendered, "   ")
}

func (m Model) renderContent() string {
	meta := m.currentMeta()

	if m.rowCount() == 0 {
		if meta.Source == state.SourceNone {
			if meta.Err != nil {
				return m.renderPlaceholder(m.theme.Styles().DangerText.Render(
					truncate(fmt.Sprintf("Backend unavailable: %v", meta.Err), maxInt(20, m.width-4))))
			}
			return m.renderPlaceholder(m.theme.Styles().MutedText.Render("Loading " + m.view.String() + "..."))
		}
		return m.renderPlaceholder(m.theme.Styles().MutedText.Render("No " + m.view.String() + " yet."))
	}

	switch m.view {
	case state.History:
		return m.renderHistoryTable()
	case state.Contacts:
		return m.renderContactsTable()
	default:
		return m.renderResultsTable()
	}
}

func (m Model) renderPlaceholder(text string) string {
	return "\n  " + text + "\n"
}

func (m Model) renderResultsTable() string {
	cols := []column{
		{"ORGANIZATION", 28},
		{"EMAIL", 26},
		{"TASK", 18},
		{"PARSED", 16},
	}
	rows := make([][]string, 0, len(m.snapshot.Results))
	for _, r := range m.snapshot.Results {
		rows = append(rows, []string{
			r.Organization,
			r.Email,
			r.TaskName,
			shortTime(r.SortTime()),
		})
	}
	return m.renderTable(cols, rows) + m.renderRecordDetail(m.snapshot.Results)
}

func (m Model) renderHistoryTable() string {
	cols := []column{
		{"TASK", 24},
		{"QUERY", 30},
		{"RESULTS", 8},
		{"CONTACTS", 9},
		{"LATEST", 16},
	}
	rows := make([][]string, 0, len(m.snapshot.History))
	for _, a := range m.snapshot.History {
		rows = append(rows, []string{
			a.TaskName,
			a.SearchQuery,
			fmt.Sprintf("%d", a.TotalResults),
			fmt.Sprintf("%d", a.Contacts),
			shortTime(a.LatestDate),
		})
	}
	return m.renderTable(cols, rows)
}

func (m Model) renderContactsTable() string {
	cols := []column{
		{"ORGANIZATION", 26},
		{"EMAIL", 26},
		{"COUNTRY", 12},
		{"WEBSITE", 22},
		{"PARSED", 16},
	}
	rows := make([][]string, 0, len(m.snapshot.Contacts))
	for _, r := range m.snapshot.Contacts {
		rows = append(rows, []string{
			r.Organization,
			r.Email,
			r.Country,
			r.Website,
			shortTime(r.SortTime()),
		})
	}
	return m.renderTable(cols, rows) + m.renderRecordDetail(m.snapshot.Contacts)
}

type column struct {
	title string
	width int
}

func (m Model) renderTable(cols []column, rows [][]string) string {
	styles := m.theme.Styles()
	var b strings.Builder

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = pad(c.title, c.width)
	}
	b.WriteString("  " + styles.ColumnHeader.Render(strings.Join(header, " ")) + "\n")

	visible := m.visibleRows(len(rows))
	selected := m.selected[m.view]
	for i := visible.start; i < visible.end; i++ {
		cells := make([]string, len(cols))
		for j, c := range cols {
			cells[j] = pad(truncate(rows[i][j], c.width), c.width)
		}
		line := strings.Join(cells, " ")
		if i == selected {
			b.WriteString("▸ " + styles.Selected.Render(line) + "\n")
		} else {
			b.WriteString("  " + styles.Text.Render(line) + "\n")
		}
	}

	if len(rows) > visible.end-visible.start {
		b.WriteString(styles.FaintText.Render(fmt.Sprintf("  %d-%d of %d", visible.start+1, visible.end, len(rows))) + "\n")
	}
	return b.String()
}

type window struct {
	start, end int
}

// visibleRows keeps the selection inside the viewport as it moves.
func (m Model) visibleRows(total int) window {
	capacity := m.height - 12
	if capacity < 3 {
		capacity = 3
	}
	if total <= capacity {
		return window{0, total}
	}
	selected := m.selected[m.view]
	start := selected - capacity/2
	if start < 0 {
		start = 0
	}
	end := start + capacity
	if end > total {
		end = total
		start = end - capacity
	}
	return window{start, end}
}

// renderRecordDetail shows the full fields of the selected record under the
// table for record-backed views.
func (m Model) renderRecordDetail(rows []lead.Record) string {
	idx := m.selected[m.view]
	if idx < 0 || idx >= len(rows) {
		return ""
	}
	r := rows[idx]
	styles := m.theme.Styles()

	label := func(s string) string { return styles.MutedText.Render(pad(s, 10)) }
	lines := []string{
		"",
		"  " + label("org") + styles.Text.Render(r.Organization),
		"  " + label("email") + styles.Text.Render(valueOr(r.Email, "—")),
		"  " + label("website") + styles.Text.Render(valueOr(r.Website, "—")),
		"  " + label("country") + styles.Text.Render(valueOr(r.Country, "—")),
		"  " + label("task") + styles.Text.Render(r.TaskName) + styles.MutedText.Render("  ("+valueOr(r.SearchQuery, lead.UnknownQuery)+")"),
	}
	if r.Description != "" {
		lines = append(lines, "  "+label("notes")+styles.Text.Render(truncate(r.Description, maxInt(20, m.width-14))))
	}
	return strings.Join(lines, "\n") + "\n"
}

func (m Model) renderFooter() string {
	styles := m.theme.Styles()

	hints := []string{"1/2/3 views", "j/k move", "r refresh"}
	switch m.view {
	case state.Contacts:
		dir := "newest first"
		if m.snapshot.ContactSort == lead.Ascending {
			dir = "oldest first"
		}
		hints = append(hints, "s sort ("+dir+")", "e edit", "x delete")
	case state.Results:
		hints = append(hints, "e edit", "x delete")
	}
	hints = append(hints, "m notify", "h help", "q quit")

	return styles.Footer.Width(m.width).Render(strings.Join(hints, "  ·  "))
}

func (m Model) renderDeleteConfirm() string {
	styles := m.theme.Styles()
	rec := m.selectedRecord()
	name := ""
	if rec != nil {
		name = rec.Organization
	}
	body := fmt.Sprintf("Delete %q?\n\nThis removes the record from the backend.\n\n%s",
		name, styles.MutedText.Render("y confirm  ·  any other key cancels"))
	return m.centerOverlay(styles.Modal.Render(body))
}

func (m Model) renderHelp() string {
	styles := m.theme.Styles()
	rows := [][2]string{
		{"1 / 2 / 3", "switch to results, history, contacts"},
		{"tab / shift+tab", "cycle views"},
		{"j / k, g / G", "move selection"},
		{"r", "refresh the current view from the backend"},
		{"s", "toggle contact sort without refetching"},
		{"e", "edit the selected record"},
		{"x", "delete the selected record"},
		{"m", "send a summary to Telegram"},
		{"T", "cycle theme"},
		{"q / ctrl+c", "quit"},
	}
	var b strings.Builder
	b.WriteString(styles.Logo.Render("leadglass keys") + "\n\n")
	for _, row := range rows {
		b.WriteString(styles.AccentText.Render(pad(row[0], 18)) + styles.Text.Render(row[1]) + "\n")
	}
	b.WriteString("\n" + styles.MutedText.Render("any key closes help"))
	return m.centerOverlay(styles.Modal.Render(b.String()))
}

func (m Model) currentMeta() state.Meta {
	switch m.view {
	case state.History:
		return m.snapshot.HistoryMeta
	case state.Contacts:
		return m.snapshot.ContactsMeta
	default:
		return m.snapshot.ResultsMeta
	}
}

func (m Model) centerOverlay(content string) string {
	lines := strings.Split(content, "\n")
	widest := 0
	for _, l := range lines {
		if w := displayWidth(l); w > widest {
			widest = w
		}
	}
	leftPad := maxInt(0, (m.width-widest)/2)
	topPad := maxInt(0, (m.height-len(lines))/2)

	var b strings.Builder
	b.WriteString(strings.Repeat("\n", topPad))
	indent := strings.Repeat(" ", leftPad)
	for _, l := range lines {
		b.WriteString(indent + l + "\n")
	}
	return b.String()
}
