package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mpetrenko/leadglass/internal/backend"
	"github.com/mpetrenko/leadglass/internal/lead"
)

// editModal holds the form state for editing a single record.
type editModal struct {
	record lead.Record
	fields []textinput.Model
	labels []string
	focus  int
}

const (
	fieldOrganization = iota
	fieldEmail
	fieldWebsite
	fieldCountry
	fieldDescription
	fieldCount
)

func newEditModal(rec lead.Record) *editModal {
	labels := []string{"Organization", "Email", "Website", "Country", "Notes"}
	values := []string{rec.Organization, rec.Email, rec.Website, rec.Country, rec.Description}

	fields := make([]textinput.Model, fieldCount)
	for i := range fields {
		in := textinput.New()
		in.SetValue(values[i])
		in.CharLimit = 256
		in.Width = 42
		fields[i] = in
	}
	fields[fieldOrganization].Focus()

	return &editModal{record: rec, fields: fields, labels: labels}
}

func (e *editModal) setFocus(idx int) {
	e.focus = ((idx % fieldCount) + fieldCount) % fieldCount
	for i := range e.fields {
		if i == e.focus {
			e.fields[i].Focus()
		} else {
			e.fields[i].Blur()
		}
	}
}

// patch builds the update from fields that actually changed. A nil return
// means the form was submitted untouched.
func (e *editModal) patch() *backend.ResultPatch {
	var p backend.ResultPatch
	changed := false

	diff := func(dst **string, was string, idx int) {
		now := strings.TrimSpace(e.fields[idx].Value())
		if now != was {
			*dst = &now
			changed = true
		}
	}
	diff(&p.OrganizationName, e.record.Organization, fieldOrganization)
	diff(&p.Email, e.record.Email, fieldEmail)
	diff(&p.Website, e.record.Website, fieldWebsite)
	diff(&p.Country, e.record.Country, fieldCountry)
	diff(&p.Description, e.record.Description, fieldDescription)

	if !changed {
		return nil
	}
	return &p
}

func (m Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.edit = nil
		return m, nil
	case "tab", "down":
		m.edit.setFocus(m.edit.focus + 1)
		return m, nil
	case "shift+tab", "up":
		m.edit.setFocus(m.edit.focus - 1)
		return m, nil
	case "enter":
		patch := m.edit.patch()
		id := m.edit.record.ID
		m.edit = nil
		if patch == nil {
			return m, nil
		}
		return m, m.saveCmd(id, *patch)
	}

	var cmd tea.Cmd
	m.edit.fields[m.edit.focus], cmd = m.edit.fields[m.edit.focus].Update(msg)
	return m, cmd
}

func (m Model) saveCmd(id string, patch backend.ResultPatch) tea.Cmd {
	client, ctrl, ctx := m.client, m.ctrl, m.ctx
	return func() tea.Msg {
		if err := client.UpdateResult(ctx, id, patch); err != nil {
			return mutationMsg{action: "edit", err: err}
		}
		ctrl.InvalidateAll()
		return mutationMsg{action: "edit"}
	}
}

func (m Model) renderEditModal() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Logo.Render("edit record") + "\n")
	b.WriteString(styles.MutedText.Render(truncate(m.edit.record.Organization, 42)) + "\n\n")
	for i, label := range m.edit.labels {
		style := styles.MutedText
		if i == m.edit.focus {
			style = styles.AccentText
		}
		b.WriteString(style.Render(pad(label, 14)) + m.edit.fields[i].View() + "\n")
	}
	b.WriteString("\n" + styles.MutedText.Render("enter save  ·  tab next field  ·  esc cancel"))
	return m.centerOverlay(styles.Modal.Render(b.String()))
}
