package tui

import (
	"encoding/json"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/equipctl/equipctl/internal/client"
	"github.com/equipctl/equipctl/internal/model"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	// The client is never exercised in these tests; commands returned by
	// Update are inspected, not executed.
	return New(client.New("http://127.0.0.1:1/equipos/", time.Second))
}

func key(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func loadRecords(m *Model, ids ...string) {
	items := make([]model.Equipment, 0, len(ids))
	for _, id := range ids {
		items = append(items, model.Equipment{
			ID: json.Number(id), Name: "eq-" + id, Type: "Tool",
			Location: "Shelf", Status: model.StatusActive,
		})
	}
	m.Update(listDoneMsg{items: items})
}

func TestListResultPopulatesTable(t *testing.T) {
	m := newTestModel(t)
	loadRecords(m, "1", "2")

	if len(m.Store().Records) != 2 {
		t.Fatalf("store has %d records, want 2", len(m.Store().Records))
	}
	if len(m.tbl.Rows()) != 2 {
		t.Fatalf("table has %d rows, want 2", len(m.tbl.Rows()))
	}
	if m.tbl.Rows()[0][0] != "1" {
		t.Errorf("first row id = %q, want 1", m.tbl.Rows()[0][0])
	}
}

func TestListFailureClearsTable(t *testing.T) {
	m := newTestModel(t)
	loadRecords(m, "1")

	m.Update(listDoneMsg{err: &client.APIError{Message: "sin conexion"}})

	if len(m.tbl.Rows()) != 0 {
		t.Error("table rows not cleared after failed refresh")
	}
	if m.Store().ErrorMessage != "sin conexion" {
		t.Errorf("error message = %q", m.Store().ErrorMessage)
	}
}

func TestSubmitInvalidDraftIssuesNoCommand(t *testing.T) {
	m := newTestModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if cmd != nil {
		t.Error("command issued for invalid draft")
	}
	if m.Store().ErrorMessage == "" {
		t.Error("validation error not surfaced")
	}
	if m.Store().Create.Phase.String() == "in-flight" {
		t.Error("create marked in flight")
	}
}

func TestDeleteConfirmationFlow(t *testing.T) {
	m := newTestModel(t)
	loadRecords(m, "1", "2")
	m.setFocus(focusTable)

	m.Update(key('d'))
	if !m.confirming {
		t.Fatal("confirmation prompt not shown")
	}

	// Declining must leave records, deletingId and messages unchanged.
	m.Update(key('n'))
	if m.confirming {
		t.Error("still confirming after decline")
	}
	if m.Store().DeletingID != "" {
		t.Error("deletingId set after declined confirmation")
	}
	if len(m.Store().Records) != 2 {
		t.Error("records changed after declined confirmation")
	}
	if m.Store().ErrorMessage != "" || m.Store().SuccessMessage != "" {
		t.Error("messages changed after declined confirmation")
	}

	// Confirming starts exactly one remove.
	m.Update(key('d'))
	_, cmd := m.Update(key('y'))
	if cmd == nil {
		t.Fatal("no command issued after confirmed delete")
	}
	if m.Store().DeletingID != "1" {
		t.Errorf("deletingId = %q, want selected row id", m.Store().DeletingID)
	}
}

func TestDeleteAffordanceDisabledWhileDeleting(t *testing.T) {
	m := newTestModel(t)
	loadRecords(m, "1", "2")
	m.setFocus(focusTable)

	m.Update(key('d'))
	m.Update(key('y'))

	// A second delete request on any row is ignored outright.
	m.Update(key('d'))
	if m.confirming {
		t.Error("confirmation opened while another delete is in flight")
	}
}

func TestRemoveSuccessTriggersReconcile(t *testing.T) {
	m := newTestModel(t)
	loadRecords(m, "1", "2")
	m.setFocus(focusTable)
	m.Update(key('d'))
	m.Update(key('y'))

	_, cmd := m.Update(removeDoneMsg{message: "eliminado"})

	if cmd == nil {
		t.Fatal("no reconciling list issued after successful remove")
	}
	// Optimistic removal is visible before the list resolves.
	if len(m.Store().Records) != 1 || m.Store().Records[0].ID.String() != "2" {
		t.Errorf("records = %+v, want record 1 gone immediately", m.Store().Records)
	}
	if m.Store().List.Phase.String() != "in-flight" {
		t.Error("list not in flight after successful remove")
	}
}

func TestCreateSuccessResetsFormAndReconciles(t *testing.T) {
	m := newTestModel(t)
	for i, v := range []string{"Sierra", "Herramienta", "Estante B"} {
		m.inputs[i].SetValue(v)
	}
	m.statusIdx = 0

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("no command issued for valid draft")
	}

	_, cmd = m.Update(createDoneMsg{message: "registrado"})
	if cmd == nil {
		t.Fatal("no reconciling list issued after successful create")
	}
	if m.Store().Draft != (model.Draft{}) {
		t.Error("draft not reset after success")
	}
	for i := range m.inputs {
		if m.inputs[i].Value() != "" {
			t.Errorf("input %d not cleared", i)
		}
	}
	if m.statusIdx != -1 {
		t.Error("status selection not cleared")
	}
	if m.Store().SuccessMessage != "registrado" {
		t.Errorf("success message = %q", m.Store().SuccessMessage)
	}
}

func TestCreateFailurePreservesInput(t *testing.T) {
	m := newTestModel(t)
	for i, v := range []string{"Sierra", "Herramienta", "Estante B"} {
		m.inputs[i].SetValue(v)
	}
	m.statusIdx = 0

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m.Update(createDoneMsg{err: &client.APIError{Status: 555, Message: "bad config - Verifica la configuración del endpoint REST"}})

	if m.inputs[0].Value() != "Sierra" {
		t.Error("form cleared on failed create")
	}
	if m.Store().ErrorMessage != "bad config - Verifica la configuración del endpoint REST" {
		t.Errorf("error message = %q", m.Store().ErrorMessage)
	}
}
