package main

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dominators/sagara/backend/internal/model/action"
	"github.com/dominators/sagara/backend/internal/model/chat"
	"github.com/dominators/sagara/backend/internal/service/ai"
	chatservice "github.com/dominators/sagara/backend/internal/service/chat"
)

func newTestModel(t *testing.T) model {
	t.Helper()

	ctx := context.Background()
	randFactory := chatservice.SeededRand(7)
	actions := action.NewMemoryStore(action.Seed())

	copilot, err := ai.NewService(ctx, ai.NewTemplateModel(randFactory()), actions.List(), false)
	if err != nil {
		t.Fatalf("new copilot: %v", err)
	}
	session := chatservice.NewService(copilot, actions, randFactory).CreateSession(ctx)
	return newModel(ctx, session, actions.List())
}

// runCmd executes cmd and feeds back the first snapshotMsg it produces.
func runCmd(t *testing.T, m model, cmd tea.Cmd) model {
	t.Helper()
	if cmd == nil {
		t.Fatalf("expected a command")
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			if c == nil {
				continue
			}
			if sm, ok := c().(snapshotMsg); ok {
				next, _ := m.Update(sm)
				return next.(model)
			}
		}
		t.Fatalf("batch did not contain a snapshot command")
	}
	next, _ := m.Update(msg)
	return next.(model)
}

func TestBlankInputIsNotSubmitted(t *testing.T) {
	m := newTestModel(t)
	m.input.SetValue("   ")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	got := next.(model)

	if cmd != nil {
		t.Fatalf("expected no command for blank input")
	}
	if got.busy {
		t.Fatalf("blank input must not start a request")
	}
	if n := len(got.session.Snapshot().Conversation); n != 1 {
		t.Fatalf("expected greeting only, got %d turns", n)
	}
}

func TestEnterSubmitsMessage(t *testing.T) {
	m := newTestModel(t)
	m.input.SetValue("Coral Bleaching")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(model)
	if !m.busy {
		t.Fatalf("expected busy while the reply is pending")
	}
	if m.input.Value() != "" {
		t.Fatalf("expected input cleared, got %q", m.input.Value())
	}

	m = runCmd(t, m, cmd)
	if m.busy {
		t.Fatalf("expected busy cleared after reply")
	}

	turns := m.snapshot.Conversation
	if len(turns) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(turns))
	}
	if turns[1].Role != chat.RoleUser || turns[1].Content != "Coral Bleaching" {
		t.Fatalf("unexpected user turn: %+v", turns[1])
	}
	if !strings.Contains(turns[2].Content, "coral bleaching") {
		t.Fatalf("expected lowercased query in reply, got %q", turns[2].Content)
	}
	if !strings.Contains(m.timeline.View(), "Oceanic Copilot") {
		t.Fatalf("expected timeline to render assistant turns")
	}
}

func TestFunctionKeysTriggerQuickActions(t *testing.T) {
	m := newTestModel(t)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyF2})
	m = runCmd(t, next.(model), cmd)

	turns := m.snapshot.Conversation
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	store := action.NewMemoryStore(action.Seed())
	want, _ := store.FindByKind(action.TemperatureAnalysis)
	if turns[1].Content != want.Message {
		t.Fatalf("unexpected quick action reply %q", turns[1].Content)
	}
}

func TestRefreshUpdatesQualityHeader(t *testing.T) {
	m := newTestModel(t)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	m = runCmd(t, next.(model), cmd)

	score := m.snapshot.QualityScore
	if score < 95 || score > 99 {
		t.Fatalf("quality score out of range: %v", score)
	}
	if !strings.Contains(m.View(), "Data Quality") {
		t.Fatalf("expected header to show data quality")
	}
}

func TestKeysIgnoredWhileBusy(t *testing.T) {
	m := newTestModel(t)
	m.busy = true

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyF1})
	if cmd != nil {
		t.Fatalf("expected quick action to be ignored while busy")
	}
}

func TestEscQuits(t *testing.T) {
	m := newTestModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}
