package ai

import (
	"context"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"

	"github.com/dominators/sagara/backend/internal/model/chat"
)

type fixedPicker int

func (p fixedPicker) IntN(n int) int { return int(p) % n }

func newTestService(t *testing.T, picker Picker, streaming bool) *Service {
	t.Helper()
	svc, err := NewTemplateService(context.Background(), picker, streaming)
	if err != nil {
		t.Fatalf("NewTemplateService err: %v", err)
	}
	return svc
}

func TestReplyInterpolatesLowercasedQuery(t *testing.T) {
	svc := newTestService(t, rand.New(rand.NewPCG(1, 2)), false)

	reply, err := svc.Reply(context.Background(), nil, "Temperature Trends")
	if err != nil {
		t.Fatalf("Reply err: %v", err)
	}
	if !strings.Contains(reply, "temperature trends") {
		t.Fatalf("reply should contain lowercased query, got %q", reply)
	}
	if !slices.Contains(CandidateReplies("Temperature Trends"), reply) {
		t.Fatalf("reply is not one of the templates: %q", reply)
	}
}

func TestReplyUsesPickedTemplate(t *testing.T) {
	for i, want := range CandidateReplies("Reef Health") {
		svc := newTestService(t, fixedPicker(i), false)
		got, err := svc.Reply(context.Background(), nil, "Reef Health")
		if err != nil {
			t.Fatalf("Reply err: %v", err)
		}
		if got != want {
			t.Fatalf("template %d: got %q want %q", i, got, want)
		}
	}
}

func TestReplyCoversAllTemplates(t *testing.T) {
	svc := newTestService(t, rand.New(rand.NewPCG(7, 7)), false)

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		reply, err := svc.Reply(context.Background(), nil, "salinity")
		if err != nil {
			t.Fatalf("Reply err: %v", err)
		}
		seen[reply] = true
	}
	if len(seen) != len(replyTemplates) {
		t.Fatalf("expected all %d templates to be chosen, saw %d", len(replyTemplates), len(seen))
	}
}

func TestStreamReplyEmitsDeltas(t *testing.T) {
	svc := newTestService(t, fixedPicker(1), true)

	var deltas []string
	full, err := svc.StreamReply(context.Background(), nil, "pH levels", func(d string) {
		deltas = append(deltas, d)
	})
	if err != nil {
		t.Fatalf("StreamReply err: %v", err)
	}
	if len(deltas) < 2 {
		t.Fatalf("expected multiple deltas, got %d", len(deltas))
	}
	if strings.Join(deltas, "") != full {
		t.Fatalf("deltas do not add up to full reply:\n%q\n%q", strings.Join(deltas, ""), full)
	}
	if full != CandidateReplies("pH levels")[1] {
		t.Fatalf("unexpected reply: %q", full)
	}
}

func TestStreamReplyWithoutStreamingSendsWholeReply(t *testing.T) {
	svc := newTestService(t, fixedPicker(0), false)

	var deltas []string
	full, err := svc.StreamReply(context.Background(), nil, "tides", func(d string) {
		deltas = append(deltas, d)
	})
	if err != nil {
		t.Fatalf("StreamReply err: %v", err)
	}
	if len(deltas) != 1 || deltas[0] != full {
		t.Fatalf("expected one delta equal to the reply, got %v", deltas)
	}
}

func TestBuildHistoryMessagesKeepsRecentTurns(t *testing.T) {
	turns := make([]chat.Turn, 0, 14)
	for i := 0; i < 14; i++ {
		role := chat.RoleUser
		if i%2 == 1 {
			role = chat.RoleAssistant
		}
		turns = append(turns, chat.Turn{Role: role, Content: string(rune('a' + i))})
	}

	history := buildHistoryMessages(turns)
	if len(history) != historyLimit {
		t.Fatalf("expected %d messages, got %d", historyLimit, len(history))
	}
	if history[0].Content != "e" || history[0].Role != schema.User {
		t.Fatalf("unexpected first history message: %+v", history[0])
	}
}

func TestTemplateModelRequiresUserMessage(t *testing.T) {
	m := NewTemplateModel(fixedPicker(0))
	if _, err := m.Generate(context.Background(), []*schema.Message{schema.SystemMessage("hi")}); err == nil {
		t.Fatal("expected error without user message")
	}
}

func TestWithPickerOverridesModelSource(t *testing.T) {
	svc := newTestService(t, fixedPicker(0), false)
	want := CandidateReplies("kelp")[2]

	reply, err := svc.Reply(context.Background(), nil, "kelp", WithPicker(fixedPicker(2)))
	if err != nil {
		t.Fatalf("Reply err: %v", err)
	}
	if reply != want {
		t.Fatalf("expected per-call picker reply %q, got %q", want, reply)
	}

	streamSvc := newTestService(t, fixedPicker(0), true)
	full, err := streamSvc.StreamReply(context.Background(), nil, "kelp", nil, WithPicker(fixedPicker(2)))
	if err != nil {
		t.Fatalf("StreamReply err: %v", err)
	}
	if full != want {
		t.Fatalf("expected streamed per-call picker reply %q, got %q", want, full)
	}
}
