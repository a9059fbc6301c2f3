package chat

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/google/uuid"

	"github.com/dominators/sagara/backend/internal/analysis/topic"
	"github.com/dominators/sagara/backend/internal/model/action"
	"github.com/dominators/sagara/backend/internal/model/chat"
	"github.com/dominators/sagara/backend/internal/service/ai"
)

const (
	minQualityScore = 95.0
	maxQualityScore = 99.0
)

var (
	// ErrInvalidInput is returned when a submitted message is empty or only whitespace.
	ErrInvalidInput = errors.New("message text must not be empty")
	// ErrSessionEnded is returned by operations on a session that was ended or expired.
	ErrSessionEnded = fmt.Errorf("%w: session ended", ErrSessionNotFound)
)

// Responder produces the assistant reply to a user message. Options are
// forwarded to the underlying chat model.
type Responder interface {
	Reply(ctx context.Context, history []chat.Turn, query string, opts ...model.Option) (string, error)
	StreamReply(ctx context.Context, history []chat.Turn, query string, onDelta func(string), opts ...model.Option) (string, error)
}

// Rand is the random source of a session: IntN picks reply templates,
// Float64 drives quality refreshes. *math/rand/v2.Rand satisfies it.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

// SessionController owns one session's conversation and quality score.
// Every operation runs to completion under the controller's lock.
type SessionController struct {
	mu        sync.Mutex
	id        string
	turns     []chat.Turn
	quality   float64
	createdAt time.Time
	updatedAt time.Time
	// unix nanos, readable without the lock so sweeps never wait on a busy session
	lastUsed atomic.Int64
	ended    bool

	responder Responder
	actions   action.Store
	rng       Rand
	now       func() time.Time
}

// NewSessionController starts a session seeded with the copilot greeting.
func NewSessionController(id string, responder Responder, actions action.Store, rng Rand) *SessionController {
	return newSessionController(id, responder, actions, rng, func() time.Time { return time.Now().UTC() })
}

func newSessionController(id string, responder Responder, actions action.Store, rng Rand, now func() time.Time) *SessionController {
	created := now()
	c := &SessionController{
		id:        id,
		turns:     make([]chat.Turn, 0, 16),
		quality:   chat.InitialQualityScore,
		createdAt: created,
		updatedAt: created,
		responder: responder,
		actions:   actions,
		rng:       rng,
		now:       now,
	}
	c.lastUsed.Store(created.UnixNano())
	c.turns = append(c.turns, c.newTurn(chat.RoleAssistant, chat.Greeting, created))
	return c
}

// ID returns the session identifier.
func (c *SessionController) ID() string {
	return c.id
}

// Touch records activity without changing state, e.g. a live connection answering pings.
func (c *SessionController) Touch() {
	c.lastUsed.Store(c.now().UnixNano())
}

// Ended reports whether the session was ended or expired.
func (c *SessionController) Ended() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ended
}

// end marks the session as gone; later mutations fail with ErrSessionEnded.
func (c *SessionController) end() {
	c.mu.Lock()
	c.ended = true
	c.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (c *SessionController) Snapshot() chat.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastUsed.Store(c.now().UnixNano())
	return c.snapshotLocked()
}

// SubmitMessage appends the user's text and the copilot's reply.
func (c *SessionController) SubmitMessage(ctx context.Context, text string) (chat.Snapshot, error) {
	return c.submit(ctx, text, nil)
}

// SubmitMessageStream is SubmitMessage forwarding reply chunks to onDelta
// before the turns are appended.
func (c *SessionController) SubmitMessageStream(ctx context.Context, text string, onDelta func(string)) (chat.Snapshot, error) {
	if onDelta == nil {
		onDelta = func(string) {}
	}
	return c.submit(ctx, text, onDelta)
}

func (c *SessionController) submit(ctx context.Context, text string, onDelta func(string)) (chat.Snapshot, error) {
	if strings.TrimSpace(text) == "" {
		return chat.Snapshot{}, ErrInvalidInput
	}

	c.lastUsed.Store(c.now().UnixNano())

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ended {
		return chat.Snapshot{}, ErrSessionEnded
	}

	history := append([]chat.Turn(nil), c.turns...)
	// replies draw from this session's source, never a shared one
	pick := ai.WithPicker(c.rng)

	var (
		reply string
		err   error
	)
	if onDelta != nil {
		reply, err = c.responder.StreamReply(ctx, history, text, onDelta, pick)
	} else {
		reply, err = c.responder.Reply(ctx, history, text, pick)
	}
	if err != nil {
		return chat.Snapshot{}, fmt.Errorf("generate reply: %w", err)
	}

	now := c.now()
	assistant := c.newTurn(chat.RoleAssistant, reply, now)
	if decision := topic.Analyze(text); decision.Matched() {
		assistant.Suggestion = string(decision.Action)
	}
	c.turns = append(c.turns, c.newTurn(chat.RoleUser, text, now), assistant)
	c.touch(now)

	return c.snapshotLocked(), nil
}

// TriggerQuickAction appends the canned assistant message for kind.
func (c *SessionController) TriggerQuickAction(_ context.Context, kind action.Kind) (chat.Snapshot, error) {
	item, ok := c.actions.FindByKind(kind)
	if !ok {
		return chat.Snapshot{}, fmt.Errorf("%w: %q", action.ErrUnknownAction, kind)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ended {
		return chat.Snapshot{}, ErrSessionEnded
	}

	now := c.now()
	c.turns = append(c.turns, c.newTurn(chat.RoleAssistant, item.Message, now))
	c.touch(now)

	return c.snapshotLocked(), nil
}

// RefreshQualityScore draws a new quality score from [95.0, 99.0] rounded to one decimal.
// An ended session keeps its last score.
func (c *SessionController) RefreshQualityScore(_ context.Context) chat.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ended {
		return c.snapshotLocked()
	}

	raw := minQualityScore + c.rng.Float64()*(maxQualityScore-minQualityScore)
	c.quality = clampQuality(math.Round(raw*10) / 10)
	c.touch(c.now())

	return c.snapshotLocked()
}

// IdleSince reports when the session was last used.
func (c *SessionController) IdleSince() time.Time {
	return time.Unix(0, c.lastUsed.Load()).UTC()
}

func (c *SessionController) touch(now time.Time) {
	c.updatedAt = now
	c.lastUsed.Store(now.UnixNano())
}

func (c *SessionController) newTurn(role chat.Role, content string, at time.Time) chat.Turn {
	return chat.Turn{
		ID:        uuid.NewString(),
		SessionID: c.id,
		Role:      role,
		Content:   content,
		CreatedAt: at,
	}
}

func (c *SessionController) snapshotLocked() chat.Snapshot {
	turns := make([]chat.Turn, len(c.turns))
	copy(turns, c.turns)
	return chat.Snapshot{
		SessionID:    c.id,
		Conversation: turns,
		QualityScore: c.quality,
		CreatedAt:    c.createdAt,
		UpdatedAt:    c.updatedAt,
	}
}

func clampQuality(v float64) float64 {
	return math.Min(maxQualityScore, math.Max(minQualityScore, v))
}
