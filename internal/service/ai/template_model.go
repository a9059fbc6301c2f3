package ai

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

var replyTemplates = []string{
	"Based on the current oceanographic data, I can see that %s relates to our marine ecosystem patterns. Let me analyze the latest sensor data...",
	"Great question about %s! Our AI models show interesting correlations in the recent data. I'll generate a detailed analysis for you.",
	"I'm processing your query about %s through our marine analytics pipeline. Here are the key insights from our database...",
	"Analyzing marine patterns related to %s... Our ecosystem models indicate several important trends you should know about.",
}

// Picker chooses an index in [0, n). *math/rand/v2.Rand satisfies it.
type Picker interface {
	IntN(n int) int
}

type templateOptions struct {
	picker Picker
}

// WithPicker makes a TemplateModel call choose its reply with picker instead
// of the model's own source. Other chat models ignore it.
func WithPicker(picker Picker) model.Option {
	return model.WrapImplSpecificOptFn(func(o *templateOptions) {
		if picker != nil {
			o.picker = picker
		}
	})
}

// CandidateReplies lists every reply the template model may give for query.
func CandidateReplies(query string) []string {
	lowered := strings.ToLower(query)
	out := make([]string, len(replyTemplates))
	for i, tpl := range replyTemplates {
		out[i] = fmt.Sprintf(tpl, lowered)
	}
	return out
}

// TemplateModel is a chat model that answers with one of a fixed set of
// templates chosen uniformly at random, interpolating the lowercased query.
type TemplateModel struct {
	mu     sync.Mutex
	picker Picker
}

var _ model.ChatModel = (*TemplateModel)(nil)

// NewTemplateModel wraps picker, the fallback source when a call carries no
// WithPicker option. The fallback is only used under the model's lock.
func NewTemplateModel(picker Picker) *TemplateModel {
	return &TemplateModel{picker: picker}
}

// Generate replies to the latest user message in input.
func (m *TemplateModel) Generate(_ context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	query, ok := lastUserContent(input)
	if !ok {
		return nil, fmt.Errorf("template model: no user message in input")
	}

	var idx int
	if o := model.GetImplSpecificOptions(&templateOptions{}, opts...); o.picker != nil {
		idx = o.picker.IntN(len(replyTemplates))
	} else {
		m.mu.Lock()
		idx = m.picker.IntN(len(replyTemplates))
		m.mu.Unlock()
	}

	return schema.AssistantMessage(fmt.Sprintf(replyTemplates[idx], strings.ToLower(query)), nil), nil
}

// Stream emits the Generate reply word by word.
func (m *TemplateModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	reply, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}

	words := strings.SplitAfter(reply.Content, " ")
	chunks := make([]*schema.Message, 0, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		chunks = append(chunks, schema.AssistantMessage(w, nil))
	}
	return schema.StreamReaderFromArray(chunks), nil
}

// BindTools is a no-op; templates never call tools.
func (m *TemplateModel) BindTools(_ []*schema.ToolInfo) error {
	return nil
}

func lastUserContent(input []*schema.Message) (string, bool) {
	for i := len(input) - 1; i >= 0; i-- {
		if input[i] != nil && input[i].Role == schema.User {
			return input[i].Content, true
		}
	}
	return "", false
}
