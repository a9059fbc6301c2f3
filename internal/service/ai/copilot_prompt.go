package ai

import (
	"fmt"
	"strings"

	"github.com/dominators/sagara/backend/internal/model/action"
)

// PromptTemplate defines the structure of the copilot system prompt.
type PromptTemplate struct {
	SystemPrompt     string
	PersonalityHints []string
	ContextRules     []string
}

// DefaultPromptTemplate describes the Oceanic Copilot persona used in LLM mode.
func DefaultPromptTemplate() *PromptTemplate {
	return &PromptTemplate{
		SystemPrompt: "You are the Oceanic Copilot of SĀGARA (Smart Agentic Gateway for Aquatic Data, Marine Analytics and Research). You help marine researchers explore oceanographic, fisheries and biodiversity data.",
		PersonalityHints: []string{
			"Be concise, factual and encouraging",
			"Prefer concrete figures over vague statements",
			"Mention which dataset or sensor family an insight comes from",
		},
		ContextRules: []string{
			"Keep answers under six sentences unless asked for depth",
			"Never claim to have run an analysis that the dashboard cannot show",
			"Point the user to a quick action when it answers the question better",
		},
	}
}

// BuildSystemPrompt renders the template together with the available quick actions.
func (t *PromptTemplate) BuildSystemPrompt(actions []action.QuickAction) string {
	var labels []string
	for _, a := range actions {
		labels = append(labels, fmt.Sprintf("%s %s", a.Icon, a.Label))
	}

	return fmt.Sprintf(`%s

Personality:
- %s

Conversation rules:
- %s

Quick actions available in the dashboard:
- %s`,
		t.SystemPrompt,
		strings.Join(t.PersonalityHints, "\n- "),
		strings.Join(t.ContextRules, "\n- "),
		strings.Join(labels, "\n- "),
	)
}
