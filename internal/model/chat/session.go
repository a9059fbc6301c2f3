package chat

import "time"

const (
	// InitialQualityScore is the data quality percentage every new session starts with.
	InitialQualityScore = 98.7

	// Greeting seeds the conversation of a new session.
	Greeting = "🌊 Welcome to SĀGARA! I'm your Oceanic Copilot. I can help analyze marine data, generate insights, and create visualizations. How can I assist you today?"
)

// Snapshot is a copy of a session's state handed to the rendering layer.
type Snapshot struct {
	SessionID    string    `json:"sessionId"`
	Conversation []Turn    `json:"conversation"`
	QualityScore float64   `json:"qualityScore"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// LastTurn returns the most recent turn, if any.
func (s Snapshot) LastTurn() (Turn, bool) {
	if len(s.Conversation) == 0 {
		return Turn{}, false
	}
	return s.Conversation[len(s.Conversation)-1], true
}
