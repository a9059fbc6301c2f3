// Package render turns a session conversation into the markdown and HTML
// shown by the dashboard's chat panel.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/dominators/sagara/backend/internal/model/chat"
)

const (
	assistantPrefix = "🌊 **Oceanic Copilot:**"
	userPrefix      = "👤 **You:**"
)

// Markdown renders every turn as one paragraph tagged with its author.
func Markdown(turns []chat.Turn) string {
	var b strings.Builder
	for i, turn := range turns {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(TurnMarkdown(turn))
	}
	return b.String()
}

// TurnMarkdown renders a single turn.
func TurnMarkdown(turn chat.Turn) string {
	prefix := userPrefix
	if turn.Role == chat.RoleAssistant {
		prefix = assistantPrefix
	}
	return fmt.Sprintf("%s %s", prefix, flattenParagraph(turn.Content))
}

// HTML converts the markdown transcript to HTML.
func HTML(turns []chat.Turn) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(Markdown(turns)), &buf); err != nil {
		return "", fmt.Errorf("render transcript: %w", err)
	}
	return buf.String(), nil
}

// user text is interpolated after the role tag; blank lines and block
// markers at the start of a line could break it out of its paragraph
func flattenParagraph(content string) string {
	lines := strings.Split(strings.TrimSpace(content), "\n")
	kept := lines[:0]
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if i > 0 {
			line = escapeBlockStart(line)
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// escapeBlockStart backslash-escapes a leading marker that would open a
// heading, list, quote, fence, thematic break, setext underline or HTML block.
func escapeBlockStart(line string) string {
	line = strings.TrimLeft(line, " \t")
	if line == "" {
		return line
	}
	if strings.ContainsRune(blockMarkers, rune(line[0])) {
		return "\\" + line
	}

	digits := 0
	for digits < len(line) && line[digits] >= '0' && line[digits] <= '9' {
		digits++
	}
	if digits > 0 && digits < len(line) && (line[digits] == '.' || line[digits] == ')') {
		return line[:digits] + "\\" + line[digits:]
	}
	return line
}

const blockMarkers = "#>-*+=_`~<|"
