package render

import (
	"strings"
	"testing"

	"github.com/dominators/sagara/backend/internal/model/chat"
)

func TestMarkdownTagsRoles(t *testing.T) {
	md := Markdown([]chat.Turn{
		{Role: chat.RoleAssistant, Content: "Welcome"},
		{Role: chat.RoleUser, Content: "temperature trends"},
	})

	want := "🌊 **Oceanic Copilot:** Welcome\n\n👤 **You:** temperature trends"
	if md != want {
		t.Fatalf("unexpected markdown:\n%s", md)
	}
}

func TestHTMLRendersBoldPrefixes(t *testing.T) {
	html, err := HTML([]chat.Turn{
		{Role: chat.RoleAssistant, Content: "Welcome"},
		{Role: chat.RoleUser, Content: "hi\n\nthere"},
	})
	if err != nil {
		t.Fatalf("HTML err: %v", err)
	}

	if strings.Count(html, "<p>") != 2 {
		t.Fatalf("expected one paragraph per turn, got:\n%s", html)
	}
	if !strings.Contains(html, "<strong>Oceanic Copilot:</strong>") {
		t.Fatalf("expected bold assistant tag, got:\n%s", html)
	}
	if !strings.Contains(html, "<strong>You:</strong>") {
		t.Fatalf("expected bold user tag, got:\n%s", html)
	}
}

func TestHTMLEscapesRawMarkup(t *testing.T) {
	html, err := HTML([]chat.Turn{{Role: chat.RoleUser, Content: "<script>alert(1)</script>"}})
	if err != nil {
		t.Fatalf("HTML err: %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Fatalf("raw html must not pass through:\n%s", html)
	}
}

func TestHTMLKeepsBlockMarkersInsideTurn(t *testing.T) {
	content := strings.Join([]string{
		"reef survey notes",
		"# heading",
		"- bullet",
		"> quote",
		"---",
		"===",
		"1. first",
		"```",
		"<div>raw</div>",
	}, "\n")

	html, err := HTML([]chat.Turn{{Role: chat.RoleUser, Content: content}})
	if err != nil {
		t.Fatalf("HTML err: %v", err)
	}

	if strings.Count(html, "<p>") != 1 {
		t.Fatalf("expected a single paragraph, got:\n%s", html)
	}
	for _, tag := range []string{"<h1>", "<h2>", "<ul>", "<ol>", "<blockquote>", "<hr", "<pre>", "<div>"} {
		if strings.Contains(html, tag) {
			t.Fatalf("block element %s leaked out of the turn:\n%s", tag, html)
		}
	}
	if !strings.Contains(html, "# heading") || !strings.Contains(html, "1. first") {
		t.Fatalf("escaped markers should render literally, got:\n%s", html)
	}
}
