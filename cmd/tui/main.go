package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dominators/sagara/backend/internal/model/action"
	"github.com/dominators/sagara/backend/internal/service/ai"
	"github.com/dominators/sagara/backend/internal/service/chat"
)

func main() {
	seed := flag.Uint64("seed", 0, "seed for reproducible copilot replies (0 = random)")
	altScreen := flag.Bool("alt-screen", true, "render in the terminal's alternate screen")
	flag.Parse()

	ctx := context.Background()

	randFactory := chat.DefaultRand()
	if *seed != 0 {
		randFactory = chat.SeededRand(*seed)
	}

	actions := action.NewMemoryStore(action.Seed())
	copilot, err := ai.NewService(ctx, ai.NewTemplateModel(randFactory()), actions.List(), false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize copilot: %v\n", err)
		os.Exit(1)
	}

	session := chat.NewService(copilot, actions, randFactory).CreateSession(ctx)

	opts := []tea.ProgramOption{}
	if *altScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	if _, err := tea.NewProgram(newModel(ctx, session, actions.List()), opts...).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "tui error: %v\n", err)
		os.Exit(1)
	}
}
