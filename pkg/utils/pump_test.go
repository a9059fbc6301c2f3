package utils

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestDeltaPumpPreservesOrder(t *testing.T) {
	var (
		mu  sync.Mutex
		got []string
	)
	p := NewDeltaPump(func(chunk string) {
		mu.Lock()
		got = append(got, chunk)
		mu.Unlock()
	})

	want := []string{"Analyzing ", "marine ", "patterns ", "related ", "to ", "kelp"}
	for _, chunk := range want {
		p.Push(chunk)
	}
	p.Close()

	if strings.Join(got, "") != strings.Join(want, "") || len(got) != len(want) {
		t.Fatalf("unexpected chunks %q", got)
	}
}

func TestDeltaPumpPushDoesNotWaitForWriter(t *testing.T) {
	release := make(chan struct{})
	p := NewDeltaPump(func(string) { <-release })

	pushed := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			p.Push("chunk ")
		}
		close(pushed)
	}()

	select {
	case <-pushed:
	case <-time.After(2 * time.Second):
		t.Fatal("Push blocked on a stalled writer")
	}

	close(release)
	p.Close()
}

func TestDeltaPumpDropsAfterClose(t *testing.T) {
	count := 0
	p := NewDeltaPump(func(string) { count++ })
	p.Push("a")
	p.Close()
	p.Push("b")

	if count != 1 {
		t.Fatalf("expected 1 chunk written, got %d", count)
	}
}
