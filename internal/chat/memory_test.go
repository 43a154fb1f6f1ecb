package chat

import (
	"fmt"
	"testing"

	"github.com/clearpathhq/beacon/internal/llm"
)

func TestMemoryKeepsRecentPairs(t *testing.T) {
	m := NewMemory(3)
	for i := 1; i <= 5; i++ {
		m.Update("s1", fmt.Sprintf("question %d", i), fmt.Sprintf("answer %d", i))
	}

	h := m.History("s1")
	if len(h) != 6 {
		t.Fatalf("history length = %d, want 6 (3 pairs)", len(h))
	}
	if h[0].Content != "question 3" || h[0].Role != llm.RoleUser {
		t.Errorf("oldest retained message = %+v, want question 3", h[0])
	}
	if h[5].Content != "answer 5" || h[5].Role != llm.RoleAssistant {
		t.Errorf("newest message = %+v, want answer 5", h[5])
	}
}

func TestMemorySessionsAreIsolated(t *testing.T) {
	m := NewMemory(3)
	m.Update("a", "question a", "answer a")
	m.Update("b", "question b", "answer b")

	if h := m.History("a"); len(h) != 2 || h[0].Content != "question a" {
		t.Errorf("session a history = %v", h)
	}
	if h := m.History("unknown"); len(h) != 0 {
		t.Errorf("unknown session history = %v, want empty", h)
	}
}

func TestMemoryHistoryReturnsCopy(t *testing.T) {
	m := NewMemory(3)
	m.Update("s", "question", "answer")

	h := m.History("s")
	h[0].Content = "mutated"
	if got := m.History("s")[0].Content; got != "question" {
		t.Errorf("stored history mutated through returned slice: %q", got)
	}
}
