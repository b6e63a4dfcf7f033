package usecase

import (
	"errors"
	"testing"

	"github.com/quizpilot/agent/internal/domain"
)

func TestMatchOptionIndex(t *testing.T) {
	options := []string{"The Nile River", "Amazon River", "Mississippi", "Yangtze"}

	t.Run("substring match wins", func(t *testing.T) {
		idx, err := MatchOptionIndex("amazon", options)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if idx != 1 {
			t.Errorf("idx = %d, want 1", idx)
		}
	})

	t.Run("substring match is case-insensitive", func(t *testing.T) {
		idx, err := MatchOptionIndex("MISSISSIPPI", options)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if idx != 2 {
			t.Errorf("idx = %d, want 2", idx)
		}
	})

	t.Run("word overlap fallback", func(t *testing.T) {
		idx, err := MatchOptionIndex("the mighty amazon river basin", options)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// "amazon river" overlaps two words; "the nile river" overlaps two as
		// well ("the", "river") - first encountered wins the tie
		if idx != 0 {
			t.Errorf("idx = %d, want 0 (first tie winner)", idx)
		}
	})

	t.Run("no overlap is refused", func(t *testing.T) {
		_, err := MatchOptionIndex("volga", options)
		if !errors.Is(err, domain.ErrMatchUnresolved) {
			t.Errorf("error = %v, want ErrMatchUnresolved", err)
		}
	})

	t.Run("empty answer is refused", func(t *testing.T) {
		_, err := MatchOptionIndex("  ", options)
		if !errors.Is(err, domain.ErrMatchUnresolved) {
			t.Errorf("error = %v, want ErrMatchUnresolved", err)
		}
	})

	t.Run("no options is refused", func(t *testing.T) {
		_, err := MatchOptionIndex("anything", nil)
		if !errors.Is(err, domain.ErrMatchUnresolved) {
			t.Errorf("error = %v, want ErrMatchUnresolved", err)
		}
	})
}
