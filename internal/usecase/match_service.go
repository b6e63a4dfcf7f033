package usecase

import (
	"strings"

	"github.com/quizpilot/agent/internal/domain"
)

// MatchOptionIndex maps a chosen answer back to an option index for action
// targeting. Rules, in order: (a) first option containing the answer as a
// case-insensitive substring; (b) the option with the largest word-set
// intersection with the answer, first-encountered winning exact ties.
// Returns ErrMatchUnresolved when no option shares a single word.
func MatchOptionIndex(answer string, options []string) (int, error) {
	answer = strings.ToLower(strings.TrimSpace(answer))
	if answer == "" || len(options) == 0 {
		return 0, domain.ErrMatchUnresolved
	}

	for i, opt := range options {
		if strings.Contains(strings.ToLower(opt), answer) {
			return i, nil
		}
	}

	answerWords := wordSet(answer)
	bestIdx := -1
	bestOverlap := 0
	for i, opt := range options {
		overlap := intersectionSize(answerWords, wordSet(strings.ToLower(opt)))
		if overlap > bestOverlap {
			bestOverlap = overlap
			bestIdx = i
		}
	}

	if bestIdx < 0 {
		return 0, domain.ErrMatchUnresolved
	}
	return bestIdx, nil
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(s) {
		set[w] = true
	}
	return set
}

func intersectionSize(a, b map[string]bool) int {
	n := 0
	for w := range a {
		if b[w] {
			n++
		}
	}
	return n
}
