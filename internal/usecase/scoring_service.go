package usecase

import (
	"regexp"
	"strings"

	"github.com/quizpilot/agent/internal/domain"
)

// Scoring weights. Context patterns dominate whenever they appear; direct
// substring hits beat scattered single-word hits.
const (
	weightSubstring = 2.0
	weightWord      = 0.5
	weightContext   = 5.0

	// minScoredWordLen skips words too short to be a signal.
	minScoredWordLen = 3
)

// contextPatterns are the answer-assertion surface forms searched for around
// an option text. %s receives the regexp-escaped option.
var contextPatterns = []string{
	`answer\s+is\s+%s`,
	`correct\s+answer[^.]{0,60}%s`,
	`%s[^.]{0,60}is\s+correct`,
	`solution[^.]{0,60}%s`,
}

// ScoringService converts evidence snippets and option texts into normalized
// per-option confidence scores.
type ScoringService struct{}

// NewScoringService creates the scorer.
func NewScoringService() *ScoringService {
	return &ScoringService{}
}

// Score computes the per-option confidence map over the case-insensitive
// concatenation of snippet titles and texts. Degenerate inputs (no snippets
// or no options) yield an all-zero map over the given options; every option
// always appears as a key.
func (s *ScoringService) Score(snippets []domain.Snippet, options []string) domain.ScoreMap {
	scores := make(domain.ScoreMap, len(options))
	for _, opt := range options {
		scores[opt] = 0
	}
	if len(snippets) == 0 || len(options) == 0 {
		return scores
	}

	var sb strings.Builder
	for _, snippet := range snippets {
		sb.WriteString(snippet.Title)
		sb.WriteByte(' ')
		sb.WriteString(snippet.Text)
		sb.WriteByte(' ')
	}
	corpus := strings.ToLower(sb.String())

	for _, opt := range options {
		scores[opt] = rawOptionScore(corpus, opt)
	}
	return normalize(scores)
}

// rawOptionScore sums the weighted occurrence counts for one option.
func rawOptionScore(corpus, option string) float64 {
	lower := strings.ToLower(strings.TrimSpace(option))
	if lower == "" {
		return 0
	}

	score := float64(strings.Count(corpus, lower)) * weightSubstring

	for _, word := range strings.Fields(lower) {
		if len(word) < minScoredWordLen {
			continue
		}
		score += float64(strings.Count(corpus, word)) * weightWord
	}

	escaped := regexp.QuoteMeta(lower)
	for _, pattern := range contextPatterns {
		re, err := regexp.Compile(strings.ReplaceAll(pattern, "%s", escaped))
		if err != nil {
			continue
		}
		score += float64(len(re.FindAllStringIndex(corpus, -1))) * weightContext
	}
	return score
}

// normalize divides every score by the maximum so the best option scores
// exactly 1.0. An all-zero map is returned unchanged.
func normalize(scores domain.ScoreMap) domain.ScoreMap {
	var max float64
	for _, v := range scores {
		if v > max {
			max = v
		}
	}
	if max == 0 {
		return scores
	}
	for k, v := range scores {
		scores[k] = v / max
	}
	return scores
}

// Best picks the recommended answer: the first option in display order that
// reaches the maximum normalized score. The in-order tie-break is the
// documented, deterministic rule for exact ties.
func (s *ScoringService) Best(scores domain.ScoreMap, options []string) (string, float64) {
	if len(options) == 0 {
		return "", 0
	}
	best := options[0]
	bestScore := scores[options[0]]
	for _, opt := range options[1:] {
		if scores[opt] > bestScore {
			best = opt
			bestScore = scores[opt]
		}
	}
	return best, bestScore
}
