package usecase

import (
	"context"
	"image"
	"log"
	"regexp"
	"strings"

	"github.com/quizpilot/agent/internal/domain"
)

// Package-level compiled regex patterns for performance
var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
	artifactRegex   = regexp.MustCompile(`[|@#$%^&*]`)
	letterEnumRegex = regexp.MustCompile(`^[A-Da-d][\).]\s*`)
	numberEnumRegex = regexp.MustCompile(`^[1-4][\).]\s*`)
)

const (
	// Platform constraint: a question never has more than four options.
	maxAnswerOptions = 4

	// minFragmentLen drops OCR artifacts masquerading as options.
	minFragmentLen = 3

	// Fallback chunking bounds when line splitting fails.
	fallbackChunkWords = 3
	fallbackMaxTokens  = 12
)

// ExtractService turns recognized pixel regions into cleaned question and
// option texts. It is backend-agnostic: any domain.Recognizer works.
type ExtractService struct {
	recognizer domain.Recognizer
}

// NewExtractService creates the extraction service over the given backend.
func NewExtractService(recognizer domain.Recognizer) *ExtractService {
	return &ExtractService{recognizer: recognizer}
}

// ExtractQuestion recognizes the question region and cleans the result:
// whitespace collapsed, symbol artifacts stripped, terminal punctuation
// ensured. Returns "" on nil input or recognizer failure; recognizer faults
// never propagate past this boundary.
func (s *ExtractService) ExtractQuestion(ctx context.Context, img image.Image) string {
	if img == nil {
		return ""
	}
	raw, err := s.recognizer.Recognize(ctx, img)
	if err != nil {
		log.Printf("[EXTRACT] question recognition failed (%s): %v", s.recognizer.Name(), err)
		return ""
	}
	return cleanQuestionText(raw)
}

// ExtractOptions recognizes the options region and parses the answer texts.
// Returns nil on nil input or recognizer failure.
func (s *ExtractService) ExtractOptions(ctx context.Context, img image.Image) []string {
	if img == nil {
		return nil
	}
	raw, err := s.recognizer.Recognize(ctx, img)
	if err != nil {
		log.Printf("[EXTRACT] options recognition failed (%s): %v", s.recognizer.Name(), err)
		return nil
	}
	return parseAnswerOptions(raw)
}

// cleanQuestionText normalizes raw OCR output into a displayable question.
func cleanQuestionText(raw string) string {
	cleaned := artifactRegex.ReplaceAllString(raw, "")
	cleaned = whitespaceRegex.ReplaceAllString(strings.TrimSpace(cleaned), " ")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return ""
	}
	if !strings.HasSuffix(cleaned, "?") && !strings.HasSuffix(cleaned, ".") && !strings.HasSuffix(cleaned, "!") {
		cleaned += "?"
	}
	return cleaned
}

// parseAnswerOptions splits OCR output into at most four option texts.
// Primary path: one option per line, enumerators stripped, short fragments
// dropped. When fewer than two usable lines remain, falls back to chunking
// the whitespace-tokenized text into groups of three words.
func parseAnswerOptions(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var options []string
	for _, line := range strings.Split(raw, "\n") {
		cleaned := strings.TrimSpace(line)
		if len(cleaned) < minFragmentLen {
			continue
		}
		cleaned = letterEnumRegex.ReplaceAllString(cleaned, "")
		cleaned = numberEnumRegex.ReplaceAllString(cleaned, "")
		if cleaned != "" {
			options = append(options, cleaned)
		}
	}

	if len(options) < 2 {
		// The fallback replaces the primary result only when it produced
		// something; a single parsed option beats nothing.
		if fallback := chunkFallback(raw); len(fallback) > 0 {
			options = fallback
		}
	}

	if len(options) > maxAnswerOptions {
		options = options[:maxAnswerOptions]
	}
	return options
}

// chunkFallback is the degraded heuristic: group the first twelve tokens
// into three-word chunks.
func chunkFallback(raw string) []string {
	words := strings.Fields(raw)
	if len(words) < 4 {
		return nil
	}
	if len(words) > fallbackMaxTokens {
		words = words[:fallbackMaxTokens]
	}
	var options []string
	for i := 0; i < len(words); i += fallbackChunkWords {
		end := i + fallbackChunkWords
		if end > len(words) {
			end = len(words)
		}
		options = append(options, strings.Join(words[i:end], " "))
	}
	return options
}
