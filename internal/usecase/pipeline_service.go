package usecase

import (
	"context"
	"image"
	"log"
	"strings"
	"time"

	"github.com/quizpilot/agent/internal/domain"
)

// Extractor is the recognition stage as the pipeline sees it.
type Extractor interface {
	ExtractQuestion(ctx context.Context, img image.Image) string
	ExtractOptions(ctx context.Context, img image.Image) []string
}

// Gatherer is the evidence stage as the pipeline sees it.
type Gatherer interface {
	Gather(ctx context.Context, question string, options []string) []domain.Snippet
}

// Scorer is the scoring stage as the pipeline sees it.
type Scorer interface {
	Score(snippets []domain.Snippet, options []string) domain.ScoreMap
	Best(scores domain.ScoreMap, options []string) (string, float64)
}

// PipelineConfig carries the orchestrator knobs.
type PipelineConfig struct {
	// AutoClick enables the action stage. Off by default: the pipeline then
	// only reports its recommendation.
	AutoClick bool
	// MinConfidence is the inclusive auto-click threshold on the normalized
	// top score. Zero means every recommendation clears the gate.
	MinConfidence float64
	// ScanInterval is the pause between cycles in continuous mode.
	ScanInterval time.Duration
}

// PipelineState is the cross-cycle state. It is owned exclusively by the
// pipeline and mutated only between cycle boundaries on a single goroutine.
type PipelineState struct {
	LastQuestion  string
	QuestionCount int
}

// PipelineService drives one full resolution cycle:
// capture -> recognize -> gather evidence -> score -> localize -> decide ->
// act, and runs the continuous polling loop. Stage faults never escape a
// cycle; they end it as SKIPPED with a reason.
type PipelineService struct {
	regions   domain.RegionProvider
	extractor Extractor
	gatherer  Gatherer
	scorer    Scorer
	locators  []domain.ButtonLocator
	pointer   domain.PointerDispatcher
	config    PipelineConfig
	state     PipelineState
}

// NewPipelineService wires the pipeline from its stage collaborators.
func NewPipelineService(
	regions domain.RegionProvider,
	extractor Extractor,
	gatherer Gatherer,
	scorer Scorer,
	locators []domain.ButtonLocator,
	pointer domain.PointerDispatcher,
	config PipelineConfig,
) *PipelineService {
	if config.ScanInterval <= 0 {
		config.ScanInterval = 2 * time.Second
	}
	return &PipelineService{
		regions:   regions,
		extractor: extractor,
		gatherer:  gatherer,
		scorer:    scorer,
		locators:  locators,
		pointer:   pointer,
		config:    config,
	}
}

// State returns a copy of the cross-cycle state.
func (p *PipelineService) State() PipelineState { return p.state }

// RunCycle executes one full cycle and returns its report. It never panics
// or returns an error: every stage failure is folded into the report.
func (p *PipelineService) RunCycle(ctx context.Context) domain.CycleReport {
	report := domain.CycleReport{State: domain.StateIdle}

	questionImg, err := p.regions.QuestionRegion()
	if err != nil {
		return skip(report, "question region: "+err.Error())
	}
	optionsImg, err := p.regions.OptionsRegion()
	if err != nil {
		return skip(report, "options region: "+err.Error())
	}
	report.State = domain.StateCaptured

	question := p.extractor.ExtractQuestion(ctx, questionImg)
	if question == "" {
		return skip(report, domain.ErrRecognitionEmpty.Error()+" (question)")
	}
	options := p.extractor.ExtractOptions(ctx, optionsImg)
	if len(options) == 0 {
		report.Question = question
		return skip(report, domain.ErrRecognitionEmpty.Error()+" (options)")
	}
	report.State = domain.StateRecognized
	report.Question = question
	report.Options = options

	// Cross-cycle dedup: the same question is a no-op success; nothing
	// downstream runs again. Identity folds case and whitespace only, so
	// questions differing in an interrogative word stay distinct.
	identity := questionIdentity(question)
	if identity == p.state.LastQuestion {
		report.Duplicate = true
		return report
	}
	p.state.LastQuestion = identity
	p.state.QuestionCount++
	log.Printf("[PIPELINE] question #%d: %s", p.state.QuestionCount, question)

	snippets := p.gatherer.Gather(ctx, question, options)
	report.State = domain.StateEvidenceGathered

	report.Scores = p.scorer.Score(snippets, options)
	report.BestAnswer, report.Confidence = p.scorer.Best(report.Scores, options)
	report.State = domain.StateScored
	log.Printf("[PIPELINE] recommendation: %q (confidence %.2f)", report.BestAnswer, report.Confidence)

	positions, strategy := locateButtons(p.locators, optionsImg, len(options))
	report.State = domain.StateDecided

	switch {
	case !p.config.AutoClick:
		return skip(report, "auto-click disabled")
	case report.Confidence < p.config.MinConfidence:
		return skip(report, "confidence below threshold")
	case len(positions) == 0:
		return skip(report, domain.ErrLocalizationEmpty.Error())
	}

	idx, err := MatchOptionIndex(report.BestAnswer, options)
	if err != nil {
		return skip(report, domain.ErrMatchUnresolved.Error())
	}

	// Quadrant positions follow display order, so the option index addresses
	// its button directly. Color-mask positions are unordered; when the
	// counts disagree the first position is the best effort left.
	target := positions[0]
	if idx < len(positions) {
		target = positions[idx]
	}
	offset := p.regions.OptionsOffset()
	x, y := offset.X+target.X, offset.Y+target.Y

	if err := p.pointer.Click(ctx, x, y); err != nil {
		log.Printf("[PIPELINE] click via %s failed: %v", strategy, err)
		return skip(report, "click failed: "+err.Error())
	}
	report.State = domain.StateActed
	report.Clicked = true
	report.ClickedAt = &domain.ButtonPosition{X: x, Y: y}
	return report
}

// Run repeats cycles at the configured scan interval until the context is
// canceled. Cancellation is observed only between cycles: a cycle already
// started runs to completion and any pending action is abandoned on stop.
func (p *PipelineService) Run(ctx context.Context) {
	log.Printf("[PIPELINE] continuous mode: auto-click=%v min-confidence=%.2f interval=%s",
		p.config.AutoClick, p.config.MinConfidence, p.config.ScanInterval)

	ticker := time.NewTicker(p.config.ScanInterval)
	defer ticker.Stop()

	for {
		report := p.RunCycle(ctx)
		logReport(report)

		select {
		case <-ctx.Done():
			log.Printf("[PIPELINE] stopped after %d questions", p.state.QuestionCount)
			return
		case <-ticker.C:
		}
	}
}

// questionIdentity is the cross-cycle dedup key: lowercased, whitespace
// collapsed, nothing else. Deliberately lighter than the query normalization
// in NormalizeQuestion, which strips words that can distinguish questions.
func questionIdentity(question string) string {
	return strings.Join(strings.Fields(strings.ToLower(question)), " ")
}

func locateButtons(locators []domain.ButtonLocator, img image.Image, optionCount int) ([]domain.ButtonPosition, string) {
	for _, l := range locators {
		if positions := l.Locate(img, optionCount); len(positions) > 0 {
			return positions, l.Name()
		}
	}
	return nil, ""
}

func skip(report domain.CycleReport, reason string) domain.CycleReport {
	report.State = domain.StateSkipped
	report.SkipReason = reason
	return report
}

func logReport(report domain.CycleReport) {
	switch {
	case report.Duplicate:
		log.Printf("[PIPELINE] cycle: same question, nothing to do")
	case report.Clicked:
		log.Printf("[PIPELINE] cycle: clicked %q at (%d, %d)", report.BestAnswer, report.ClickedAt.X, report.ClickedAt.Y)
	case report.Success():
		log.Printf("[PIPELINE] cycle: recommended %q (%.2f), skipped: %s", report.BestAnswer, report.Confidence, report.SkipReason)
	default:
		log.Printf("[PIPELINE] cycle failed: %s", report.SkipReason)
	}
}
