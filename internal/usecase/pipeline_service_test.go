package usecase

import (
	"context"
	"errors"
	"image"
	"strings"
	"testing"
	"time"

	"github.com/quizpilot/agent/internal/domain"
)

type fakeRegions struct {
	question image.Image
	options  image.Image
	err      error
	offset   domain.ButtonPosition
}

func (f *fakeRegions) QuestionRegion() (image.Image, error) { return f.question, f.err }
func (f *fakeRegions) OptionsRegion() (image.Image, error)  { return f.options, f.err }
func (f *fakeRegions) OptionsOffset() domain.ButtonPosition { return f.offset }

type fakeExtractor struct {
	question string
	options  []string
}

func (f *fakeExtractor) ExtractQuestion(ctx context.Context, img image.Image) string {
	return f.question
}
func (f *fakeExtractor) ExtractOptions(ctx context.Context, img image.Image) []string {
	return f.options
}

type countingGatherer struct {
	calls    int
	snippets []domain.Snippet
}

func (g *countingGatherer) Gather(ctx context.Context, question string, options []string) []domain.Snippet {
	g.calls++
	return g.snippets
}

type countingScorer struct {
	calls  int
	scores domain.ScoreMap

	// forcedBest, when non-empty, overrides the computed best answer.
	forcedBest       string
	forcedConfidence float64
}

func (s *countingScorer) Score(snippets []domain.Snippet, options []string) domain.ScoreMap {
	s.calls++
	return s.scores
}

func (s *countingScorer) Best(scores domain.ScoreMap, options []string) (string, float64) {
	if s.forcedBest != "" {
		return s.forcedBest, s.forcedConfidence
	}
	best, confidence := "", -1.0
	for _, opt := range options {
		if scores[opt] > confidence {
			best, confidence = opt, scores[opt]
		}
	}
	if confidence < 0 {
		confidence = 0
	}
	return best, confidence
}

type fixedLocator struct {
	positions []domain.ButtonPosition
}

func (f fixedLocator) Name() string { return "fixed" }
func (f fixedLocator) Locate(img image.Image, optionCount int) []domain.ButtonPosition {
	return f.positions
}

type recordingDispatcher struct {
	clicks []domain.ButtonPosition
	err    error
}

func (d *recordingDispatcher) Click(ctx context.Context, x, y int) error {
	if d.err != nil {
		return d.err
	}
	d.clicks = append(d.clicks, domain.ButtonPosition{X: x, Y: y})
	return nil
}

type pipelineFixture struct {
	regions    *fakeRegions
	extractor  *fakeExtractor
	gatherer   *countingGatherer
	scorer     *countingScorer
	dispatcher *recordingDispatcher
	service    *PipelineService
}

func newFixture(config PipelineConfig, scores domain.ScoreMap, positions []domain.ButtonPosition) *pipelineFixture {
	f := &pipelineFixture{
		regions: &fakeRegions{
			question: image.NewRGBA(image.Rect(0, 0, 10, 10)),
			options:  image.NewRGBA(image.Rect(0, 0, 10, 10)),
		},
		extractor: &fakeExtractor{
			question: "What is the capital of France?",
			options:  []string{"London", "Berlin", "Paris", "Madrid"},
		},
		gatherer:   &countingGatherer{},
		scorer:     &countingScorer{scores: scores},
		dispatcher: &recordingDispatcher{},
	}
	f.service = NewPipelineService(
		f.regions, f.extractor, f.gatherer, f.scorer,
		[]domain.ButtonLocator{fixedLocator{positions: positions}},
		f.dispatcher, config,
	)
	return f
}

func parisScores(confidence float64) domain.ScoreMap {
	return domain.ScoreMap{"London": 0.1, "Berlin": 0.1, "Paris": confidence, "Madrid": 0}
}

func quadPositions() []domain.ButtonPosition {
	return []domain.ButtonPosition{{X: 50, Y: 50}, {X: 150, Y: 50}, {X: 50, Y: 150}, {X: 150, Y: 150}}
}

func TestRunCycle_SuccessWithoutAutoClick(t *testing.T) {
	f := newFixture(PipelineConfig{}, parisScores(1.0), quadPositions())
	report := f.service.RunCycle(context.Background())

	if !report.Success() {
		t.Fatalf("expected success, got %+v", report)
	}
	if report.State != domain.StateSkipped || report.SkipReason != "auto-click disabled" {
		t.Errorf("state = %s, reason = %q", report.State, report.SkipReason)
	}
	if report.BestAnswer != "Paris" || report.Confidence != 1.0 {
		t.Errorf("recommendation = (%q, %v)", report.BestAnswer, report.Confidence)
	}
	if len(f.dispatcher.clicks) != 0 {
		t.Errorf("clicks = %v, want none", f.dispatcher.clicks)
	}
}

func TestRunCycle_DedupSkipsDownstreamStages(t *testing.T) {
	f := newFixture(PipelineConfig{}, parisScores(1.0), quadPositions())
	ctx := context.Background()

	first := f.service.RunCycle(ctx)
	if first.Duplicate {
		t.Fatal("first cycle must not be a duplicate")
	}

	second := f.service.RunCycle(ctx)
	if !second.Duplicate || !second.Success() {
		t.Errorf("second cycle = %+v, want duplicate no-op success", second)
	}
	if second.State != domain.StateRecognized {
		t.Errorf("state = %s, want RECOGNIZED (returned right after dedup)", second.State)
	}
	if f.gatherer.calls != 1 {
		t.Errorf("gatherer calls = %d, want 1 (not re-invoked)", f.gatherer.calls)
	}
	if f.scorer.calls != 1 {
		t.Errorf("scorer calls = %d, want 1 (not re-invoked)", f.scorer.calls)
	}
	if got := f.service.State().QuestionCount; got != 1 {
		t.Errorf("question count = %d, want 1", got)
	}
}

func TestRunCycle_DedupKeepsDistinctQuestionsApart(t *testing.T) {
	f := newFixture(PipelineConfig{}, parisScores(1.0), quadPositions())
	ctx := context.Background()

	f.extractor.question = "What is the capital of France?"
	f.service.RunCycle(ctx)

	// Differs only in the interrogative word; still a new question.
	f.extractor.question = "Which is the capital of France?"
	second := f.service.RunCycle(ctx)

	if second.Duplicate {
		t.Errorf("distinct question flagged as duplicate: %+v", second)
	}
	if f.gatherer.calls != 2 {
		t.Errorf("gatherer calls = %d, want 2", f.gatherer.calls)
	}
	if got := f.service.State().QuestionCount; got != 2 {
		t.Errorf("question count = %d, want 2", got)
	}
}

func TestRunCycle_DedupFoldsCaseAndWhitespace(t *testing.T) {
	f := newFixture(PipelineConfig{}, parisScores(1.0), quadPositions())
	ctx := context.Background()

	f.extractor.question = "What is the capital of France?"
	f.service.RunCycle(ctx)

	f.extractor.question = "  WHAT is  the capital   of france?"
	second := f.service.RunCycle(ctx)

	if !second.Duplicate {
		t.Errorf("case/whitespace variant not recognized as duplicate: %+v", second)
	}
	if f.gatherer.calls != 1 {
		t.Errorf("gatherer calls = %d, want 1", f.gatherer.calls)
	}
}

func TestRunCycle_GatingBoundaryIsInclusive(t *testing.T) {
	t.Run("below threshold never clicks", func(t *testing.T) {
		f := newFixture(PipelineConfig{AutoClick: true, MinConfidence: 0.5}, parisScores(0.4), quadPositions())
		report := f.service.RunCycle(context.Background())

		if report.Clicked || len(f.dispatcher.clicks) != 0 {
			t.Errorf("clicked at confidence 0.4 with threshold 0.5")
		}
		if report.SkipReason != "confidence below threshold" {
			t.Errorf("reason = %q", report.SkipReason)
		}
	})

	t.Run("exactly at threshold clicks", func(t *testing.T) {
		f := newFixture(PipelineConfig{AutoClick: true, MinConfidence: 0.5}, parisScores(0.5), quadPositions())
		report := f.service.RunCycle(context.Background())

		if !report.Clicked || report.State != domain.StateActed {
			t.Errorf("report = %+v, want ACTED at the inclusive boundary", report)
		}
	})

	t.Run("explicit zero threshold always clicks", func(t *testing.T) {
		scores := domain.ScoreMap{"London": 0, "Berlin": 0, "Paris": 0, "Madrid": 0}
		f := newFixture(PipelineConfig{AutoClick: true, MinConfidence: 0}, scores, quadPositions())
		report := f.service.RunCycle(context.Background())

		if !report.Clicked {
			t.Errorf("report = %+v, want a click: zero threshold admits zero confidence", report)
		}
	})
}

func TestRunCycle_ClickTargetsMatchedOptionWithOffset(t *testing.T) {
	f := newFixture(PipelineConfig{AutoClick: true, MinConfidence: 0.3}, parisScores(1.0), quadPositions())
	f.regions.offset = domain.ButtonPosition{X: 0, Y: 400}

	report := f.service.RunCycle(context.Background())

	if !report.Clicked {
		t.Fatalf("expected a click, got %+v", report)
	}
	// Paris is option index 2 -> position (50,150) + offset (0,400)
	want := domain.ButtonPosition{X: 50, Y: 550}
	if len(f.dispatcher.clicks) != 1 || f.dispatcher.clicks[0] != want {
		t.Errorf("clicks = %v, want [%+v]", f.dispatcher.clicks, want)
	}
}

func TestRunCycle_CaptureFailure(t *testing.T) {
	f := newFixture(PipelineConfig{}, parisScores(1.0), quadPositions())
	f.regions.err = domain.ErrCaptureUnavailable

	report := f.service.RunCycle(context.Background())

	if report.Success() {
		t.Errorf("expected failure, got %+v", report)
	}
	if report.State != domain.StateSkipped {
		t.Errorf("state = %s, want SKIPPED", report.State)
	}
	if f.gatherer.calls != 0 {
		t.Errorf("gatherer invoked despite capture failure")
	}
}

func TestRunCycle_RecognitionEmpty(t *testing.T) {
	f := newFixture(PipelineConfig{}, parisScores(1.0), quadPositions())
	f.extractor.question = ""

	report := f.service.RunCycle(context.Background())

	if report.Success() {
		t.Errorf("expected failure, got %+v", report)
	}
	if !strings.Contains(report.SkipReason, "no usable text") {
		t.Errorf("reason = %q", report.SkipReason)
	}
}

func TestRunCycle_LocalizationEmptyStillReportsScores(t *testing.T) {
	f := newFixture(PipelineConfig{AutoClick: true, MinConfidence: 0.3}, parisScores(1.0), nil)

	report := f.service.RunCycle(context.Background())

	if report.Clicked {
		t.Error("clicked without any located button")
	}
	if !report.Success() {
		t.Errorf("localization failure must not fail the cycle: %+v", report)
	}
	if report.BestAnswer != "Paris" || len(report.Scores) != 4 {
		t.Errorf("recommendation missing from report: %+v", report)
	}
}

func TestRunCycle_MatchUnresolvedRefusesAction(t *testing.T) {
	f := newFixture(PipelineConfig{AutoClick: true, MinConfidence: 0.1}, parisScores(0.9), quadPositions())
	f.scorer.forcedBest = "volga"
	f.scorer.forcedConfidence = 0.9

	report := f.service.RunCycle(context.Background())

	if report.Clicked || len(f.dispatcher.clicks) != 0 {
		t.Errorf("clicked despite unresolved match: %+v", report)
	}
	if report.SkipReason != domain.ErrMatchUnresolved.Error() {
		t.Errorf("reason = %q", report.SkipReason)
	}
}

func TestRunCycle_ClickFailureIsContained(t *testing.T) {
	f := newFixture(PipelineConfig{AutoClick: true, MinConfidence: 0.3}, parisScores(1.0), quadPositions())
	f.dispatcher.err = errors.New("no display")

	report := f.service.RunCycle(context.Background())

	if report.Clicked {
		t.Error("reported a click that failed")
	}
	if !report.Success() {
		t.Errorf("dispatcher failure must not fail the cycle: %+v", report)
	}
}

func TestRun_StopsOnCancelBetweenCycles(t *testing.T) {
	f := newFixture(PipelineConfig{ScanInterval: 5 * time.Millisecond}, parisScores(1.0), quadPositions())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.service.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}
