package domain

// Snippet is a short piece of externally retrieved text associated with one
// evidence source. Snippets are ephemeral: owned by one gather call and
// discarded after scoring.
type Snippet struct {
	SourceURL string `json:"sourceUrl"`
	Title     string `json:"title"`
	Text      string `json:"text"`
}

// SearchResult is one hit returned by a web search pass.
type SearchResult struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// ScoreMap maps option text to a normalized confidence score. After
// normalization the maximum entry equals 1.0, or every entry is zero when no
// evidence matched. Keys always match the option sequence for the cycle.
type ScoreMap map[string]float64

// ButtonPosition is a clickable pixel coordinate inside the options region.
type ButtonPosition struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// CycleState names a stage of the resolution pipeline state machine.
type CycleState string

const (
	StateIdle             CycleState = "IDLE"
	StateCaptured         CycleState = "CAPTURED"
	StateRecognized       CycleState = "RECOGNIZED"
	StateEvidenceGathered CycleState = "EVIDENCE_GATHERED"
	StateScored           CycleState = "SCORED"
	StateDecided          CycleState = "DECIDED"
	StateActed            CycleState = "ACTED"
	StateSkipped          CycleState = "SKIPPED"
)

// CycleReport is the user-visible outcome of one pipeline cycle.
type CycleReport struct {
	State      CycleState      `json:"state"`
	Question   string          `json:"question"`
	Options    []string        `json:"options"`
	Scores     ScoreMap        `json:"scores,omitempty"`
	BestAnswer string          `json:"bestAnswer,omitempty"`
	Confidence float64         `json:"confidence"`
	Clicked    bool            `json:"clicked"`
	ClickedAt  *ButtonPosition `json:"clickedAt,omitempty"`
	Duplicate  bool            `json:"duplicate"`
	SkipReason string          `json:"skipReason,omitempty"`
}

// Success reports whether the cycle obtained a usable question and option
// set. A repeated question is a no-op success. Empty button positions or an
// all-zero score map do not make a cycle unsuccessful; they only skip the
// action stage.
func (r CycleReport) Success() bool {
	if r.Duplicate {
		return true
	}
	return r.Question != "" && len(r.Options) > 0
}
