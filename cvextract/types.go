package cvextract

import "time"

// Method identifies one extraction strategy.
type Method string

const (
	// MethodStandard is the whole-document content-stream decode (pdfcpu).
	MethodStandard Method = "standard"
	// MethodAlternate is the row-grouped decode without text-item merging.
	MethodAlternate Method = "alternate"
	// MethodOCR is optical recognition via an external service.
	MethodOCR Method = "ocr"
	// MethodManual is the pattern scraper over raw PDF operators.
	MethodManual Method = "manual"
)

// priority returns the fixed tie-break rank of a method. Lower wins.
func (m Method) priority() int {
	switch m {
	case MethodStandard:
		return 0
	case MethodAlternate:
		return 1
	case MethodOCR:
		return 2
	case MethodManual:
		return 3
	}
	return 4
}

// Bucket is a coarse classification of extracted-text trustworthiness.
type Bucket string

const (
	BucketLow    Bucket = "low"
	BucketMedium Bucket = "medium"
	BucketHigh   Bucket = "high"
)

func (b Bucket) rank() int {
	switch b {
	case BucketHigh:
		return 2
	case BucketMedium:
		return 1
	}
	return 0
}

// Attempt is the outcome of a single strategy invocation. Attempts live
// only for the duration of one Extract call; the winner's cleaned text
// and a diagnostic summary are all that survive selection.
type Attempt struct {
	Method      Method
	RawText     string
	CleanedText string
	Score       int
	Bucket      Bucket
	Succeeded   bool // strategy ran without error and produced usable text
	Err         string
	Duration    time.Duration
}

// info builds the diagnostic summary of the attempt.
func (a *Attempt) info() AttemptInfo {
	return AttemptInfo{
		Method:     a.Method,
		TextLength: len(a.CleanedText),
		Score:      a.Score,
		Bucket:     a.Bucket,
		Succeeded:  a.Succeeded,
		Error:      a.Err,
	}
}

// AttemptInfo is the per-strategy diagnostic record exposed to callers.
type AttemptInfo struct {
	Method     Method `json:"method"`
	TextLength int    `json:"text_length"`
	Score      int    `json:"score"`
	Bucket     Bucket `json:"bucket"`
	Succeeded  bool   `json:"succeeded"`
	Error      string `json:"error,omitempty"`
}

// Diagnostics summarises every strategy tried during one Extract call.
// Intended for logging and triage by the calling service, never for
// end-user display.
type Diagnostics struct {
	RunID    string        `json:"run_id"`
	Attempts []AttemptInfo `json:"attempts"`
	Hint     string        `json:"hint,omitempty"`
}

// Result is the sole artifact handed to the downstream field-extraction
// collaborator. Text is always cleaned text, never a strategy's raw output.
type Result struct {
	Text        string       `json:"text"`
	Method      Method       `json:"method"`
	Length      int          `json:"length"`
	Diagnostics *Diagnostics `json:"diagnostics,omitempty"`
}
