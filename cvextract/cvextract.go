// Package cvextract turns raw résumé PDF bytes into the best available
// plain-text rendering, even when the document is malformed, scanned, or
// produced by an inconsistent generator.
//
// Four independent strategies are tried against the same bytes:
//
//   - standard  — whole-document content-stream decode (pdfcpu)
//   - alternate — row-grouped decode, text-item merging disabled (ledongthuc/pdf)
//   - ocr       — external optical recognition, only when structural
//     extraction produced nothing acceptable and a credential is configured
//   - manual    — pattern scraper over raw PDF operators, last resort
//
// Each candidate is cleaned and scored with a readability heuristic; the
// winner is picked bucket-first, then by score×length (OCR weighted ×1.2),
// then by fixed strategy priority. A strategy failure never aborts the run;
// only total exhaustion surfaces as ErrNoReadableText, with per-strategy
// diagnostics for triage.
//
// Usage:
//
//	eng := cvextract.New(cvextract.Config{})
//	res, err := eng.Extract(ctx, pdfBytes)
//	fmt.Println(res.Method, res.Length)
package cvextract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hazyhaar/cvtext/idgen"
	"github.com/hazyhaar/cvtext/journal"
	"github.com/hazyhaar/cvtext/kit"
)

// StrategyFunc is the common shape of every extraction strategy: document
// bytes in, candidate raw text out. Implementations may fail or panic;
// the engine isolates both.
type StrategyFunc func(ctx context.Context, doc []byte) (string, error)

// Structural pairs a structural strategy with its method identifier.
// The engine runs them in slice order, which is also selection priority.
type Structural struct {
	Method Method
	Run    StrategyFunc
}

func defaultStructural() []Structural {
	return []Structural{
		{Method: MethodStandard, Run: decodeStandard},
		{Method: MethodAlternate, Run: decodeAlternate},
	}
}

// Engine is the strategy orchestrator. Stateless per call: every Extract
// is an independent run over immutable input, safe for concurrent use.
type Engine struct {
	cfg        Config
	logger     *slog.Logger
	structural []Structural
	ocr        Recognizer
	journal    journal.Recorder
	newRunID   idgen.Generator
}

// Option customises engine construction.
type Option func(*Engine)

// WithRecognizer injects an OCR implementation, overriding the HTTP
// recognizer the engine would otherwise build from Config.OCR.
func WithRecognizer(r Recognizer) Option {
	return func(e *Engine) { e.ocr = r }
}

// WithJournal records every attempt to the given journal asynchronously.
func WithJournal(rec journal.Recorder) Option {
	return func(e *Engine) { e.journal = rec }
}

// WithStructural replaces the structural strategy set. Primarily for tests;
// production code should keep the defaults.
func WithStructural(strategies []Structural) Option {
	return func(e *Engine) { e.structural = strategies }
}

// WithIDGenerator overrides run-ID generation.
func WithIDGenerator(g idgen.Generator) Option {
	return func(e *Engine) { e.newRunID = g }
}

// New creates an Engine with the given configuration. OCR is enabled only
// when Config.OCR.APIKey is set or a Recognizer is injected.
func New(cfg Config, opts ...Option) *Engine {
	cfg.defaults()
	e := &Engine{
		cfg:        cfg,
		logger:     cfg.Logger,
		structural: defaultStructural(),
		newRunID:   idgen.Prefixed("run_", idgen.UUIDv7()),
	}
	if cfg.OCR.APIKey != "" {
		e.ocr = NewHTTPRecognizer(cfg.OCR, cfg.Logger)
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Extract runs the applicable strategies over doc and returns the
// highest-confidence plain text. On failure the returned error matches
// errors.Is(err, ErrNoReadableText) and carries full diagnostics.
func (e *Engine) Extract(ctx context.Context, doc []byte) (*Result, error) {
	if int64(len(doc)) > e.cfg.MaxDocumentSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrDocumentTooLarge, len(doc), e.cfg.MaxDocumentSize)
	}

	runID := e.newRunID()
	log := e.logger.With("run_id", runID)
	if rid := kit.GetRequestID(ctx); rid != "" {
		log = log.With("request_id", rid)
	}
	if tr := kit.GetTransport(ctx); tr != "" {
		log = log.With("transport", tr)
	}
	th := e.cfg.Thresholds

	var attempts []*Attempt
	var accepted []*Attempt

	run := func(ctx context.Context, m Method, threshold int, fn StrategyFunc) {
		a := e.runOne(ctx, m, threshold, fn, doc, log)
		attempts = append(attempts, a)
		e.record(runID, a)
		if a.Succeeded && a.Score >= threshold {
			accepted = append(accepted, a)
		}
	}

	for _, s := range e.structural {
		run(ctx, s.Method, th.Structural, s.Run)
	}

	if e.ocr != nil && ocrWarranted(accepted) {
		octx, cancel := context.WithTimeout(ctx, e.cfg.OCR.Timeout)
		run(octx, MethodOCR, th.OCR, e.ocr.Recognize)
		cancel()
	}

	run(ctx, MethodManual, th.Manual, scrapeOperators)

	winner := selectWinner(accepted, e.cfg.OCRWeight)
	if winner == nil {
		diag := Diagnostics{
			RunID:    runID,
			Attempts: attemptInfos(attempts),
			Hint:     e.failureHint(doc),
		}
		log.Warn("extraction exhausted", "attempts", len(attempts), "hint", diag.Hint)
		return nil, &NoTextError{Diagnostics: diag}
	}

	log.Info("extraction selected",
		"method", winner.Method,
		"score", winner.Score,
		"bucket", winner.Bucket,
		"length", len(winner.CleanedText))

	return &Result{
		Text:   winner.CleanedText,
		Method: winner.Method,
		Length: len(winner.CleanedText),
		Diagnostics: &Diagnostics{
			RunID:    runID,
			Attempts: attemptInfos(attempts),
		},
	}, nil
}

// runOne executes a single strategy with failure isolation, then cleans
// and scores whatever came back.
func (e *Engine) runOne(ctx context.Context, m Method, threshold int, fn StrategyFunc, doc []byte, log *slog.Logger) *Attempt {
	start := time.Now()
	a := &Attempt{Method: m, Bucket: BucketLow}

	raw, err := runIsolated(ctx, fn, doc)
	a.Duration = time.Since(start)
	if err != nil {
		a.Err = err.Error()
		log.Debug("strategy failed", "method", m, "error", err)
		return a
	}

	a.RawText = raw
	a.CleanedText = Clean(raw)
	a.Score = scoreText(a.CleanedText)
	a.Bucket = bucketFor(a.Score, e.cfg.Thresholds)
	a.Succeeded = a.CleanedText != ""

	log.Debug("strategy done",
		"method", m,
		"length", len(a.CleanedText),
		"score", a.Score,
		"bucket", a.Bucket,
		"accepted", a.Succeeded && a.Score >= threshold)
	return a
}

// runIsolated converts a strategy panic into an error so one misbehaving
// decoder can never take down the orchestration.
func runIsolated(ctx context.Context, fn StrategyFunc, doc []byte) (raw string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("strategy panic: %v", p)
		}
	}()
	return fn(ctx, doc)
}

// ocrWarranted reports whether the expensive network strategy should run:
// only when no structural candidate was accepted, or every accepted one
// sits in the low bucket.
func ocrWarranted(accepted []*Attempt) bool {
	if len(accepted) == 0 {
		return true
	}
	for _, a := range accepted {
		if a.Bucket != BucketLow {
			return false
		}
	}
	return true
}

// selectWinner picks among accepted candidates: bucket first, then a
// combined score (score × text length, OCR weighted), then fixed method
// priority. Deterministic for a fixed candidate set.
func selectWinner(accepted []*Attempt, ocrWeight float64) *Attempt {
	var best *Attempt
	for _, c := range accepted {
		if best == nil || beats(c, best, ocrWeight) {
			best = c
		}
	}
	return best
}

func beats(a, b *Attempt, ocrWeight float64) bool {
	if ar, br := a.Bucket.rank(), b.Bucket.rank(); ar != br {
		return ar > br
	}
	if aw, bw := combinedScore(a, ocrWeight), combinedScore(b, ocrWeight); aw != bw {
		return aw > bw
	}
	return a.Method.priority() < b.Method.priority()
}

func combinedScore(a *Attempt, ocrWeight float64) float64 {
	s := float64(a.Score) * float64(len(a.CleanedText))
	if a.Method == MethodOCR {
		s *= ocrWeight
	}
	return s
}

// failureHint distinguishes the three triage classes of total failure:
// encrypted file, corrupted structure, and image-only content.
func (e *Engine) failureHint(doc []byte) string {
	if len(doc) == 0 {
		return "empty document"
	}
	pctx, err := readPDF(doc)
	if err != nil {
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "encrypt") || strings.Contains(msg, "password") {
			return "password-protected or encrypted document"
		}
		return "corrupted or unparseable document structure"
	}
	if hasImageStreams(pctx) {
		if e.ocr == nil {
			return "image-only content and no OCR configured"
		}
		return "image-only content; OCR produced nothing acceptable"
	}
	return ""
}

func attemptInfos(attempts []*Attempt) []AttemptInfo {
	infos := make([]AttemptInfo, len(attempts))
	for i, a := range attempts {
		infos[i] = a.info()
	}
	return infos
}

func (e *Engine) record(runID string, a *Attempt) {
	if e.journal == nil {
		return
	}
	e.journal.RecordAsync(&journal.Entry{
		RunID:      runID,
		Method:     string(a.Method),
		TextLength: len(a.CleanedText),
		Score:      a.Score,
		Bucket:     string(a.Bucket),
		Succeeded:  a.Succeeded,
		Error:      a.Err,
		DurationUs: a.Duration.Microseconds(),
		Timestamp:  time.Now().UnixMicro(),
	})
}
