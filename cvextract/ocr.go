package cvextract

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Recognizer is the capability interface for optical character recognition.
// Implementations are network-bound and must honour ctx cancellation; the
// engine treats any error as "no result" and never propagates it.
type Recognizer interface {
	Recognize(ctx context.Context, doc []byte) (string, error)
}

// HTTPRecognizer submits the document to an OCR API as base64-encoded form
// data, configured for orientation detection and document-optimized
// recognition.
type HTTPRecognizer struct {
	endpoint string
	apiKey   string
	engine   int
	client   *http.Client
	logger   *slog.Logger
}

// NewHTTPRecognizer builds a recognizer from cfg. cfg.Timeout bounds every
// call end to end, on top of whatever deadline the caller's ctx carries.
func NewHTTPRecognizer(cfg OCRConfig, logger *slog.Logger) *HTTPRecognizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPRecognizer{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		engine:   cfg.Engine,
		client:   &http.Client{Timeout: cfg.Timeout},
		logger:   logger,
	}
}

type ocrResponse struct {
	ParsedResults []struct {
		ParsedText        string `json:"ParsedText"`
		FileParseExitCode int    `json:"FileParseExitCode"`
	} `json:"ParsedResults"`
	IsErroredOnProcessing bool            `json:"IsErroredOnProcessing"`
	ErrorMessage          json.RawMessage `json:"ErrorMessage"`
}

// Recognize posts the document and returns the concatenated recognized text.
func (r *HTTPRecognizer) Recognize(ctx context.Context, doc []byte) (string, error) {
	form := url.Values{}
	form.Set("base64Image", "data:application/pdf;base64,"+base64.StdEncoding.EncodeToString(doc))
	form.Set("filetype", "PDF")
	form.Set("detectOrientation", "true")
	form.Set("scale", "true")
	form.Set("isOverlayRequired", "false")
	form.Set("OCREngine", strconv.Itoa(r.engine))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("apikey", r.apiKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ocr request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("ocr status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed ocrResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if parsed.IsErroredOnProcessing {
		return "", fmt.Errorf("ocr processing failed: %s", string(parsed.ErrorMessage))
	}

	var sb strings.Builder
	for _, pr := range parsed.ParsedResults {
		if pr.ParsedText == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(pr.ParsedText)
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("ocr returned no text")
	}
	return sb.String(), nil
}
