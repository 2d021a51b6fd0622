package service

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/smartbites/backend/config"
	"github.com/smartbites/backend/internal/metrics"
)

const (
	upstreamOllama     = "ollama"
	maxFragmentBytes   = 4 << 20
	initialScanBufSize = 64 << 10
)

// InferenceError is any failure talking to the model server
type InferenceError struct {
	Err error
}

func (e *InferenceError) Error() string { return e.Err.Error() }

func (e *InferenceError) Unwrap() error { return e.Err }

// InferenceResult is the reassembled model output
type InferenceResult struct {
	Text       string
	StatusCode int
}

type generateFragment struct {
	Response *string `json:"response"`
	Error    string  `json:"error,omitempty"`
	Done     bool    `json:"done"`
}

// InferenceService talks to an Ollama server's generate endpoint
type InferenceService struct {
	baseURL string
	client  *http.Client
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewInferenceService creates a new InferenceService instance
func NewInferenceService(cfg config.OllamaConfig, logger *zap.Logger) *InferenceService {
	return &InferenceService{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  newUpstreamClient(cfg.Timeout),
		logger:  logger.Named("ollama"),
	}
}

func (s *InferenceService) WithMetrics(m *metrics.Metrics) *InferenceService {
	s.metrics = m
	return s
}

// Generate posts the payload and concatenates the streamed fragments.
// Doubled newlines are collapsed and the result trimmed. The upstream
// status is passed through. Any transport or decoding problem yields an
// *InferenceError and no partial text.
func (s *InferenceService) Generate(ctx context.Context, payload PromptPayload) (*InferenceResult, error) {
	start := time.Now()
	result, err := s.generate(ctx, payload)
	if err != nil {
		s.metrics.UpstreamRequest(upstreamOllama, metrics.OutcomeError, time.Since(start))
		s.logger.Error("inference failed", zap.String("model", payload.Model), zap.Error(err))
		return nil, &InferenceError{Err: err}
	}
	s.metrics.UpstreamRequest(upstreamOllama, metrics.OutcomeSuccess, time.Since(start))
	s.logger.Debug("inference finished",
		zap.String("model", payload.Model),
		zap.Int("status", result.StatusCode),
		zap.Int("chars", len(result.Text)),
		zap.Duration("took", time.Since(start)),
	)
	return result, nil
}

func (s *InferenceService) generate(ctx context.Context, payload PromptPayload) (*InferenceResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var text strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, initialScanBufSize), maxFragmentBytes)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var fragment generateFragment
		if err := json.Unmarshal(line, &fragment); err != nil {
			return nil, fmt.Errorf("failed to decode fragment: %w", err)
		}
		if fragment.Response == nil {
			if fragment.Error != "" {
				return nil, errors.New(fragment.Error)
			}
			return nil, errors.New("fragment has no response field")
		}
		text.WriteString(*fragment.Response)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read stream: %w", err)
	}

	return &InferenceResult{
		Text:       CleanInferenceText(text.String()),
		StatusCode: resp.StatusCode,
	}, nil
}

// CleanInferenceText collapses "\n\n" into "\n" and trims the ends
func CleanInferenceText(raw string) string {
	return strings.TrimSpace(strings.ReplaceAll(raw, "\n\n", "\n"))
}

// Ping checks that the server answers on /api/tags
func (s *InferenceService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama health check returned status %d", resp.StatusCode)
	}
	return nil
}
