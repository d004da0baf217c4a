// Package transport adapts JSON messages to the filter service.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/cubelab/solfilter/domain"
)

// Request is the inbound message. Solutions stays raw so that a non-list
// value can be reported instead of failing the whole decode.
type Request struct {
	Solutions json.RawMessage `json:"solutions"`
	Config    json.RawMessage `json:"config,omitempty"`
}

// Reply is the outbound message. Results and Stats are null when Error is set.
type Reply struct {
	Error   string                   `json:"error,omitempty"`
	Results []domain.CandidateResult `json:"results"`
	Stats   *domain.FilterStats      `json:"stats"`
}

// Worker runs labeling requests against a FilterService
type Worker struct {
	service      domain.FilterService
	logger       *zap.Logger
	maxBatchSize int
	baseConfig   domain.FilterConfig
}

// Option configures a Worker
type Option func(*Worker)

// WithLogger sets the worker logger
func WithLogger(logger *zap.Logger) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithMaxBatchSize rejects batches larger than n. Zero disables the limit.
func WithMaxBatchSize(n int) Option {
	return func(w *Worker) {
		w.maxBatchSize = n
	}
}

// WithBaseConfig sets the configuration that request config keys overlay
func WithBaseConfig(config domain.FilterConfig) Option {
	return func(w *Worker) {
		w.baseConfig = config
	}
}

// NewWorker creates a worker
func NewWorker(service domain.FilterService, opts ...Option) *Worker {
	w := &Worker{
		service:    service,
		logger:     zap.NewNop(),
		baseConfig: domain.DefaultFilterConfig(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Handle decodes a JSON request, labels it and encodes the reply. Protocol
// problems become error replies; the returned error is reserved for encoding
// failures.
func (w *Worker) Handle(ctx context.Context, payload []byte) ([]byte, error) {
	var req Request
	var reply Reply
	if err := json.Unmarshal(payload, &req); err != nil {
		reply = errorReply(fmt.Sprintf("invalid request: %v", err))
	} else {
		reply = w.Process(ctx, req)
	}

	data, err := json.Marshal(reply)
	if err != nil {
		return nil, fmt.Errorf("failed to encode reply: %w", err)
	}
	return data, nil
}

// Process labels a decoded request
func (w *Worker) Process(ctx context.Context, req Request) Reply {
	solutions, excluded, err := decodeSolutions(req.Solutions)
	if err != nil {
		return errorReply(err.Error())
	}
	if w.maxBatchSize > 0 && len(solutions) > w.maxBatchSize {
		return errorReply(fmt.Sprintf("batch too large: %d solutions (limit %d)", len(solutions), w.maxBatchSize))
	}

	config, err := decodeConfig(w.baseConfig, req.Config)
	if err != nil {
		return errorReply(err.Error())
	}

	if len(excluded) > 0 {
		w.logger.Debug("malformed candidates excluded", zap.Ints("indices", excluded))
	}

	resp, err := w.service.Label(ctx, domain.FilterRequest{
		Solutions: solutions,
		Excluded:  excluded,
		Config:    config,
	})
	if err != nil {
		w.logger.Warn("labeling request failed", zap.Error(err))
		return errorReply(err.Error())
	}

	results := resp.Results
	if results == nil {
		results = []domain.CandidateResult{}
	}
	stats := resp.Stats
	return Reply{Results: results, Stats: &stats}
}

func errorReply(message string) Reply {
	return Reply{Error: message}
}

// decodeSolutions accepts a JSON list. Items that are not strings keep their
// position and are reported as excluded.
func decodeSolutions(raw json.RawMessage) ([]string, []int, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, nil, fmt.Errorf("solutions must be a list of strings")
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, nil, fmt.Errorf("solutions must be a list of strings: %v", err)
	}

	solutions := make([]string, len(items))
	var excluded []int
	for i, item := range items {
		if err := json.Unmarshal(item, &solutions[i]); err != nil || isNull(item) {
			solutions[i] = ""
			excluded = append(excluded, i)
		}
	}
	return solutions, excluded, nil
}

// decodeConfig overlays the given keys on base
func decodeConfig(base domain.FilterConfig, raw json.RawMessage) (domain.FilterConfig, error) {
	config := base
	if len(bytes.TrimSpace(raw)) == 0 || isNull(raw) {
		return config, nil
	}
	if err := json.Unmarshal(raw, &config); err != nil {
		return config, fmt.Errorf("invalid config: %v", err)
	}
	return config, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
