package ai

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/aws/smithy-go"
	"golang.org/x/time/rate"

	"github.com/medgenius/docindex/internal/adapters/driven/httpapi"
	"github.com/medgenius/docindex/internal/core/domain"
	"github.com/medgenius/docindex/internal/core/ports/driven"
	"github.com/medgenius/docindex/internal/logger"
)

// Throttle handling defaults.
const (
	defaultBackoff    = 5 * time.Second
	defaultMaxRetries = 3
)

// RateLimiter paces remote model calls with a token bucket and backs off
// after the provider reports throttling.
type RateLimiter struct {
	mu         sync.Mutex
	limiter    *rate.Limiter
	retryAt    time.Time
	backoff    time.Duration
	maxRetries int
}

// NewRateLimiter creates a limiter from settings. A non-positive rate means
// no pacing; throttle backoff still applies.
func NewRateLimiter(cfg domain.RateLimitSettings) *RateLimiter {
	limit := rate.Inf
	if cfg.Enabled() {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	return &RateLimiter{
		limiter:    rate.NewLimiter(limit, burst),
		backoff:    defaultBackoff,
		maxRetries: defaultMaxRetries,
	}
}

// Wait blocks until a request can be made without exceeding the rate limit,
// honouring any pending throttle backoff.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if d := time.Until(retryAt); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return r.limiter.Wait(ctx)
}

// RecordThrottle delays every caller by the backoff period.
func (r *RateLimiter) RecordThrottle() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retryAt = time.Now().Add(r.backoff)
}

// do runs call, retrying throttled attempts.
func (r *RateLimiter) do(ctx context.Context, call func() error) error {
	var err error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if err = r.Wait(ctx); err != nil {
			return err
		}
		err = call()
		if err == nil || !isThrottle(err) {
			return err
		}
		logger.Warn("provider throttled request (attempt %d): %v", attempt+1, err)
		r.RecordThrottle()
	}
	return err
}

// isThrottle reports whether err is an HTTP 429 or a Bedrock throttling fault.
func isThrottle(err error) bool {
	var status *httpapi.StatusError
	if errors.As(err, &status) {
		return status.Code == http.StatusTooManyRequests
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "ThrottlingException"
	}
	return false
}

// Ensure the decorators implement the interfaces.
var (
	_ driven.EmbeddingService = (*RateLimitedEmbedding)(nil)
	_ driven.VisionModel      = (*RateLimitedVision)(nil)
)

// RateLimitedEmbedding paces an embedding service.
type RateLimitedEmbedding struct {
	driven.EmbeddingService
	limiter *RateLimiter
	perItem bool
}

// NewRateLimitedEmbedding wraps svc. With perItem set, EmbedBatch is issued as
// one paced Embed call per text, for providers without a batch endpoint.
func NewRateLimitedEmbedding(svc driven.EmbeddingService, limiter *RateLimiter, perItem bool) *RateLimitedEmbedding {
	return &RateLimitedEmbedding{EmbeddingService: svc, limiter: limiter, perItem: perItem}
}

// Embed generates one embedding.
func (e *RateLimitedEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	var out []float32
	err := e.limiter.do(ctx, func() error {
		var err error
		out, err = e.EmbeddingService.Embed(ctx, text)
		return err
	})
	return out, err
}

// EmbedBatch generates embeddings for texts in order.
func (e *RateLimitedEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if !e.perItem {
		var out [][]float32
		err := e.limiter.do(ctx, func() error {
			var err error
			out, err = e.EmbeddingService.EmbedBatch(ctx, texts)
			return err
		})
		return out, err
	}

	if len(texts) == 0 {
		return nil, nil
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// RateLimitedVision paces a vision model.
type RateLimitedVision struct {
	driven.VisionModel
	limiter *RateLimiter
}

// NewRateLimitedVision wraps model.
func NewRateLimitedVision(model driven.VisionModel, limiter *RateLimiter) *RateLimitedVision {
	return &RateLimitedVision{VisionModel: model, limiter: limiter}
}

// Describe describes one image.
func (v *RateLimitedVision) Describe(ctx context.Context, req driven.VisionRequest) (string, error) {
	var out string
	err := v.limiter.do(ctx, func() error {
		var err error
		out, err = v.VisionModel.Describe(ctx, req)
		return err
	})
	return out, err
}
