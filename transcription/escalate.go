package transcription

import (
	"context"
	"time"

	apperrors "github.com/echoscribe/echoscribe/errors"
	"github.com/echoscribe/echoscribe/logger"
	"github.com/echoscribe/echoscribe/resilience"
)

// Tier is one model tier of the escalation ladder.
type Tier struct {
	// Model is the model name submitted with the request.
	Model string
	// Timeout bounds one call against this tier.
	Timeout time.Duration
}

// Escalator wraps a Provider with two-tier timeout escalation: calls go to
// the fast tier first, and a timeout (only a timeout) triggers exactly one
// retry against the strong tier with its longer bound. Remote errors that are
// not timeouts propagate immediately.
type Escalator struct {
	provider Provider
	fast     Tier
	strong   Tier
	log      *logger.Logger
}

// NewEscalator creates an Escalator over the given provider and tiers.
func NewEscalator(p Provider, fast, strong Tier) *Escalator {
	return &Escalator{
		provider: p,
		fast:     fast,
		strong:   strong,
		log:      logger.WithComponent("transcription"),
	}
}

// Transcribe runs one escalating transcription call. The returned response
// carries the model that actually produced the text.
func (e *Escalator) Transcribe(ctx context.Context, req Request) (*Response, error) {
	attempt := 0
	cfg := resilience.RetryConfig{
		MaxAttempts:    2,
		InitialBackoff: 100 * time.Millisecond,
		RetryIf:        apperrors.IsTimeout,
		OnRetry: func(_ int, err error, _ time.Duration) {
			e.log.Warn("transcription timed out, escalating to strong model", map[string]interface{}{
				logger.FieldModel: e.strong.Model,
				logger.FieldError: err.Error(),
			})
		},
	}

	return resilience.Retry(ctx, cfg, func() (*Response, error) {
		tier := e.fast
		if attempt > 0 {
			tier = e.strong
		}
		attempt++

		callCtx, cancel := context.WithTimeout(ctx, tier.Timeout)
		defer cancel()

		tierReq := req
		tierReq.Model = tier.Model

		resp, err := e.provider.Transcribe(callCtx, tierReq)
		if err != nil {
			if callCtx.Err() == context.DeadlineExceeded {
				return nil, apperrors.Timeout("transcribe").WithDetail("model", tier.Model).WithCause(err)
			}
			return nil, err
		}
		if resp.Model == "" {
			resp.Model = tier.Model
		}
		return resp, nil
	})
}
