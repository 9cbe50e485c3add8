package steps

import (
	"context"
	"net/http"
	"time"

	"github.com/alexisbeaulieu97/shopflow/internal/assert"
	"github.com/alexisbeaulieu97/shopflow/internal/client"
)

// RetryPolicy bounds the retries of an operation the service may decline
// with HTTP 402.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
	// Sleep waits between attempts. Nil means a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy is three attempts one second apart.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3, Delay: time.Second}
}

func (p RetryPolicy) wait(ctx context.Context) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, p.Delay)
	}
	return sleepContext(ctx, p.Delay)
}

// declinable describes one retried call. call is invoked once per attempt
// with an unchanged payload, so an idempotency key inside it is shared by
// every attempt.
type declinable struct {
	op        string
	success   []int
	exhausted string
	call      func(ctx context.Context) (*client.Response, error)
}

// retryOnDecline runs d.call until it returns a success status, a status
// other than 402, or the attempts run out.
func retryOnDecline(ctx context.Context, env *Env, d declinable) (*client.Response, error) {
	attempts := env.Retry.Attempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := d.call(ctx)
		if err != nil {
			return nil, err
		}
		if resp.Status != http.StatusPaymentRequired {
			if err := assert.ExpectStatus(resp.Status, d.success, resp.Body); err != nil {
				return nil, err
			}
			return resp, nil
		}

		env.declined(d.op, attempt)
		if attempt < attempts {
			if err := env.Retry.wait(ctx); err != nil {
				return nil, err
			}
		}
	}

	return nil, &assert.Failure{Message: d.exhausted}
}
