// Package steps implements the workflow checks run against the commerce
// services and the ordered registry the runner executes.
package steps

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alexisbeaulieu97/shopflow/internal/assert"
	"github.com/alexisbeaulieu97/shopflow/internal/client"
	"github.com/alexisbeaulieu97/shopflow/internal/logger"
	"github.com/alexisbeaulieu97/shopflow/internal/model"
	"github.com/alexisbeaulieu97/shopflow/internal/scenario"
	shopflowerrors "github.com/alexisbeaulieu97/shopflow/pkg/errors"
)

// HTTPClient is the subset of *client.Client the steps call.
type HTTPClient interface {
	Do(ctx context.Context, req client.Request) (*client.Response, error)
}

// DeclineFunc observes a business decline (HTTP 402) on attempt n of op.
type DeclineFunc func(op string, attempt int)

// Env is everything a step can touch.
type Env struct {
	State     *scenario.State
	Client    HTTPClient
	Retry     RetryPolicy
	NewID     func() string
	Log       *logger.Logger
	OnDecline DeclineFunc
}

// NewEnv wires an Env with uuid identifiers and the default retry policy.
func NewEnv(state *scenario.State, httpClient HTTPClient, log *logger.Logger) *Env {
	return &Env{
		State:  state,
		Client: httpClient,
		Retry:  DefaultRetryPolicy(),
		NewID:  func() string { return uuid.NewString() },
		Log:    log,
	}
}

func (e *Env) newID() string {
	if e.NewID == nil {
		return uuid.NewString()
	}
	return e.NewID()
}

func (e *Env) declined(op string, attempt int) {
	e.Log.WithFields(map[string]any{"operation": op, "attempt": attempt}).Warn("business decline")
	if e.OnDecline != nil {
		e.OnDecline(op, attempt)
	}
}

func (e *Env) get(ctx context.Context, url string, headers map[string]string) (*client.Response, error) {
	return e.Client.Do(ctx, client.Request{Method: "GET", URL: url, Headers: headers})
}

func (e *Env) send(ctx context.Context, method, url string, headers map[string]string, body any) (*client.Response, error) {
	return e.Client.Do(ctx, client.Request{Method: method, URL: url, Headers: headers, Body: body})
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func serviceSecret(secret string) map[string]string {
	return map[string]string{"X-Service-Secret": secret}
}

func endpoint(base, format string, args ...any) string {
	return strings.TrimRight(base, "/") + fmt.Sprintf(format, args...)
}

// failure maps an error to a Fail outcome. Assertion failures keep their
// diagnostic; anything else is reported as unexpected.
func failure(err error) model.Outcome {
	if assert.IsFailure(err) {
		return model.Fail(err.Error())
	}
	return model.Fail(shopflowerrors.NewExecutionError("", err).Error())
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
