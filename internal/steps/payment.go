package steps

import (
	"context"
	"net/http"

	"github.com/alexisbeaulieu97/shopflow/internal/assert"
	"github.com/alexisbeaulieu97/shopflow/internal/client"
	"github.com/alexisbeaulieu97/shopflow/internal/model"
)

// PaymentCreate opens a payment for the order. Without an order a synthetic
// id is used so the payment service is still exercised.
func PaymentCreate(ctx context.Context, env *Env) model.Outcome {
	s := env.State
	if s.CustomerUserID == "" {
		return model.Skip("missing user id")
	}
	if s.EnsureOrderID(env.newID) {
		env.Log.WithFields(map[string]any{"orderId": s.OrderID}).Info("using placeholder order id")
	}

	resp, err := env.send(ctx, http.MethodPost, endpoint(s.Services.Payment, "/api/v1/payments"),
		serviceSecret(s.Secrets.ForPayment()), paymentRequest{
			OrderID:  s.OrderID,
			UserID:   s.CustomerUserID,
			Amount:   amount(s.Fixtures.PaymentAmount),
			Currency: s.Fixtures.Currency,
		})
	if err != nil {
		return failure(err)
	}
	if err := assert.ExpectStatus(resp.Status, []int{http.StatusOK, http.StatusCreated}, resp.Body); err != nil {
		return failure(err)
	}
	paymentID, err := assert.StringField(resp.Body, "paymentId")
	if err != nil {
		return failure(err)
	}

	s.PaymentID = paymentID
	return model.Okf("payment %s", paymentID)
}

// PaymentAuthorize authorizes the payment.
func PaymentAuthorize(ctx context.Context, env *Env) model.Outcome {
	return env.paymentAction(ctx, "authorize", paymentActionRequest{
		IdempotencyKey: "auth-" + env.newID(),
	}, "authorization failed after retries", "authorized")
}

// PaymentCapture captures the configured amount.
func PaymentCapture(ctx context.Context, env *Env) model.Outcome {
	capture := amount(env.State.Fixtures.CaptureAmount)
	return env.paymentAction(ctx, "capture", paymentActionRequest{
		Amount:         &capture,
		IdempotencyKey: "cap-" + env.newID(),
	}, "capture failed after retries", "captured")
}

// PaymentRefund refunds part of the captured amount.
func PaymentRefund(ctx context.Context, env *Env) model.Outcome {
	refund := amount(env.State.Fixtures.RefundAmount)
	return env.paymentAction(ctx, "refund", paymentActionRequest{
		Amount:         &refund,
		Reason:         refundReason,
		IdempotencyKey: "refund-" + env.newID(),
	}, "refund failed after retries", "refunded")
}

// paymentAction posts payload to /payments/{id}/{action}, retrying declines
// with the same idempotency key.
func (e *Env) paymentAction(ctx context.Context, action string, payload paymentActionRequest, exhausted, detail string) model.Outcome {
	s := e.State
	if s.PaymentID == "" {
		return model.Skip("missing payment id")
	}

	target := endpoint(s.Services.Payment, "/api/v1/payments/%s/%s", s.PaymentID, action)
	headers := serviceSecret(s.Secrets.ForPayment())
	_, err := retryOnDecline(ctx, e, declinable{
		op:        "payment_" + action,
		success:   []int{http.StatusOK},
		exhausted: exhausted,
		call: func(ctx context.Context) (*client.Response, error) {
			return e.send(ctx, http.MethodPost, target, headers, payload)
		},
	})
	if err != nil {
		return failure(err)
	}
	return model.Ok(detail)
}

// PaymentGet reads the payment and its transaction history as the owning
// customer.
func PaymentGet(ctx context.Context, env *Env) model.Outcome {
	s := env.State
	if s.PaymentID == "" || s.CustomerToken == "" {
		return model.Skip("missing payment id or access token")
	}
	headers := bearer(s.CustomerToken)
	paymentURL := endpoint(s.Services.Payment, "/api/v1/payments/%s", s.PaymentID)

	resp, err := env.get(ctx, paymentURL, headers)
	if err != nil {
		return failure(err)
	}
	if err := assert.ExpectStatus(resp.Status, []int{http.StatusOK}, resp.Body); err != nil {
		return failure(err)
	}
	status, err := assert.StringField(resp.Body, "status")
	if err != nil {
		return failure(err)
	}

	resp, err = env.get(ctx, paymentURL+"/transactions", headers)
	if err != nil {
		return failure(err)
	}
	if err := assert.ExpectStatus(resp.Status, []int{http.StatusOK}, resp.Body); err != nil {
		return failure(err)
	}

	return model.Okf("status %s, %d transactions", status, len(assert.ExtractList(resp.Body)))
}
