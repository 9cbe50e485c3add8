package fakeshop

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type transaction struct {
	TransactionID string          `json:"transactionId"`
	PaymentID     string          `json:"paymentId"`
	Type          string          `json:"type"`
	Status        string          `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type payment struct {
	PaymentID      string          `json:"paymentId"`
	OrderID        string          `json:"orderId"`
	UserID         string          `json:"userId"`
	Status         string          `json:"status"`
	Amount         decimal.Decimal `json:"amount"`
	CapturedAmount decimal.Decimal `json:"capturedAmount"`
	RefundedAmount decimal.Decimal `json:"refundedAmount"`
	Currency       string          `json:"currency"`
	Provider       string          `json:"provider"`

	transactions []*transaction
	applied      map[string]bool
}

type paymentAction struct {
	Amount         *decimal.Decimal `json:"amount"`
	Reason         string           `json:"reason"`
	IdempotencyKey string           `json:"idempotencyKey"`
}

func (s *Shop) paymentRoutes(r chi.Router) {
	r.Post("/payments", s.faulty(OpPaymentCreate, s.requireSecret(s.createPayment)))
	r.Post("/payments/{id}/authorize", s.requireSecret(s.faulty(OpAuthorize, s.paymentTransition(OpAuthorize))))
	r.Post("/payments/{id}/capture", s.requireSecret(s.faulty(OpCapture, s.paymentTransition(OpCapture))))
	r.Post("/payments/{id}/refund", s.requireSecret(s.faulty(OpRefund, s.paymentTransition(OpRefund))))
	r.Get("/payments/{id}", s.authenticated(s.getPayment))
	r.Get("/payments/{id}/transactions", s.authenticated(s.listTransactions))
}

func (s *Shop) createPayment(w http.ResponseWriter, r *http.Request) {
	var req payment
	if !decode(w, r, &req) {
		return
	}
	if !req.Amount.IsPositive() {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	req.PaymentID = uuid.NewString()
	req.Status = "PENDING"
	req.Amount = money(req.Amount)
	req.CapturedAmount = decimal.Zero
	req.RefundedAmount = decimal.Zero
	req.Provider = "MOCK"
	req.applied = make(map[string]bool)

	s.mu.Lock()
	s.payments[req.PaymentID] = &req
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, &req)
}

// paymentTransition applies authorize, capture or refund. A repeated
// idempotency key returns the current payment without applying it again.
func (s *Shop) paymentTransition(op Operation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req paymentAction
		if !decode(w, r, &req) {
			return
		}
		s.recordKey(op, req.IdempotencyKey)

		s.mu.Lock()
		defer s.mu.Unlock()
		p, ok := s.payments[chi.URLParam(r, "id")]
		if !ok {
			writeError(w, http.StatusNotFound, "payment not found")
			return
		}
		if req.IdempotencyKey != "" && p.applied[req.IdempotencyKey] {
			writeJSON(w, http.StatusOK, p)
			return
		}

		txType, amount, status := "", p.Amount, p.Status
		switch op {
		case OpAuthorize:
			if p.Status != "PENDING" {
				writeError(w, http.StatusConflict, "payment is "+p.Status)
				return
			}
			txType, status = "AUTHORIZE", "AUTHORIZED"
		case OpCapture:
			if p.Status != "AUTHORIZED" {
				writeError(w, http.StatusConflict, "payment is "+p.Status)
				return
			}
			if req.Amount != nil {
				amount = *req.Amount
			}
			if amount.GreaterThan(p.Amount) {
				writeError(w, http.StatusBadRequest, "capture exceeds authorized amount")
				return
			}
			p.CapturedAmount = money(amount)
			txType, status = "CAPTURE", "CAPTURED"
		case OpRefund:
			if p.Status != "CAPTURED" && p.Status != "PARTIALLY_REFUNDED" {
				writeError(w, http.StatusConflict, "payment is "+p.Status)
				return
			}
			if req.Amount != nil {
				amount = *req.Amount
			}
			refunded := p.RefundedAmount.Add(amount)
			if refunded.GreaterThan(p.CapturedAmount) {
				writeError(w, http.StatusBadRequest, "refund exceeds captured amount")
				return
			}
			p.RefundedAmount = money(refunded)
			txType, status = "REFUND", "PARTIALLY_REFUNDED"
			if refunded.Equal(p.CapturedAmount) {
				status = "REFUNDED"
			}
		}

		p.Status = status
		if req.IdempotencyKey != "" {
			p.applied[req.IdempotencyKey] = true
		}
		p.transactions = append(p.transactions, &transaction{
			TransactionID: uuid.NewString(),
			PaymentID:     p.PaymentID,
			Type:          txType,
			Status:        "SUCCESS",
			Amount:        money(amount),
			Currency:      p.Currency,
			CreatedAt:     time.Now().UTC(),
		})
		writeJSON(w, http.StatusOK, p)
	}
}

// ownedPayment must be called with s.mu held.
func (s *Shop) ownedPayment(w http.ResponseWriter, r *http.Request, u *user) *payment {
	p, ok := s.payments[chi.URLParam(r, "id")]
	if !ok {
		writeError(w, http.StatusNotFound, "payment not found")
		return nil
	}
	if !u.Admin && p.UserID != u.ID {
		writeError(w, http.StatusForbidden, "access denied")
		return nil
	}
	return p
}

func (s *Shop) getPayment(w http.ResponseWriter, r *http.Request, u *user) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p := s.ownedPayment(w, r, u); p != nil {
		writeJSON(w, http.StatusOK, p)
	}
}

func (s *Shop) listTransactions(w http.ResponseWriter, r *http.Request, u *user) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p := s.ownedPayment(w, r, u); p != nil {
		writeJSON(w, http.StatusOK, append([]*transaction{}, p.transactions...))
	}
}
