package steps

import (
	"context"
	"net/http"

	"github.com/alexisbeaulieu97/shopflow/internal/assert"
	"github.com/alexisbeaulieu97/shopflow/internal/client"
	"github.com/alexisbeaulieu97/shopflow/internal/model"
)

// OrderCreate places an order from the cart. Payment runs inside order
// creation, so a 402 is retried.
func OrderCreate(ctx context.Context, env *Env) model.Outcome {
	s := env.State
	if s.CartID == "" || s.CustomerUserID == "" {
		return model.Skip("missing cart or user id")
	}
	if s.ShippingAddressID == "" || s.BillingAddressID == "" {
		return model.Skip("missing addresses")
	}

	payload := orderRequest{
		UserID:            s.CustomerUserID,
		CartID:            s.CartID,
		ShippingAddressID: s.ShippingAddressID,
		BillingAddressID:  s.BillingAddressID,
	}
	resp, err := retryOnDecline(ctx, env, declinable{
		op:        "order_create",
		success:   []int{http.StatusOK, http.StatusCreated},
		exhausted: "payment failed after retries",
		call: func(ctx context.Context) (*client.Response, error) {
			return env.send(ctx, http.MethodPost, endpoint(s.Services.Order, "/api/v1/orders"), nil, payload)
		},
	})
	if err != nil {
		return failure(err)
	}

	orderID, err := assert.StringField(resp.Body, "orderId")
	if err != nil {
		return failure(err)
	}
	s.OrderID = orderID
	s.OrderIDSynthetic = false
	return model.Okf("created %s", orderID)
}

// OrderGet reads the order back.
func OrderGet(ctx context.Context, env *Env) model.Outcome {
	s := env.State
	if s.OrderID == "" {
		return model.Skip("missing order id")
	}

	resp, err := env.get(ctx, endpoint(s.Services.Order, "/api/v1/orders/%s", s.OrderID), nil)
	if err != nil {
		return failure(err)
	}
	if err := assert.ExpectStatus(resp.Status, []int{http.StatusOK}, resp.Body); err != nil {
		return failure(err)
	}
	if _, err := assert.EnsureField(resp.Body, "orderId"); err != nil {
		return failure(err)
	}
	return model.Ok("order fetched")
}

// OrderList reads the first page of the customer's orders.
func OrderList(ctx context.Context, env *Env) model.Outcome {
	s := env.State
	if s.CustomerUserID == "" {
		return model.Skip("missing user id")
	}

	resp, err := env.get(ctx, endpoint(s.Services.Order, "/api/v1/orders/user/%s?page=0&size=5", s.CustomerUserID), nil)
	if err != nil {
		return failure(err)
	}
	if err := assert.ExpectStatus(resp.Status, []int{http.StatusOK}, resp.Body); err != nil {
		return failure(err)
	}
	return model.Ok("orders listed")
}
