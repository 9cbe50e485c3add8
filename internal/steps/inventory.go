package steps

import (
	"context"
	"net/http"

	"github.com/alexisbeaulieu97/shopflow/internal/assert"
	"github.com/alexisbeaulieu97/shopflow/internal/model"
)

// InventoryStock provisions the stock item for the product SKU, tops it up,
// and reads it through the admin and public routes.
func InventoryStock(ctx context.Context, env *Env) model.Outcome {
	s := env.State
	if s.ProductID == "" || s.SKU == "" {
		return model.Skip("missing product or sku")
	}
	items := endpoint(s.Services.Inventory, "/api/v1/inventory/admin/stock-items")
	item := items + "/" + s.SKU

	resp, err := env.send(ctx, http.MethodPost, items, nil, stockItemRequest{
		SKU:               s.SKU,
		ProductID:         s.ProductID,
		InitialQty:        stockInitialQty,
		LowStockThreshold: stockThreshold,
	})
	if err != nil {
		return failure(err)
	}
	if err := assert.ExpectStatus(resp.Status, []int{http.StatusOK, http.StatusCreated, http.StatusConflict}, resp.Body); err != nil {
		return failure(err)
	}
	if resp.Status == http.StatusConflict {
		env.Log.WithFields(map[string]any{"sku": s.SKU}).Info("stock item already provisioned")
	}

	if err := env.bestEffort(ctx, http.MethodPut, item, nil, stockAdjustment{AvailableQtyDelta: stockTopUp, Reason: topUpReason}); err != nil {
		return failure(err)
	}

	resp, err = env.get(ctx, item, nil)
	if err != nil {
		return failure(err)
	}
	if err := assert.ExpectStatus(resp.Status, []int{http.StatusOK}, resp.Body); err != nil {
		return failure(err)
	}

	resp, err = env.get(ctx, endpoint(s.Services.Inventory, "/api/v1/inventory/public/stock/%s", s.SKU), nil)
	if err != nil {
		return failure(err)
	}
	if err := assert.ExpectStatus(resp.Status, []int{http.StatusOK}, resp.Body); err != nil {
		return failure(err)
	}
	return model.Okf("stock %s", s.SKU)
}

// InventoryReservation reserves one unit for the order, reads the
// reservation back, and confirms it.
func InventoryReservation(ctx context.Context, env *Env) model.Outcome {
	s := env.State
	if s.SKU == "" {
		return model.Skip("missing sku")
	}
	if s.EnsureOrderID(env.newID) {
		env.Log.WithFields(map[string]any{"orderId": s.OrderID}).Info("using placeholder order id")
	}
	reservations := endpoint(s.Services.Inventory, "/api/v1/inventory/reservations")

	resp, err := env.send(ctx, http.MethodPost, reservations, nil, reservationRequest{
		OrderID: s.OrderID,
		Lines:   []reservationLine{{SKU: s.SKU, Quantity: 1}},
	})
	if err != nil {
		return failure(err)
	}
	if err := assert.ExpectStatus(resp.Status, []int{http.StatusOK, http.StatusCreated}, resp.Body); err != nil {
		return failure(err)
	}
	reservationID, err := assert.StringField(resp.Body, "reservationId")
	if err != nil {
		return failure(err)
	}
	s.ReservationID = reservationID
	reservation := reservations + "/" + reservationID

	resp, err = env.get(ctx, reservation, nil)
	if err != nil {
		return failure(err)
	}
	if err := assert.ExpectStatus(resp.Status, []int{http.StatusOK}, resp.Body); err != nil {
		return failure(err)
	}

	resp, err = env.send(ctx, http.MethodPut, reservation+"/confirm", nil, nil)
	if err != nil {
		return failure(err)
	}
	if err := assert.ExpectStatus(resp.Status, []int{http.StatusOK}, resp.Body); err != nil {
		return failure(err)
	}
	return model.Okf("reservation %s", reservationID)
}
