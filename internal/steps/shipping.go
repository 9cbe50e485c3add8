package steps

import (
	"context"
	"net/http"

	"github.com/alexisbeaulieu97/shopflow/internal/assert"
	"github.com/alexisbeaulieu97/shopflow/internal/model"
)

// ShippingCreate opens a shipment for the order through the
// service-to-service route.
func ShippingCreate(ctx context.Context, env *Env) model.Outcome {
	s := env.State
	if s.ShippingAddressID == "" || s.CustomerUserID == "" {
		return model.Skip("missing address or user")
	}
	if s.EnsureOrderID(env.newID) {
		env.Log.WithFields(map[string]any{"orderId": s.OrderID}).Info("using placeholder order id")
	}

	resp, err := env.send(ctx, http.MethodPost, endpoint(s.Services.Shipping, "/api/v1/shipments"),
		serviceSecret(s.Secrets.ForShipping()), shipmentRequest{
			OrderID:           s.OrderID,
			UserID:            s.CustomerUserID,
			ShippingAddress:   shippingAddress(),
			ItemCount:         shipmentItems,
			PackageWeightKg:   amount(packageWeightKg),
			PackageDimensions: packageDimension,
		})
	if err != nil {
		return failure(err)
	}
	if err := assert.ExpectStatus(resp.Status, []int{http.StatusOK, http.StatusCreated}, resp.Body); err != nil {
		return failure(err)
	}
	shipmentID, err := assert.StringField(resp.Body, "shipmentId")
	if err != nil {
		return failure(err)
	}

	s.ShipmentID = shipmentID
	return model.Okf("shipment %s", shipmentID)
}

// ShippingGetByOrder looks the shipment up by order id.
func ShippingGetByOrder(ctx context.Context, env *Env) model.Outcome {
	s := env.State
	if s.OrderID == "" {
		return model.Skip("missing order id")
	}

	resp, err := env.get(ctx, endpoint(s.Services.Shipping, "/api/v1/shipments/order/%s", s.OrderID),
		serviceSecret(s.Secrets.ForShipping()))
	if err != nil {
		return failure(err)
	}
	if err := assert.ExpectStatus(resp.Status, []int{http.StatusOK}, resp.Body); err != nil {
		return failure(err)
	}
	return model.Ok("shipment by order ok")
}

// ShippingUserGet reads the shipment, its tracking, and the customer's
// shipment list as the customer.
func ShippingUserGet(ctx context.Context, env *Env) model.Outcome {
	s := env.State
	if s.ShipmentID == "" || s.CustomerToken == "" {
		return model.Skip("missing shipment or token")
	}
	headers := bearer(s.CustomerToken)

	for _, target := range []string{
		endpoint(s.Services.Shipping, "/api/v1/shipments/%s", s.ShipmentID),
		endpoint(s.Services.Shipping, "/api/v1/shipments/%s/tracking", s.ShipmentID),
		endpoint(s.Services.Shipping, "/api/v1/shipments/user/me"),
	} {
		resp, err := env.get(ctx, target, headers)
		if err != nil {
			return failure(err)
		}
		if err := assert.ExpectStatus(resp.Status, []int{http.StatusOK}, resp.Body); err != nil {
			return failure(err)
		}
	}
	return model.Ok("user shipment ok")
}

// ShippingAdminUpdate moves the shipment to IN_TRANSIT as the admin.
func ShippingAdminUpdate(ctx context.Context, env *Env) model.Outcome {
	s := env.State
	if s.ShipmentID == "" || s.AdminToken == "" {
		return model.Skip("missing shipment or admin token")
	}

	resp, err := env.send(ctx, http.MethodPatch, endpoint(s.Services.Shipping, "/api/v1/shipments/%s/status", s.ShipmentID),
		bearer(s.AdminToken), statusUpdate{Status: shipmentStatus, Reason: statusReason})
	if err != nil {
		return failure(err)
	}
	if err := assert.ExpectStatus(resp.Status, []int{http.StatusOK}, resp.Body); err != nil {
		return failure(err)
	}
	return model.Ok("status updated")
}

// ShippingTrackingAfterUpdate re-reads the shipment and its tracking as the
// customer once the admin has moved it.
func ShippingTrackingAfterUpdate(ctx context.Context, env *Env) model.Outcome {
	s := env.State
	if s.ShipmentID == "" || s.CustomerToken == "" {
		return model.Skip("missing shipment or token")
	}
	headers := bearer(s.CustomerToken)
	shipment := endpoint(s.Services.Shipping, "/api/v1/shipments/%s", s.ShipmentID)

	resp, err := env.get(ctx, shipment, headers)
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

	resp, err = env.get(ctx, shipment+"/tracking", headers)
	if err != nil {
		return failure(err)
	}
	if err := assert.ExpectStatus(resp.Status, []int{http.StatusOK}, resp.Body); err != nil {
		return failure(err)
	}
	return model.Okf("status %s, %d tracking events", status, len(assert.ExtractList(resp.Body)))
}
