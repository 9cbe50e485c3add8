package steps

import (
	"context"
	"net/http"

	"github.com/alexisbeaulieu97/shopflow/internal/assert"
	"github.com/alexisbeaulieu97/shopflow/internal/client"
	"github.com/alexisbeaulieu97/shopflow/internal/model"
)

// UserInternalGet reads the customer through the service-to-service route.
func UserInternalGet(ctx context.Context, env *Env) model.Outcome {
	s := env.State
	if s.CustomerUserID == "" {
		return model.Skip("missing customer user id")
	}

	resp, err := env.get(ctx, endpoint(s.Services.User, "/api/v1/users/internal/%s", s.CustomerUserID),
		serviceSecret(s.Secrets.ForAuth()))
	if err != nil {
		return failure(err)
	}
	if err := assert.ExpectStatus(resp.Status, []int{http.StatusOK}, resp.Body); err != nil {
		return failure(err)
	}
	if _, err := assert.EnsureField(resp.Body, "userId"); err != nil {
		return failure(err)
	}
	return model.Ok("internal user found")
}

// UserMe reads the customer's own profile.
func UserMe(ctx context.Context, env *Env) model.Outcome {
	s := env.State
	if s.CustomerToken == "" {
		return model.Skip("missing access token")
	}

	resp, err := env.get(ctx, endpoint(s.Services.User, "/api/v1/users/me"), bearer(s.CustomerToken))
	if err != nil {
		return failure(err)
	}
	if err := assert.ExpectStatus(resp.Status, []int{http.StatusOK}, resp.Body); err != nil {
		return failure(err)
	}
	if _, err := assert.EnsureField(resp.Body, "userId"); err != nil {
		return failure(err)
	}
	return model.Ok("me ok")
}

// UserAddresses resolves the shipping and billing addresses by label and
// marks them as the customer's defaults.
func UserAddresses(ctx context.Context, env *Env) model.Outcome {
	s := env.State
	if s.CustomerToken == "" {
		return model.Skip("missing access token")
	}
	headers := bearer(s.CustomerToken)
	collection := endpoint(s.Services.User, "/api/v1/addresses")

	addressResource := func(payload address) resource {
		return resource{
			lookup: func(ctx context.Context) (string, error) {
				resp, err := env.get(ctx, collection, headers)
				if err != nil {
					return "", err
				}
				if err := assert.ExpectStatus(resp.Status, []int{http.StatusOK}, resp.Body); err != nil {
					return "", err
				}
				return findIn(assert.ExtractList(resp.Body), "label", payload.Label, "addressId"), nil
			},
			create: func(ctx context.Context) (*client.Response, error) {
				return env.send(ctx, http.MethodPost, collection, headers, payload)
			},
			idField: "addressId",
		}
	}

	shippingID, _, err := findOrCreate(ctx, addressResource(shippingAddress()))
	if err != nil {
		return failure(err)
	}
	s.ShippingAddressID = shippingID

	billingID, _, err := findOrCreate(ctx, addressResource(billingAddress()))
	if err != nil {
		return failure(err)
	}
	s.BillingAddressID = billingID

	if err := env.bestEffort(ctx, http.MethodPatch, endpoint(s.Services.User, "/api/v1/addresses/%s/default-shipping", shippingID), headers, nil); err != nil {
		return failure(err)
	}
	if err := env.bestEffort(ctx, http.MethodPatch, endpoint(s.Services.User, "/api/v1/addresses/%s/default-billing", billingID), headers, nil); err != nil {
		return failure(err)
	}

	return model.Okf("shipping %s, billing %s", shippingID, billingID)
}

// bestEffort issues a request whose status does not decide the step. A
// non-2xx status is logged; only transport errors are returned.
func (e *Env) bestEffort(ctx context.Context, method, url string, headers map[string]string, body any) error {
	resp, err := e.send(ctx, method, url, headers, body)
	if err != nil {
		return err
	}
	if resp.Status < 200 || resp.Status > 299 {
		e.Log.WithFields(map[string]any{
			"method": method,
			"url":    url,
			"status": resp.Status,
		}).Warn("best-effort request not applied")
	}
	return nil
}
