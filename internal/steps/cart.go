package steps

import (
	"context"
	"net/http"

	"github.com/alexisbeaulieu97/shopflow/internal/assert"
	"github.com/alexisbeaulieu97/shopflow/internal/client"
	"github.com/alexisbeaulieu97/shopflow/internal/model"
)

// CartGetOrCreate reads the customer's cart; the cart service creates it on
// first access.
func CartGetOrCreate(ctx context.Context, env *Env) model.Outcome {
	s := env.State
	if s.ProductID == "" || s.CustomerUserID == "" {
		return model.Skip("missing product or user id")
	}

	resp, err := env.get(ctx, endpoint(s.Services.Cart, "/api/v1/carts/%s", s.CustomerUserID), nil)
	if err != nil {
		return failure(err)
	}
	if err := assert.ExpectStatus(resp.Status, []int{http.StatusOK}, resp.Body); err != nil {
		return failure(err)
	}
	cartID, err := assert.StringField(resp.Body, "cartId")
	if err != nil {
		return failure(err)
	}

	s.CartID = cartID
	return model.Okf("cart %s", cartID)
}

// CartAddOrUpdate puts the product in the cart, updating the quantity when
// the line already exists.
func CartAddOrUpdate(ctx context.Context, env *Env) model.Outcome {
	s := env.State
	if s.CartID == "" || s.ProductID == "" || s.CustomerUserID == "" {
		return model.Skip("missing cart or product or user id")
	}
	cartURL := endpoint(s.Services.Cart, "/api/v1/carts/%s", s.CustomerUserID)

	resp, err := env.get(ctx, cartURL, nil)
	if err != nil {
		return failure(err)
	}
	if err := assert.ExpectStatus(resp.Status, []int{http.StatusOK}, resp.Body); err != nil {
		return failure(err)
	}

	if itemID := cartItemFor(resp.Body, s.ProductID); itemID != "" {
		s.CartItemID = itemID
		resp, err = env.send(ctx, http.MethodPut, cartURL+"/items/"+itemID, nil, cartItemRequest{Quantity: cartQuantity})
		if err != nil {
			return failure(err)
		}
		if err := assert.ExpectStatus(resp.Status, []int{http.StatusOK}, resp.Body); err != nil {
			return failure(err)
		}
		return model.Okf("updated item %s", itemID)
	}

	resp, err = env.send(ctx, http.MethodPost, cartURL+"/items", nil, cartItemRequest{ProductID: s.ProductID, Quantity: cartQuantity})
	if err != nil {
		return failure(err)
	}
	if err := assert.ExpectStatus(resp.Status, []int{http.StatusOK}, resp.Body); err != nil {
		return failure(err)
	}

	itemID := cartItemFor(resp.Body, s.ProductID)
	if itemID != "" {
		s.CartItemID = itemID
	}
	return model.Okf("added item %s", itemID)
}

func cartItemFor(cart client.Body, productID string) string {
	obj, ok := cart.Object()
	if !ok {
		return ""
	}
	return findIn(assert.List(obj["items"]), "productId", productID, "cartItemId")
}
