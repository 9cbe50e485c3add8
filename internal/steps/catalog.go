package steps

import (
	"context"
	"net/http"
	"net/url"

	"github.com/alexisbeaulieu97/shopflow/internal/assert"
	"github.com/alexisbeaulieu97/shopflow/internal/client"
	"github.com/alexisbeaulieu97/shopflow/internal/model"
)

// CatalogCategory resolves the test category by name.
func CatalogCategory(ctx context.Context, env *Env) model.Outcome {
	s := env.State
	if s.AdminToken == "" {
		return model.Skip("missing admin token")
	}
	collection := endpoint(s.Services.Catalog, "/api/v1/categories")

	id, how, err := findOrCreate(ctx, resource{
		lookup: func(ctx context.Context) (string, error) {
			resp, err := env.get(ctx, collection, nil)
			if err != nil {
				return "", err
			}
			if err := assert.ExpectStatus(resp.Status, []int{http.StatusOK}, resp.Body); err != nil {
				return "", err
			}
			return findIn(assert.ExtractList(resp.Body), "name", CategoryName, "id"), nil
		},
		create: func(ctx context.Context) (*client.Response, error) {
			return env.send(ctx, http.MethodPost, collection, bearer(s.AdminToken),
				categoryRequest{Name: CategoryName, Description: "E2E test category"})
		},
		idField: "id",
	})
	if err != nil {
		return failure(err)
	}

	s.CategoryID = id
	return model.Okf("%s id %s", how, id)
}

// CatalogProduct resolves the test product inside the test category and
// derives its SKU.
func CatalogProduct(ctx context.Context, env *Env) model.Outcome {
	s := env.State
	if s.AdminToken == "" || s.CategoryID == "" {
		return model.Skip("missing admin token or category")
	}

	query := url.Values{}
	query.Set("categoryId", s.CategoryID)
	query.Set("size", "100")
	listing := endpoint(s.Services.Catalog, "/api/v1/products?%s", query.Encode())

	id, _, err := findOrCreate(ctx, resource{
		lookup: func(ctx context.Context) (string, error) {
			resp, err := env.get(ctx, listing, nil)
			if err != nil {
				return "", err
			}
			if err := assert.ExpectStatus(resp.Status, []int{http.StatusOK}, resp.Body); err != nil {
				return "", err
			}
			return findIn(assert.ExtractList(resp.Body), "name", ProductName, "id"), nil
		},
		create: func(ctx context.Context) (*client.Response, error) {
			return env.send(ctx, http.MethodPost, endpoint(s.Services.Catalog, "/api/v1/products"), bearer(s.AdminToken), productRequest{
				SellerID:        s.AdminUserID,
				Name:            ProductName,
				Description:     "E2E test product",
				BasePrice:       amount(s.Fixtures.ProductPrice),
				CategoryID:      s.CategoryID,
				AvailableSizes:  []string{productSize},
				AvailableColors: []string{productColor},
				StockPerVariant: map[string]int{productSize + "-" + productColor: variantStock},
				ImageURLs:       []string{s.Fixtures.ImageURL},
			})
		},
		idField: "id",
	})
	if err != nil {
		return failure(err)
	}

	s.ProductID = id
	s.SKU = SKUFor(id)
	return model.Okf("product %s", id)
}
