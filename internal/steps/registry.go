package steps

import (
	"context"

	"github.com/alexisbeaulieu97/shopflow/internal/model"
)

// Func is the signature every step implements.
type Func func(ctx context.Context, env *Env) model.Outcome

// Step pairs a display name with its implementation.
type Step struct {
	Name string
	Run  Func
}

// Bind closes the step over env.
func (s Step) Bind(env *Env) func(ctx context.Context) model.Outcome {
	return func(ctx context.Context) model.Outcome {
		return s.Run(ctx, env)
	}
}

// Registry returns the workflow in execution order. Later steps depend on
// identifiers captured by earlier ones.
func Registry() []Step {
	return []Step{
		{Name: "Auth public key", Run: AuthPublicKey},
		{Name: "Auth login admin", Run: AuthLoginAdmin},
		{Name: "Auth login/register customer", Run: AuthLoginOrRegisterCustomer},
		{Name: "Auth refresh", Run: AuthRefresh},
		{Name: "Auth validate", Run: AuthValidate},
		{Name: "Auth token signature", Run: AuthTokenSignature},

		{Name: "User internal get", Run: UserInternalGet},
		{Name: "User me", Run: UserMe},
		{Name: "User addresses", Run: UserAddresses},

		{Name: "Catalog category", Run: CatalogCategory},
		{Name: "Catalog product", Run: CatalogProduct},

		{Name: "Cart get/create", Run: CartGetOrCreate},
		{Name: "Cart add/update", Run: CartAddOrUpdate},

		{Name: "Order create", Run: OrderCreate},
		{Name: "Order get", Run: OrderGet},
		{Name: "Order list", Run: OrderList},

		{Name: "Payment create", Run: PaymentCreate},
		{Name: "Payment authorize", Run: PaymentAuthorize},
		{Name: "Payment capture", Run: PaymentCapture},
		{Name: "Payment refund", Run: PaymentRefund},
		{Name: "Payment get", Run: PaymentGet},

		{Name: "Inventory stock", Run: InventoryStock},
		{Name: "Inventory reservation", Run: InventoryReservation},

		{Name: "Shipping create", Run: ShippingCreate},
		{Name: "Shipping get by order", Run: ShippingGetByOrder},
		{Name: "Shipping user get", Run: ShippingUserGet},
		{Name: "Shipping admin update", Run: ShippingAdminUpdate},
		{Name: "Shipping tracking after update", Run: ShippingTrackingAfterUpdate},
	}
}

// Names lists the registry in order.
func Names() []string {
	registry := Registry()
	names := make([]string, len(registry))
	for i, step := range registry {
		names[i] = step.Name
	}
	return names
}
