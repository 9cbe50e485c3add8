package steps

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Labels used to find resources created by earlier runs.
const (
	ShippingAddressLabel = "E2E Shipping"
	BillingAddressLabel  = "E2E Billing"
	CategoryName         = "E2E Electronics"
	ProductName          = "E2E Console"
	CustomerName         = "E2E Customer"
)

const (
	productSize      = "STD"
	productColor     = "Black"
	variantStock     = 10
	cartQuantity     = 2
	stockInitialQty  = 25
	stockThreshold   = 5
	stockTopUp       = 10
	shipmentItems    = 2
	shipmentStatus   = "IN_TRANSIT"
	refundReason     = "E2E test refund"
	topUpReason      = "E2E test top-up"
	statusReason     = "E2E test update"
	packageDimension = "30x20x15 cm"
)

var packageWeightKg = decimal.RequireFromString("2.5")

// amount renders a decimal as a bare JSON number.
type amount decimal.Decimal

func (a amount) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(a).String()), nil
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

type address struct {
	Label      string `json:"label"`
	Country    string `json:"country"`
	State      string `json:"state"`
	City       string `json:"city"`
	Zip        string `json:"zip"`
	Street     string `json:"street"`
	Number     string `json:"number"`
	Complement string `json:"complement"`
}

func shippingAddress() address {
	return address{
		Label:      ShippingAddressLabel,
		Country:    "US",
		State:      "CA",
		City:       "San Francisco",
		Zip:        "94105",
		Street:     "Market Street",
		Number:     "100",
		Complement: "Suite 1",
	}
}

func billingAddress() address {
	addr := shippingAddress()
	addr.Label = BillingAddressLabel
	addr.Number = "200"
	addr.Complement = "Suite 2"
	return addr
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type productRequest struct {
	SellerID        string         `json:"sellerId"`
	Name            string         `json:"name"`
	Description     string         `json:"description"`
	BasePrice       amount         `json:"basePrice"`
	CategoryID      string         `json:"categoryId"`
	AvailableSizes  []string       `json:"availableSizes"`
	AvailableColors []string       `json:"availableColors"`
	StockPerVariant map[string]int `json:"stockPerVariant"`
	ImageURLs       []string       `json:"imageUrls"`
}

type cartItemRequest struct {
	ProductID string `json:"productId,omitempty"`
	Quantity  int    `json:"quantity"`
}

type orderRequest struct {
	UserID            string `json:"userId"`
	CartID            string `json:"cartId"`
	ShippingAddressID string `json:"shippingAddressId"`
	BillingAddressID  string `json:"billingAddressId"`
}

type paymentRequest struct {
	OrderID  string `json:"orderId"`
	UserID   string `json:"userId"`
	Amount   amount `json:"amount"`
	Currency string `json:"currency"`
}

type paymentActionRequest struct {
	Amount         *amount `json:"amount,omitempty"`
	Reason         string  `json:"reason,omitempty"`
	IdempotencyKey string  `json:"idempotencyKey"`
}

type stockItemRequest struct {
	SKU               string `json:"sku"`
	ProductID         string `json:"productId"`
	InitialQty        int    `json:"initialQty"`
	LowStockThreshold int    `json:"lowStockThreshold"`
}

type stockAdjustment struct {
	AvailableQtyDelta int    `json:"availableQtyDelta"`
	Reason            string `json:"reason"`
}

type reservationLine struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

type reservationRequest struct {
	OrderID string            `json:"orderId"`
	Lines   []reservationLine `json:"lines"`
}

type shipmentRequest struct {
	OrderID           string  `json:"orderId"`
	UserID            string  `json:"userId"`
	ShippingAddress   address `json:"shippingAddress"`
	ItemCount         int     `json:"itemCount"`
	PackageWeightKg   amount  `json:"packageWeightKg"`
	PackageDimensions string  `json:"packageDimensions"`
}

type statusUpdate struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// SKUFor derives the catalog SKU of a product: "PROD-" followed by the first
// eight characters of its id in upper case.
func SKUFor(productID string) string {
	prefix := productID
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	return "PROD-" + strings.ToUpper(prefix)
}
