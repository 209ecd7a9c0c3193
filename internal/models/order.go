package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order statuses. Only confirmed, dispatched and completed orders hold
// stock allocation.
const (
	OrderStatusPending    = "PENDING"
	OrderStatusConfirmed  = "CONFIRMED"
	OrderStatusDispatched = "DISPATCHED"
	OrderStatusCompleted  = "COMPLETED"
	OrderStatusCancelled  = "CANCELLED"
)

// AllocatingStatuses are the order statuses that count toward stock
// allocation.
var AllocatingStatuses = []string{OrderStatusConfirmed, OrderStatusDispatched, OrderStatusCompleted}

// CODFeePaidByCustomer marks that the cash-on-delivery fee is charged
// to the customer and therefore counts toward their pending payment.
const CODFeePaidByCustomer = "CUSTOMER"

type Order struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	TenantID    uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	CustomerID  uuid.UUID  `json:"customer_id" db:"customer_id"`
	OrderNumber string     `json:"order_number" db:"order_number"`
	Status      string     `json:"status" db:"status"`
	OrderDate   time.Time  `json:"order_date" db:"order_date"`

	// Legacy selection fields, kept for orders created before items
	// were normalized. Each holds a JSON document as stored.
	SelectedProducts  *string `json:"selected_products" db:"selected_products"`
	ProductQuantities *string `json:"product_quantities" db:"product_quantities"`
	ProductPrices     *string `json:"product_prices" db:"product_prices"`

	ShippingCharge decimal.Decimal `json:"shipping_charge" db:"shipping_charge"`
	CODFee         decimal.Decimal `json:"cod_fee" db:"cod_fee"`
	CODFeePaidBy   *string         `json:"cod_fee_paid_by" db:"cod_fee_paid_by"`
	RefundAmount   decimal.Decimal `json:"refund_amount" db:"refund_amount"`

	// PaidAmount is a display cache only. Balance calculations always
	// read the payments table instead.
	PaidAmount decimal.Decimal `json:"paid_amount" db:"paid_amount"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	Items []*OrderItem `json:"items,omitempty" db:"-"`
}

// IsAllocating reports whether the order's status holds stock.
func (o *Order) IsAllocating() bool {
	for _, s := range AllocatingStatuses {
		if o.Status == s {
			return true
		}
	}
	return false
}

// legacySelection is one entry of the legacy selected_products JSON.
// Old clients stored either a bare product id string or an object.
type legacySelection struct {
	ProductID        string `json:"productId"`
	ProductVariantID string `json:"productVariantId"`
	Name             string `json:"name"`
}

func (s *legacySelection) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		s.ProductID = id
		return nil
	}
	type alias legacySelection
	return json.Unmarshal(data, (*alias)(s))
}

// LegacyDemands migrates the legacy selected_products/product_quantities
// pair into normalized stock demands. The quantity map is keyed by
// variant id when present, otherwise product id; values may be numbers
// or numeric strings. Parsing happens here, at the data boundary, so
// the allocation and balance code never branch on representation.
func (o *Order) LegacyDemands() ([]StockDemand, error) {
	if o.SelectedProducts == nil || *o.SelectedProducts == "" {
		return nil, nil
	}
	var selections []legacySelection
	if err := json.Unmarshal([]byte(*o.SelectedProducts), &selections); err != nil {
		return nil, fmt.Errorf("order %s: parse selected_products: %w", o.ID, err)
	}
	quantities, err := parseLegacyNumberMap(o.ProductQuantities)
	if err != nil {
		return nil, fmt.Errorf("order %s: parse product_quantities: %w", o.ID, err)
	}
	prices, err := parseLegacyDecimalMap(o.ProductPrices)
	if err != nil {
		return nil, fmt.Errorf("order %s: parse product_prices: %w", o.ID, err)
	}

	demands := make([]StockDemand, 0, len(selections))
	for _, sel := range selections {
		d := StockDemand{ProductName: sel.Name}
		key := sel.ProductID
		if sel.ProductVariantID != "" {
			key = sel.ProductVariantID
			variantID, err := uuid.Parse(sel.ProductVariantID)
			if err != nil {
				return nil, fmt.Errorf("order %s: bad variant id %q", o.ID, sel.ProductVariantID)
			}
			d.Key = VariantKey(variantID)
		} else {
			productID, err := uuid.Parse(sel.ProductID)
			if err != nil {
				return nil, fmt.Errorf("order %s: bad product id %q", o.ID, sel.ProductID)
			}
			d.Key = ProductKey(productID)
		}
		d.Quantity = quantities[key]
		d.Price = prices[key]
		if d.Quantity <= 0 {
			continue
		}
		demands = append(demands, d)
	}
	return demands, nil
}

// parseLegacyNumberMap reads a JSON object of id -> quantity where the
// quantity may be a number or a numeric string.
func parseLegacyNumberMap(raw *string) (map[string]int, error) {
	out := make(map[string]int)
	if raw == nil || *raw == "" {
		return out, nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal([]byte(*raw), &m); err != nil {
		return nil, err
	}
	for k, v := range m {
		var n int
		if err := json.Unmarshal(v, &n); err == nil {
			out[k] = n
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, fmt.Errorf("quantity for %q is neither number nor string", k)
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("quantity for %q: %w", k, err)
		}
		out[k] = n
	}
	return out, nil
}

func parseLegacyDecimalMap(raw *string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal)
	if raw == nil || *raw == "" {
		return out, nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal([]byte(*raw), &m); err != nil {
		return nil, err
	}
	for k, v := range m {
		s := string(v)
		if len(s) >= 2 && s[0] == '"' {
			if err := json.Unmarshal(v, &s); err != nil {
				return nil, err
			}
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("price for %q: %w", k, err)
		}
		out[k] = d
	}
	return out, nil
}
