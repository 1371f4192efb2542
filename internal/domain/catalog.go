package domain

import "time"

// SellerProduct is one product in the seller's own catalog.
type SellerProduct struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	Category    string    `json:"category,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SellerProductPatch carries a shallow update of a catalog product. Nil
// fields are left untouched.
type SellerProductPatch struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Stock       *int     `json:"stock,omitempty"`
	Category    *string  `json:"category,omitempty"`
	ImageURL    *string  `json:"image_url,omitempty"`
}

// OrderStatus is the fulfilment state of a seller order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// Forward-only transition graph. Cancellation is reachable only before the
// order ships.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderShipped, OrderCancelled},
	OrderShipped:    {OrderDelivered},
	OrderDelivered:  {},
	OrderCancelled:  {},
}

// CanTransition reports whether from -> to is a legal order status edge.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Order is one entry in the seller's order sequence.
type Order struct {
	ID          string      `json:"id"`
	ProductID   string      `json:"product_id"`
	ProductName string      `json:"product_name"`
	Quantity    int         `json:"quantity"`
	UnitPrice   float64     `json:"unit_price"`
	Status      OrderStatus `json:"status"`
	PlacedAt    time.Time   `json:"placed_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// CatalogSnapshot is the persisted seller catalog document: the product
// sequence plus the parallel order sequence.
type CatalogSnapshot struct {
	Products []SellerProduct `json:"products"`
	Orders   []Order         `json:"orders"`
}

// EmptyCatalog returns the default document used when the persisted key is
// absent.
func EmptyCatalog() CatalogSnapshot {
	return CatalogSnapshot{Products: []SellerProduct{}, Orders: []Order{}}
}

// ProductByID returns the catalog product with the given id, if any.
func (c CatalogSnapshot) ProductByID(id string) (SellerProduct, bool) {
	for _, p := range c.Products {
		if p.ID == id {
			return p, true
		}
	}
	return SellerProduct{}, false
}

// OrderByID returns the order with the given id, if any.
func (c CatalogSnapshot) OrderByID(id string) (Order, bool) {
	for _, o := range c.Orders {
		if o.ID == id {
			return o, true
		}
	}
	return Order{}, false
}

// Clone returns an independent copy safe to hand to subscribers.
func (c CatalogSnapshot) Clone() CatalogSnapshot {
	products := make([]SellerProduct, len(c.Products))
	copy(products, c.Products)
	orders := make([]Order, len(c.Orders))
	copy(orders, c.Orders)
	return CatalogSnapshot{Products: products, Orders: orders}
}
