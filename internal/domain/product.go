package domain

// ProductSnapshot is the client-side view of a product as captured at the
// moment it entered an aggregate (cart line, wishlist entry). Prices are
// frozen in the snapshot; a later remote price change does not rewrite lines.
// The json tags correspond to the persisted document fields.
type ProductSnapshot struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"image_url,omitempty"`
	Category string  `json:"category,omitempty"`
}
