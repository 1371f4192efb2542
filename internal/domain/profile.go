package domain

// Preferences is the user-preference sub-document of the profile.
type Preferences struct {
	Notifications bool `json:"notifications"`
	Newsletter    bool `json:"newsletter"`
	DarkMode      bool `json:"dark_mode"`
	SellerMode    bool `json:"seller_mode"`
}

// BankDetails is the payout destination inside the seller sub-document.
type BankDetails struct {
	BankName      string `json:"bank_name"`
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
}

// SellerMetrics are display-only running totals for the seller dashboard.
type SellerMetrics struct {
	TotalSales  float64 `json:"total_sales"`
	TotalOrders int     `json:"total_orders"`
	Rating      float64 `json:"rating"`
}

// SellerProfile is the seller sub-document of the profile.
type SellerProfile struct {
	StoreName   string        `json:"store_name"`
	BankDetails BankDetails   `json:"bank_details"`
	Metrics     SellerMetrics `json:"metrics"`
}

// ProfileSnapshot is the persisted profile document: flat identity fields
// plus the preferences and seller sub-documents.
type ProfileSnapshot struct {
	FullName    string        `json:"full_name"`
	Email       string        `json:"email"`
	PhoneNumber string        `json:"phone_number"`
	Address     string        `json:"address"`
	Preferences Preferences   `json:"preferences"`
	Seller      SellerProfile `json:"seller"`
}

// DefaultProfile returns the documented default document: every field has a
// concrete value, notably notifications enabled. Clear and first load both
// resolve to this.
func DefaultProfile() ProfileSnapshot {
	return ProfileSnapshot{
		Preferences: Preferences{
			Notifications: true,
			Newsletter:    false,
			DarkMode:      false,
			SellerMode:    false,
		},
	}
}

// ProfilePatch updates the flat identity fields. Nil fields are left
// untouched; the preferences and seller sub-documents are never reached from
// here (shallow merge at the top level only).
type ProfilePatch struct {
	FullName    *string `json:"full_name,omitempty"`
	Email       *string `json:"email,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
	Address     *string `json:"address,omitempty"`
}

// PreferencesPatch merges into the preferences sub-document only.
type PreferencesPatch struct {
	Notifications *bool `json:"notifications,omitempty"`
	Newsletter    *bool `json:"newsletter,omitempty"`
	DarkMode      *bool `json:"dark_mode,omitempty"`
	SellerMode    *bool `json:"seller_mode,omitempty"`
}

// SellerPatch merges into the seller sub-document. The merge is shallow one
// level deep: a supplied BankDetails or Metrics pointer replaces that nested
// object wholesale.
type SellerPatch struct {
	StoreName   *string        `json:"store_name,omitempty"`
	BankDetails *BankDetails   `json:"bank_details,omitempty"`
	Metrics     *SellerMetrics `json:"metrics,omitempty"`
}
