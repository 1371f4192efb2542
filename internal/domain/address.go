package domain

// Address is one entry in the address book. Invariant: when the book is
// non-empty, exactly one entry has IsDefault set.
type Address struct {
	ID          string `json:"id"`
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
	Street      string `json:"street"`
	City        string `json:"city"`
	State       string `json:"state,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
	Country     string `json:"country"`
	IsDefault   bool   `json:"is_default"`
}

// AddressFields is the caller-supplied portion of a new address. The
// aggregate assigns the id and the default flag.
type AddressFields struct {
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
	Street      string `json:"street"`
	City        string `json:"city"`
	State       string `json:"state,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
	Country     string `json:"country"`
}

// AddressPatch carries a shallow update of a single entry. Nil fields are
// left untouched; the default flag is never patched through here.
type AddressPatch struct {
	FullName    *string `json:"full_name,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
	Street      *string `json:"street,omitempty"`
	City        *string `json:"city,omitempty"`
	State       *string `json:"state,omitempty"`
	PostalCode  *string `json:"postal_code,omitempty"`
	Country     *string `json:"country,omitempty"`
}

// AddressBookSnapshot is the persisted address book document.
type AddressBookSnapshot struct {
	Addresses []Address `json:"addresses"`
}

// EmptyAddressBook returns the default document used when the persisted key
// is absent.
func EmptyAddressBook() AddressBookSnapshot {
	return AddressBookSnapshot{Addresses: []Address{}}
}

// DefaultAddress returns the entry flagged as default, if any.
func (b AddressBookSnapshot) DefaultAddress() (Address, bool) {
	for _, a := range b.Addresses {
		if a.IsDefault {
			return a, true
		}
	}
	return Address{}, false
}

// AddressByID returns the entry with the given id, if any.
func (b AddressBookSnapshot) AddressByID(id string) (Address, bool) {
	for _, a := range b.Addresses {
		if a.ID == id {
			return a, true
		}
	}
	return Address{}, false
}

// Clone returns an independent copy safe to hand to subscribers.
func (b AddressBookSnapshot) Clone() AddressBookSnapshot {
	addrs := make([]Address, len(b.Addresses))
	copy(addrs, b.Addresses)
	return AddressBookSnapshot{Addresses: addrs}
}
