package aggregate

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"marketplace-state-service/internal/domain"
	"marketplace-state-service/internal/repository"
	"marketplace-state-service/internal/store"
)

// AddressBook owns the address book document. Invariant: when the book is
// non-empty, exactly one entry carries the default flag — including inside
// the persisted document, never just in memory.
type AddressBook struct {
	core *core[domain.AddressBookSnapshot]
}

// NewAddressBook creates the address book aggregate over the given store.
func NewAddressBook(kv store.KVStore, logger *zap.Logger) *AddressBook {
	repo := repository.New[domain.AddressBookSnapshot](kv, logger)
	return &AddressBook{core: newCore(store.KeyAddresses, repo, logger, domain.AddressBookSnapshot.Clone)}
}

// Load pulls the persisted address book into memory. Call once at startup.
func (b *AddressBook) Load(ctx context.Context) error {
	return b.core.load(ctx, domain.EmptyAddressBook())
}

// Ready reports whether the initial load completed.
func (b *AddressBook) Ready() bool { return b.core.isReady() }

// Snapshot returns a copy of the current address book.
func (b *AddressBook) Snapshot() domain.AddressBookSnapshot { return b.core.current() }

// Subscribe registers a callback invoked with every committed snapshot.
func (b *AddressBook) Subscribe(fn Subscriber[domain.AddressBookSnapshot]) { b.core.subscribe(fn) }

// Add appends a new address with a fresh id. The first entry in an empty
// book becomes the default automatically.
func (b *AddressBook) Add(ctx context.Context, fields domain.AddressFields) (domain.AddressBookSnapshot, error) {
	if fields.Street == "" || fields.City == "" || fields.Country == "" {
		return b.Snapshot(), fmt.Errorf("%w: street, city and country are required", domain.ErrValidation)
	}
	return b.core.mutate(ctx, func(cur domain.AddressBookSnapshot) (domain.AddressBookSnapshot, error) {
		entry := domain.Address{
			ID:          uuid.NewString(),
			FullName:    fields.FullName,
			PhoneNumber: fields.PhoneNumber,
			Street:      fields.Street,
			City:        fields.City,
			State:       fields.State,
			PostalCode:  fields.PostalCode,
			Country:     fields.Country,
			IsDefault:   len(cur.Addresses) == 0,
		}
		cur.Addresses = append(cur.Addresses, entry)
		return cur, nil
	})
}

// Delete removes the entry. When the removed entry was the default and
// entries remain, the first remaining entry is promoted — the promotion is
// mandatory to keep the single-default invariant. Absent ids are a no-op.
func (b *AddressBook) Delete(ctx context.Context, id string) (domain.AddressBookSnapshot, error) {
	return b.core.mutate(ctx, func(cur domain.AddressBookSnapshot) (domain.AddressBookSnapshot, error) {
		for i, addr := range cur.Addresses {
			if addr.ID != id {
				continue
			}
			wasDefault := addr.IsDefault
			cur.Addresses = append(cur.Addresses[:i], cur.Addresses[i+1:]...)
			if wasDefault && len(cur.Addresses) > 0 {
				cur.Addresses[0].IsDefault = true
			}
			return cur, nil
		}
		return cur, errNoop
	})
}

// SetDefault flags the target entry and clears every other flag in the same
// write, so two defaults never coexist even transiently in the document.
func (b *AddressBook) SetDefault(ctx context.Context, id string) (domain.AddressBookSnapshot, error) {
	return b.core.mutate(ctx, func(cur domain.AddressBookSnapshot) (domain.AddressBookSnapshot, error) {
		if _, ok := cur.AddressByID(id); !ok {
			return cur, fmt.Errorf("%w: address %q", domain.ErrNotFound, id)
		}
		for i := range cur.Addresses {
			cur.Addresses[i].IsDefault = cur.Addresses[i].ID == id
		}
		return cur, nil
	})
}

// Update shallow-merges the patch into the entry. The default flag is never
// touched from here.
func (b *AddressBook) Update(ctx context.Context, id string, patch domain.AddressPatch) (domain.AddressBookSnapshot, error) {
	return b.core.mutate(ctx, func(cur domain.AddressBookSnapshot) (domain.AddressBookSnapshot, error) {
		for i := range cur.Addresses {
			if cur.Addresses[i].ID != id {
				continue
			}
			applyAddressPatch(&cur.Addresses[i], patch)
			return cur, nil
		}
		return cur, fmt.Errorf("%w: address %q", domain.ErrNotFound, id)
	})
}

func applyAddressPatch(addr *domain.Address, patch domain.AddressPatch) {
	if patch.FullName != nil {
		addr.FullName = *patch.FullName
	}
	if patch.PhoneNumber != nil {
		addr.PhoneNumber = *patch.PhoneNumber
	}
	if patch.Street != nil {
		addr.Street = *patch.Street
	}
	if patch.City != nil {
		addr.City = *patch.City
	}
	if patch.State != nil {
		addr.State = *patch.State
	}
	if patch.PostalCode != nil {
		addr.PostalCode = *patch.PostalCode
	}
	if patch.Country != nil {
		addr.Country = *patch.Country
	}
}

// Clear empties the book and removes the persisted key.
func (b *AddressBook) Clear(ctx context.Context) (domain.AddressBookSnapshot, error) {
	return b.core.clear(ctx, domain.EmptyAddressBook())
}

// Reset implements the session reset contract.
func (b *AddressBook) Reset(ctx context.Context) error {
	_, err := b.Clear(ctx)
	return err
}
