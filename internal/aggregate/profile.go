package aggregate

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"marketplace-state-service/internal/domain"
	"marketplace-state-service/internal/repository"
	"marketplace-state-service/internal/store"
)

// Profile owns the user profile document. Updates are shallow merges: a
// top-level patch touches only the supplied identity fields, a preferences
// or seller patch merges one level into that sub-document, and sub-documents
// not mentioned in a patch are preserved verbatim.
type Profile struct {
	core *core[domain.ProfileSnapshot]
}

// NewProfile creates the profile aggregate over the given store.
func NewProfile(kv store.KVStore, logger *zap.Logger) *Profile {
	repo := repository.New[domain.ProfileSnapshot](kv, logger)
	clone := func(p domain.ProfileSnapshot) domain.ProfileSnapshot { return p }
	return &Profile{core: newCore(store.KeyProfile, repo, logger, clone)}
}

// Load pulls the persisted profile into memory, falling back to the
// documented defaults. Call once at startup.
func (p *Profile) Load(ctx context.Context) error {
	return p.core.load(ctx, domain.DefaultProfile())
}

// Ready reports whether the initial load completed.
func (p *Profile) Ready() bool { return p.core.isReady() }

// Snapshot returns a copy of the current profile.
func (p *Profile) Snapshot() domain.ProfileSnapshot { return p.core.current() }

// Subscribe registers a callback invoked with every committed snapshot.
func (p *Profile) Subscribe(fn Subscriber[domain.ProfileSnapshot]) { p.core.subscribe(fn) }

// UpdateProfile merges the supplied identity fields. Preferences and seller
// sub-documents are unreachable from here.
func (p *Profile) UpdateProfile(ctx context.Context, patch domain.ProfilePatch) (domain.ProfileSnapshot, error) {
	return p.core.mutate(ctx, func(cur domain.ProfileSnapshot) (domain.ProfileSnapshot, error) {
		if patch.FullName != nil {
			cur.FullName = *patch.FullName
		}
		if patch.Email != nil {
			cur.Email = *patch.Email
		}
		if patch.PhoneNumber != nil {
			cur.PhoneNumber = *patch.PhoneNumber
		}
		if patch.Address != nil {
			cur.Address = *patch.Address
		}
		return cur, nil
	})
}

// UpdatePreferences merges the supplied flags into the preferences
// sub-document only.
func (p *Profile) UpdatePreferences(ctx context.Context, patch domain.PreferencesPatch) (domain.ProfileSnapshot, error) {
	return p.core.mutate(ctx, func(cur domain.ProfileSnapshot) (domain.ProfileSnapshot, error) {
		if patch.Notifications != nil {
			cur.Preferences.Notifications = *patch.Notifications
		}
		if patch.Newsletter != nil {
			cur.Preferences.Newsletter = *patch.Newsletter
		}
		if patch.DarkMode != nil {
			cur.Preferences.DarkMode = *patch.DarkMode
		}
		if patch.SellerMode != nil {
			cur.Preferences.SellerMode = *patch.SellerMode
		}
		return cur, nil
	})
}

// UpdatePreference is the single-key convenience form of UpdatePreferences.
// Keys match the persisted field names.
func (p *Profile) UpdatePreference(ctx context.Context, key string, value bool) (domain.ProfileSnapshot, error) {
	patch := domain.PreferencesPatch{}
	switch key {
	case "notifications":
		patch.Notifications = &value
	case "newsletter":
		patch.Newsletter = &value
	case "dark_mode":
		patch.DarkMode = &value
	case "seller_mode":
		patch.SellerMode = &value
	default:
		return p.Snapshot(), fmt.Errorf("%w: unknown preference %q", domain.ErrValidation, key)
	}
	return p.UpdatePreferences(ctx, patch)
}

// UpdateSellerProfile merges into the seller sub-document. The merge is
// shallow one level deep: a supplied BankDetails or Metrics pointer replaces
// that nested object wholesale.
func (p *Profile) UpdateSellerProfile(ctx context.Context, patch domain.SellerPatch) (domain.ProfileSnapshot, error) {
	return p.core.mutate(ctx, func(cur domain.ProfileSnapshot) (domain.ProfileSnapshot, error) {
		if patch.StoreName != nil {
			cur.Seller.StoreName = *patch.StoreName
		}
		if patch.BankDetails != nil {
			cur.Seller.BankDetails = *patch.BankDetails
		}
		if patch.Metrics != nil {
			cur.Seller.Metrics = *patch.Metrics
		}
		return cur, nil
	})
}

// Clear removes the persisted key and resets to the documented defaults.
func (p *Profile) Clear(ctx context.Context) (domain.ProfileSnapshot, error) {
	return p.core.clear(ctx, domain.DefaultProfile())
}

// Reset implements the session reset contract.
func (p *Profile) Reset(ctx context.Context) error {
	_, err := p.Clear(ctx)
	return err
}
