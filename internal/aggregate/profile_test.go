package aggregate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-state-service/internal/domain"
	"marketplace-state-service/internal/store"
)

func newTestProfile(t *testing.T, kv store.KVStore) *Profile {
	t.Helper()
	p := NewProfile(kv, nil)
	require.NoError(t, p.Load(context.Background()))
	return p
}

func TestProfile_LoadFallsBackToDefaults(t *testing.T) {
	p := newTestProfile(t, store.NewMemoryStore())

	snapshot := p.Snapshot()
	assert.True(t, snapshot.Preferences.Notifications, "Notifications default to enabled")
	assert.False(t, snapshot.Preferences.Newsletter)
	assert.False(t, snapshot.Preferences.DarkMode)
	assert.False(t, snapshot.Preferences.SellerMode)
	assert.Empty(t, snapshot.FullName)
}

func TestProfile_UpdateProfile_TouchesOnlySuppliedFields(t *testing.T) {
	p := newTestProfile(t, store.NewMemoryStore())
	ctx := context.Background()

	name := "Ada Obi"
	email := "ada@example.com"
	snapshot, err := p.UpdateProfile(ctx, domain.ProfilePatch{FullName: &name, Email: &email})
	require.NoError(t, err)
	assert.Equal(t, "Ada Obi", snapshot.FullName)
	assert.Equal(t, "ada@example.com", snapshot.Email)

	phone := "+2348000000000"
	snapshot, err = p.UpdateProfile(ctx, domain.ProfilePatch{PhoneNumber: &phone})
	require.NoError(t, err)
	assert.Equal(t, "Ada Obi", snapshot.FullName, "Earlier fields survive a later patch")
	assert.Equal(t, "+2348000000000", snapshot.PhoneNumber)
	assert.True(t, snapshot.Preferences.Notifications, "Identity patch never reaches preferences")
}

func TestProfile_UpdatePreferences_PreservesOtherSubDocuments(t *testing.T) {
	p := newTestProfile(t, store.NewMemoryStore())
	ctx := context.Background()

	name := "Ada Obi"
	_, err := p.UpdateProfile(ctx, domain.ProfilePatch{FullName: &name})
	require.NoError(t, err)
	storeName := "Ada's Fabrics"
	_, err = p.UpdateSellerProfile(ctx, domain.SellerPatch{StoreName: &storeName})
	require.NoError(t, err)

	dark := true
	snapshot, err := p.UpdatePreferences(ctx, domain.PreferencesPatch{DarkMode: &dark})
	require.NoError(t, err)

	assert.True(t, snapshot.Preferences.DarkMode)
	assert.True(t, snapshot.Preferences.Notifications, "Unpatched flags keep their values")
	assert.Equal(t, "Ada Obi", snapshot.FullName)
	assert.Equal(t, "Ada's Fabrics", snapshot.Seller.StoreName, "Seller sub-document is untouched")
}

func TestProfile_UpdatePreference_SingleKey(t *testing.T) {
	p := newTestProfile(t, store.NewMemoryStore())
	ctx := context.Background()

	snapshot, err := p.UpdatePreference(ctx, "newsletter", true)
	require.NoError(t, err)
	assert.True(t, snapshot.Preferences.Newsletter)

	snapshot, err = p.UpdatePreference(ctx, "notifications", false)
	require.NoError(t, err)
	assert.False(t, snapshot.Preferences.Notifications)
	assert.True(t, snapshot.Preferences.Newsletter)
}

func TestProfile_UpdatePreference_UnknownKeyFails(t *testing.T) {
	p := newTestProfile(t, store.NewMemoryStore())

	_, err := p.UpdatePreference(context.Background(), "contrast", true)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, domain.DefaultProfile(), p.Snapshot())
}

func TestProfile_UpdateSellerProfile_ReplacesNestedObjectsWholesale(t *testing.T) {
	p := newTestProfile(t, store.NewMemoryStore())
	ctx := context.Background()

	_, err := p.UpdateSellerProfile(ctx, domain.SellerPatch{
		BankDetails: &domain.BankDetails{
			BankName:      "First Bank",
			AccountName:   "Ada Obi",
			AccountNumber: "0123456789",
		},
	})
	require.NoError(t, err)

	// A second BankDetails patch replaces the whole nested object; fields it
	// leaves zero are zeroed, not merged.
	snapshot, err := p.UpdateSellerProfile(ctx, domain.SellerPatch{
		BankDetails: &domain.BankDetails{BankName: "GTBank"},
	})
	require.NoError(t, err)

	assert.Equal(t, "GTBank", snapshot.Seller.BankDetails.BankName)
	assert.Empty(t, snapshot.Seller.BankDetails.AccountName)
	assert.Empty(t, snapshot.Seller.BankDetails.AccountNumber)
}

func TestProfile_Clear_ResetsToDefaults(t *testing.T) {
	kv := store.NewMemoryStore()
	p := newTestProfile(t, kv)
	ctx := context.Background()

	name := "Ada Obi"
	_, err := p.UpdateProfile(ctx, domain.ProfilePatch{FullName: &name})
	require.NoError(t, err)
	require.Equal(t, 1, kv.Len())

	snapshot, err := p.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultProfile(), snapshot)
	assert.Equal(t, 0, kv.Len(), "Clear removes the key instead of writing defaults")
}

func TestProfile_SurvivesReload(t *testing.T) {
	kv := store.NewMemoryStore()
	ctx := context.Background()

	first := newTestProfile(t, kv)
	dark := true
	_, err := first.UpdatePreferences(ctx, domain.PreferencesPatch{DarkMode: &dark})
	require.NoError(t, err)

	second := newTestProfile(t, kv)
	assert.Equal(t, first.Snapshot(), second.Snapshot())
}
