package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sivd/piivault/internal/anonymizer/domain"
	apperrors "github.com/sivd/piivault/internal/errors"
	vaultDomain "github.com/sivd/piivault/internal/vault/domain"
)

// fakeStore implements vaultService.Store in memory with the same canonical
// token convergence as the real store.
type fakeStore struct {
	mu       sync.Mutex
	byValue  map[string]string // category::value -> token
	byToken  map[string]string // category::token -> value
	upserts  int
	storeErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		byValue: map[string]string{},
		byToken: map[string]string{},
	}
}

func (f *fakeStore) UpsertOriginal(
	ctx context.Context,
	category vaultDomain.Category,
	value, token string,
) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.storeErr != nil {
		return "", f.storeErr
	}

	f.upserts++
	valueKey := category.String() + "::" + value
	if existing, ok := f.byValue[valueKey]; ok {
		return existing, nil
	}
	f.byValue[valueKey] = token
	f.byToken[category.String()+"::"+token] = value
	return token, nil
}

func (f *fakeStore) GetOriginalByToken(
	ctx context.Context,
	category vaultDomain.Category,
	token string,
) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.storeErr != nil {
		return "", f.storeErr
	}

	value, ok := f.byToken[category.String()+"::"+token]
	if !ok {
		return "", vaultDomain.ErrEntryNotFound
	}
	return value, nil
}

func (f *fakeStore) FindTokenByValue(
	ctx context.Context,
	category vaultDomain.Category,
	value string,
) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.storeErr != nil {
		return "", f.storeErr
	}

	token, ok := f.byValue[category.String()+"::"+value]
	if !ok {
		return "", vaultDomain.ErrEntryNotFound
	}
	return token, nil
}

func (f *fakeStore) ListEntries(
	ctx context.Context,
	limit int,
	decrypt bool,
) ([]*vaultDomain.EntryListing, error) {
	return nil, nil
}

func TestTokenizer_Tokenize(t *testing.T) {
	store := newFakeStore()
	tok := NewTokenizer(NewDeterministicStrategy("salt"), store)
	ctx := context.Background()

	token, err := tok.Tokenize(ctx, vaultDomain.CategoryEmail, "ana@mail.com")
	require.NoError(t, err)
	assert.Regexp(t, `^EMAIL_[a-f0-9]{16}$`, token)
	assert.Equal(t, 1, store.upserts)
}

func TestTokenizer_Tokenize_ReusesExistingMapping(t *testing.T) {
	store := newFakeStore()
	tok := NewTokenizer(NewRandomStrategy(), store)
	ctx := context.Background()

	first, err := tok.Tokenize(ctx, vaultDomain.CategoryEmail, "ana@mail.com")
	require.NoError(t, err)

	// Random tokens are value-independent; reuse must come from the store.
	second, err := tok.Tokenize(ctx, vaultDomain.CategoryEmail, "ana@mail.com")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.upserts)
}

func TestTokenizer_Tokenize_StoreError(t *testing.T) {
	store := newFakeStore()
	store.storeErr = apperrors.ErrStorageUnavailable
	tok := NewTokenizer(NewDeterministicStrategy("salt"), store)

	_, err := tok.Tokenize(context.Background(), vaultDomain.CategoryEmail, "ana@mail.com")
	assert.ErrorIs(t, err, apperrors.ErrStorageUnavailable)
}

func TestTokenizer_Detokenize_Prefixed(t *testing.T) {
	store := newFakeStore()
	tok := NewTokenizer(NewDeterministicStrategy("salt"), store)
	ctx := context.Background()

	token, err := tok.Tokenize(ctx, vaultDomain.CategoryPhone, "3001234567")
	require.NoError(t, err)

	value, err := tok.Detokenize(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "3001234567", value)
}

func TestTokenizer_Detokenize_BareToken(t *testing.T) {
	store := newFakeStore()
	tok := NewTokenizer(NewRandomStrategy(), store)
	ctx := context.Background()

	token, err := tok.Tokenize(ctx, vaultDomain.CategoryName, "Ana Torres")
	require.NoError(t, err)

	// tok_ tokens carry no category; resolution tries each one in order.
	value, err := tok.Detokenize(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "Ana Torres", value)
}

func TestTokenizer_Detokenize_Unknown(t *testing.T) {
	store := newFakeStore()
	tok := NewTokenizer(NewDeterministicStrategy("salt"), store)

	tests := []struct {
		name  string
		token string
	}{
		{name: "PrefixedUnknown", token: "EMAIL_0123456789abcdef"},
		{name: "BareUnknown", token: "tok_550e8400-e29b-41d4-a716-446655440000"},
		{name: "NotTokenShaped", token: "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tok.Detokenize(context.Background(), tt.token)
			assert.ErrorIs(t, err, domain.ErrTokenNotFound)
			assert.ErrorIs(t, err, apperrors.ErrNotFound)
		})
	}
}

func TestTokenizer_FindTokens(t *testing.T) {
	store := newFakeStore()
	tok := NewTokenizer(NewDeterministicStrategy("salt"), store)

	text := "call PHONE_0123456789abcdef or mail EMAIL_fedcba9876543210 " +
		"ref tok_550e8400-e29b-41d4-a716-446655440000"
	matches := tok.FindTokens(text)
	require.Len(t, matches, 3)

	// Descending start offset.
	for i := 1; i < len(matches); i++ {
		assert.Greater(t, matches[i-1].Start, matches[i].Start)
	}

	assert.Equal(t, "tok_550e8400-e29b-41d4-a716-446655440000", matches[0].Token)
	assert.Empty(t, matches[0].Category)
	assert.Equal(t, "EMAIL_fedcba9876543210", matches[1].Token)
	assert.Equal(t, vaultDomain.CategoryEmail, matches[1].Category)
	assert.Equal(t, "PHONE_0123456789abcdef", matches[2].Token)
	assert.Equal(t, vaultDomain.CategoryPhone, matches[2].Category)
}

func TestTokenizer_FindTokens_SpanOffsets(t *testing.T) {
	store := newFakeStore()
	tok := NewTokenizer(NewDeterministicStrategy("salt"), store)

	text := "see NAME_0011223344556677."
	matches := tok.FindTokens(text)
	require.Len(t, matches, 1)
	assert.Equal(t, "NAME_0011223344556677", text[matches[0].Start:matches[0].End])
	assert.Equal(t, vaultDomain.CategoryName, matches[0].Category)
}

func TestTokenizer_FindTokens_None(t *testing.T) {
	store := newFakeStore()
	tok := NewTokenizer(NewDeterministicStrategy("salt"), store)

	assert.Empty(t, tok.FindTokens("plain text without tokens"))
}
