package service

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/sivd/piivault/internal/anonymizer/domain"
	apperrors "github.com/sivd/piivault/internal/errors"
	vaultDomain "github.com/sivd/piivault/internal/vault/domain"
	vaultService "github.com/sivd/piivault/internal/vault/service"
)

var (
	prefixedTokenRegex = regexp.MustCompile(`\b(EMAIL|PHONE|NAME)_([a-f0-9]{8,64})\b`)
	randomTokenRegex   = regexp.MustCompile(`\btok_[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\b`)
)

type tokenizer struct {
	strategy TokenStrategy
	store    vaultService.Store
}

// NewTokenizer creates a Tokenizer bound to a strategy and the vault store.
func NewTokenizer(strategy TokenStrategy, store vaultService.Store) Tokenizer {
	return &tokenizer{strategy: strategy, store: store}
}

// Tokenize returns the canonical token for a (category, value) pair. An
// already stored mapping is reused before generating anything, which is what
// keeps the random strategy idempotent; for the content-derived strategies the
// lookup and the generated token agree anyway.
func (t *tokenizer) Tokenize(
	ctx context.Context,
	category vaultDomain.Category,
	value string,
) (string, error) {
	existing, err := t.store.FindTokenByValue(ctx, category, value)
	if err == nil {
		return existing, nil
	}
	if !apperrors.Is(err, apperrors.ErrNotFound) {
		return "", err
	}

	token, err := t.strategy.Generate(category, value)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to generate token")
	}

	return t.store.UpsertOriginal(ctx, category, value, token)
}

// Detokenize resolves a token back to its value. Prefixed tokens name their
// category directly; bare tok_ tokens are tried against every category in
// priority order.
func (t *tokenizer) Detokenize(ctx context.Context, token string) (string, error) {
	if category, ok := parseTokenCategory(token); ok {
		return t.lookup(ctx, category, token)
	}

	if strings.HasPrefix(token, randomTokenPrefix) {
		for _, category := range vaultDomain.Categories {
			value, err := t.lookup(ctx, category, token)
			if err == nil {
				return value, nil
			}
			if !apperrors.Is(err, apperrors.ErrNotFound) {
				return "", err
			}
		}
	}

	return "", domain.ErrTokenNotFound
}

func (t *tokenizer) lookup(
	ctx context.Context,
	category vaultDomain.Category,
	token string,
) (string, error) {
	value, err := t.store.GetOriginalByToken(ctx, category, token)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return "", domain.ErrTokenNotFound
		}
		return "", err
	}
	return value, nil
}

// FindTokens scans text for token-shaped substrings, prefixed and bare,
// sorted by descending start offset.
func (t *tokenizer) FindTokens(text string) []domain.TokenMatch {
	var matches []domain.TokenMatch

	for _, loc := range prefixedTokenRegex.FindAllStringIndex(text, -1) {
		token := text[loc[0]:loc[1]]
		category, _ := parseTokenCategory(token)
		matches = append(matches, domain.TokenMatch{
			Token:    token,
			Category: category,
			Start:    loc[0],
			End:      loc[1],
		})
	}

	for _, loc := range randomTokenRegex.FindAllStringIndex(text, -1) {
		matches = append(matches, domain.TokenMatch{
			Token: text[loc[0]:loc[1]],
			Start: loc[0],
			End:   loc[1],
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Start > matches[j].Start
	})

	return matches
}

func parseTokenCategory(token string) (vaultDomain.Category, bool) {
	if !prefixedTokenRegex.MatchString(token) {
		return "", false
	}
	prefix, _, _ := strings.Cut(token, "_")
	category := vaultDomain.Category(strings.ToLower(prefix))
	if category.Validate() != nil {
		return "", false
	}
	return category, true
}
