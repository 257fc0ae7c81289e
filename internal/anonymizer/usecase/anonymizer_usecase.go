package usecase

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/sivd/piivault/internal/anonymizer/domain"
	"github.com/sivd/piivault/internal/anonymizer/service"
	apperrors "github.com/sivd/piivault/internal/errors"
	vaultDomain "github.com/sivd/piivault/internal/vault/domain"
	vaultService "github.com/sivd/piivault/internal/vault/service"
)

// defaultListLimit bounds vault listings when the caller gives no limit.
const defaultListLimit = 100

type anonymizerUseCase struct {
	detector  service.Detector
	tokenizer service.Tokenizer
	store     vaultService.Store
}

// NewAnonymizerUseCase creates the orchestrator.
func NewAnonymizerUseCase(
	detector service.Detector,
	tokenizer service.Tokenizer,
	store vaultService.Store,
) AnonymizerUseCase {
	return &anonymizerUseCase{
		detector:  detector,
		tokenizer: tokenizer,
		store:     store,
	}
}

// AnonymizeText replaces every detected PII span with a token. Substitution
// runs right to left so earlier offsets stay valid while the buffer shrinks
// and grows under replacement.
func (u *anonymizerUseCase) AnonymizeText(
	ctx context.Context,
	text string,
) (*domain.TextResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyText
	}

	matches := u.detector.Detect(text)

	result := text
	replacements := make([]domain.Replacement, 0, len(matches))
	for _, match := range matches {
		token, err := u.tokenizer.Tokenize(ctx, match.Category, match.Value)
		if err != nil {
			return nil, err
		}
		result = result[:match.Start] + token + result[match.End:]
		replacements = append(replacements, domain.Replacement{
			Category: match.Category,
			Token:    token,
		})
	}

	// Matches arrive right to left; report replacements in text order.
	reverse(replacements)

	return &domain.TextResult{Text: result, Replacements: replacements}, nil
}

// DeanonymizeText restores every resolvable token. Unknown tokens stay in the
// text untouched.
func (u *anonymizerUseCase) DeanonymizeText(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", domain.ErrEmptyText
	}
	return u.restoreTokens(ctx, text)
}

func (u *anonymizerUseCase) restoreTokens(ctx context.Context, text string) (string, error) {
	result := text
	for _, match := range u.tokenizer.FindTokens(text) {
		value, err := u.tokenizer.Detokenize(ctx, match.Token)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return "", err
		}
		result = result[:match.Start] + value + result[match.End:]
	}
	return result, nil
}

// AnonymizeObject tokenizes the PII leaves of a nested structure. Leaf writes
// run concurrently; containers are cloned synchronously during the walk.
func (u *anonymizerUseCase) AnonymizeObject(
	ctx context.Context,
	data any,
	piiFields []string,
) (any, error) {
	if !isContainer(data) {
		return nil, domain.ErrInvalidObject
	}

	policy := service.NewFieldPolicy(piiFields)

	g, ctx := errgroup.WithContext(ctx)
	cloned := u.cloneAnonymizing(ctx, g, data, policy)
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return cloned, nil
}

func (u *anonymizerUseCase) cloneAnonymizing(
	ctx context.Context,
	g *errgroup.Group,
	value any,
	policy service.FieldPolicy,
) any {
	switch v := value.(type) {
	case map[string]any:
		clone := make(map[string]any, len(v))
		var mu sync.Mutex
		var leaves []func() error
		for key, item := range v {
			if isContainer(item) {
				clone[key] = u.cloneAnonymizing(ctx, g, item, policy)
				continue
			}
			leaf, ok := item.(string)
			if !ok || !(policy.IsPIIField(key) || policy.IsPIIValue(leaf)) {
				clone[key] = item
				continue
			}
			leaves = append(leaves, func() error {
				token, err := u.tokenizer.Tokenize(ctx, policy.Categorize(leaf), leaf)
				if err != nil {
					return err
				}
				mu.Lock()
				clone[key] = token
				mu.Unlock()
				return nil
			})
		}
		// Leaf goroutines start only after this level's clone is fully built,
		// so the mutex is the only serialization they need.
		for _, task := range leaves {
			g.Go(task)
		}
		return clone
	case []any:
		clone := make([]any, len(v))
		for i, item := range v {
			if isContainer(item) {
				clone[i] = u.cloneAnonymizing(ctx, g, item, policy)
				continue
			}
			leaf, ok := item.(string)
			if !ok || !policy.IsPIIValue(leaf) {
				clone[i] = item
				continue
			}
			g.Go(func() error {
				token, err := u.tokenizer.Tokenize(ctx, policy.Categorize(leaf), leaf)
				if err != nil {
					return err
				}
				clone[i] = token
				return nil
			})
		}
		return clone
	default:
		return value
	}
}

// DeanonymizeObject restores tokens in the string leaves of a nested
// structure, including tokens embedded inside longer strings.
func (u *anonymizerUseCase) DeanonymizeObject(ctx context.Context, data any) (any, error) {
	if !isContainer(data) {
		return nil, domain.ErrInvalidObject
	}

	g, ctx := errgroup.WithContext(ctx)
	cloned := u.cloneRestoring(ctx, g, data)
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return cloned, nil
}

func (u *anonymizerUseCase) cloneRestoring(
	ctx context.Context,
	g *errgroup.Group,
	value any,
) any {
	switch v := value.(type) {
	case map[string]any:
		clone := make(map[string]any, len(v))
		var mu sync.Mutex
		var leaves []func() error
		for key, item := range v {
			if isContainer(item) {
				clone[key] = u.cloneRestoring(ctx, g, item)
				continue
			}
			leaf, ok := item.(string)
			if !ok {
				clone[key] = item
				continue
			}
			clone[key] = leaf
			leaves = append(leaves, func() error {
				restored, err := u.restoreTokens(ctx, leaf)
				if err != nil {
					return err
				}
				mu.Lock()
				clone[key] = restored
				mu.Unlock()
				return nil
			})
		}
		for _, task := range leaves {
			g.Go(task)
		}
		return clone
	case []any:
		clone := make([]any, len(v))
		for i, item := range v {
			if isContainer(item) {
				clone[i] = u.cloneRestoring(ctx, g, item)
				continue
			}
			leaf, ok := item.(string)
			if !ok {
				clone[i] = item
				continue
			}
			g.Go(func() error {
				restored, err := u.restoreTokens(ctx, leaf)
				if err != nil {
					return err
				}
				clone[i] = restored
				return nil
			})
		}
		return clone
	default:
		return value
	}
}

// ListVaultEntries returns the newest vault entries.
func (u *anonymizerUseCase) ListVaultEntries(
	ctx context.Context,
	limit int,
	decrypt bool,
) ([]*vaultDomain.EntryListing, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return u.store.ListEntries(ctx, limit, decrypt)
}

func isContainer(value any) bool {
	switch value.(type) {
	case map[string]any, []any:
		return true
	default:
		return false
	}
}

func reverse(replacements []domain.Replacement) {
	for i, j := 0, len(replacements)-1; i < j; i, j = i+1, j-1 {
		replacements[i], replacements[j] = replacements[j], replacements[i]
	}
}
