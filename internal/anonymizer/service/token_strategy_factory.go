package service

import (
	"github.com/sivd/piivault/internal/config"
	apperrors "github.com/sivd/piivault/internal/errors"
)

// NewTokenStrategy creates a token strategy based on the configured name.
// The deterministic strategy requires a non-empty salt.
func NewTokenStrategy(strategy, salt string) (TokenStrategy, error) {
	switch strategy {
	case config.StrategyDeterministic:
		if salt == "" {
			return nil, apperrors.Wrap(apperrors.ErrConfiguration, "deterministic strategy requires a token salt")
		}
		return NewDeterministicStrategy(salt), nil
	case config.StrategyRandom:
		return NewRandomStrategy(), nil
	case config.StrategyDemo:
		return NewDemoStrategy(), nil
	default:
		return nil, apperrors.Wrap(apperrors.ErrConfiguration, "unknown token strategy")
	}
}
