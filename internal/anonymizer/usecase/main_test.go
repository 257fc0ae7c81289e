package usecase

import (
	"testing"

	"go.uber.org/goleak"
)

// The object walks fan out per-leaf goroutines; fail the package if any of
// them outlive their errgroup.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
