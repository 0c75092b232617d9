package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/nikbrunner/bmsort/internal/apperr"
)

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("%w: dial tcp: refused", apperr.ErrTransport), "transport"},
		{fmt.Errorf("batch 2: %w", fmt.Errorf("%w: missing recommendations", apperr.ErrSchema)), "schema"},
		{apperr.ErrTargetNotFound, "target-not-found"},
		{errors.New("boom"), "unknown"},
	}

	for _, tt := range tests {
		if got := apperr.Kind(tt.err); got != tt.want {
			t.Errorf("Kind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
