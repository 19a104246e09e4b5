package service

import (
	"errors"

	"github.com/Skysparko/trust-ledger-backend/internal/domain"
)

// isNotFound reports whether err is (or wraps) domain.ErrNotFound.
func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
