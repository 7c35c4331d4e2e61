package persistence

import (
	"errors"
	"fmt"
	"strings"

	"github.com/retail/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// translateDBError maps driver-level failures onto domain errors.
// Postgres reports an expired lock_timeout as SQLSTATE 55P03 and a
// deadlock victim as 40P01; both are retryable from the caller's side.
func translateDBError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	if isLockContention(err) {
		return fmt.Errorf("%w: %v", shared.ErrLockContention, err)
	}
	return err
}

func isLockContention(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "55P03") ||
		strings.Contains(msg, "40P01") ||
		strings.Contains(msg, "lock timeout") ||
		strings.Contains(msg, "deadlock detected")
}
