package services

import (
	"strings"

	"fiber-mes/apperrors"
)

const maxTxRetries = 3

// isTransientErr matches the storage contention failures that are worth a
// blind retry: driver wording differs, the condition is the same.
func isTransientErr(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "deadlock") ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "could not serialize") ||
		strings.Contains(msg, "lock wait timeout")
}

// withRetry runs fn up to maxTxRetries times, retrying only transient
// contention failures. Anything still failing after that surfaces as
// Conflict so the caller knows the operation lost the race.
func withRetry(fn func() error) error {
	var err error
	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err = fn()
		if err == nil || !isTransientErr(err) {
			return err
		}
	}
	return apperrors.Wrap(apperrors.KindConflict, "storage contention, please retry", err)
}
