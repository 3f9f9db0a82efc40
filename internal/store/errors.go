package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"
)

// Sentinel errors for store operations. Check with errors.Is.
var (
	// ErrAlreadyExists indicates a record with the same unique key exists,
	// typically a program slug collision.
	ErrAlreadyExists = errors.New("record already exists")

	// ErrTransactionConflict indicates concurrent writes touched the same
	// records. Callers should retry.
	ErrTransactionConflict = errors.New("transaction conflict")

	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")
)

// wrapQueryError maps known SurrealDB query errors onto sentinels so
// callers can branch with errors.Is instead of string matching.
func wrapQueryError(err error) error {
	if err == nil {
		return nil
	}

	var queryErr *surrealdb.QueryError
	if errors.As(err, &queryErr) {
		msg := queryErr.Message
		if strings.Contains(msg, "already contains") || strings.Contains(msg, "already exists") {
			return fmt.Errorf("%w: %s", ErrAlreadyExists, msg)
		}
		if strings.Contains(msg, "Transaction conflict") {
			return fmt.Errorf("%w: %s", ErrTransactionConflict, msg)
		}
	}

	return err
}
