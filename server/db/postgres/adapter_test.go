package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgconn"
)

func TestIsDupe(t *testing.T) {
	dup := &pgconn.PgError{Code: uniqueViolation, ConstraintName: "conversations_pair"}

	if !isDupe(dup) {
		t.Error("unique violation not recognized")
	}
	if !isDupe(fmt.Errorf("insert conversation: %w", dup)) {
		t.Error("wrapped unique violation not recognized")
	}
	if isDupe(&pgconn.PgError{Code: "23503"}) {
		t.Error("foreign-key violation mistaken for a duplicate")
	}
	if isDupe(errors.New("connection refused")) {
		t.Error("generic error mistaken for a duplicate")
	}
	if isDupe(nil) {
		t.Error("nil error mistaken for a duplicate")
	}
}
