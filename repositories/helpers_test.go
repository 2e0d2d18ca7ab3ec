package repositories

import (
	"database/sql"
	"errors"
	"testing"
)

// Both the pool and a transaction must be usable as the executor, so a caller
// can run repository methods inside a transaction it manages.
var (
	_ SQLExecutor = (*sql.DB)(nil)
	_ SQLExecutor = (*sql.Tx)(nil)
)

type fakeResult struct {
	rows int64
	err  error
}

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.rows, r.err }

func TestCheckAffectedRows(t *testing.T) {
	sentinel := errors.New("not found")

	if err := checkAffectedRows(fakeResult{rows: 1}, sentinel); err != nil {
		t.Errorf("expected nil for affected rows, got %v", err)
	}
	if err := checkAffectedRows(fakeResult{rows: 0}, sentinel); !errors.Is(err, sentinel) {
		t.Errorf("expected sentinel for zero affected rows, got %v", err)
	}
	if err := checkAffectedRows(fakeResult{err: errors.New("driver")}, sentinel); err == nil || errors.Is(err, sentinel) {
		t.Errorf("expected wrapped driver error, got %v", err)
	}
}
