package postgres

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
)

// newMockRepository backs a SessionRepository with a pgxmock pool and checks
// every expectation was consumed when the test ends.
func newMockRepository(t *testing.T) (*SessionRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unfulfilled expectations: %v", err)
		}
		mock.Close()
	})
	return &SessionRepository{BaseRepository: NewBaseRepository(mock)}, mock
}

// inTransaction attaches tx to a background context the way WithTransaction does.
func inTransaction(tx pgxmock.PgxPoolIface) context.Context {
	return context.WithValue(context.Background(), txKey, tx)
}
