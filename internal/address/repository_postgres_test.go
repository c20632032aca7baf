package address

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func addressRow() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"address_id", "user_id", "type", "full_name", "phone", "line1", "line2", "city", "state", "zip", "country", "is_default", "created_at", "updated_at"})
}

func TestPromoteDefaultClearsSiblingsInOneTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE addresses SET is_default = FALSE").
		WithArgs(42).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("UPDATE addresses SET is_default = TRUE").
		WithArgs(42, 2).
		WillReturnRows(addressRow().AddRow(2, 42, TypeHome, "Ada Lovelace", "555-0101", "1 Analytical Way", nil, "London", "LN", "10001", "UK", true, "t", "t"))
	mock.ExpectCommit()

	promoted, err := repo.PromoteDefault(context.Background(), 42, 2)
	if err != nil {
		t.Fatalf("promote: %v", err)
	}
	if !promoted.IsDefault || promoted.ID != 2 {
		t.Fatalf("unexpected result: %+v", promoted)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPromoteDefaultMissingAddressRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE addresses SET is_default = FALSE").
		WithArgs(42).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("UPDATE addresses SET is_default = TRUE").
		WithArgs(42, 99).WillReturnRows(addressRow())
	mock.ExpectRollback()

	if _, err := repo.PromoteDefault(context.Background(), 42, 99); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestInsertWithoutClearSkipsSiblingUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO addresses").
		WillReturnRows(addressRow().AddRow(1, 42, TypeHome, "Ada Lovelace", "555-0101", "1 Analytical Way", nil, "London", "LN", "10001", "UK", false, "t", "t"))
	mock.ExpectCommit()

	created, err := repo.Insert(context.Background(), Address{UserID: 42, Type: TypeHome, FullName: "Ada Lovelace", Phone: "555-0101", Line1: "1 Analytical Way", City: "London", State: "LN", Zip: "10001", Country: "UK"}, false)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if created.ID != 1 || created.IsDefault {
		t.Fatalf("unexpected result: %+v", created)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
