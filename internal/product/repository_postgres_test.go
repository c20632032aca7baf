package product

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func productRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"product_id", "name", "price", "category", "stock", "image", "is_featured", "created_at", "updated_at"})
}

func TestPostgresList(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	rows := productRows().
		AddRow(1, "Beeswax Candle", 12.5, "candles", 10, "candle.png", true, "t", "t").
		AddRow(2, "Ginger Cookie", 3.0, "cookies", 20, "cookie.png", false, "t", "t")
	mock.ExpectQuery("SELECT (.+) FROM products ORDER BY product_id").WillReturnRows(rows)

	products, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
	if products[0].Name != "Beeswax Candle" || !products[0].IsFeatured {
		t.Fatalf("unexpected first product: %+v", products[0])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM products WHERE product_id").WithArgs(9).WillReturnRows(productRows())

	if _, err := repo.GetByID(context.Background(), 9); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresListByIDsPreservesOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	rows := productRows().
		AddRow(2, "Ginger Cookie", 3.0, "cookies", 20, "cookie.png", false, "t", "t").
		AddRow(1, "Beeswax Candle", 12.5, "candles", 10, "candle.png", true, "t", "t")
	mock.ExpectQuery("array_position").WillReturnRows(rows)

	products, err := repo.ListByIDs(context.Background(), []int{2, 1})
	if err != nil {
		t.Fatalf("list by ids: %v", err)
	}
	if len(products) != 2 || products[0].ID != 2 {
		t.Fatalf("unexpected result: %+v", products)
	}

	// an empty id set never hits the database
	empty, err := repo.ListByIDs(context.Background(), nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty result, got %v %v", empty, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
