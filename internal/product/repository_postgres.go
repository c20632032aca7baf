package product

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
)

// PostgresRepository stores the catalog in a single products table.
// Expected layout:
//   product_id serial primary key,
//   name text not null,
//   price numeric not null,
//   category text not null,
//   stock int not null default 0,
//   image text not null,
//   is_featured boolean not null default false,
//   created_at text,
//   updated_at text

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const productColumns = `product_id, name, price, category, stock, image, is_featured, created_at, updated_at`

func (r *PostgresRepository) List(ctx context.Context) ([]Product, error) {
	return r.queryMany(ctx, `SELECT `+productColumns+` FROM products ORDER BY product_id`)
}

func (r *PostgresRepository) ListByCategory(ctx context.Context, category string) ([]Product, error) {
	return r.queryMany(ctx, `SELECT `+productColumns+` FROM products WHERE category = $1 ORDER BY product_id`, category)
}

func (r *PostgresRepository) ListFeatured(ctx context.Context) ([]Product, error) {
	return r.queryMany(ctx, `SELECT `+productColumns+` FROM products WHERE is_featured ORDER BY product_id`)
}

func (r *PostgresRepository) ListByIDs(ctx context.Context, ids []int) ([]Product, error) {
	if len(ids) == 0 {
		return []Product{}, nil
	}
	return r.queryMany(ctx, `
        SELECT `+productColumns+`
        FROM products
        WHERE product_id = ANY($1::int[])
        ORDER BY array_position($1::int[], product_id)`, pq.Array(ids))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (Product, error) {
	var p Product
	err := r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE product_id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Price, &p.Category, &p.Stock, &p.Image, &p.IsFeatured, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) Create(ctx context.Context, p Product) (Product, error) {
	err := r.db.QueryRowContext(ctx, `
        INSERT INTO products (name, price, category, stock, image, is_featured, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING `+productColumns,
		p.Name, p.Price, p.Category, p.Stock, p.Image, p.IsFeatured, p.CreatedAt, p.UpdatedAt).
		Scan(&p.ID, &p.Name, &p.Price, &p.Category, &p.Stock, &p.Image, &p.IsFeatured, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id int, p Product) (Product, error) {
	err := r.db.QueryRowContext(ctx, `
        UPDATE products
        SET name=$2, price=$3, category=$4, stock=$5, image=$6, is_featured=$7, updated_at=$8
        WHERE product_id=$1
        RETURNING `+productColumns,
		id, p.Name, p.Price, p.Category, p.Stock, p.Image, p.IsFeatured, p.UpdatedAt).
		Scan(&p.ID, &p.Name, &p.Price, &p.Category, &p.Stock, &p.Image, &p.IsFeatured, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE product_id = $1`, id)
	if err != nil {
		return err
	}
	cnt, _ := res.RowsAffected()
	if cnt == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n)
	return n, err
}

func (r *PostgresRepository) queryMany(ctx context.Context, query string, args ...interface{}) ([]Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Product, 0)
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Category, &p.Stock, &p.Image, &p.IsFeatured, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
