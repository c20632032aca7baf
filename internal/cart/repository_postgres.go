package cart

import (
	"context"
	"database/sql"
)

// PostgresRepository stores carts in two tables.
// Expected layout:
//   carts:      cart_id serial primary key, user_id int not null unique
//   cart_items: item_id serial primary key,
//               cart_id int not null references carts(cart_id) on delete cascade,
//               product_id int not null references products(product_id),
//               quantity int not null check (quantity >= 1),
//               unique (cart_id, product_id)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const cartItemsQuery = `
    SELECT i.item_id, i.product_id, i.quantity,
           p.product_id, p.name, p.price, p.category, p.stock, p.image, p.is_featured
    FROM cart_items i
    JOIN products p ON p.product_id = i.product_id
    WHERE i.cart_id = $1
    ORDER BY i.item_id`

func (r *PostgresRepository) GetByOwner(ctx context.Context, userID int) (Cart, error) {
	var crt Cart
	err := r.db.QueryRowContext(ctx,
		`SELECT cart_id, user_id FROM carts WHERE user_id = $1`, userID).Scan(&crt.ID, &crt.UserID)
	if err == sql.ErrNoRows {
		return Cart{}, ErrNotFound
	}
	if err != nil {
		return Cart{}, err
	}
	items, err := r.loadItems(ctx, r.db, crt.ID)
	if err != nil {
		return Cart{}, err
	}
	crt.Items = items
	return crt, nil
}

func (r *PostgresRepository) AddItem(ctx context.Context, userID, productID, quantity int) (Cart, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Cart{}, err
	}
	defer tx.Rollback()

	var cartID int
	err = tx.QueryRowContext(ctx, `
        INSERT INTO carts (user_id) VALUES ($1)
        ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
        RETURNING cart_id`, userID).Scan(&cartID)
	if err != nil {
		return Cart{}, err
	}

	if _, err := tx.ExecContext(ctx, `
        INSERT INTO cart_items (cart_id, product_id, quantity)
        VALUES ($1, $2, $3)
        ON CONFLICT (cart_id, product_id)
        DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`,
		cartID, productID, quantity); err != nil {
		return Cart{}, err
	}

	items, err := r.loadItems(ctx, tx, cartID)
	if err != nil {
		return Cart{}, err
	}
	if err := tx.Commit(); err != nil {
		return Cart{}, err
	}
	return Cart{ID: cartID, UserID: userID, Items: items}, nil
}

func (r *PostgresRepository) UpdateItem(ctx context.Context, userID, itemID, quantity int) (Cart, error) {
	crt, err := r.GetByOwner(ctx, userID)
	if err != nil {
		return Cart{}, err
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE cart_items SET quantity = $3 WHERE cart_id = $1 AND item_id = $2`,
		crt.ID, itemID, quantity)
	if err != nil {
		return Cart{}, err
	}
	cnt, _ := res.RowsAffected()
	if cnt == 0 {
		return Cart{}, ErrItemNotFound
	}

	items, err := r.loadItems(ctx, r.db, crt.ID)
	if err != nil {
		return Cart{}, err
	}
	crt.Items = items
	return crt, nil
}

func (r *PostgresRepository) RemoveItem(ctx context.Context, userID, itemID int) (Cart, error) {
	crt, err := r.GetByOwner(ctx, userID)
	if err != nil {
		return Cart{}, err
	}

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE cart_id = $1 AND item_id = $2`, crt.ID, itemID)
	if err != nil {
		return Cart{}, err
	}
	cnt, _ := res.RowsAffected()
	if cnt == 0 {
		return Cart{}, ErrItemNotFound
	}

	items, err := r.loadItems(ctx, r.db, crt.ID)
	if err != nil {
		return Cart{}, err
	}
	crt.Items = items
	return crt, nil
}

func (r *PostgresRepository) DeleteByOwner(ctx context.Context, userID int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM carts WHERE user_id = $1`, userID)
	if err != nil {
		return err
	}
	cnt, _ := res.RowsAffected()
	if cnt == 0 {
		return ErrNotFound
	}
	return nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func (r *PostgresRepository) loadItems(ctx context.Context, q querier, cartID int) ([]Item, error) {
	rows, err := q.QueryContext(ctx, cartItemsQuery, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.ProductID, &it.Quantity,
			&it.Product.ID, &it.Product.Name, &it.Product.Price, &it.Product.Category,
			&it.Product.Stock, &it.Product.Image, &it.Product.IsFeatured); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
