package wishlist

import (
	"context"
	"database/sql"
	"time"
)

// PostgresRepository stores wishlists in two tables.
// Expected layout:
//   wishlists:      wishlist_id serial primary key, user_id int not null unique
//   wishlist_items: wishlist_id int not null references wishlists(wishlist_id) on delete cascade,
//                   product_id int not null references products(product_id),
//                   added_at text,
//                   primary key (wishlist_id, product_id)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const wishlistItemsQuery = `
    SELECT i.product_id, i.added_at,
           p.product_id, p.name, p.price, p.category, p.stock, p.image, p.is_featured
    FROM wishlist_items i
    JOIN products p ON p.product_id = i.product_id
    WHERE i.wishlist_id = $1
    ORDER BY i.added_at`

func (r *PostgresRepository) GetByOwner(ctx context.Context, userID int) (Wishlist, error) {
	var wl Wishlist
	err := r.db.QueryRowContext(ctx,
		`SELECT wishlist_id, user_id FROM wishlists WHERE user_id = $1`, userID).Scan(&wl.ID, &wl.UserID)
	if err == sql.ErrNoRows {
		return Wishlist{}, ErrNotFound
	}
	if err != nil {
		return Wishlist{}, err
	}
	items, err := r.loadItems(ctx, wl.ID)
	if err != nil {
		return Wishlist{}, err
	}
	wl.Items = items
	return wl, nil
}

func (r *PostgresRepository) AddItem(ctx context.Context, userID, productID int) (Wishlist, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Wishlist{}, err
	}
	defer tx.Rollback()

	var wishlistID int
	err = tx.QueryRowContext(ctx, `
        INSERT INTO wishlists (user_id) VALUES ($1)
        ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
        RETURNING wishlist_id`, userID).Scan(&wishlistID)
	if err != nil {
		return Wishlist{}, err
	}

	res, err := tx.ExecContext(ctx, `
        INSERT INTO wishlist_items (wishlist_id, product_id, added_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (wishlist_id, product_id) DO NOTHING`,
		wishlistID, productID, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return Wishlist{}, err
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return Wishlist{}, ErrDuplicate
	}

	if err := tx.Commit(); err != nil {
		return Wishlist{}, err
	}
	return r.GetByOwner(ctx, userID)
}

func (r *PostgresRepository) RemoveItem(ctx context.Context, userID, productID int) (Wishlist, error) {
	wl, err := r.GetByOwner(ctx, userID)
	if err != nil {
		return Wishlist{}, err
	}

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM wishlist_items WHERE wishlist_id = $1 AND product_id = $2`, wl.ID, productID)
	if err != nil {
		return Wishlist{}, err
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return Wishlist{}, ErrItemNotFound
	}

	return r.GetByOwner(ctx, userID)
}

func (r *PostgresRepository) loadItems(ctx context.Context, wishlistID int) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx, wishlistItemsQuery, wishlistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ProductID, &it.AddedAt,
			&it.Product.ID, &it.Product.Name, &it.Product.Price, &it.Product.Category,
			&it.Product.Stock, &it.Product.Image, &it.Product.IsFeatured); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
