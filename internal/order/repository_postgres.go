package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/lib/pq"
)

// PostgresRepository stores orders in two tables.
// Expected layout:
//   orders:      order_id serial primary key, user_id int not null,
//                total numeric not null, status text not null,
//                shipping_address jsonb not null, payment_method text not null,
//                created_at text, updated_at text
//   order_items: order_id int not null references orders(order_id) on delete cascade,
//                product_id int not null, name text not null,
//                quantity int not null, price numeric not null

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateFromCart runs the whole cart→order transition in one transaction:
// lock the cart row, resolve every line against the catalog with row locks,
// decrement stock, snapshot prices into the new order, delete the cart.
// Two concurrent checkouts of the same cart serialize on the cart row lock;
// the loser finds the cart gone and fails with ErrEmptyCart.
func (r *PostgresRepository) CreateFromCart(ctx context.Context, userID int, shipping ShippingAddress, paymentMethod string) (Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Order{}, err
	}
	defer tx.Rollback()

	var cartID int
	err = tx.QueryRowContext(ctx,
		`SELECT cart_id FROM carts WHERE user_id = $1 FOR UPDATE`, userID).Scan(&cartID)
	if err == sql.ErrNoRows {
		return Order{}, ErrEmptyCart
	}
	if err != nil {
		return Order{}, err
	}

	// Left join so a dangling product reference is detected instead of the
	// line silently vanishing from the total.
	rows, err := tx.QueryContext(ctx, `
        SELECT i.product_id, i.quantity, p.product_id, p.name, p.price
        FROM cart_items i
        LEFT JOIN products p ON p.product_id = i.product_id
        WHERE i.cart_id = $1
        ORDER BY i.item_id`, cartID)
	if err != nil {
		return Order{}, err
	}

	var items []Item
	total := 0.0
	for rows.Next() {
		var productID, quantity int
		var resolvedID sql.NullInt64
		var name sql.NullString
		var price sql.NullFloat64
		if err := rows.Scan(&productID, &quantity, &resolvedID, &name, &price); err != nil {
			rows.Close()
			return Order{}, err
		}
		if !resolvedID.Valid {
			rows.Close()
			return Order{}, ErrProductUnavailable
		}
		items = append(items, Item{ProductID: productID, Name: name.String, Quantity: quantity, Price: price.Float64})
		total += price.Float64 * float64(quantity)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return Order{}, err
	}
	rows.Close()

	if len(items) == 0 {
		return Order{}, ErrEmptyCart
	}

	for _, it := range items {
		res, err := tx.ExecContext(ctx, `
            UPDATE products SET stock = stock - $2
            WHERE product_id = $1 AND stock >= $2`, it.ProductID, it.Quantity)
		if err != nil {
			return Order{}, err
		}
		if cnt, _ := res.RowsAffected(); cnt == 0 {
			return Order{}, ErrInsufficientStock
		}
	}

	shippingJSON, err := json.Marshal(shipping)
	if err != nil {
		return Order{}, err
	}

	ord := Order{
		UserID:          userID,
		Items:           items,
		Total:           total,
		Status:          StatusPending,
		ShippingAddress: shipping,
		PaymentMethod:   paymentMethod,
		CreatedAt:       time.Now().UTC().Format(time.RFC3339),
	}
	err = tx.QueryRowContext(ctx, `
        INSERT INTO orders (user_id, total, status, shipping_address, payment_method, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$6)
        RETURNING order_id`,
		userID, total, ord.Status, shippingJSON, paymentMethod, ord.CreatedAt).Scan(&ord.ID)
	if err != nil {
		return Order{}, err
	}

	for _, it := range items {
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO order_items (order_id, product_id, name, quantity, price)
            VALUES ($1,$2,$3,$4,$5)`,
			ord.ID, it.ProductID, it.Name, it.Quantity, it.Price); err != nil {
			return Order{}, err
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM carts WHERE cart_id = $1`, cartID); err != nil {
		return Order{}, err
	}

	if err := tx.Commit(); err != nil {
		return Order{}, err
	}
	return ord, nil
}

const orderColumns = `order_id, user_id, total, status, shipping_address, payment_method, created_at, updated_at`

func (r *PostgresRepository) ListByOwner(ctx context.Context, userID, limit int) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT `+orderColumns+`
        FROM orders
        WHERE user_id = $1
        ORDER BY order_id DESC
        LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(ctx, rows)
}

func (r *PostgresRepository) GetByOwner(ctx context.Context, userID, orderID int) (Order, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT `+orderColumns+`
        FROM orders
        WHERE user_id = $1 AND order_id = $2`, userID, orderID)
	ord, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, err
	}
	if err := r.attachItems(ctx, []*Order{&ord}); err != nil {
		return Order{}, err
	}
	return ord, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, orderID int, status string) (Order, error) {
	row := r.db.QueryRowContext(ctx, `
        UPDATE orders SET status = $2, updated_at = $3
        WHERE order_id = $1
        RETURNING `+orderColumns,
		orderID, status, time.Now().UTC().Format(time.RFC3339))
	ord, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, err
	}
	if err := r.attachItems(ctx, []*Order{&ord}); err != nil {
		return Order{}, err
	}
	return ord, nil
}

func (r *PostgresRepository) Recent(ctx context.Context, limit int) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT `+orderColumns+`
        FROM orders
        ORDER BY order_id DESC
        LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(ctx, rows)
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&n)
	return n, err
}

func (r *PostgresRepository) collect(ctx context.Context, rows *sql.Rows) ([]Order, error) {
	orders := make([]Order, 0)
	for rows.Next() {
		ord, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, ord)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	refs := make([]*Order, len(orders))
	for i := range orders {
		refs[i] = &orders[i]
	}
	if err := r.attachItems(ctx, refs); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *PostgresRepository) attachItems(ctx context.Context, orders []*Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int, len(orders))
	byID := make(map[int]*Order, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		byID[o.ID] = o
		o.Items = []Item{}
	}

	rows, err := r.db.QueryContext(ctx, `
        SELECT order_id, product_id, name, quantity, price
        FROM order_items
        WHERE order_id = ANY($1::int[])
        ORDER BY order_id`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var orderID int
		var it Item
		if err := rows.Scan(&orderID, &it.ProductID, &it.Name, &it.Quantity, &it.Price); err != nil {
			return err
		}
		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (Order, error) {
	var ord Order
	var shippingJSON []byte
	err := row.Scan(&ord.ID, &ord.UserID, &ord.Total, &ord.Status, &shippingJSON,
		&ord.PaymentMethod, &ord.CreatedAt, &ord.UpdatedAt)
	if err != nil {
		return Order{}, err
	}
	if err := json.Unmarshal(shippingJSON, &ord.ShippingAddress); err != nil {
		return Order{}, err
	}
	return ord, nil
}
