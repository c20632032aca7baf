package address

import (
	"context"
	"database/sql"
)

// PostgresRepository stores addresses in a dedicated table with a foreign
// key to users.
// Expected layout:
//   address_id serial primary key,
//   user_id int not null references users(user_id),
//   type text not null,
//   full_name text not null,
//   phone text not null,
//   line1 text not null,
//   line2 text,
//   city text not null,
//   state text not null,
//   zip text not null,
//   country text not null,
//   is_default boolean not null default false,
//   created_at text,
//   updated_at text

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const addressColumns = `address_id, user_id, type, full_name, phone, line1, line2, city, state, zip, country, is_default, created_at, updated_at`

func (r *PostgresRepository) ListByOwner(ctx context.Context, userID int) ([]Address, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT `+addressColumns+`
        FROM addresses
        WHERE user_id = $1
        ORDER BY is_default DESC, created_at ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Address, 0)
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetByOwner(ctx context.Context, userID, id int) (Address, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT `+addressColumns+`
        FROM addresses
        WHERE user_id = $1 AND address_id = $2`, userID, id)
	a, err := scanAddress(row)
	if err == sql.ErrNoRows {
		return Address{}, ErrNotFound
	}
	return a, err
}

func (r *PostgresRepository) CountByOwner(ctx context.Context, userID int) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM addresses WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

func (r *PostgresRepository) CountSiblings(ctx context.Context, userID, excludeID int) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM addresses WHERE user_id = $1 AND address_id <> $2`, userID, excludeID).Scan(&n)
	return n, err
}

// Insert persists a new address. With clearSiblings the clear and the insert
// run inside one transaction so no reader ever observes two defaults.
func (r *PostgresRepository) Insert(ctx context.Context, a Address, clearSiblings bool) (Address, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Address{}, err
	}
	defer tx.Rollback()

	if clearSiblings {
		if _, err := tx.ExecContext(ctx,
			`UPDATE addresses SET is_default = FALSE WHERE user_id = $1 AND is_default`, a.UserID); err != nil {
			return Address{}, err
		}
	}

	row := tx.QueryRowContext(ctx, `
        INSERT INTO addresses (user_id, type, full_name, phone, line1, line2, city, state, zip, country, is_default, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        RETURNING `+addressColumns,
		a.UserID, a.Type, a.FullName, a.Phone, a.Line1, a.Line2, a.City, a.State, a.Zip, a.Country, a.IsDefault, a.CreatedAt, a.UpdatedAt)
	created, err := scanAddress(row)
	if err != nil {
		return Address{}, err
	}

	if err := tx.Commit(); err != nil {
		return Address{}, err
	}
	return created, nil
}

func (r *PostgresRepository) Update(ctx context.Context, a Address, clearSiblings bool) (Address, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Address{}, err
	}
	defer tx.Rollback()

	if clearSiblings {
		if _, err := tx.ExecContext(ctx,
			`UPDATE addresses SET is_default = FALSE WHERE user_id = $1 AND address_id <> $2 AND is_default`,
			a.UserID, a.ID); err != nil {
			return Address{}, err
		}
	}

	row := tx.QueryRowContext(ctx, `
        UPDATE addresses
        SET type=$3, full_name=$4, phone=$5, line1=$6, line2=$7, city=$8, state=$9, zip=$10, country=$11, is_default=$12, updated_at=$13
        WHERE user_id = $1 AND address_id = $2
        RETURNING `+addressColumns,
		a.UserID, a.ID, a.Type, a.FullName, a.Phone, a.Line1, a.Line2, a.City, a.State, a.Zip, a.Country, a.IsDefault, a.UpdatedAt)
	updated, err := scanAddress(row)
	if err == sql.ErrNoRows {
		return Address{}, ErrNotFound
	}
	if err != nil {
		return Address{}, err
	}

	if err := tx.Commit(); err != nil {
		return Address{}, err
	}
	return updated, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id int) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM addresses WHERE user_id = $1 AND address_id = $2`, userID, id)
	if err != nil {
		return err
	}
	cnt, _ := res.RowsAffected()
	if cnt == 0 {
		return ErrNotFound
	}
	return nil
}

// PromoteDefault clears every default of the owner and flags the target, in
// that order, inside one transaction.
func (r *PostgresRepository) PromoteDefault(ctx context.Context, userID, id int) (Address, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Address{}, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE addresses SET is_default = FALSE WHERE user_id = $1 AND is_default`, userID); err != nil {
		return Address{}, err
	}

	row := tx.QueryRowContext(ctx, `
        UPDATE addresses SET is_default = TRUE
        WHERE user_id = $1 AND address_id = $2
        RETURNING `+addressColumns, userID, id)
	promoted, err := scanAddress(row)
	if err == sql.ErrNoRows {
		return Address{}, ErrNotFound
	}
	if err != nil {
		return Address{}, err
	}

	if err := tx.Commit(); err != nil {
		return Address{}, err
	}
	return promoted, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAddress(row rowScanner) (Address, error) {
	var a Address
	var line2 sql.NullString
	err := row.Scan(&a.ID, &a.UserID, &a.Type, &a.FullName, &a.Phone, &a.Line1, &line2,
		&a.City, &a.State, &a.Zip, &a.Country, &a.IsDefault, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return Address{}, err
	}
	a.Line2 = line2.String
	return a, nil
}
