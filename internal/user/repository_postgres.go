package user

import (
	"context"
	"database/sql"
)

// PostgresRepository stores accounts in a users table.
// Expected layout:
//   user_id serial primary key,
//   name text not null,
//   email text not null unique,
//   password text not null,
//   role text not null default 'user',
//   is_verified boolean not null default false,
//   verification_code text,
//   verification_expires text,
//   created_at text,
//   updated_at text

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `user_id, name, email, password, role, is_verified, verification_code, verification_expires, created_at, updated_at`

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (User, error) {
	return r.queryOne(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = $1`, id)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.queryOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *PostgresRepository) Create(ctx context.Context, u User) (User, error) {
	err := r.db.QueryRowContext(ctx, `
        INSERT INTO users (name, email, password, role, is_verified, verification_code, verification_expires, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING `+userColumns,
		u.Name, u.Email, u.Password, u.Role, u.IsVerified, u.VerificationCode, u.VerificationExpires, u.CreatedAt, u.UpdatedAt).
		Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Role, &u.IsVerified, &u.VerificationCode, &u.VerificationExpires, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id int, u User) (User, error) {
	err := r.db.QueryRowContext(ctx, `
        UPDATE users
        SET name=$2, email=$3, password=$4, role=$5, is_verified=$6, verification_code=$7, verification_expires=$8, updated_at=$9
        WHERE user_id=$1
        RETURNING `+userColumns,
		id, u.Name, u.Email, u.Password, u.Role, u.IsVerified, u.VerificationCode, u.VerificationExpires, u.UpdatedAt).
		Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Role, &u.IsVerified, &u.VerificationCode, &u.VerificationExpires, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

func (r *PostgresRepository) queryOne(ctx context.Context, query string, arg interface{}) (User, error) {
	var u User
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Role, &u.IsVerified, &u.VerificationCode, &u.VerificationExpires, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}
