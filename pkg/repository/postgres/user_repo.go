package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/artem13815/accounts/pkg/storage/postgres"
	"github.com/artem13815/accounts/pkg/user"
)

const (
	uniqueViolation          = "23505"
	externalIDConstraintName = "users_external_id_key"
)

const userColumns = `id, email, password_hash, name, role, external_id, last_login_at, created_at, updated_at`

// Columns List may order by; anything else is rejected before it reaches SQL.
var orderColumns = map[string]bool{
	"name":          true,
	"email":         true,
	"created_at":    true,
	"last_login_at": true,
}

// UserRepository implements user.Repository backed by PostgreSQL.
type UserRepository struct {
	db postgres.DBTX
}

func NewUserRepository(db postgres.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u user.User) (user.User, error) {
	query := `
		INSERT INTO users (id, email, password_hash, name, role, external_id, last_login_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		u.ID, u.Email, nullString(u.PasswordHash), u.Name, string(u.Role), nullString(u.ExternalID), u.LastLoginAt,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return user.User{}, translate(err)
	}
	u.CreatedAt, u.UpdatedAt = u.CreatedAt.UTC(), u.UpdatedAt.UTC()
	return u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepository) GetByExternalID(ctx context.Context, externalID string) (user.User, error) {
	if externalID == "" {
		return user.User{}, user.ErrNotFound
	}
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE external_id = $1`, externalID)
}

func (r *UserRepository) Update(ctx context.Context, u user.User) (user.User, error) {
	query := `
		UPDATE users
		SET email = $2, password_hash = $3, name = $4, role = $5, external_id = $6, updated_at = now()
		WHERE id = $1
		RETURNING ` + userColumns

	row := r.db.QueryRowContext(ctx, query,
		u.ID, u.Email, nullString(u.PasswordHash), u.Name, string(u.Role), nullString(u.ExternalID))
	updated, err := scanUser(row)
	if err != nil {
		return user.User{}, translate(err)
	}
	return updated, nil
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRow(res)
}

func (r *UserRepository) SetLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET last_login_at = $2, updated_at = now() WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRow(res)
}

func (r *UserRepository) List(ctx context.Context, q user.ListQuery) ([]user.User, int, error) {
	if !orderColumns[q.SortColumn] {
		return nil, 0, fmt.Errorf("unsupported sort column %q", q.SortColumn)
	}
	direction := "ASC"
	if q.Descending {
		direction = "DESC"
	}

	where := ""
	args := []any{}
	if q.Role != "" {
		args = append(args, string(q.Role))
		where = fmt.Sprintf(" WHERE role = $%d", len(args))
	}
	args = append(args, q.Limit, q.Offset)
	query := fmt.Sprintf(`SELECT %s, COUNT(*) OVER() FROM users%s ORDER BY %s %s, id ASC LIMIT $%d OFFSET $%d`,
		userColumns, where, q.SortColumn, direction, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	users := make([]user.User, 0, min(q.Limit, 64))
	total := 0
	for rows.Next() {
		var (
			u    user.User
			role string
			pw   sql.NullString
			ext  sql.NullString
			last sql.NullTime
		)
		if err := rows.Scan(&u.ID, &u.Email, &pw, &u.Name, &role, &ext, &last, &u.CreatedAt, &u.UpdatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("db error: %w", err)
		}
		users = append(users, assemble(u, role, pw, ext, last))
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	// A page past the end carries no window count.
	if len(users) == 0 && q.Offset > 0 {
		countQuery := `SELECT COUNT(*) FROM users` + where
		if err := r.db.QueryRowContext(ctx, countQuery, args[:len(args)-2]...).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("db error: %w", err)
		}
	}
	return users, total, nil
}

func (r *UserRepository) ListInactive(ctx context.Context, before time.Time) ([]user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		WHERE last_login_at IS NULL OR last_login_at < $1
		ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]user.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (user.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		return user.User{}, translate(err)
	}
	return u, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (user.User, error) {
	var (
		u    user.User
		role string
		pw   sql.NullString
		ext  sql.NullString
		last sql.NullTime
	)
	if err := s.Scan(&u.ID, &u.Email, &pw, &u.Name, &role, &ext, &last, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return user.User{}, err
	}
	return assemble(u, role, pw, ext, last), nil
}

func assemble(u user.User, role string, pw, ext sql.NullString, last sql.NullTime) user.User {
	u.Role = user.Role(role)
	u.PasswordHash = pw.String
	u.ExternalID = ext.String
	if last.Valid {
		t := last.Time.UTC()
		u.LastLoginAt = &t
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return u
}

func translate(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return user.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		if pgErr.ConstraintName == externalIDConstraintName {
			return user.ErrDuplicateExternalID
		}
		return user.ErrDuplicate
	}
	return fmt.Errorf("db error: %w", err)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return user.ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
