package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/sbilibin2017/audio-vault/internal/common"
	"github.com/sbilibin2017/audio-vault/internal/logger"
	"github.com/sbilibin2017/audio-vault/internal/models"
)

// pgUniqueViolation is the SQLSTATE for a unique constraint violation.
const pgUniqueViolation = "23505"

const userColumns = "id, username, password_hash, role, created_at, updated_at"

// logQuery logs the query in a single line along with its args, result and error.
func logQuery(query string, args []any, result any, err error) {
	logger.Log.Infow("query",
		"sql", strings.Join(strings.Fields(query), " "),
		"args", args,
		"result", result,
		"error", err,
	)
}

type UserReadRepository struct {
	db *sqlx.DB
}

func NewUserReadRepository(db *sqlx.DB) *UserReadRepository {
	return &UserReadRepository{db: db}
}

// GetByUsername returns nil without error when no user has the username.
func (r *UserReadRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.getOne(ctx, query, username)
}

// GetByID returns nil without error when the id is unknown.
func (r *UserReadRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *UserReadRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, query, arg)

	// Password hashes never reach the log.
	logQuery(query, []any{arg}, user.Username, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns all users in insertion order.
func (r *UserReadRepository) List(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`

	users := []models.User{}
	err := r.db.SelectContext(ctx, &users, query)

	logQuery(query, nil, len(users), err)

	if err != nil {
		return nil, err
	}
	return users, nil
}

// UserWriteRepository handles user write operations. When a transaction is
// present in the context it is used instead of the pool.
type UserWriteRepository struct {
	db       *sqlx.DB
	txGetter func(ctx context.Context) *sqlx.Tx
}

func NewUserWriteRepository(db *sqlx.DB, txGetter func(ctx context.Context) *sqlx.Tx) *UserWriteRepository {
	return &UserWriteRepository{db: db, txGetter: txGetter}
}

func (r *UserWriteRepository) executor(ctx context.Context) sqlx.ExtContext {
	if r.txGetter != nil {
		if tx := r.txGetter(ctx); tx != nil {
			return tx
		}
	}
	return r.db
}

// Save inserts a user and returns the generated id. A taken username
// yields common.ErrAlreadyExists.
func (r *UserWriteRepository) Save(ctx context.Context, username, passwordHash string, role models.Role) (int64, error) {
	query := `
		INSERT INTO users (username, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id
	`

	var id int64
	err := sqlx.GetContext(ctx, r.executor(ctx), &id, query, username, passwordHash, string(role))

	logQuery(query, []any{username, role}, id, err)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return 0, common.ErrAlreadyExists
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// UpdatePassword replaces the stored hash. An unknown id yields common.ErrNotFound.
func (r *UserWriteRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	query := `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`
	return r.execOne(ctx, query, []any{passwordHash, id}, []any{id})
}

// Delete removes the user. An unknown id yields common.ErrNotFound.
func (r *UserWriteRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM users WHERE id = $1`
	return r.execOne(ctx, query, []any{id}, []any{id})
}

func (r *UserWriteRepository) execOne(ctx context.Context, query string, args, logArgs []any) error {
	res, err := r.executor(ctx).ExecContext(ctx, query, args...)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logQuery(query, logArgs, rowsAffected, err)

	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}
