package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"task-tracker/internal/logging"
	"task-tracker/internal/models"
)

// mysqlDuplicateEntry はMySQLの重複エントリーエラーコードです。
const mysqlDuplicateEntry = 1062

// MySQLUserRepository は users テーブルを操作します。
type MySQLUserRepository struct {
	DB *sql.DB
}

// NewMySQLUserRepository は新しいMySQLUserRepositoryインスタンスを作成します。
func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{DB: db}
}

// Create は新しいユーザーを挿入します。IDはここで採番します。
func (r *MySQLUserRepository) Create(ctx context.Context, u *models.User) (*models.User, error) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	u.ID = uuid.NewString()
	u.CreatedAt = now
	u.UpdatedAt = now

	query := "INSERT INTO users (id, username, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?)"
	_, err := r.DB.ExecContext(ctx, query, u.ID, u.Username, u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return nil, ErrDuplicateUsername
		}
		logging.Logger.WithError(err).Error("Failed to insert user")
		return nil, fmt.Errorf("could not insert user: %w", err)
	}
	return u, nil
}

// FindByUsername はユーザー名でユーザーを検索します。
func (r *MySQLUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	query := "SELECT id, username, password_hash, created_at, updated_at FROM users WHERE username = ?"
	return r.scanOne(r.DB.QueryRowContext(ctx, query, username))
}

// FindByID はIDでユーザーを検索します。
func (r *MySQLUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := "SELECT id, username, password_hash, created_at, updated_at FROM users WHERE id = ?"
	return r.scanOne(r.DB.QueryRowContext(ctx, query, id))
}

func (r *MySQLUserRepository) scanOne(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("could not query user: %w", err)
	}
	return &u, nil
}

// UpdatePassword はユーザーのパスワードハッシュを上書きします。
func (r *MySQLUserRepository) UpdatePassword(ctx context.Context, userID, newHash string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?",
		newHash, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("could not update password: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}
