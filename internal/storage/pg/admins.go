package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/lib/pq"

	"github.com/commwatch/commwatch/internal/domain"
	internal_errors "github.com/commwatch/commwatch/internal/errors"
)

const uniqueViolation = "23505"

// SaveAdmin is the public entry point for creating an administrator
// account. It wraps the insert in a transaction.
func (s *Storage) SaveAdmin(admin domain.Administrator) (domain.AdminId, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var id domain.AdminId
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = s.saveAdmin(tx, admin)
		return err
	})
	return id, err
}

// saveAdmin contains the core insert logic. Username collisions surface
// as a 400 so the caller never learns more than "taken".
func (s *Storage) saveAdmin(q Querier, admin domain.Administrator) (domain.AdminId, error) {
	var id domain.AdminId
	err := q.QueryRow(
		"INSERT INTO admins(username, password_hash, role) VALUES($1, $2, $3) RETURNING id",
		admin.Username, admin.PassHash, admin.Role,
	).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return -1, &internal_errors.ErrorWithStatusCode{Message: "Failed to create user (username might be taken)", StatusCode: http.StatusBadRequest}
		}
		return -1, fmt.Errorf("failed to insert admin: %w", err)
	}
	return id, nil
}

// AdminByUsername fetches an account by exact, case-sensitive username.
func (s *Storage) AdminByUsername(username string) (domain.Administrator, error) {
	var admin domain.Administrator
	err := s.db.QueryRow(
		"SELECT id, username, password_hash, role FROM admins WHERE username = $1",
		username,
	).Scan(&admin.Id, &admin.Username, &admin.PassHash, &admin.Role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Administrator{}, &internal_errors.ErrorWithStatusCode{Message: "User not found", StatusCode: http.StatusNotFound}
		}
		return domain.Administrator{}, fmt.Errorf("failed to query admin: %w", err)
	}
	return admin, nil
}

// CountAdmins reports how many accounts exist, used by first-run bootstrap.
func (s *Storage) CountAdmins() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM admins").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}
	return n, nil
}
