package pg

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/lib/pq"

	"github.com/commwatch/commwatch/internal/domain"
	internal_errors "github.com/commwatch/commwatch/internal/errors"
)

// Groups lists all email groups.
func (s *Storage) Groups() ([]domain.EmailGroup, error) {
	rows, err := s.db.Query("SELECT id, name, emails FROM email_groups ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query email groups: %w", err)
	}
	defer rows.Close()

	return collectGroups(rows)
}

// GroupsByIds resolves the given ids, silently skipping unknown ones.
func (s *Storage) GroupsByIds(ids []domain.GroupId) ([]domain.EmailGroup, error) {
	rows, err := s.db.Query("SELECT id, name, emails FROM email_groups WHERE id = ANY($1) ORDER BY id ASC", pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query email groups: %w", err)
	}
	defer rows.Close()

	return collectGroups(rows)
}

// UpdateGroupEmails replaces a group's recipient list wholesale.
func (s *Storage) UpdateGroupEmails(id domain.GroupId, emails string) (domain.EmailGroup, error) {
	var group domain.EmailGroup
	err := s.db.QueryRow(
		"UPDATE email_groups SET emails = $2 WHERE id = $1 RETURNING id, name, emails",
		id, emails,
	).Scan(&group.Id, &group.Name, &group.Emails)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.EmailGroup{}, &internal_errors.ErrorWithStatusCode{Message: "Group not found", StatusCode: http.StatusNotFound}
		}
		return domain.EmailGroup{}, fmt.Errorf("failed to update email group: %w", err)
	}
	return group, nil
}

// SaveGroup inserts a new email group, used by bootstrap seeding.
func (s *Storage) SaveGroup(group domain.EmailGroup) (domain.GroupId, error) {
	var id domain.GroupId
	err := s.db.QueryRow(
		"INSERT INTO email_groups(name, emails) VALUES($1, $2) RETURNING id",
		group.Name, group.Emails,
	).Scan(&id)
	if err != nil {
		return -1, fmt.Errorf("failed to insert email group: %w", err)
	}
	return id, nil
}

// CountGroups reports how many groups exist, used by bootstrap seeding.
func (s *Storage) CountGroups() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM email_groups").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count email groups: %w", err)
	}
	return n, nil
}

func collectGroups(rows *sql.Rows) ([]domain.EmailGroup, error) {
	groups := []domain.EmailGroup{}
	for rows.Next() {
		var g domain.EmailGroup
		if err := rows.Scan(&g.Id, &g.Name, &g.Emails); err != nil {
			return nil, fmt.Errorf("failed to scan email group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate email groups: %w", err)
	}
	return groups, nil
}
