package service

import (
	"github.com/commwatch/commwatch/internal/domain"
	"github.com/commwatch/commwatch/internal/logger"
)

type GroupService interface {
	List() ([]domain.EmailGroup, error)
	UpdateEmails(id domain.GroupId, emails string) (domain.EmailGroup, error)
	EnsureDefaults() error
}

type GroupStorage interface {
	Groups() ([]domain.EmailGroup, error)
	GroupsByIds(ids []domain.GroupId) ([]domain.EmailGroup, error)
	UpdateGroupEmails(id domain.GroupId, emails string) (domain.EmailGroup, error)
	SaveGroup(group domain.EmailGroup) (domain.GroupId, error)
	CountGroups() (int, error)
}

// Deployment-specific first-run forwarding targets.
var defaultGroups = []domain.EmailGroup{
	{Name: "St Mungos Team", Emails: "placeholder@stmungos.org"},
	{Name: "Hither Green Safer Neighborhoods", Emails: "placeholder@met.police.uk"},
}

type Group struct {
	storage GroupStorage
}

func NewGroup(storage GroupStorage) *Group {
	return &Group{storage: storage}
}

func (g *Group) List() ([]domain.EmailGroup, error) {
	return g.storage.Groups()
}

// UpdateEmails replaces the recipient list wholesale. Addresses are
// free text; they are only split on commas at send time.
func (g *Group) UpdateEmails(id domain.GroupId, emails string) (domain.EmailGroup, error) {
	return g.storage.UpdateGroupEmails(id, emails)
}

// EnsureDefaults seeds the default groups when the registry is empty.
func (g *Group) EnsureDefaults() error {
	n, err := g.storage.CountGroups()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	for _, group := range defaultGroups {
		if _, err := g.storage.SaveGroup(group); err != nil {
			return err
		}
	}
	logger.Log.Info("default email groups created", "count", len(defaultGroups))
	return nil
}
