package service

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/commwatch/commwatch/internal/domain"
	internal_errors "github.com/commwatch/commwatch/internal/errors"
)

// --- Mocks ---

type MockAuthStorage struct {
	SaveAdminFunc       func(admin domain.Administrator) (domain.AdminId, error)
	AdminByUsernameFunc func(username string) (domain.Administrator, error)
	CountAdminsFunc     func() (int, error)
}

func (m *MockAuthStorage) SaveAdmin(admin domain.Administrator) (domain.AdminId, error) {
	if m.SaveAdminFunc != nil {
		return m.SaveAdminFunc(admin)
	}
	return 1, nil
}

func (m *MockAuthStorage) AdminByUsername(username string) (domain.Administrator, error) {
	if m.AdminByUsernameFunc != nil {
		return m.AdminByUsernameFunc(username)
	}
	passHash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcryptCost)
	return domain.Administrator{Id: 1, Username: username, PassHash: string(passHash), Role: domain.RoleAdmin}, nil
}

func (m *MockAuthStorage) CountAdmins() (int, error) {
	if m.CountAdminsFunc != nil {
		return m.CountAdminsFunc()
	}
	return 1, nil
}

type MockJwtService struct {
	NewTokenFunc    func(admin domain.Administrator) (string, error)
	DecodeTokenFunc func(jwtStr string) (*domain.Claims, error)
}

func (m *MockJwtService) NewToken(admin domain.Administrator) (string, error) {
	if m.NewTokenFunc != nil {
		return m.NewTokenFunc(admin)
	}
	return "mock-token", nil
}

func (m *MockJwtService) DecodeToken(jwtStr string) (*domain.Claims, error) {
	if m.DecodeTokenFunc != nil {
		return m.DecodeTokenFunc(jwtStr)
	}
	return &domain.Claims{UserId: 1, Username: "admin", Role: domain.RoleAdmin}, nil
}

// --- Tests ---

func TestLogin(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		auth := NewAuth(&MockAuthStorage{}, &MockJwtService{})

		token, role, err := auth.Login("admin", "password")

		require.NoError(t, err)
		assert.Equal(t, "mock-token", token)
		assert.Equal(t, domain.RoleAdmin, role)
	})

	t.Run("Wrong password", func(t *testing.T) {
		auth := NewAuth(&MockAuthStorage{}, &MockJwtService{})

		_, _, err := auth.Login("admin", "wrong-password")

		require.Error(t, err)
		var statusErr *internal_errors.ErrorWithStatusCode
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
		assert.Equal(t, "Invalid credentials", statusErr.Message)
	})

	t.Run("Unknown username returns the same error as wrong password", func(t *testing.T) {
		storage := &MockAuthStorage{
			AdminByUsernameFunc: func(username string) (domain.Administrator, error) {
				return domain.Administrator{}, &internal_errors.ErrorWithStatusCode{Message: "Admin not found", StatusCode: http.StatusNotFound}
			},
		}
		auth := NewAuth(storage, &MockJwtService{})

		_, _, err := auth.Login("nobody", "whatever")

		require.Error(t, err)
		var statusErr *internal_errors.ErrorWithStatusCode
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
		assert.Equal(t, "Invalid credentials", statusErr.Message)
	})

	t.Run("Storage error propagates", func(t *testing.T) {
		storageErr := errors.New("connection refused")
		storage := &MockAuthStorage{
			AdminByUsernameFunc: func(username string) (domain.Administrator, error) {
				return domain.Administrator{}, storageErr
			},
		}
		auth := NewAuth(storage, &MockJwtService{})

		_, _, err := auth.Login("admin", "password")

		assert.ErrorIs(t, err, storageErr)
	})

	t.Run("Token creation failure", func(t *testing.T) {
		jwtErr := errors.New("signing failed")
		jwtService := &MockJwtService{
			NewTokenFunc: func(admin domain.Administrator) (string, error) {
				return "", jwtErr
			},
		}
		auth := NewAuth(&MockAuthStorage{}, jwtService)

		_, _, err := auth.Login("admin", "password")

		assert.ErrorIs(t, err, jwtErr)
	})
}

func TestCreateAdministrator(t *testing.T) {
	t.Run("Success with explicit role", func(t *testing.T) {
		var saved domain.Administrator
		storage := &MockAuthStorage{
			SaveAdminFunc: func(admin domain.Administrator) (domain.AdminId, error) {
				saved = admin
				return 7, nil
			},
		}
		auth := NewAuth(storage, &MockJwtService{})

		id, err := auth.CreateAdministrator("alice", "secret", domain.RoleSuperadmin)

		require.NoError(t, err)
		assert.Equal(t, domain.AdminId(7), id)
		assert.Equal(t, "alice", saved.Username)
		assert.Equal(t, domain.RoleSuperadmin, saved.Role)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(saved.PassHash), []byte("secret")))
	})

	t.Run("Empty role defaults to admin", func(t *testing.T) {
		var saved domain.Administrator
		storage := &MockAuthStorage{
			SaveAdminFunc: func(admin domain.Administrator) (domain.AdminId, error) {
				saved = admin
				return 2, nil
			},
		}
		auth := NewAuth(storage, &MockJwtService{})

		_, err := auth.CreateAdministrator("bob", "secret", "")

		require.NoError(t, err)
		assert.Equal(t, domain.RoleAdmin, saved.Role)
	})

	t.Run("Unknown role rejected", func(t *testing.T) {
		auth := NewAuth(&MockAuthStorage{}, &MockJwtService{})

		_, err := auth.CreateAdministrator("mallory", "secret", "root")

		require.Error(t, err)
		var statusErr *internal_errors.ErrorWithStatusCode
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	})
}

func TestEnsureDefaultAdmin(t *testing.T) {
	t.Run("Seeds superadmin when store is empty", func(t *testing.T) {
		var saved domain.Administrator
		storage := &MockAuthStorage{
			CountAdminsFunc: func() (int, error) { return 0, nil },
			SaveAdminFunc: func(admin domain.Administrator) (domain.AdminId, error) {
				saved = admin
				return 1, nil
			},
		}
		auth := NewAuth(storage, &MockJwtService{})

		require.NoError(t, auth.EnsureDefaultAdmin())
		assert.Equal(t, "admin", saved.Username)
		assert.Equal(t, domain.RoleSuperadmin, saved.Role)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(saved.PassHash), []byte("admin123")))
	})

	t.Run("No-op when admins already exist", func(t *testing.T) {
		storage := &MockAuthStorage{
			SaveAdminFunc: func(admin domain.Administrator) (domain.AdminId, error) {
				t.Fatal("SaveAdmin should not be called")
				return 0, nil
			},
		}
		auth := NewAuth(storage, &MockJwtService{})

		require.NoError(t, auth.EnsureDefaultAdmin())
	})
}
