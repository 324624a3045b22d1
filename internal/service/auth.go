package service

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/commwatch/commwatch/internal/domain"
	"github.com/commwatch/commwatch/internal/errors"
	"github.com/commwatch/commwatch/internal/jwt"
	"github.com/commwatch/commwatch/internal/logger"
)

// First-run credentials. Operationally insecure on purpose: operators
// are expected to rotate them after the first login.
const (
	defaultAdminUsername = "admin"
	defaultAdminPassword = "admin123"
)

const bcryptCost = 10

type AuthService interface {
	Login(username, password string) (token string, role string, err error)
	CreateAdministrator(username, password, role string) (domain.AdminId, error)
	EnsureDefaultAdmin() error
}

type AuthStorage interface {
	SaveAdmin(admin domain.Administrator) (domain.AdminId, error)
	AdminByUsername(username string) (domain.Administrator, error)
	CountAdmins() (int, error)
}

type Auth struct {
	storage AuthStorage
	jwt     jwt.JwtService

	// compared against on unknown usernames so lookup failures cost
	// the same as password mismatches
	dummyHash []byte
}

func NewAuth(storage AuthStorage, jwtService jwt.JwtService) *Auth {
	dummyHash, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcryptCost)
	if err != nil {
		panic("bcrypt failure: " + err.Error())
	}
	return &Auth{storage: storage, jwt: jwtService, dummyHash: dummyHash}
}

var errInvalidCredentials = &errors.ErrorWithStatusCode{Message: "Invalid credentials", StatusCode: http.StatusUnauthorized}

// Login verifies credentials and returns a signed session token. The
// error is identical for unknown usernames and wrong passwords.
func (a *Auth) Login(username, password string) (string, string, error) {
	admin, err := a.storage.AdminByUsername(username)
	if err != nil {
		if errors.IsNotFound(err) {
			// burn a comparison so the caller can't time user existence
			bcrypt.CompareHashAndPassword(a.dummyHash, []byte(password))
			return "", "", errInvalidCredentials
		}
		return "", "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PassHash), []byte(password)); err != nil {
		return "", "", errInvalidCredentials
	}

	token, err := a.jwt.NewToken(admin)
	if err != nil {
		logger.Log.Error("failed to create jwt token", "user_id", admin.Id, "error", err)
		return "", "", err
	}

	return token, admin.Role, nil
}

// CreateAdministrator stores a new account with a hashed password. The
// caller must already be authorized as superadmin (enforced at the
// routing layer). Role defaults to admin when omitted.
func (a *Auth) CreateAdministrator(username, password, role string) (domain.AdminId, error) {
	if role == "" {
		role = domain.RoleAdmin
	}
	if role != domain.RoleAdmin && role != domain.RoleSuperadmin {
		return -1, &errors.ErrorWithStatusCode{Message: "Unknown role", StatusCode: http.StatusBadRequest}
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		logger.Log.Error("failed to hash password", "error", err)
		return -1, err
	}

	return a.storage.SaveAdmin(domain.Administrator{
		Username: username,
		PassHash: string(passHash),
		Role:     role,
	})
}

// EnsureDefaultAdmin seeds the well-known superadmin account when the
// credential store is empty.
func (a *Auth) EnsureDefaultAdmin() error {
	n, err := a.storage.CountAdmins()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(defaultAdminPassword), bcryptCost)
	if err != nil {
		return err
	}
	if _, err := a.storage.SaveAdmin(domain.Administrator{
		Username: defaultAdminUsername,
		PassHash: string(passHash),
		Role:     domain.RoleSuperadmin,
	}); err != nil {
		return err
	}

	logger.Log.Warn("default superadmin created, rotate the password",
		"username", defaultAdminUsername)
	return nil
}
