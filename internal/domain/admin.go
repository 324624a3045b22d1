package domain

type AdminId = int64

const (
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
)

// Administrator is a reviewer account. Only administrators can read
// reports; only superadmins can manage accounts and email groups.
type Administrator struct {
	Id       AdminId
	Username string
	PassHash string
	Role     string
}

// Claims is the decoded identity carried by a validated session token.
type Claims struct {
	UserId   AdminId
	Username string
	Role     string
}

func (c *Claims) IsSuperadmin() bool {
	return c.Role == RoleSuperadmin
}
