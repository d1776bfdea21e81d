package domain

const (
	RoleAdmin    = "admin"
	RoleSubadmin = "subadmin"
)

// Actor identifies the authenticated caller as forwarded by the gateway.
// Token verification happens upstream; this service only consumes the
// resulting identity headers.
type Actor struct {
	UserID string
	Role   string
}
