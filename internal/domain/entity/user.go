package entity

import "time"

// Role es el conjunto cerrado de roles por tenant. Tipado (no strings
// sueltos) para que el evaluador RBAC trabaje por intersección de conjuntos.
type Role string

const (
	RoleMember      Role = "member"
	RoleApprover    Role = "approver"
	RolePM          Role = "pm"
	RoleAccounting  Role = "accounting"
	RoleTenantAdmin Role = "tenant_admin"
	RoleITAdmin     Role = "it_admin"
)

// ValidRole reporta si s es uno de los roles reconocidos.
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleMember, RoleApprover, RolePM, RoleAccounting, RoleTenantAdmin, RoleITAdmin:
		return true
	}
	return false
}

// Estados de la cuenta de usuario.
const (
	UserStatusInvited  = "invited" // invitado, aún sin aceptar
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// User usuario del sistema. Un usuario pertenece a un tenant y puede tener
// varios roles dentro de él.
type User struct {
	ID           string
	TenantID     string
	Email        string
	PasswordHash string // bcrypt; nunca en claro después de persistir
	Name         string
	Roles        []Role
	Status       string // invited, active, disabled
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasRole reporta si el usuario posee el rol dado.
func (u *User) HasRole(r Role) bool {
	for _, have := range u.Roles {
		if have == r {
			return true
		}
	}
	return false
}

// RoleStrings convierte los roles a []string (para claims JWT y snapshots).
func (u *User) RoleStrings() []string {
	out := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		out = append(out, string(r))
	}
	return out
}
