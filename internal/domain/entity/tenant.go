package entity

import "time"

// Tenant organización aislada. Todas las consultas y mutaciones del sistema
// van acotadas por TenantID; el acceso cruzado es un fallo duro.
type Tenant struct {
	ID        string
	Name      string
	Settings  map[string]string // ajustes clave-valor (zona horaria, idioma, ...)
	DeletedAt *time.Time        // soft delete; recuperable 30 días, purga externa
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Deleted reporta si el tenant está marcado como eliminado.
func (t *Tenant) Deleted() bool { return t.DeletedAt != nil }
