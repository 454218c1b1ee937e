package entity

import "time"

// Estados de Project.
const (
	ProjectStatusPlanning  = "planning"
	ProjectStatusActive    = "active"
	ProjectStatusCompleted = "completed"
	ProjectStatusCancelled = "cancelled"
)

// Project proyecto con PM y miembros. El PM es siempre miembro implícito y
// no puede quitarse directamente.
type Project struct {
	ID          string
	TenantID    string
	Name        string
	Description string
	Status      string
	PMID        string
	StartDate   *time.Time // end >= start cuando ambos presentes
	EndDate     *time.Time
	MemberIDs   []string // incluye siempre al PM
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsMember reporta si userID es miembro del proyecto (el PM siempre lo es).
func (p *Project) IsMember(userID string) bool {
	if userID == p.PMID {
		return true
	}
	for _, id := range p.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}
