package staff

import (
	"strings"

	"github.com/google/uuid"
)

// Role is the enumerated scope tier resolved once when a staff record is
// created or updated. Query paths branch on Role, never on raw title text.
type Role string

const (
	// RoleOrg sees unfiltered aggregates.
	RoleOrg Role = "org"
	// RoleTeamLead sees rows where they are the merchandising manager.
	RoleTeamLead Role = "team_lead"
	// RoleIC sees rows where they are the merchandiser.
	RoleIC Role = "ic"
)

type Staff struct {
	id    uuid.UUID
	name  string
	title string
	role  Role
}

func New(name, title string) Staff {
	return Staff{
		name:  strings.TrimSpace(name),
		title: strings.TrimSpace(title),
		role:  RoleFromTitle(title),
	}
}

func Hydrate(id uuid.UUID, name, title string, role Role) Staff {
	return Staff{id: id, name: strings.TrimSpace(name), title: strings.TrimSpace(title), role: role}
}

func (s Staff) ID() uuid.UUID { return s.id }
func (s Staff) Name() string  { return s.name }
func (s Staff) Title() string { return s.title }
func (s Staff) Role() Role    { return s.role }
func (s Staff) IsZero() bool  { return s.id == uuid.Nil && s.name == "" }

// WithTitle re-runs role normalization; this is the only place the title
// heuristic is applied after creation.
func (s Staff) WithTitle(title string) Staff {
	out := s
	out.title = strings.TrimSpace(title)
	out.role = RoleFromTitle(title)
	return out
}

// RoleFromTitle normalizes a free-form job title into a Role. It runs at
// staff create/update time only; persisted Role is what queries use.
func RoleFromTitle(title string) Role {
	t := strings.ToLower(title)
	switch {
	case strings.Contains(t, "director"),
		strings.Contains(t, "head of"),
		strings.Contains(t, "general manager"):
		return RoleOrg
	case strings.Contains(t, "manager"),
		strings.Contains(t, "team lead"):
		return RoleTeamLead
	default:
		return RoleIC
	}
}

// Scope is the aggregation filter a staff member's role grants. Zero-value
// fields mean "no restriction".
type Scope struct {
	Merchandiser         string
	MerchandisingManager string
}

// ScopeFor derives the dashboard filter from the persisted role. Evaluated
// once per request.
func ScopeFor(s Staff) Scope {
	switch s.Role() {
	case RoleOrg:
		return Scope{}
	case RoleTeamLead:
		return Scope{MerchandisingManager: s.Name()}
	default:
		return Scope{Merchandiser: s.Name()}
	}
}
