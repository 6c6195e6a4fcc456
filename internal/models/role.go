package models

import "sort"

// Team determines win-condition membership
type Team string

const (
	TeamMafia   Team = "mafia"
	TeamVillage Team = "village"
	TeamNeutral Team = "neutral"
)

// ActionKind is what a role submits at night
type ActionKind string

const (
	ActionMafiaVote          ActionKind = "mafiaVote"
	ActionDoctorSave         ActionKind = "doctorSave"
	ActionDetectiveInspect   ActionKind = "detectiveInspect"
	ActionBodyguardProtect   ActionKind = "bodyguardProtect"
	ActionVigilanteShoot     ActionKind = "vigilanteShoot"
	ActionSheriffInvestigate ActionKind = "sheriffInvestigate"
)

// IsInvestigative reports whether the action reveals a team rather than affecting anyone
func (k ActionKind) IsInvestigative() bool {
	return k == ActionDetectiveInspect || k == ActionSheriffInvestigate
}

// RoleID keys the role catalog
type RoleID string

const (
	RoleMafia     RoleID = "MAFIA"
	RoleMafiaBoss RoleID = "MAFIA_BOSS"
	RoleGodfather RoleID = "GODFATHER"
	RoleVillager  RoleID = "VILLAGER"
	RoleDoctor    RoleID = "DOCTOR"
	RoleDetective RoleID = "DETECTIVE"
	RoleBodyguard RoleID = "BODYGUARD"
	RoleVigilante RoleID = "VIGILANTE"
	RoleSheriff   RoleID = "SHERIFF"
	RoleJester    RoleID = "JESTER"
)

// Role is a static role definition
type Role struct {
	ID   RoleID `json:"id"`
	Name string `json:"name"`
	Team Team   `json:"team"`

	// Action is empty for roles that do nothing at night
	Action ActionKind `json:"action,omitempty"`

	// Priority documents the intended resolution order; it is not
	// consulted by resolution
	Priority int `json:"priority"`

	// Immune roles appear as village to investigative actions
	Immune bool `json:"immune"`
}

// HasAction reports whether the role submits a night action
func (r *Role) HasAction() bool {
	return r != nil && r.Action != ""
}

var roleCatalog = map[RoleID]*Role{
	RoleMafia:     {ID: RoleMafia, Name: "Mafia", Team: TeamMafia, Action: ActionMafiaVote, Priority: 3},
	RoleMafiaBoss: {ID: RoleMafiaBoss, Name: "Mafia Boss", Team: TeamMafia, Action: ActionMafiaVote, Priority: 3, Immune: true},
	RoleGodfather: {ID: RoleGodfather, Name: "Godfather", Team: TeamMafia, Action: ActionMafiaVote, Priority: 3, Immune: true},
	RoleVillager:  {ID: RoleVillager, Name: "Villager", Team: TeamVillage},
	RoleDoctor:    {ID: RoleDoctor, Name: "Doctor", Team: TeamVillage, Action: ActionDoctorSave, Priority: 1},
	RoleDetective: {ID: RoleDetective, Name: "Detective", Team: TeamVillage, Action: ActionDetectiveInspect, Priority: 2},
	RoleBodyguard: {ID: RoleBodyguard, Name: "Bodyguard", Team: TeamVillage, Action: ActionBodyguardProtect, Priority: 1},
	RoleVigilante: {ID: RoleVigilante, Name: "Vigilante", Team: TeamVillage, Action: ActionVigilanteShoot, Priority: 4},
	RoleSheriff:   {ID: RoleSheriff, Name: "Sheriff", Team: TeamVillage, Action: ActionSheriffInvestigate, Priority: 2},
	RoleJester:    {ID: RoleJester, Name: "Jester", Team: TeamNeutral},
}

// LookupRole returns the catalog entry for id
func LookupRole(id RoleID) (*Role, bool) {
	role, ok := roleCatalog[id]
	return role, ok
}

// Roles returns every role definition in the catalog, ordered by team then id
func Roles() []*Role {
	roles := make([]*Role, 0, len(roleCatalog))
	for _, role := range roleCatalog {
		copied := *role
		roles = append(roles, &copied)
	}
	sort.Slice(roles, func(i, j int) bool {
		if roles[i].Team != roles[j].Team {
			return roles[i].Team < roles[j].Team
		}
		return roles[i].ID < roles[j].ID
	})
	return roles
}
