package models

// Player represents a seat in a room
type Player struct {
	// ID is stable for the room and never reused
	ID string `json:"id"`

	// Username is the display name, upper-cased at join
	Username string `json:"username"`

	// IsHost is true only for the room creator
	IsHost bool `json:"is_host"`

	// IsAI marks synthetic seats created with the room
	IsAI bool `json:"is_ai"`

	// IsDead never reverts once set
	IsDead bool `json:"is_dead"`

	// Role is empty until the game starts
	Role RoleID `json:"role,omitempty"`
}

// Alive reports whether the player is still in the game
func (p *Player) Alive() bool {
	return p != nil && !p.IsDead
}

// RoleDefinition looks up the player's role in the catalog
func (p *Player) RoleDefinition() *Role {
	if p == nil || p.Role == "" {
		return nil
	}
	role, _ := LookupRole(p.Role)
	return role
}

// Team returns the player's team, empty if unassigned
func (p *Player) Team() Team {
	if role := p.RoleDefinition(); role != nil {
		return role.Team
	}
	return ""
}

// Clone returns a copy of the player
func (p *Player) Clone() *Player {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// ClonePlayers copies a player list
func ClonePlayers(players []*Player) []*Player {
	if players == nil {
		return nil
	}
	out := make([]*Player, len(players))
	for i, p := range players {
		out[i] = p.Clone()
	}
	return out
}
