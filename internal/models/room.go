package models

import (
	"time"
)

// Room is one game session's shared authoritative state
type Room struct {
	// Code is the short join code, immutable after creation
	Code string `json:"room_code"`

	// HostID is the only player allowed to drive the phase timer
	HostID string `json:"host_id"`

	Phase Phase `json:"phase"`

	// Round counts nights, starting at 1 when the game starts
	Round int `json:"round"`

	// Players is ordered by join order; the order is used for tie-breaks
	Players []*Player `json:"players"`

	// TimerSeconds is nil outside timed phases
	TimerSeconds *int `json:"timer"`

	NightActions map[string]*NightAction `json:"night_actions"`
	Votes        map[string]*Vote        `json:"votes"`

	// Inspections holds investigative results keyed by inspector id
	Inspections map[string][]*Inspection `json:"inspections,omitempty"`

	Messages []*Message `json:"messages"`

	LastNightResult string `json:"last_night_result,omitempty"`
	LastVoteResult  string `json:"last_vote_result,omitempty"`

	// Winner is set once, on entering game over
	Winner Team `json:"winner,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FindPlayer returns the player with id, or nil
func (r *Room) FindPlayer(id string) *Player {
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// LivingPlayers returns the players that are still alive, in seat order
func (r *Room) LivingPlayers() []*Player {
	living := make([]*Player, 0, len(r.Players))
	for _, p := range r.Players {
		if p.Alive() {
			living = append(living, p)
		}
	}
	return living
}

// Timer returns the remaining seconds, or the phase default when unset
func (r *Room) Timer() int {
	if r.TimerSeconds != nil {
		return *r.TimerSeconds
	}
	return r.Phase.Duration()
}

// Clone returns a deep copy of the room
func (r *Room) Clone() *Room {
	if r == nil {
		return nil
	}
	c := *r
	c.Players = ClonePlayers(r.Players)
	if r.TimerSeconds != nil {
		t := *r.TimerSeconds
		c.TimerSeconds = &t
	}
	c.NightActions = cloneNightActions(r.NightActions)
	c.Votes = cloneVotes(r.Votes)
	if r.Inspections != nil {
		c.Inspections = cloneInspections(r.Inspections)
	}
	if r.Messages != nil {
		c.Messages = make([]*Message, len(r.Messages))
		for i, m := range r.Messages {
			msg := *m
			c.Messages[i] = &msg
		}
	}
	return &c
}

// ViewFor returns a copy of the room as the given player should see it.
// Other players' roles stay hidden until they die or the game ends, and
// only the viewer's own night action and inspections are included.
func (r *Room) ViewFor(playerID string) *Room {
	view := r.Clone()
	if view == nil {
		return nil
	}

	for _, p := range view.Players {
		if p.ID == playerID || p.IsDead || view.Phase.IsTerminal() {
			continue
		}
		p.Role = ""
	}

	actions := make(map[string]*NightAction, 1)
	if own, ok := view.NightActions[playerID]; ok {
		actions[playerID] = own
	}
	view.NightActions = actions

	inspections := make(map[string][]*Inspection, 1)
	if own, ok := view.Inspections[playerID]; ok {
		inspections[playerID] = own
	}
	view.Inspections = inspections

	return view
}

// NewRoom builds a lobby room with the host as its first player
func NewRoom(code string, host *Player, now time.Time) *Room {
	host.IsHost = true
	return &Room{
		Code:         code,
		HostID:       host.ID,
		Phase:        PhaseLobby,
		Players:      []*Player{host},
		NightActions: map[string]*NightAction{},
		Votes:        map[string]*Vote{},
		Inspections:  map[string][]*Inspection{},
		Messages:     []*Message{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
