package models

import "time"

// RoomPatch is a shallow merge of top-level room fields. Nil fields are
// left untouched; the Clear flags reset a field.
type RoomPatch struct {
	Phase           *Phase
	Round           *int
	TimerSeconds    *int
	ClearTimer      bool
	Players         []*Player
	LastNightResult *string
	LastVoteResult  *string
	Winner          *Team

	// Inspections are appended per inspector, never replaced
	Inspections map[string][]*Inspection

	ClearNightActions bool
	ClearVotes        bool

	UpdatedAt time.Time
}

// IsEmpty reports whether applying the patch would change nothing
func (p *RoomPatch) IsEmpty() bool {
	return p == nil || (p.Phase == nil && p.Round == nil && p.TimerSeconds == nil &&
		!p.ClearTimer && p.Players == nil && p.LastNightResult == nil &&
		p.LastVoteResult == nil && p.Winner == nil && len(p.Inspections) == 0 &&
		!p.ClearNightActions && !p.ClearVotes)
}

// Apply merges the patch into the room
func (r *Room) Apply(p *RoomPatch) {
	if p.IsEmpty() {
		return
	}
	if p.Phase != nil {
		r.Phase = *p.Phase
	}
	if p.Round != nil {
		r.Round = *p.Round
	}
	if p.ClearTimer {
		r.TimerSeconds = nil
	} else if p.TimerSeconds != nil {
		t := *p.TimerSeconds
		r.TimerSeconds = &t
	}
	if p.Players != nil {
		r.Players = ClonePlayers(p.Players)
	}
	if p.LastNightResult != nil {
		r.LastNightResult = *p.LastNightResult
	}
	if p.LastVoteResult != nil {
		r.LastVoteResult = *p.LastVoteResult
	}
	if p.Winner != nil && r.Winner == "" {
		r.Winner = *p.Winner
	}
	if len(p.Inspections) > 0 {
		if r.Inspections == nil {
			r.Inspections = map[string][]*Inspection{}
		}
		for inspector, list := range cloneInspections(p.Inspections) {
			r.Inspections[inspector] = append(r.Inspections[inspector], list...)
		}
	}
	if p.ClearNightActions {
		r.NightActions = map[string]*NightAction{}
	}
	if p.ClearVotes {
		r.Votes = map[string]*Vote{}
	}
	if !p.UpdatedAt.IsZero() {
		r.UpdatedAt = p.UpdatedAt
	}
}
