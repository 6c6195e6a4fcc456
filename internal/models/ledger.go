package models

import "time"

// NightAction is a concealed action submitted during the night
type NightAction struct {
	Action      ActionKind `json:"action"`
	TargetID    string     `json:"target_id"`
	SubmittedAt time.Time  `json:"submitted_at"`
}

// Vote is a voter's chosen target during the voting phase
type Vote struct {
	TargetID    string    `json:"target_id"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Inspection is the private result of an investigative action
type Inspection struct {
	Round    int    `json:"round"`
	TargetID string `json:"target_id"`

	// Team is the apparent team; immune roles show as village
	Team Team `json:"team"`
}

func cloneNightActions(in map[string]*NightAction) map[string]*NightAction {
	out := make(map[string]*NightAction, len(in))
	for k, v := range in {
		if v == nil {
			continue
		}
		c := *v
		out[k] = &c
	}
	return out
}

func cloneVotes(in map[string]*Vote) map[string]*Vote {
	out := make(map[string]*Vote, len(in))
	for k, v := range in {
		if v == nil {
			continue
		}
		c := *v
		out[k] = &c
	}
	return out
}

func cloneInspections(in map[string][]*Inspection) map[string][]*Inspection {
	out := make(map[string][]*Inspection, len(in))
	for k, list := range in {
		copied := make([]*Inspection, 0, len(list))
		for _, v := range list {
			if v == nil {
				continue
			}
			c := *v
			copied = append(copied, &c)
		}
		out[k] = copied
	}
	return out
}
