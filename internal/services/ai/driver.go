package ai

import (
	"context"
	"fmt"

	"github.com/KirkDiggler/mafia/internal/common/clock"
	"github.com/KirkDiggler/mafia/internal/models"
	"github.com/KirkDiggler/mafia/internal/random"
	"github.com/KirkDiggler/mafia/internal/repositories/room"
	"k8s.io/klog/v2"
)

type driver struct {
	repo   room.Repository
	random random.Source
	clock  clock.Clock
}

// New creates a synthetic actor driver
func New(cfg *Config) (*driver, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.Repo == nil {
		return nil, ErrNilRepo
	}
	if cfg.Random == nil {
		return nil, ErrNilRandom
	}
	if cfg.Clock == nil {
		return nil, ErrNilClock
	}

	return &driver{
		repo:   cfg.Repo,
		random: cfg.Random,
		clock:  cfg.Clock,
	}, nil
}

// Act picks a uniform random living target other than the actor for every
// living AI seat. At night only seats whose role has an action act; in the
// voting phase every living AI seat votes. Other phases are a no-op.
func (d *driver) Act(ctx context.Context, input *ActInput) (*ActOutput, error) {
	if input == nil || input.Room == nil {
		return nil, ErrNilRoom
	}

	r := input.Room
	out := &ActOutput{
		NightActions: map[string]*models.NightAction{},
		Votes:        map[string]*models.Vote{},
	}
	if r.Phase != models.PhaseNight && r.Phase != models.PhaseVoting {
		return out, nil
	}

	living := r.LivingPlayers()
	now := d.clock.Now()

	for _, seat := range living {
		if !seat.IsAI {
			continue
		}

		role := seat.RoleDefinition()
		if r.Phase == models.PhaseNight && !role.HasAction() {
			continue
		}

		target := d.pickTarget(living, seat.ID)
		if target == nil {
			continue
		}

		switch r.Phase {
		case models.PhaseNight:
			action := &models.NightAction{
				Action:      role.Action,
				TargetID:    target.ID,
				SubmittedAt: now,
			}
			if err := d.repo.PutNightAction(ctx, &room.PutNightActionInput{
				Code:     r.Code,
				PlayerID: seat.ID,
				Action:   action,
			}); err != nil {
				return out, fmt.Errorf("failed to record night action for %s: %w", seat.ID, err)
			}
			out.NightActions[seat.ID] = action
		case models.PhaseVoting:
			vote := &models.Vote{
				TargetID:    target.ID,
				SubmittedAt: now,
			}
			if err := d.repo.PutVote(ctx, &room.PutVoteInput{
				Code:    r.Code,
				VoterID: seat.ID,
				Vote:    vote,
			}); err != nil {
				return out, fmt.Errorf("failed to record vote for %s: %w", seat.ID, err)
			}
			out.Votes[seat.ID] = vote
		}
	}

	klog.V(2).Infof("room %s: AI seats submitted %d night actions and %d votes",
		r.Code, len(out.NightActions), len(out.Votes))

	return out, nil
}

// pickTarget returns a uniform random living player other than self
func (d *driver) pickTarget(living []*models.Player, selfID string) *models.Player {
	candidates := make([]*models.Player, 0, len(living))
	for _, p := range living {
		if p.ID != selfID {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	return candidates[d.random.Intn(len(candidates))]
}
