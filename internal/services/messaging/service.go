package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/KirkDiggler/mafia/internal/models"
	"github.com/KirkDiggler/mafia/internal/random"
	"github.com/KirkDiggler/mafia/internal/services/game"
)

// service implements the Service interface
type service struct {
	// Random source for selecting flavor lines
	random random.Source
}

// New creates a new messaging service
func New(cfg *Config) (*service, error) {
	source := random.Source(nil)
	if cfg != nil {
		source = cfg.Random
	}
	if source == nil {
		source = random.New(nil)
	}

	return &service{
		random: source,
	}, nil
}

// GetJoinMessage returns the notice shown after creating or joining a room
func (s *service) GetJoinMessage(ctx context.Context, input *GetJoinMessageInput) (*GetJoinMessageOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	var messages []string
	title := TitleJoined

	switch {
	case input.Created:
		title = TitleRoomCreated
		messages = []string{
			"Safehouse secured. Share the code and wait for your crew.",
			"The back room is yours, %s. Bring in at least four.",
			"Doors locked, lights low. Recruit your crew, %s.",
		}
	case input.AlreadyJoined:
		messages = []string{
			"You're already inside, %s. Nobody saw you leave.",
			"Welcome back, %s. Your seat was still warm.",
		}
	default:
		messages = []string{
			"You're in, %s. Trust nobody.",
			"Welcome to the family, %s. Or are you?",
			"%s slipped in through the side door.",
			"Keep your head down, %s. Someone in here is lying.",
		}
	}

	return &GetJoinMessageOutput{
		Title:   title,
		Message: s.pick(messages, input.Username),
	}, nil
}

// GetErrorMessage maps a game error onto an advisory
func (s *service) GetErrorMessage(ctx context.Context, input *GetErrorMessageInput) (*GetErrorMessageOutput, error) {
	if input == nil || input.Err == nil {
		return nil, errors.New("input and error cannot be nil")
	}

	var (
		title    string
		messages []string
	)

	switch {
	case errors.Is(input.Err, game.ErrRoomNotFound):
		title = TitleRoomNotFound
		messages = []string{
			"No operation runs under that code.",
			"That code leads nowhere. Check it and try again.",
		}
	case errors.Is(input.Err, game.ErrPhaseConflict):
		title = TitleGameInProgress
		messages = []string{
			"That can't be done right now.",
			"Wrong time for that move.",
		}
	case errors.Is(input.Err, game.ErrInvalidPlayerCount):
		title = TitleNeedMore
		messages = []string{
			"Four players minimum before the lights go out.",
			"Not enough suspects yet. Get more people in.",
		}
	case errors.Is(input.Err, game.ErrInvalidUsername):
		title = TitleEnterName
		messages = []string{
			"Every operative needs a name.",
			"Nobody gets in without a name.",
		}
	case errors.Is(input.Err, game.ErrRoomFull):
		title = TitleRoomFull
		messages = []string{
			"No more chairs at this table.",
		}
	case errors.Is(input.Err, game.ErrNotHost):
		title = TitleNotHost
		messages = []string{
			"Only the host calls the shots.",
		}
	case errors.Is(input.Err, game.ErrPlayerDead):
		title = TitleSilenced
		messages = []string{
			"The dead don't get a say.",
			"You're sleeping with the fishes, %s.",
		}
	case errors.Is(input.Err, game.ErrInvalidTarget),
		errors.Is(input.Err, game.ErrNoNightAction),
		errors.Is(input.Err, game.ErrPlayerNotFound):
		title = TitleInvalidOrder
		messages = []string{
			"That order doesn't make sense.",
			"Pick a living target that isn't you.",
		}
	case errors.Is(input.Err, game.ErrEmptyMessage):
		title = TitleBadMessage
		messages = []string{
			fmt.Sprintf("Messages must be 1-%d characters.", game.MaxMessageLength),
		}
	default:
		title = TitleSystemFailure
		messages = []string{
			"Something went wrong on our end. Try again.",
			"The line went dead. Try again in a moment.",
		}
	}

	return &GetErrorMessageOutput{
		Title:   title,
		Message: s.pick(messages, input.Username),
	}, nil
}

// GetSubmissionMessage confirms a night action or vote
func (s *service) GetSubmissionMessage(ctx context.Context, input *GetSubmissionMessageInput) (*GetSubmissionMessageOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	switch input.Kind {
	case SubmissionNightAction:
		var messages []string
		switch input.Action {
		case models.ActionMafiaVote:
			messages = []string{"%s is marked.", "The family has its eyes on %s."}
		case models.ActionDoctorSave:
			messages = []string{"You'll be watching over %s tonight.", "%s is under your care."}
		case models.ActionBodyguardProtect:
			messages = []string{"You'll stand guard over %s."}
		case models.ActionVigilanteShoot:
			messages = []string{"You've got %s in your sights."}
		default:
			messages = []string{"You'll look into %s tonight.", "%s is being investigated."}
		}
		return &GetSubmissionMessageOutput{
			Title:   TitleOrderConfirmed,
			Message: s.pick(messages, input.TargetName),
		}, nil

	case SubmissionVote:
		return &GetSubmissionMessageOutput{
			Title:   TitleVoteRecorded,
			Message: s.pick([]string{"Your finger points at %s.", "You want %s gone."}, input.TargetName),
		}, nil

	default:
		return nil, fmt.Errorf("unknown submission kind %q", input.Kind)
	}
}

// GetPhaseMessage announces the room's current phase
func (s *service) GetPhaseMessage(ctx context.Context, input *GetPhaseMessageInput) (*GetPhaseMessageOutput, error) {
	if input == nil || input.Room == nil {
		return nil, errors.New("input and room cannot be nil")
	}

	room := input.Room
	switch room.Phase {
	case models.PhaseLobby:
		return &GetPhaseMessageOutput{
			Title:   "AWAITING OPERATIVES",
			Message: fmt.Sprintf("%d in the room. Room code %s.", len(room.Players), room.Code),
		}, nil
	case models.PhaseNight:
		title := fmt.Sprintf("NIGHT %d", room.Round)
		if room.Round == 1 {
			title = TitleStarting
		}
		return &GetPhaseMessageOutput{
			Title:   title,
			Message: s.pick([]string{"The city sleeps. Some don't.", "Lights out. Make your moves.", "Night falls over the city."}),
		}, nil
	case models.PhaseDay:
		return &GetPhaseMessageOutput{
			Title:   room.LastNightResult,
			Message: s.pick([]string{"The sun is up. Who do you trust?", "Talk it out. Someone here is lying."}),
		}, nil
	case models.PhaseVoting:
		return &GetPhaseMessageOutput{
			Title:   "VOTING OPEN",
			Message: s.pick([]string{"Point your finger.", "Time to decide who goes."}),
		}, nil
	case models.PhaseGameOver:
		return &GetPhaseMessageOutput{
			Title:   fmt.Sprintf("GAME OVER - %s WINS", strings.ToUpper(string(room.Winner))),
			Message: s.pick([]string{"The city has its answer.", "It's over. Roles are revealed."}),
		}, nil
	default:
		return nil, fmt.Errorf("unknown phase %q", room.Phase)
	}
}

// pick selects a random line and fills in %s with name when present
func (s *service) pick(messages []string, name ...string) string {
	line := messages[s.random.Intn(len(messages))]
	if len(name) > 0 && strings.Contains(line, "%s") {
		return fmt.Sprintf(line, name[0])
	}
	return line
}
