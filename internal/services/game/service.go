package game

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/KirkDiggler/mafia/internal/common/clock"
	"github.com/KirkDiggler/mafia/internal/common/uuid"
	"github.com/KirkDiggler/mafia/internal/models"
	"github.com/KirkDiggler/mafia/internal/random"
	roomRepo "github.com/KirkDiggler/mafia/internal/repositories/room"
	"github.com/KirkDiggler/mafia/internal/rules"
	"github.com/KirkDiggler/mafia/internal/services/ai"
	"github.com/cenkalti/backoff/v4"
	"k8s.io/klog/v2"
)

// retryAttempts is how many times an idempotent storage call is tried
const retryAttempts = 3

// service implements the Service interface
type service struct {
	maxPlayers    int
	advanceEarly  bool
	actorDelay    time.Duration
	retryInterval time.Duration

	roomRepo roomRepo.Repository

	actors        ai.Driver
	random        random.Source
	clock         clock.Clock
	uuidGenerator uuid.UUID
}

// New creates a new game service
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.RoomRepo == nil {
		return nil, ErrNilRoomRepo
	}
	if cfg.Random == nil {
		return nil, ErrNilRandom
	}
	if cfg.Clock == nil {
		return nil, ErrNilClock
	}
	if cfg.UUIDGenerator == nil {
		return nil, ErrNilUUIDGenerator
	}

	maxPlayers := cfg.MaxPlayers
	if maxPlayers <= 0 {
		maxPlayers = DefaultMaxPlayers
	}
	retryInterval := cfg.RetryInterval
	if retryInterval <= 0 {
		retryInterval = defaultRetryInterval
	}

	return &service{
		maxPlayers:    maxPlayers,
		advanceEarly:  cfg.AdvanceEarly,
		actorDelay:    cfg.ActorDelay,
		retryInterval: retryInterval,
		roomRepo:      cfg.RoomRepo,
		actors:        cfg.Actors,
		random:        cfg.Random,
		clock:         cfg.Clock,
		uuidGenerator: cfg.UUIDGenerator,
	}, nil
}

// CreateRoom opens a lobby with the creator as host and first player
func (s *service) CreateRoom(ctx context.Context, input *CreateRoomInput) (*CreateRoomOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	username, err := normalizeUsername(input.Username)
	if err != nil {
		return nil, err
	}

	aiSeats := input.AISeats
	if aiSeats < 0 {
		aiSeats = 0
	}
	if 1+aiSeats > s.maxPlayers {
		return nil, ErrRoomFull
	}

	creatorID := input.CreatorID
	if creatorID == "" {
		creatorID = s.uuidGenerator.NewUUID()
	}

	now := s.clock.Now()
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		host := &models.Player{ID: creatorID, Username: username}
		room := models.NewRoom(s.newCode(), host, now)
		room.Players = append(room.Players, ai.NewSeats(s.uuidGenerator, aiSeats)...)

		// not retried: a create that landed but looked failed would collide with itself
		err := s.roomRepo.CreateRoom(ctx, &roomRepo.CreateRoomInput{Room: room})
		if err == nil {
			klog.Infof("room %s created by %s with %d AI seats", room.Code, creatorID, aiSeats)
			return &CreateRoomOutput{
				Room:     room,
				PlayerID: creatorID,
			}, nil
		}
		if errors.Is(err, roomRepo.ErrRoomExists) {
			klog.V(1).Infof("room code %s already taken, regenerating", room.Code)
			continue
		}
		return nil, storageError(err)
	}

	return nil, ErrRoomExists
}

// JoinRoom seats a player in a lobby. Joining a room the player is already
// seated in succeeds in any phase and changes nothing.
func (s *service) JoinRoom(ctx context.Context, input *JoinRoomInput) (*JoinRoomOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	username, err := normalizeUsername(input.Username)
	if err != nil {
		return nil, err
	}

	playerID := input.PlayerID
	if playerID == "" {
		playerID = s.uuidGenerator.NewUUID()
	}

	now := s.clock.Now()
	var alreadyJoined bool
	updated, err := s.update(ctx, input.Code, func(room *models.Room) (*models.RoomPatch, error) {
		alreadyJoined = false
		if room.FindPlayer(playerID) != nil {
			alreadyJoined = true
			return nil, nil
		}
		if room.Phase != models.PhaseLobby {
			return nil, ErrPhaseConflict
		}
		if len(room.Players) >= s.maxPlayers {
			return nil, ErrRoomFull
		}

		players := append(models.ClonePlayers(room.Players), &models.Player{
			ID:       playerID,
			Username: username,
		})
		return &models.RoomPatch{Players: players, UpdatedAt: now}, nil
	})
	if err != nil {
		return nil, err
	}

	if !alreadyJoined {
		klog.Infof("room %s: %s joined as %s", input.Code, playerID, username)
	}

	return &JoinRoomOutput{
		Room:          updated,
		PlayerID:      playerID,
		AlreadyJoined: alreadyJoined,
	}, nil
}

// StartGame deals roles and moves the lobby into the first night
func (s *service) StartGame(ctx context.Context, input *StartGameInput) (*StartGameOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	now := s.clock.Now()
	updated, err := s.update(ctx, input.Code, func(room *models.Room) (*models.RoomPatch, error) {
		if room.HostID != input.PlayerID {
			return nil, ErrNotHost
		}
		if room.Phase != models.PhaseLobby {
			return nil, ErrPhaseConflict
		}

		roles, err := rules.AssignRoles(len(room.Players), s.random)
		if err != nil {
			return nil, err
		}

		players := models.ClonePlayers(room.Players)
		for i, p := range players {
			p.Role = roles[i]
		}

		phase := room.Phase.Next()
		round := 1
		timer := phase.Duration()
		empty := ""
		return &models.RoomPatch{
			Phase:             &phase,
			Round:             &round,
			TimerSeconds:      &timer,
			Players:           players,
			LastNightResult:   &empty,
			LastVoteResult:    &empty,
			ClearNightActions: true,
			ClearVotes:        true,
			UpdatedAt:         now,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	klog.Infof("room %s: game started with %d players", updated.Code, len(updated.Players))
	s.runActors(ctx, updated)

	return &StartGameOutput{Room: updated}, nil
}

// SubmitNightAction records the actor's night action. The action kind comes
// from the actor's role; only the doctor may target themselves. A later
// submission replaces an earlier one until the night resolves.
func (s *service) SubmitNightAction(ctx context.Context, input *SubmitNightActionInput) (*SubmitNightActionOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	room, err := s.getRoom(ctx, input.Code)
	if err != nil {
		return nil, err
	}
	if room.Phase != models.PhaseNight {
		return nil, ErrPhaseConflict
	}

	actor := room.FindPlayer(input.PlayerID)
	if actor == nil {
		return nil, ErrPlayerNotFound
	}
	if actor.IsDead {
		return nil, ErrPlayerDead
	}
	role := actor.RoleDefinition()
	if !role.HasAction() {
		return nil, ErrNoNightAction
	}

	target := room.FindPlayer(input.TargetID)
	if target == nil || target.IsDead {
		return nil, ErrInvalidTarget
	}
	if target.ID == actor.ID && role.Action != models.ActionDoctorSave {
		return nil, ErrInvalidTarget
	}

	action := &models.NightAction{
		Action:      role.Action,
		TargetID:    target.ID,
		SubmittedAt: s.clock.Now(),
	}
	err = s.retry(ctx, func() error {
		return s.roomRepo.PutNightAction(ctx, &roomRepo.PutNightActionInput{
			Code:     room.Code,
			PlayerID: actor.ID,
			Action:   action,
		})
	})
	if err != nil {
		return nil, storageError(err)
	}

	klog.V(2).Infof("room %s: night action %s recorded for %s", room.Code, action.Action, actor.ID)
	return &SubmitNightActionOutput{Action: action}, nil
}

// SubmitVote records the voter's choice. Self-votes are rejected; a later
// vote replaces an earlier one until the voting phase resolves.
func (s *service) SubmitVote(ctx context.Context, input *SubmitVoteInput) (*SubmitVoteOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	room, err := s.getRoom(ctx, input.Code)
	if err != nil {
		return nil, err
	}
	if room.Phase != models.PhaseVoting {
		return nil, ErrPhaseConflict
	}

	voter := room.FindPlayer(input.VoterID)
	if voter == nil {
		return nil, ErrPlayerNotFound
	}
	if voter.IsDead {
		return nil, ErrPlayerDead
	}

	target := room.FindPlayer(input.TargetID)
	if target == nil || target.IsDead || target.ID == voter.ID {
		return nil, ErrInvalidTarget
	}

	vote := &models.Vote{
		TargetID:    target.ID,
		SubmittedAt: s.clock.Now(),
	}
	err = s.retry(ctx, func() error {
		return s.roomRepo.PutVote(ctx, &roomRepo.PutVoteInput{
			Code:    room.Code,
			VoterID: voter.ID,
			Vote:    vote,
		})
	})
	if err != nil {
		return nil, storageError(err)
	}

	klog.V(2).Infof("room %s: vote recorded for %s", room.Code, voter.ID)
	return &SubmitVoteOutput{Vote: vote}, nil
}

// SendMessage appends a chat entry. Chat is open in every phase.
func (s *service) SendMessage(ctx context.Context, input *SendMessageInput) (*SendMessageOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	text := strings.TrimSpace(input.Text)
	if n := utf8.RuneCountInString(text); n == 0 || n > MaxMessageLength {
		return nil, ErrEmptyMessage
	}

	room, err := s.getRoom(ctx, input.Code)
	if err != nil {
		return nil, err
	}
	sender := room.FindPlayer(input.PlayerID)
	if sender == nil {
		return nil, ErrPlayerNotFound
	}

	msg := &models.Message{
		ID:        s.uuidGenerator.NewUUID(),
		PlayerID:  sender.ID,
		Username:  sender.Username,
		Text:      text,
		Timestamp: s.clock.Now(),
	}
	// not retried: a retry after a lost reply would post the message twice
	if err := s.roomRepo.AppendMessage(ctx, &roomRepo.AppendMessageInput{
		Code:    room.Code,
		Message: msg,
	}); err != nil {
		return nil, storageError(err)
	}

	return &SendMessageOutput{Message: msg}, nil
}

// GetRoom returns the room, as the viewer should see it when PlayerID is set
func (s *service) GetRoom(ctx context.Context, input *GetRoomInput) (*GetRoomOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	room, err := s.getRoom(ctx, input.Code)
	if err != nil {
		return nil, err
	}
	if input.PlayerID != "" {
		room = room.ViewFor(input.PlayerID)
	}

	return &GetRoomOutput{Room: room}, nil
}

// Subscribe delivers the current room and every change after it
func (s *service) Subscribe(ctx context.Context, input *SubscribeInput) (*SubscribeOutput, error) {
	if input == nil || input.Callback == nil {
		return nil, errors.New("input and callback cannot be nil")
	}

	out, err := s.roomRepo.Subscribe(ctx, &roomRepo.SubscribeInput{
		Code: input.Code,
		Callback: func(room *models.Room) {
			if input.PlayerID != "" {
				room = room.ViewFor(input.PlayerID)
			}
			input.Callback(room)
		},
	})
	if err != nil {
		return nil, storageError(err)
	}

	return &SubscribeOutput{Unsubscribe: out.Unsubscribe}, nil
}

// Tick counts the timer down by one second. When the remaining time is one
// second or less the phase ends. With AdvanceEarly the phase also ends once
// every required entry is in.
func (s *service) Tick(ctx context.Context, input *TickInput) (*TickOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	now := s.clock.Now()
	var (
		transitioned bool
		from         models.Phase
	)
	updated, err := s.update(ctx, input.Code, func(room *models.Room) (*models.RoomPatch, error) {
		transitioned = false
		from = room.Phase
		if room.HostID != input.PlayerID {
			return nil, ErrNotHost
		}
		if !room.Phase.IsTimed() {
			return nil, nil
		}

		remaining := room.Timer()
		if remaining <= 1 || (s.advanceEarly && inputsComplete(room)) {
			transitioned = true
			return transition(room, now), nil
		}

		next := remaining - 1
		return &models.RoomPatch{TimerSeconds: &next, UpdatedAt: now}, nil
	})
	if err != nil {
		return nil, err
	}

	if transitioned {
		s.afterTransition(ctx, from, updated)
	}

	return &TickOutput{
		Room:         updated,
		Active:       updated.Phase.IsTimed(),
		Transitioned: transitioned,
	}, nil
}

// AdvancePhase ends the current timed phase now
func (s *service) AdvancePhase(ctx context.Context, input *AdvancePhaseInput) (*AdvancePhaseOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	now := s.clock.Now()
	var from models.Phase
	updated, err := s.update(ctx, input.Code, func(room *models.Room) (*models.RoomPatch, error) {
		from = room.Phase
		if room.HostID != input.PlayerID {
			return nil, ErrNotHost
		}
		if !room.Phase.IsTimed() {
			return nil, ErrPhaseConflict
		}
		return transition(room, now), nil
	})
	if err != nil {
		return nil, err
	}

	s.afterTransition(ctx, from, updated)
	return &AdvancePhaseOutput{Room: updated, Transitioned: true}, nil
}

func (s *service) afterTransition(ctx context.Context, from models.Phase, room *models.Room) {
	klog.Infof("room %s: %s -> %s (round %d)", room.Code, from, room.Phase, room.Round)
	if room.Winner != "" {
		klog.Infof("room %s: %s wins", room.Code, room.Winner)
	}
	s.runActors(ctx, room)
}

// runActors lets AI seats fill their slots for a phase that just opened
func (s *service) runActors(ctx context.Context, room *models.Room) {
	if s.actors == nil || !hasLivingAI(room) {
		return
	}
	if room.Phase != models.PhaseNight && room.Phase != models.PhaseVoting {
		return
	}

	if s.actorDelay <= 0 {
		s.act(ctx, room)
		return
	}

	phase, round := room.Phase, room.Round
	s.clock.AfterFunc(s.actorDelay, func() {
		// the caller's context is usually gone by now
		bg := context.Background()
		current, err := s.getRoom(bg, room.Code)
		if err != nil {
			klog.Warningf("room %s: skipping AI seats: %v", room.Code, err)
			return
		}
		if current.Phase != phase || current.Round != round {
			return
		}
		s.act(bg, current)
	})
}

func (s *service) act(ctx context.Context, room *models.Room) {
	if _, err := s.actors.Act(ctx, &ai.ActInput{Room: room}); err != nil {
		klog.Errorf("room %s: AI seats failed to act: %v", room.Code, err)
	}
}

func (s *service) getRoom(ctx context.Context, code string) (*models.Room, error) {
	var room *models.Room
	err := s.retry(ctx, func() error {
		var err error
		room, err = s.roomRepo.GetRoom(ctx, &roomRepo.GetRoomInput{Code: code})
		return err
	})
	if err != nil {
		return nil, storageError(err)
	}
	return room, nil
}

// update runs an atomic read-modify-write, retrying storage failures
func (s *service) update(ctx context.Context, code string, fn roomRepo.UpdateFunc) (*models.Room, error) {
	var room *models.Room
	err := s.retry(ctx, func() error {
		var err error
		room, err = s.roomRepo.UpdateRoom(ctx, &roomRepo.UpdateRoomInput{Code: code, Update: fn})
		return err
	})
	if err != nil {
		return nil, storageError(err)
	}
	return room, nil
}

// retry runs op with exponential backoff. Domain errors stop it at once.
func (s *service) retry(ctx context.Context, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.retryInterval

	policy := backoff.WithContext(backoff.WithMaxRetries(b, retryAttempts-1), ctx)
	return backoff.Retry(func() error {
		err := op()
		if err != nil && isPermanent(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
}

func (s *service) newCode() string {
	code := make([]byte, CodeLength)
	for i := range code {
		code[i] = CodeAlphabet[s.random.Intn(len(CodeAlphabet))]
	}
	return string(code)
}

func isPermanent(err error) bool {
	var gameErr GameError
	var ruleErr rules.RuleError
	return errors.As(err, &gameErr) ||
		errors.As(err, &ruleErr) ||
		errors.Is(err, roomRepo.ErrRoomNotFound) ||
		errors.Is(err, roomRepo.ErrRoomExists) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// storageError maps repository and rule errors onto GameError values.
// Anything unrecognised is a storage failure.
func storageError(err error) error {
	var gameErr GameError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &gameErr):
		return err
	case errors.Is(err, rules.ErrInvalidPlayerCount):
		return ErrInvalidPlayerCount
	case errors.Is(err, roomRepo.ErrRoomNotFound):
		return ErrRoomNotFound
	case errors.Is(err, roomRepo.ErrRoomExists):
		return ErrRoomExists
	default:
		return fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}
}

func normalizeUsername(username string) (string, error) {
	name := strings.ToUpper(strings.TrimSpace(username))
	if name == "" {
		return "", ErrInvalidUsername
	}
	return name, nil
}

func hasLivingAI(room *models.Room) bool {
	for _, p := range room.Players {
		if p.IsAI && p.Alive() {
			return true
		}
	}
	return false
}
