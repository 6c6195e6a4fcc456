package room

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/KirkDiggler/mafia/internal/models"
	"github.com/redis/go-redis/v9"
	"k8s.io/klog/v2"
)

const (
	// Key prefixes for Redis
	roomKeyPrefix = "room:"

	nightActionsSuffix = ":night_actions"
	votesSuffix        = ":votes"
	messagesSuffix     = ":messages"
	updatesSuffix      = ":updates"

	// maxUpdateAttempts bounds optimistic retries before ErrConflict
	maxUpdateAttempts = 10
)

// Room hash fields
const (
	fieldCode            = "room_code"
	fieldHostID          = "host_id"
	fieldPhase           = "phase"
	fieldRound           = "round"
	fieldTimer           = "timer"
	fieldPlayers         = "players"
	fieldInspections     = "inspections"
	fieldLastNightResult = "last_night_result"
	fieldLastVoteResult  = "last_vote_result"
	fieldWinner          = "winner"
	fieldCreatedAt       = "created_at"
	fieldUpdatedAt       = "updated_at"
)

// Config holds configuration for the Redis room repository
type Config struct {
	// Redis client
	RedisClient *redis.Client

	// TTL expires idle rooms; zero keeps them forever
	TTL time.Duration
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis creates a new Redis-backed room repository
func NewRedis(cfg *Config) (*redisRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	// Test connection
	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisRepository{
		client: cfg.RedisClient,
		ttl:    cfg.TTL,
	}, nil
}

func roomKey(code string) string         { return roomKeyPrefix + code }
func nightActionsKey(code string) string { return roomKeyPrefix + code + nightActionsSuffix }
func votesKey(code string) string        { return roomKeyPrefix + code + votesSuffix }
func messagesKey(code string) string     { return roomKeyPrefix + code + messagesSuffix }
func updatesChannel(code string) string  { return roomKeyPrefix + code + updatesSuffix }

// CreateRoom stores a new room, refusing to overwrite an existing code
func (r *redisRepository) CreateRoom(ctx context.Context, input *CreateRoomInput) error {
	if input == nil || input.Room == nil {
		return errors.New("input and room cannot be nil")
	}
	if err := validateCode(input.Room.Code); err != nil {
		return err
	}

	code := input.Room.Code
	fields, err := encodeRoom(input.Room)
	if err != nil {
		return err
	}

	key := roomKey(code)
	txf := func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("failed to check room: %w", err)
		}
		if exists > 0 {
			return ErrRoomExists
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, nightActionsKey(code), votesKey(code), messagesKey(code))
			pipe.HSet(ctx, key, fields)
			r.expire(ctx, pipe, code)
			return nil
		})
		return err
	}

	if err := r.client.Watch(ctx, txf, key); err != nil {
		if errors.Is(err, ErrRoomExists) || errors.Is(err, redis.TxFailedErr) {
			return ErrRoomExists
		}
		return fmt.Errorf("failed to create room: %w", err)
	}

	r.publish(ctx, code)
	return nil
}

// GetRoom reads the room hash together with its ledgers and chat
func (r *redisRepository) GetRoom(ctx context.Context, input *GetRoomInput) (*models.Room, error) {
	if input == nil || input.Code == "" {
		return nil, errors.New("input and room code cannot be empty")
	}

	return r.readRoom(ctx, r.client, input.Code)
}

// PatchRoom merges the patch into the stored room atomically
func (r *redisRepository) PatchRoom(ctx context.Context, input *PatchRoomInput) error {
	if input == nil || input.Patch == nil {
		return errors.New("input and patch cannot be nil")
	}

	_, err := r.UpdateRoom(ctx, &UpdateRoomInput{
		Code: input.Code,
		Update: func(*models.Room) (*models.RoomPatch, error) {
			return input.Patch, nil
		},
	})
	return err
}

// UpdateRoom watches the room and its ledgers, so a concurrent write to
// any of them makes the transaction fail and the update run again
func (r *redisRepository) UpdateRoom(ctx context.Context, input *UpdateRoomInput) (*models.Room, error) {
	if input == nil || input.Update == nil {
		return nil, errors.New("input and update cannot be nil")
	}
	if err := validateCode(input.Code); err != nil {
		return nil, err
	}

	code := input.Code
	keys := []string{roomKey(code), nightActionsKey(code), votesKey(code)}

	var (
		result  *models.Room
		changed bool
	)
	txf := func(tx *redis.Tx) error {
		current, err := r.readRoom(ctx, tx, code)
		if err != nil {
			return err
		}

		patch, err := input.Update(current.Clone())
		if err != nil {
			return err
		}
		if patch.IsEmpty() {
			result, changed = current, false
			return nil
		}

		current.Apply(patch)
		fields, err := encodeRoom(current)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, roomKey(code), fields)
			if current.TimerSeconds == nil {
				pipe.HDel(ctx, roomKey(code), fieldTimer)
			}
			if patch.ClearNightActions {
				pipe.Del(ctx, nightActionsKey(code))
			}
			if patch.ClearVotes {
				pipe.Del(ctx, votesKey(code))
			}
			r.expire(ctx, pipe, code)
			return nil
		})
		if err != nil {
			return err
		}

		result, changed = current, true
		return nil
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := r.client.Watch(ctx, txf, keys...)
		if err == nil {
			if changed {
				r.publish(ctx, code)
			}
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}

	return nil, ErrConflict
}

// PutNightAction writes the player's slot of the night ledger
func (r *redisRepository) PutNightAction(ctx context.Context, input *PutNightActionInput) error {
	if input == nil || input.Action == nil || input.PlayerID == "" {
		return errors.New("input, action and player ID cannot be empty")
	}

	actionJSON, err := json.Marshal(input.Action)
	if err != nil {
		return fmt.Errorf("failed to marshal night action: %w", err)
	}

	return r.writeSlot(ctx, input.Code, func(pipe redis.Pipeliner) {
		pipe.HSet(ctx, nightActionsKey(input.Code), input.PlayerID, actionJSON)
	})
}

// PutVote writes the voter's slot of the voting ledger
func (r *redisRepository) PutVote(ctx context.Context, input *PutVoteInput) error {
	if input == nil || input.Vote == nil || input.VoterID == "" {
		return errors.New("input, vote and voter ID cannot be empty")
	}

	voteJSON, err := json.Marshal(input.Vote)
	if err != nil {
		return fmt.Errorf("failed to marshal vote: %w", err)
	}

	return r.writeSlot(ctx, input.Code, func(pipe redis.Pipeliner) {
		pipe.HSet(ctx, votesKey(input.Code), input.VoterID, voteJSON)
	})
}

// AppendMessage pushes a chat entry and trims the list to the newest entries
func (r *redisRepository) AppendMessage(ctx context.Context, input *AppendMessageInput) error {
	if input == nil || input.Message == nil {
		return errors.New("input and message cannot be nil")
	}

	msgJSON, err := json.Marshal(input.Message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	key := messagesKey(input.Code)
	return r.writeSlot(ctx, input.Code, func(pipe redis.Pipeliner) {
		pipe.RPush(ctx, key, msgJSON)
		pipe.LTrim(ctx, key, -models.MaxMessages, -1)
	})
}

// writeSlot runs write in a transaction if the room exists, then publishes
func (r *redisRepository) writeSlot(ctx context.Context, code string, write func(pipe redis.Pipeliner)) error {
	if err := validateCode(code); err != nil {
		return err
	}

	exists, err := r.client.Exists(ctx, roomKey(code)).Result()
	if err != nil {
		return fmt.Errorf("failed to check room: %w", err)
	}
	if exists == 0 {
		return ErrRoomNotFound
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		write(pipe)
		r.expire(ctx, pipe, code)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write room %s: %w", code, err)
	}

	r.publish(ctx, code)
	return nil
}

// Subscribe listens on the room's update channel. Messages only carry the
// room code, so every delivery re-reads the room.
func (r *redisRepository) Subscribe(ctx context.Context, input *SubscribeInput) (*SubscribeOutput, error) {
	if input == nil || input.Callback == nil {
		return nil, errors.New("input and callback cannot be nil")
	}

	code := input.Code
	current, err := r.GetRoom(ctx, &GetRoomInput{Code: code})
	if err != nil {
		return nil, err
	}

	pubsub := r.client.Subscribe(ctx, updatesChannel(code))
	// Wait for confirmation so no publish is missed after we return
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to room %s: %w", code, err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			cancel()
			if err := pubsub.Close(); err != nil {
				klog.V(2).Infof("closing subscription for room %s: %v", code, err)
			}
		})
	}

	input.Callback(current)

	go func() {
		defer unsubscribe()
		ch := pubsub.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				room, err := r.GetRoom(subCtx, &GetRoomInput{Code: code})
				if err != nil {
					if errors.Is(err, ErrRoomNotFound) || subCtx.Err() != nil {
						return
					}
					klog.Errorf("reading room %s for subscriber: %v", code, err)
					continue
				}
				input.Callback(room)
			}
		}
	}()

	return &SubscribeOutput{Unsubscribe: unsubscribe}, nil
}

func (r *redisRepository) publish(ctx context.Context, code string) {
	if err := r.client.Publish(ctx, updatesChannel(code), code).Err(); err != nil {
		klog.Warningf("failed to publish update for room %s: %v", code, err)
	}
}

func (r *redisRepository) expire(ctx context.Context, pipe redis.Pipeliner, code string) {
	if r.ttl <= 0 {
		return
	}
	for _, key := range []string{roomKey(code), nightActionsKey(code), votesKey(code), messagesKey(code)} {
		pipe.Expire(ctx, key, r.ttl)
	}
}

// reader is satisfied by both the client and a watching transaction
type reader interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
}

func (r *redisRepository) readRoom(ctx context.Context, c reader, code string) (*models.Room, error) {
	fields, err := c.HGetAll(ctx, roomKey(code)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrRoomNotFound
	}

	room, err := decodeRoom(fields)
	if err != nil {
		return nil, err
	}

	actions, err := c.HGetAll(ctx, nightActionsKey(code)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get night actions: %w", err)
	}
	for playerID, raw := range actions {
		var action models.NightAction
		if err := json.Unmarshal([]byte(raw), &action); err != nil {
			return nil, fmt.Errorf("failed to unmarshal night action: %w", err)
		}
		room.NightActions[playerID] = &action
	}

	votes, err := c.HGetAll(ctx, votesKey(code)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get votes: %w", err)
	}
	for voterID, raw := range votes {
		var vote models.Vote
		if err := json.Unmarshal([]byte(raw), &vote); err != nil {
			return nil, fmt.Errorf("failed to unmarshal vote: %w", err)
		}
		room.Votes[voterID] = &vote
	}

	messages, err := c.LRange(ctx, messagesKey(code), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	for _, raw := range messages {
		var msg models.Message
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal message: %w", err)
		}
		room.Messages = append(room.Messages, &msg)
	}

	return room, nil
}

func encodeRoom(room *models.Room) (map[string]interface{}, error) {
	playersJSON, err := json.Marshal(room.Players)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal players: %w", err)
	}
	inspections := room.Inspections
	if inspections == nil {
		inspections = map[string][]*models.Inspection{}
	}
	inspectionsJSON, err := json.Marshal(inspections)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal inspections: %w", err)
	}

	fields := map[string]interface{}{
		fieldCode:            room.Code,
		fieldHostID:          room.HostID,
		fieldPhase:           string(room.Phase),
		fieldRound:           room.Round,
		fieldPlayers:         playersJSON,
		fieldInspections:     inspectionsJSON,
		fieldLastNightResult: room.LastNightResult,
		fieldLastVoteResult:  room.LastVoteResult,
		fieldWinner:          string(room.Winner),
		fieldCreatedAt:       room.CreatedAt.UTC().Format(time.RFC3339Nano),
		fieldUpdatedAt:       room.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	if room.TimerSeconds != nil {
		fields[fieldTimer] = *room.TimerSeconds
	}
	return fields, nil
}

func decodeRoom(fields map[string]string) (*models.Room, error) {
	room := &models.Room{
		Code:            fields[fieldCode],
		HostID:          fields[fieldHostID],
		Phase:           models.Phase(fields[fieldPhase]),
		LastNightResult: fields[fieldLastNightResult],
		LastVoteResult:  fields[fieldLastVoteResult],
		Winner:          models.Team(fields[fieldWinner]),
		NightActions:    map[string]*models.NightAction{},
		Votes:           map[string]*models.Vote{},
		Inspections:     map[string][]*models.Inspection{},
		Messages:        []*models.Message{},
	}

	if raw := fields[fieldRound]; raw != "" {
		round, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid round %q: %w", raw, err)
		}
		room.Round = round
	}

	if raw, ok := fields[fieldTimer]; ok && raw != "" {
		timer, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid timer %q: %w", raw, err)
		}
		room.TimerSeconds = &timer
	}

	if err := json.Unmarshal([]byte(fields[fieldPlayers]), &room.Players); err != nil {
		return nil, fmt.Errorf("failed to unmarshal players: %w", err)
	}
	if raw := fields[fieldInspections]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &room.Inspections); err != nil {
			return nil, fmt.Errorf("failed to unmarshal inspections: %w", err)
		}
	}

	var err error
	if room.CreatedAt, err = time.Parse(time.RFC3339Nano, fields[fieldCreatedAt]); err != nil {
		return nil, fmt.Errorf("invalid created_at: %w", err)
	}
	if room.UpdatedAt, err = time.Parse(time.RFC3339Nano, fields[fieldUpdatedAt]); err != nil {
		return nil, fmt.Errorf("invalid updated_at: %w", err)
	}

	return room, nil
}
