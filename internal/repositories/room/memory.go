package room

import (
	"context"
	"errors"
	"sync"

	"github.com/KirkDiggler/mafia/internal/models"
)

// memoryRepository implements the Repository interface in process memory
type memoryRepository struct {
	mu          sync.Mutex
	rooms       map[string]*models.Room
	subscribers map[string]map[int]Callback
	nextSubID   int

	// delivering serializes callbacks per room so snapshots arrive in order;
	// it is always taken before mu
	delivering map[string]*sync.Mutex
}

// NewMemory creates an in-memory room repository
func NewMemory() *memoryRepository {
	return &memoryRepository{
		rooms:       make(map[string]*models.Room),
		subscribers: make(map[string]map[int]Callback),
		delivering:  make(map[string]*sync.Mutex),
	}
}

// CreateRoom stores a new room
func (r *memoryRepository) CreateRoom(ctx context.Context, input *CreateRoomInput) error {
	if input == nil || input.Room == nil {
		return errors.New("input and room cannot be nil")
	}
	if err := validateCode(input.Room.Code); err != nil {
		return err
	}

	r.mu.Lock()
	if _, exists := r.rooms[input.Room.Code]; exists {
		r.mu.Unlock()
		return ErrRoomExists
	}
	stored := input.Room.Clone()
	r.rooms[stored.Code] = stored
	r.mu.Unlock()

	r.notify(stored.Code)
	return nil
}

// GetRoom returns a copy of the stored room
func (r *memoryRepository) GetRoom(ctx context.Context, input *GetRoomInput) (*models.Room, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.rooms[input.Code]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return stored.Clone(), nil
}

// PatchRoom merges the patch into the stored room
func (r *memoryRepository) PatchRoom(ctx context.Context, input *PatchRoomInput) error {
	if input == nil || input.Patch == nil {
		return errors.New("input and patch cannot be nil")
	}

	r.mu.Lock()
	stored, ok := r.rooms[input.Code]
	if !ok {
		r.mu.Unlock()
		return ErrRoomNotFound
	}
	stored.Apply(input.Patch)
	r.mu.Unlock()

	r.notify(input.Code)
	return nil
}

// UpdateRoom runs the update under the repository lock
func (r *memoryRepository) UpdateRoom(ctx context.Context, input *UpdateRoomInput) (*models.Room, error) {
	if input == nil || input.Update == nil {
		return nil, errors.New("input and update cannot be nil")
	}

	r.mu.Lock()
	stored, ok := r.rooms[input.Code]
	if !ok {
		r.mu.Unlock()
		return nil, ErrRoomNotFound
	}

	patch, err := input.Update(stored.Clone())
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	if patch.IsEmpty() {
		out := stored.Clone()
		r.mu.Unlock()
		return out, nil
	}

	stored.Apply(patch)
	out := stored.Clone()
	r.mu.Unlock()

	r.notify(input.Code)
	return out, nil
}

// PutNightAction writes a single ledger slot
func (r *memoryRepository) PutNightAction(ctx context.Context, input *PutNightActionInput) error {
	if input == nil || input.Action == nil || input.PlayerID == "" {
		return errors.New("input, action and player ID cannot be empty")
	}

	r.mu.Lock()
	stored, ok := r.rooms[input.Code]
	if !ok {
		r.mu.Unlock()
		return ErrRoomNotFound
	}
	if stored.NightActions == nil {
		stored.NightActions = map[string]*models.NightAction{}
	}
	action := *input.Action
	stored.NightActions[input.PlayerID] = &action
	r.mu.Unlock()

	r.notify(input.Code)
	return nil
}

// PutVote writes a single ledger slot
func (r *memoryRepository) PutVote(ctx context.Context, input *PutVoteInput) error {
	if input == nil || input.Vote == nil || input.VoterID == "" {
		return errors.New("input, vote and voter ID cannot be empty")
	}

	r.mu.Lock()
	stored, ok := r.rooms[input.Code]
	if !ok {
		r.mu.Unlock()
		return ErrRoomNotFound
	}
	if stored.Votes == nil {
		stored.Votes = map[string]*models.Vote{}
	}
	vote := *input.Vote
	stored.Votes[input.VoterID] = &vote
	r.mu.Unlock()

	r.notify(input.Code)
	return nil
}

// AppendMessage adds a chat entry and trims the history
func (r *memoryRepository) AppendMessage(ctx context.Context, input *AppendMessageInput) error {
	if input == nil || input.Message == nil {
		return errors.New("input and message cannot be nil")
	}

	r.mu.Lock()
	stored, ok := r.rooms[input.Code]
	if !ok {
		r.mu.Unlock()
		return ErrRoomNotFound
	}
	msg := *input.Message
	stored.Messages = models.CapMessages(append(stored.Messages, &msg))
	r.mu.Unlock()

	r.notify(input.Code)
	return nil
}

// Subscribe registers the callback after delivering the current room
func (r *memoryRepository) Subscribe(ctx context.Context, input *SubscribeInput) (*SubscribeOutput, error) {
	if input == nil || input.Callback == nil {
		return nil, errors.New("input and callback cannot be nil")
	}

	delivery := r.deliveryLock(input.Code)
	delivery.Lock()
	defer delivery.Unlock()

	r.mu.Lock()
	stored, ok := r.rooms[input.Code]
	if !ok {
		r.mu.Unlock()
		return nil, ErrRoomNotFound
	}
	current := stored.Clone()

	id := r.nextSubID
	r.nextSubID++
	if r.subscribers[input.Code] == nil {
		r.subscribers[input.Code] = make(map[int]Callback)
	}
	r.subscribers[input.Code][id] = input.Callback
	r.mu.Unlock()

	input.Callback(current)

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			delete(r.subscribers[input.Code], id)
		})
	}

	// ctx only bounds the subscription's lifetime
	if done := ctx.Done(); done != nil {
		go func() {
			<-done
			unsubscribe()
		}()
	}

	return &SubscribeOutput{Unsubscribe: unsubscribe}, nil
}

// deliveryLock returns the mutex that orders code's callbacks
func (r *memoryRepository) deliveryLock(code string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.delivering[code]
	if !ok {
		d = &sync.Mutex{}
		r.delivering[code] = d
	}
	return d
}

// notify calls every subscriber of code with its own copy of the room.
// The snapshot is taken after the delivery lock, so each pass sees a room
// at least as new as the one before it.
func (r *memoryRepository) notify(code string) {
	delivery := r.deliveryLock(code)
	delivery.Lock()
	defer delivery.Unlock()

	r.mu.Lock()
	stored, ok := r.rooms[code]
	if !ok {
		r.mu.Unlock()
		return
	}
	callbacks := make([]Callback, 0, len(r.subscribers[code]))
	for _, cb := range r.subscribers[code] {
		callbacks = append(callbacks, cb)
	}
	snapshot := stored.Clone()
	r.mu.Unlock()

	for _, cb := range callbacks {
		cb(snapshot.Clone())
	}
}
