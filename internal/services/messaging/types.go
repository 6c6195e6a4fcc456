package messaging

import (
	"github.com/KirkDiggler/mafia/internal/models"
	"github.com/KirkDiggler/mafia/internal/random"
)

// Advisory titles
const (
	TitleRoomCreated    = "OPERATION ESTABLISHED"
	TitleJoined         = "INFILTRATION SUCCESSFUL"
	TitleRoomNotFound   = "ROOM NOT FOUND"
	TitleGameInProgress = "GAME IN PROGRESS"
	TitleNeedMore       = "NEED 4 MINIMUM"
	TitleOrderConfirmed = "ORDER CONFIRMED"
	TitleVoteRecorded   = "VOTE RECORDED"
	TitleStarting       = "OPERATION COMMENCING"
	TitleEnterName      = "ENTER NAME FIRST"
	TitleRoomFull       = "ROOM FULL"
	TitleNotHost        = "HOST ONLY"
	TitleInvalidOrder   = "ORDER REFUSED"
	TitleSilenced       = "YOU ARE DEAD"
	TitleBadMessage     = "MESSAGE REJECTED"
	TitleSystemFailure  = "COMMS DOWN"
)

// SubmissionKind identifies what was submitted
type SubmissionKind string

const (
	SubmissionNightAction SubmissionKind = "night_action"
	SubmissionVote        SubmissionKind = "vote"
)

// Config holds configuration for the messaging service
type Config struct {
	// Random picks flavor lines; defaults to a time-seeded source
	Random random.Source
}

// GetJoinMessageInput contains parameters for a join notice
type GetJoinMessageInput struct {
	Username string

	// Created is true for the room creator
	Created bool

	AlreadyJoined bool
}

// GetJoinMessageOutput contains the join notice
type GetJoinMessageOutput struct {
	Title   string
	Message string
}

// GetErrorMessageInput contains parameters for an error advisory
type GetErrorMessageInput struct {
	Err      error
	Username string
}

// GetErrorMessageOutput contains the error advisory
type GetErrorMessageOutput struct {
	Title   string
	Message string
}

// GetSubmissionMessageInput contains parameters for a submission receipt
type GetSubmissionMessageInput struct {
	Kind SubmissionKind

	// Action is set for night actions
	Action models.ActionKind

	TargetName string
}

// GetSubmissionMessageOutput contains the submission receipt
type GetSubmissionMessageOutput struct {
	Title   string
	Message string
}

// GetPhaseMessageInput contains the room to announce
type GetPhaseMessageInput struct {
	Room *models.Room
}

// GetPhaseMessageOutput contains the phase announcement
type GetPhaseMessageOutput struct {
	Title   string
	Message string
}
