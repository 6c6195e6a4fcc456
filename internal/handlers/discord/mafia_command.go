package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/KirkDiggler/mafia/internal/models"
	"github.com/KirkDiggler/mafia/internal/services/ai"
	"github.com/KirkDiggler/mafia/internal/services/game"
	"github.com/KirkDiggler/mafia/internal/services/messaging"
	"github.com/KirkDiggler/mafia/internal/services/scheduler"
	"github.com/bwmarrin/discordgo"
	"k8s.io/klog/v2"
)

// Subcommand names
const (
	SubcommandCreate  = "create"
	SubcommandJoin    = "join"
	SubcommandStart   = "start"
	SubcommandAct     = "act"
	SubcommandVote    = "vote"
	SubcommandSay     = "say"
	SubcommandStatus  = "status"
	SubcommandAdvance = "advance"
)

// commandRequest is an interaction reduced to what the game needs
type commandRequest struct {
	ChannelID  string
	UserID     string
	Username   string
	Subcommand string

	// Options holds the subcommand's options by name
	Options map[string]any
}

func (r *commandRequest) stringOption(name string) string {
	if v, ok := r.Options[name].(string); ok {
		return v
	}
	return ""
}

func (r *commandRequest) intOption(name string, fallback int) int {
	switch v := r.Options[name].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return fallback
	}
}

// MafiaCommand handles the /mafia command. Each channel plays one room at a
// time; Discord user ids are used as player ids.
type MafiaCommand struct {
	BaseCommand
	gameService game.Service
	scheduler   scheduler.Scheduler
	messaging   messaging.Service

	// watch is called when a channel is bound to a room
	watch func(channelID, code string)

	mu    sync.RWMutex
	rooms map[string]string
}

// NewMafiaCommand creates a new mafia command handler
func NewMafiaCommand(gameService game.Service, sched scheduler.Scheduler, notices messaging.Service, watch func(channelID, code string)) *MafiaCommand {
	target := func(description string) []*discordgo.ApplicationCommandOption {
		return []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "target",
			Description: description,
			Required:    true,
		}}
	}

	return &MafiaCommand{
		BaseCommand: BaseCommand{
			Name:        "mafia",
			Description: "Social deduction in the back room",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubcommandCreate,
					Description: "Open a room in this channel",
					Options: []*discordgo.ApplicationCommandOption{{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "ai",
						Description: fmt.Sprintf("Number of AI seats (%d fills a table for one)", ai.DefaultSeats),
					}},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubcommandJoin,
					Description: "Join the room in this channel, or one by code",
					Options: []*discordgo.ApplicationCommandOption{{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "code",
						Description: "Room code",
					}},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubcommandStart,
					Description: "Deal roles and start the first night (host only)",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubcommandAct,
					Description: "Submit your night action",
					Options:     target("Player to act on"),
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubcommandVote,
					Description: "Vote to eliminate a player",
					Options:     target("Player to vote for"),
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubcommandSay,
					Description: "Post to the room chat",
					Options: []*discordgo.ApplicationCommandOption{{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "text",
						Description: "Message",
						Required:    true,
					}},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubcommandStatus,
					Description: "Show the room and your role",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubcommandAdvance,
					Description: "End the current phase now (host only)",
				},
			},
		},
		gameService: gameService,
		scheduler:   sched,
		messaging:   notices,
		watch:       watch,
		rooms:       make(map[string]string),
	}
}

// Handle processes a Discord interaction for the mafia command
func (c *MafiaCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if i.Type != discordgo.InteractionApplicationCommand {
		return nil
	}

	data := i.ApplicationCommandData()
	if data.Name != c.Name || len(data.Options) == 0 {
		return nil
	}

	user := i.User
	username := ""
	if i.Member != nil {
		user = i.Member.User
		username = i.Member.Nick
	}
	if user == nil {
		return errors.New("interaction has no user")
	}
	if username == "" {
		username = user.Username
	}

	sub := data.Options[0]
	req := &commandRequest{
		ChannelID:  i.ChannelID,
		UserID:     user.ID,
		Username:   username,
		Subcommand: sub.Name,
		Options:    make(map[string]any, len(sub.Options)),
	}
	for _, opt := range sub.Options {
		req.Options[opt.Name] = opt.Value
	}

	return Respond(s, i, c.run(context.Background(), req))
}

// run executes a subcommand and builds the reply
func (c *MafiaCommand) run(ctx context.Context, req *commandRequest) *reply {
	var (
		r   *reply
		err error
	)

	switch req.Subcommand {
	case SubcommandCreate:
		r, err = c.create(ctx, req)
	case SubcommandJoin:
		r, err = c.join(ctx, req)
	case SubcommandStart:
		r, err = c.start(ctx, req)
	case SubcommandAct:
		r, err = c.act(ctx, req)
	case SubcommandVote:
		r, err = c.vote(ctx, req)
	case SubcommandSay:
		r, err = c.say(ctx, req)
	case SubcommandStatus:
		r, err = c.status(ctx, req)
	case SubcommandAdvance:
		r, err = c.advance(ctx, req)
	default:
		return &reply{Title: "UNKNOWN ORDER", Message: fmt.Sprintf("Unknown subcommand %q", req.Subcommand), Ephemeral: true, Error: true}
	}

	if err != nil {
		return c.errorReply(ctx, req, err)
	}
	return r
}

func (c *MafiaCommand) create(ctx context.Context, req *commandRequest) (*reply, error) {
	out, err := c.gameService.CreateRoom(ctx, &game.CreateRoomInput{
		CreatorID: req.UserID,
		Username:  req.Username,
		AISeats:   req.intOption("ai", 0),
	})
	if err != nil {
		return nil, err
	}

	c.bind(req.ChannelID, out.Room.Code)

	notice, err := c.messaging.GetJoinMessage(ctx, &messaging.GetJoinMessageInput{
		Username: out.Room.FindPlayer(out.PlayerID).Username,
		Created:  true,
	})
	if err != nil {
		return nil, err
	}

	return &reply{
		Title:   notice.Title,
		Message: notice.Message,
		Fields:  renderRoom(out.Room.ViewFor(out.PlayerID), out.PlayerID),
	}, nil
}

func (c *MafiaCommand) join(ctx context.Context, req *commandRequest) (*reply, error) {
	code := strings.ToUpper(strings.TrimSpace(req.stringOption("code")))
	if code == "" {
		code = c.roomFor(req.ChannelID)
	}
	if code == "" {
		return nil, game.ErrRoomNotFound
	}

	out, err := c.gameService.JoinRoom(ctx, &game.JoinRoomInput{
		Code:     code,
		PlayerID: req.UserID,
		Username: req.Username,
	})
	if err != nil {
		return nil, err
	}

	if c.roomFor(req.ChannelID) == "" {
		c.bind(req.ChannelID, code)
	}

	notice, err := c.messaging.GetJoinMessage(ctx, &messaging.GetJoinMessageInput{
		Username:      out.Room.FindPlayer(out.PlayerID).Username,
		AlreadyJoined: out.AlreadyJoined,
	})
	if err != nil {
		return nil, err
	}

	return &reply{Title: notice.Title, Message: notice.Message}, nil
}

func (c *MafiaCommand) start(ctx context.Context, req *commandRequest) (*reply, error) {
	code, err := c.requireRoom(req)
	if err != nil {
		return nil, err
	}

	out, err := c.gameService.StartGame(ctx, &game.StartGameInput{Code: code, PlayerID: req.UserID})
	if err != nil {
		return nil, err
	}

	if _, err := c.scheduler.Start(&scheduler.StartInput{Code: code, HostID: out.Room.HostID}); err != nil {
		klog.Errorf("Failed to start timer for room %s: %v", code, err)
	}

	notice, err := c.messaging.GetPhaseMessage(ctx, &messaging.GetPhaseMessageInput{Room: out.Room})
	if err != nil {
		return nil, err
	}

	return &reply{
		Title:   notice.Title,
		Message: notice.Message + "\nUse `/mafia status` to see your role.",
	}, nil
}

func (c *MafiaCommand) act(ctx context.Context, req *commandRequest) (*reply, error) {
	code, err := c.requireRoom(req)
	if err != nil {
		return nil, err
	}

	target, err := c.resolveTarget(ctx, code, req)
	if err != nil {
		return nil, err
	}

	out, err := c.gameService.SubmitNightAction(ctx, &game.SubmitNightActionInput{
		Code:     code,
		PlayerID: req.UserID,
		TargetID: target.ID,
	})
	if err != nil {
		return nil, err
	}

	notice, err := c.messaging.GetSubmissionMessage(ctx, &messaging.GetSubmissionMessageInput{
		Kind:       messaging.SubmissionNightAction,
		Action:     out.Action.Action,
		TargetName: target.Username,
	})
	if err != nil {
		return nil, err
	}

	return &reply{Title: notice.Title, Message: notice.Message, Ephemeral: true}, nil
}

func (c *MafiaCommand) vote(ctx context.Context, req *commandRequest) (*reply, error) {
	code, err := c.requireRoom(req)
	if err != nil {
		return nil, err
	}

	target, err := c.resolveTarget(ctx, code, req)
	if err != nil {
		return nil, err
	}

	if _, err := c.gameService.SubmitVote(ctx, &game.SubmitVoteInput{
		Code:     code,
		VoterID:  req.UserID,
		TargetID: target.ID,
	}); err != nil {
		return nil, err
	}

	notice, err := c.messaging.GetSubmissionMessage(ctx, &messaging.GetSubmissionMessageInput{
		Kind:       messaging.SubmissionVote,
		TargetName: target.Username,
	})
	if err != nil {
		return nil, err
	}

	return &reply{Title: notice.Title, Message: notice.Message, Ephemeral: true}, nil
}

func (c *MafiaCommand) say(ctx context.Context, req *commandRequest) (*reply, error) {
	code, err := c.requireRoom(req)
	if err != nil {
		return nil, err
	}

	out, err := c.gameService.SendMessage(ctx, &game.SendMessageInput{
		Code:     code,
		PlayerID: req.UserID,
		Text:     req.stringOption("text"),
	})
	if err != nil {
		return nil, err
	}

	return &reply{Title: out.Message.Username, Message: out.Message.Text}, nil
}

func (c *MafiaCommand) status(ctx context.Context, req *commandRequest) (*reply, error) {
	code, err := c.requireRoom(req)
	if err != nil {
		return nil, err
	}

	out, err := c.gameService.GetRoom(ctx, &game.GetRoomInput{Code: code, PlayerID: req.UserID})
	if err != nil {
		return nil, err
	}
	if out.Room.FindPlayer(req.UserID) == nil {
		return nil, game.ErrPlayerNotFound
	}

	title := "ROOM " + code
	message := ""
	if role := out.Room.FindPlayer(req.UserID).RoleDefinition(); role != nil {
		message = fmt.Sprintf("You are **%s** (%s).", strings.ToUpper(role.Name), role.Team)
	}

	return &reply{
		Title:     title,
		Message:   message,
		Fields:    renderRoom(out.Room, req.UserID),
		Ephemeral: true,
	}, nil
}

func (c *MafiaCommand) advance(ctx context.Context, req *commandRequest) (*reply, error) {
	code, err := c.requireRoom(req)
	if err != nil {
		return nil, err
	}

	out, err := c.gameService.AdvancePhase(ctx, &game.AdvancePhaseInput{Code: code, PlayerID: req.UserID})
	if err != nil {
		return nil, err
	}
	if out.Transitioned && out.Room.Phase.IsTimed() {
		if _, err := c.scheduler.Start(&scheduler.StartInput{Code: code, HostID: out.Room.HostID}); err != nil {
			klog.Errorf("Failed to start timer for room %s: %v", code, err)
		}
	}

	notice, err := c.messaging.GetPhaseMessage(ctx, &messaging.GetPhaseMessageInput{Room: out.Room})
	if err != nil {
		return nil, err
	}
	return &reply{Title: notice.Title, Message: notice.Message, Ephemeral: true}, nil
}

func (c *MafiaCommand) errorReply(ctx context.Context, req *commandRequest, err error) *reply {
	var gameErr game.GameError
	if !errors.As(err, &gameErr) {
		klog.Errorf("mafia %s failed for %s: %v", req.Subcommand, req.UserID, err)
	}

	notice, noticeErr := c.messaging.GetErrorMessage(ctx, &messaging.GetErrorMessageInput{
		Err:      err,
		Username: strings.ToUpper(req.Username),
	})
	if noticeErr != nil {
		return &reply{Title: "ERROR", Message: err.Error(), Ephemeral: true, Error: true}
	}
	return &reply{Title: notice.Title, Message: notice.Message, Ephemeral: true, Error: true}
}

// resolveTarget finds the player named by the target option. It accepts a
// player id, a user mention, or a username.
func (c *MafiaCommand) resolveTarget(ctx context.Context, code string, req *commandRequest) (*models.Player, error) {
	out, err := c.gameService.GetRoom(ctx, &game.GetRoomInput{Code: code, PlayerID: req.UserID})
	if err != nil {
		return nil, err
	}

	raw := strings.TrimSpace(req.stringOption("target"))
	id := strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(raw, "<@"), "!"), ">")
	if p := out.Room.FindPlayer(id); p != nil {
		return p, nil
	}
	for _, p := range out.Room.Players {
		if strings.EqualFold(p.Username, raw) {
			return p, nil
		}
	}
	return nil, game.ErrInvalidTarget
}

func (c *MafiaCommand) requireRoom(req *commandRequest) (string, error) {
	code := c.roomFor(req.ChannelID)
	if code == "" {
		return "", game.ErrRoomNotFound
	}
	return code, nil
}

// bind makes code the channel's room and starts announcing it there
func (c *MafiaCommand) bind(channelID, code string) {
	c.mu.Lock()
	c.rooms[channelID] = code
	c.mu.Unlock()

	if c.watch != nil {
		c.watch(channelID, code)
	}
}

func (c *MafiaCommand) roomFor(channelID string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rooms[channelID]
}
