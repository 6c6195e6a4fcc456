package discord

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/KirkDiggler/mafia/internal/models"
	"github.com/KirkDiggler/mafia/internal/services/game"
	"github.com/KirkDiggler/mafia/internal/services/messaging"
	"github.com/KirkDiggler/mafia/internal/services/scheduler"
	"github.com/bwmarrin/discordgo"
	"k8s.io/klog/v2"
)

// Bot represents the Discord bot instance
type Bot struct {
	session     *discordgo.Session
	commands    map[string]CommandHandler
	commandIDs  map[string]string // Maps command name to command ID
	gameService game.Service
	scheduler   scheduler.Scheduler
	messaging   messaging.Service
	config      *Config

	mu       sync.Mutex
	watchers map[string]*watcher
}

// watcher announces one room's phase changes in a channel
type watcher struct {
	code        string
	unsubscribe func()

	mu    sync.Mutex
	phase models.Phase
	round int
}

// Config holds the configuration for the bot
type Config struct {
	// Discord bot token
	Token string

	// Application ID for the bot
	ApplicationID string

	// Optional guild ID for development (server-specific commands)
	GuildID string

	GameService game.Service
	Scheduler   scheduler.Scheduler
	Messaging   messaging.Service
}

// New creates a new Discord bot
func New(cfg *Config) (*Bot, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Token == "" {
		return nil, errors.New("token cannot be empty")
	}

	if cfg.GameService == nil {
		return nil, errors.New("game service cannot be nil")
	}

	if cfg.Scheduler == nil {
		return nil, errors.New("scheduler cannot be nil")
	}

	if cfg.Messaging == nil {
		return nil, errors.New("messaging service cannot be nil")
	}

	// Create a new Discord session
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	bot := &Bot{
		session:     session,
		commands:    make(map[string]CommandHandler),
		commandIDs:  make(map[string]string),
		gameService: cfg.GameService,
		scheduler:   cfg.Scheduler,
		messaging:   cfg.Messaging,
		config:      cfg,
		watchers:    make(map[string]*watcher),
	}

	// Register the interaction handler
	session.AddHandler(bot.handleInteraction)

	return bot, nil
}

// Start initializes the Discord connection and registers commands
func (b *Bot) Start() error {
	// Open the websocket connection to Discord
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	mafiaCmd := NewMafiaCommand(b.gameService, b.scheduler, b.messaging, b.watch)
	if err := b.RegisterCommand(mafiaCmd); err != nil {
		return fmt.Errorf("failed to register mafia command: %w", err)
	}

	klog.Info("Bot is now running. Press CTRL-C to exit.")
	return nil
}

// Stop removes the commands, stops announcing and closes the connection
func (b *Bot) Stop() error {
	b.mu.Lock()
	for channelID, w := range b.watchers {
		w.unsubscribe()
		delete(b.watchers, channelID)
	}
	b.mu.Unlock()

	appID := b.appID()
	for cmdName, cmdID := range b.commandIDs {
		if err := b.session.ApplicationCommandDelete(appID, b.config.GuildID, cmdID); err != nil {
			klog.Warningf("Failed to delete command %s (ID: %s): %v", cmdName, cmdID, err)
		} else {
			klog.Infof("Deleted command %s (ID: %s)", cmdName, cmdID)
		}
	}

	return b.session.Close()
}

// RegisterCommand registers a command with Discord
func (b *Bot) RegisterCommand(cmd CommandHandler) error {
	// Register per guild when a guild ID is configured, otherwise globally
	if b.config.GuildID != "" {
		klog.Infof("Registering command %s for guild %s", cmd.GetName(), b.config.GuildID)
	} else {
		klog.Infof("Registering command %s globally", cmd.GetName())
	}

	createdCmd, err := b.session.ApplicationCommandCreate(b.appID(), b.config.GuildID, cmd.GetCommand())
	if err != nil {
		return fmt.Errorf("failed to create command %s: %w", cmd.GetName(), err)
	}

	// Store the command handler and its ID
	b.commands[cmd.GetName()] = cmd
	b.commandIDs[cmd.GetName()] = createdCmd.ID
	klog.Infof("Registered command: %s with ID: %s", cmd.GetName(), createdCmd.ID)

	return nil
}

// appID falls back to the session user when no application ID is configured
func (b *Bot) appID() string {
	if b.config.ApplicationID != "" {
		return b.config.ApplicationID
	}
	return b.session.State.User.ID
}

// handleInteraction handles Discord interactions
func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	name := i.ApplicationCommandData().Name
	if h, ok := b.commands[name]; ok {
		if err := h.Handle(s, i); err != nil {
			klog.Errorf("Error handling command %s: %v", name, err)
		}
	}
}

// watch announces code's phase changes in channelID, replacing whatever
// room the channel was announcing before
func (b *Bot) watch(channelID, code string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if old, ok := b.watchers[channelID]; ok {
		if old.code == code {
			return
		}
		old.unsubscribe()
		delete(b.watchers, channelID)
	}

	w := &watcher{code: code}
	out, err := b.gameService.Subscribe(context.Background(), &game.SubscribeInput{
		Code: code,
		Callback: func(room *models.Room) {
			if w.changed(room) {
				b.announce(channelID, room)
			}
		},
	})
	if err != nil {
		klog.Errorf("Failed to watch room %s in channel %s: %v", code, channelID, err)
		return
	}

	w.unsubscribe = out.Unsubscribe
	b.watchers[channelID] = w
}

// changed records the room's phase and reports whether it moved on
func (w *watcher) changed(room *models.Room) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	first := w.phase == ""
	moved := room.Phase != w.phase || room.Round != w.round
	w.phase, w.round = room.Phase, room.Round
	return moved && !first
}

// announce posts the phase announcement with the public view of the room
func (b *Bot) announce(channelID string, room *models.Room) {
	public := room.ViewFor("")

	notice, err := b.messaging.GetPhaseMessage(context.Background(), &messaging.GetPhaseMessageInput{Room: public})
	if err != nil {
		klog.Errorf("Failed to build announcement for room %s: %v", room.Code, err)
		return
	}

	r := &reply{Title: notice.Title, Message: notice.Message, Fields: renderRoom(public, "")}
	if _, err := b.session.ChannelMessageSendEmbed(channelID, r.embed()); err != nil {
		klog.Errorf("Failed to announce room %s in channel %s: %v", room.Code, channelID, err)
	}
}
