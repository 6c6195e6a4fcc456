package discord

import (
	"github.com/bwmarrin/discordgo"
)

// Embed colors
const (
	colorNotice = 0x8b0000
	colorError  = 0xff0000
)

// CommandHandler defines the interface for Discord command handlers
type CommandHandler interface {
	// GetName returns the command name
	GetName() string

	// GetCommand returns the application command definition
	GetCommand() *discordgo.ApplicationCommand

	// Handle processes a Discord interaction
	Handle(s *discordgo.Session, i *discordgo.InteractionCreate) error
}

// BaseCommand provides common functionality for all commands
type BaseCommand struct {
	Name        string
	Description string
	Options     []*discordgo.ApplicationCommandOption
}

// GetName returns the command name
func (c *BaseCommand) GetName() string {
	return c.Name
}

// GetCommand returns the application command definition
func (c *BaseCommand) GetCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name,
		Description: c.Description,
		Options:     c.Options,
	}
}

// reply is what a command wants shown in response to an interaction
type reply struct {
	Title   string
	Message string
	Fields  []*discordgo.MessageEmbedField

	// Ephemeral replies are only visible to the invoking user
	Ephemeral bool
	Error     bool
}

// embed renders the reply as a Discord embed
func (r *reply) embed() *discordgo.MessageEmbed {
	color := colorNotice
	if r.Error {
		color = colorError
	}
	return &discordgo.MessageEmbed{
		Title:       r.Title,
		Description: r.Message,
		Color:       color,
		Fields:      r.Fields,
	}
}

// Respond sends the reply as an embed response to an interaction
func Respond(s *discordgo.Session, i *discordgo.InteractionCreate, r *reply) error {
	data := &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{r.embed()},
	}
	if r.Ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}

	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}
