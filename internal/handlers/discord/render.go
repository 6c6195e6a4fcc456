package discord

import (
	"fmt"
	"strings"

	"github.com/KirkDiggler/mafia/internal/models"
	"github.com/bwmarrin/discordgo"
)

// renderRoom lists the room state as embed fields. room should already be
// redacted for whoever will see it.
func renderRoom(room *models.Room, viewerID string) []*discordgo.MessageEmbedField {
	fields := []*discordgo.MessageEmbedField{
		{Name: "Room", Value: room.Code, Inline: true},
		{Name: "Phase", Value: strings.ToUpper(string(room.Phase)), Inline: true},
	}

	if room.Phase.IsTimed() {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   "Timer",
			Value:  fmt.Sprintf("%ds", room.Timer()),
			Inline: true,
		})
	}

	var players strings.Builder
	for _, p := range room.Players {
		players.WriteString(renderPlayer(p, viewerID))
		players.WriteString("\n")
	}
	fields = append(fields, &discordgo.MessageEmbedField{
		Name:  fmt.Sprintf("Players (%d alive)", len(room.LivingPlayers())),
		Value: players.String(),
	})

	if room.LastNightResult != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Last night", Value: room.LastNightResult})
	}
	if room.LastVoteResult != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Last vote", Value: room.LastVoteResult})
	}

	if viewerID != "" {
		if own := room.Inspections[viewerID]; len(own) > 0 {
			var lines strings.Builder
			for _, inspection := range own {
				name := inspection.TargetID
				if target := room.FindPlayer(inspection.TargetID); target != nil {
					name = target.Username
				}
				fmt.Fprintf(&lines, "Night %d: **%s** is %s\n", inspection.Round, name, strings.ToUpper(string(inspection.Team)))
			}
			fields = append(fields, &discordgo.MessageEmbedField{Name: "Investigations", Value: lines.String()})
		}
	}

	if room.Winner != "" {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  "Winner",
			Value: strings.ToUpper(string(room.Winner)),
		})
	}

	return fields
}

func renderPlayer(p *models.Player, viewerID string) string {
	var line strings.Builder
	if p.IsDead {
		fmt.Fprintf(&line, "~~%s~~", p.Username)
	} else {
		fmt.Fprintf(&line, "**%s**", p.Username)
	}

	var tags []string
	if p.IsHost {
		tags = append(tags, "host")
	}
	if p.IsAI {
		tags = append(tags, "ai")
	}
	if p.ID == viewerID {
		tags = append(tags, "you")
	}
	if role := p.RoleDefinition(); role != nil {
		tags = append(tags, strings.ToUpper(role.Name))
	}
	if len(tags) > 0 {
		fmt.Fprintf(&line, " (%s)", strings.Join(tags, ", "))
	}
	return line.String()
}
