package signal

import (
	"context"
	"fmt"
	"time"

	"github.com/frag7/intake-api/internal/log"
	"github.com/frag7/intake-api/internal/models"
	"github.com/frag7/intake-api/pkg/constants"
	"github.com/frag7/intake-api/pkg/discord"
)

// Announcement colors and labels for the intake channel.
const (
	pathLabelNewCell = "🚀 NEW CELL REGISTRATION"
	pathLabelJoin    = "🔗 JOIN EXISTING / FRANCHISE"
	colorPodFormed   = 0x22c55e
)

// SignalSummary carries everything the operator channel needs to know about a
// submission, including the degraded-state flag when the store write failed.
type SignalSummary struct {
	IsNewCell        bool
	Name             string
	Region           string
	Email            string
	Skillset         string
	CellName         string
	MissionSpecialty string
	PledgeSigned     bool
	ConnectOptIn     bool
	ChatHandle       string
	DBFailed         bool
}

// Notifier announces submissions and formed pods. Delivery is best-effort and
// never transactional with the store write.
type Notifier interface {
	Configured() bool
	SignalReceived(ctx context.Context, summary *SignalSummary, pod *Pod) error
}

type discordNotifier struct {
	logger *log.Logger
	client *discord.Client
}

func NewDiscordNotifier(logger *log.Logger, client *discord.Client) Notifier {
	return &discordNotifier{logger: logger, client: client}
}

func (n *discordNotifier) Configured() bool {
	return n.client.Configured()
}

func (n *discordNotifier) SignalReceived(ctx context.Context, summary *SignalSummary, pod *Pod) error {
	msg := &discord.Message{
		Content: "🚨 **NEW FRAG7 INBOUND SIGNAL**",
		Embeds:  []discord.Embed{buildSignalEmbed(summary)},
	}

	if pod != nil {
		msg.Embeds = append(msg.Embeds, buildPodEmbed(pod))
	}

	return n.client.Post(ctx, msg)
}

func buildSignalEmbed(summary *SignalSummary) discord.Embed {
	pathLabel := pathLabelJoin
	color := discord.ColorJoin
	if summary.IsNewCell {
		pathLabel = pathLabelNewCell
		color = discord.ColorNewCell
	}

	consent := "⛔ **DECLINED** (Do Not Contact)"
	if summary.ConnectOptIn {
		consent = "✅ **ACTIVE** (Assign Region Role)"
	}

	fields := []discord.Field{
		{Name: "Protocol", Value: pathLabel, Inline: true},
		{Name: "Name / Handle", Value: orUnknown(summary.Name), Inline: true},
		{Name: "🌍 Region / Base", Value: orUnknown(summary.Region), Inline: true},
		{Name: "Signal (Email)", Value: orNA(summary.Email), Inline: false},
		{Name: "Skillset / MAG7 Role", Value: orNA(summary.Skillset), Inline: false},
	}

	if summary.IsNewCell {
		fields = append(fields,
			discord.Field{Name: "Proposed Team Name", Value: orNotProvided(summary.CellName), Inline: true},
			discord.Field{Name: "Mission Specialty", Value: orNotProvided(summary.MissionSpecialty), Inline: true},
		)
	}

	pledge := "❌ NOT SIGNED"
	if summary.PledgeSigned {
		pledge = "✅ AGREED"
	}
	fields = append(fields, discord.Field{Name: "Sovereignty Pledge", Value: pledge, Inline: true})

	if summary.ChatHandle != "" {
		fields = append(fields, discord.Field{Name: "Chat Handle", Value: summary.ChatHandle, Inline: true})
	}

	fields = append(fields, discord.Field{Name: "📡 Cell Connection Signal", Value: consent, Inline: false})

	if summary.DBFailed {
		fields = append(fields, discord.Field{
			Name:   "⚠️ Database",
			Value:  "**WRITE FAILED** — entry not queued, manual follow-up required",
			Inline: false,
		})
	}

	return discord.Embed{
		Title:       fmt.Sprintf("Member Identification: %s", orUnknown(summary.Name)),
		Description: "A new entity has initiated the sequence to dismantle dependency.",
		Color:       color,
		Fields:      fields,
		Footer:      &discord.Footer{Text: "FRAG7 Cellular Intake Protocol"},
		Timestamp:   time.Now().UTC().Format(constants.RFC3339DateTimeFormat),
	}
}

func buildPodEmbed(pod *Pod) discord.Embed {
	fields := make([]discord.Field, 0, len(pod.Members))

	for i, member := range pod.Members {
		value := member.Handle
		if member.ChatHandle != "" {
			value = fmt.Sprintf("%s (%s)", member.Handle, member.ChatHandle)
		}
		fields = append(fields, discord.Field{
			Name:   fmt.Sprintf("%d. %s", i+1, roleBadge(member.RoleClass)),
			Value:  value,
			Inline: true,
		})
	}

	return discord.Embed{
		Title:       fmt.Sprintf("🎯 POD FORMED: %s", pod.ID),
		Description: fmt.Sprintf("A full cell is ready in **%s**. Connect the members below.", pod.Region),
		Color:       colorPodFormed,
		Fields:      fields,
		Footer:      &discord.Footer{Text: "FRAG7 Cellular Intake Protocol"},
		Timestamp:   pod.FormedAt.Format(constants.RFC3339DateTimeFormat),
	}
}

func roleBadge(roleClass string) string {
	if roleClass == models.RoleClassBiz {
		return "BIZ"
	}
	return "TECH"
}

func orUnknown(v string) string {
	if v == "" {
		return "Unknown"
	}
	return v
}

func orNA(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}

func orNotProvided(v string) string {
	if v == "" {
		return "Not Provided"
	}
	return v
}
