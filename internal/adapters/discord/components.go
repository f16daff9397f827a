package discord

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/kirillkom/discord-research-agent/internal/core/domain"
)

const (
	maxOptionButtons = 4
	buttonLabelLimit = 80

	approveCustomID = "action_approve"
	denyCustomID    = "action_deny"
	optionCustomID  = "option_"
)

var optionStyles = []discordgo.ButtonStyle{
	discordgo.PrimaryButton,
	discordgo.SecondaryButton,
	discordgo.SuccessButton,
	discordgo.PrimaryButton,
}

// sendOptions renders an ask_user decision as a row of choice buttons and
// remembers the option labels under the sent message id.
func (b *Bot) sendOptions(channelID string, decision domain.AgentDecision) {
	options := decision.Options
	if len(options) > maxOptionButtons {
		options = options[:maxOptionButtons]
	}

	buttons := make([]discordgo.MessageComponent, 0, len(options))
	for i, option := range options {
		label := option
		if len(label) > buttonLabelLimit {
			label = label[:buttonLabelLimit]
		}
		buttons = append(buttons, discordgo.Button{
			Label:    label,
			Style:    optionStyles[i%len(optionStyles)],
			CustomID: optionCustomID + strconv.Itoa(i),
		})
	}

	msg, err := b.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:    decision.Question,
		Components: []discordgo.MessageComponent{discordgo.ActionsRow{Components: buttons}},
	})
	if err != nil {
		b.logger.Error("send_options_failed", "channel_id", channelID, "error", err)
		return
	}

	b.pendingMu.Lock()
	b.pendingOptions[msg.ID] = options
	b.pendingMu.Unlock()
}

// sendApprovalRequest renders a perform_action decision with approve/deny
// buttons. The decision is held here, unexecuted, until the user answers.
func (b *Bot) sendApprovalRequest(channelID string, decision domain.AgentDecision) {
	var content strings.Builder
	content.WriteString("The agent wants to perform the following actions:\n")
	if decision.Reasoning != "" {
		content.WriteString(decision.Reasoning + "\n")
	}
	for _, call := range decision.ToolCalls {
		fmt.Fprintf(&content, "- %s: %s (%s)\n", call.Kind, call.Target(), call.Reason)
	}

	msg, err := b.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content: content.String(),
		Components: []discordgo.MessageComponent{discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: "Approve", Style: discordgo.SuccessButton, CustomID: approveCustomID},
			discordgo.Button{Label: "Deny", Style: discordgo.DangerButton, CustomID: denyCustomID},
		}}},
	})
	if err != nil {
		b.logger.Error("send_approval_failed", "channel_id", channelID, "error", err)
		return
	}

	b.pendingMu.Lock()
	b.pendingActions[msg.ID] = decision
	b.pendingMu.Unlock()
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent || i.Message == nil {
		return
	}

	customID := i.MessageComponentData().CustomID
	switch {
	case strings.HasPrefix(customID, optionCustomID):
		b.handleOptionChoice(s, i, customID)
	case customID == approveCustomID, customID == denyCustomID:
		b.handleApproval(s, i, customID == approveCustomID)
	}
}

func (b *Bot) handleOptionChoice(s *discordgo.Session, i *discordgo.InteractionCreate, customID string) {
	index, err := strconv.Atoi(strings.TrimPrefix(customID, optionCustomID))
	if err != nil {
		return
	}

	b.pendingMu.Lock()
	options, ok := b.pendingOptions[i.Message.ID]
	delete(b.pendingOptions, i.Message.ID)
	b.pendingMu.Unlock()
	if !ok || index < 0 || index >= len(options) {
		return
	}
	choice := options[index]

	b.disableComponents(s, i)

	lock := b.channelLock(i.ChannelID)
	lock.Lock()
	defer lock.Unlock()

	_ = s.ChannelTyping(i.ChannelID)
	result := b.runner.ResumeAfterChoice(context.Background(), i.ChannelID, choice)
	b.renderResult(i.ChannelID, result)
}

func (b *Bot) handleApproval(s *discordgo.Session, i *discordgo.InteractionCreate, approved bool) {
	b.pendingMu.Lock()
	pending, ok := b.pendingActions[i.Message.ID]
	delete(b.pendingActions, i.Message.ID)
	b.pendingMu.Unlock()
	if !ok {
		return
	}

	b.disableComponents(s, i)

	lock := b.channelLock(i.ChannelID)
	lock.Lock()
	defer lock.Unlock()

	_ = s.ChannelTyping(i.ChannelID)
	result := b.runner.ResumeAfterApproval(context.Background(), i.ChannelID, pending, approved)
	b.renderResult(i.ChannelID, result)
}

// disableComponents acknowledges the interaction by editing the original
// message with its buttons disabled.
func (b *Bot) disableComponents(s *discordgo.Session, i *discordgo.InteractionCreate) {
	components := make([]discordgo.MessageComponent, 0, len(i.Message.Components))
	for _, component := range i.Message.Components {
		row, ok := component.(*discordgo.ActionsRow)
		if !ok {
			components = append(components, component)
			continue
		}
		buttons := make([]discordgo.MessageComponent, 0, len(row.Components))
		for _, inner := range row.Components {
			if button, ok := inner.(*discordgo.Button); ok {
				disabled := *button
				disabled.Disabled = true
				buttons = append(buttons, disabled)
				continue
			}
			buttons = append(buttons, inner)
		}
		components = append(components, discordgo.ActionsRow{Components: buttons})
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    i.Message.Content,
			Components: components,
		},
	})
	if err != nil {
		b.logger.Error("interaction_respond_failed", "error", err)
	}
}
