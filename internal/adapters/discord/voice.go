package discord

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bwmarrin/discordgo"
)

func voiceAttachment(m *discordgo.Message) *discordgo.MessageAttachment {
	for _, attachment := range m.Attachments {
		if strings.HasPrefix(attachment.ContentType, "audio/") {
			return attachment
		}
	}
	return nil
}

func (b *Bot) handleVoiceMessage(ctx context.Context, m *discordgo.MessageCreate, attachment *discordgo.MessageAttachment) {
	if b.transcriber == nil {
		b.send(m.ChannelID, "Voice messages are not supported: no transcription service configured.")
		return
	}

	_ = b.session.ChannelTyping(m.ChannelID)

	audio, err := downloadAttachment(ctx, attachment.URL)
	if err != nil {
		b.send(m.ChannelID, fmt.Sprintf("Error processing voice message: %v", err))
		return
	}

	transcription, err := b.transcriber.Transcribe(ctx, audio, attachment.Filename)
	if err != nil {
		b.send(m.ChannelID, fmt.Sprintf("Failed to transcribe voice message: %v", err))
		return
	}

	b.send(m.ChannelID, "**Transcription:** "+transcription)
	b.processInput(ctx, m.ChannelID, transcription)
}

func downloadAttachment(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create download request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download attachment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download attachment: status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 25<<20))
}
