// Package discord is the chat front-end: it receives messages, drives the
// agent loop, and renders AgentResults as Discord messages and button
// rows. All approval and clarification UI lives here; the loop itself
// never blocks on human input.
package discord

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"

	"github.com/kirillkom/discord-research-agent/internal/core/domain"
	"github.com/kirillkom/discord-research-agent/internal/core/ports"
)

const (
	// Discord rejects messages above 2000 characters; chunk slightly below.
	messageCharLimit = 2000
	chunkSize        = 1990

	clearCommand = "!clear"
)

type Options struct {
	AllowedChannelIDs []string
	RatePerMinute     int
}

type Bot struct {
	session     *discordgo.Session
	runner      ports.AgentRunner
	transcriber ports.Transcriber
	allowed     map[string]struct{}
	logger      *slog.Logger

	ratePerMinute int

	mu           sync.Mutex
	channelLocks map[string]*sync.Mutex
	limiters     map[string]*rate.Limiter

	pendingMu      sync.Mutex
	pendingOptions map[string][]string
	pendingActions map[string]domain.AgentDecision
}

func New(token string, runner ports.AgentRunner, transcriber ports.Transcriber, options Options, logger *slog.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent

	allowed := make(map[string]struct{}, len(options.AllowedChannelIDs))
	for _, id := range options.AllowedChannelIDs {
		allowed[id] = struct{}{}
	}
	ratePerMinute := options.RatePerMinute
	if ratePerMinute <= 0 {
		ratePerMinute = 6
	}
	if logger == nil {
		logger = slog.Default()
	}

	bot := &Bot{
		session:        session,
		runner:         runner,
		transcriber:    transcriber,
		allowed:        allowed,
		logger:         logger,
		ratePerMinute:  ratePerMinute,
		channelLocks:   make(map[string]*sync.Mutex),
		limiters:       make(map[string]*rate.Limiter),
		pendingOptions: make(map[string][]string),
		pendingActions: make(map[string]domain.AgentDecision),
	}
	session.AddHandler(bot.onMessageCreate)
	session.AddHandler(bot.onInteractionCreate)
	return bot, nil
}

func (b *Bot) Open() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}
	if len(b.allowed) == 0 {
		b.logger.Warn("no ALLOWED_CHANNEL_IDS set, responding in all channels")
	}
	return nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == s.State.User.ID || m.Author.Bot {
		return
	}
	if !b.channelAllowed(m.ChannelID) {
		return
	}

	ctx := context.Background()

	if strings.TrimSpace(m.Content) == clearCommand {
		b.runner.ClearSession(m.ChannelID)
		b.send(m.ChannelID, "Conversation history cleared.")
		return
	}

	if !b.limiter(m.ChannelID).Allow() {
		b.send(m.ChannelID, "You're sending messages too quickly. Please wait a moment.")
		return
	}

	if attachment := voiceAttachment(m.Message); attachment != nil {
		b.handleVoiceMessage(ctx, m, attachment)
		return
	}

	content := strings.TrimSpace(m.Content)
	if content == "" {
		return
	}
	b.processInput(ctx, m.ChannelID, content)
}

// processInput runs one loop invocation and renders the result. The
// per-channel lock keeps a single invocation in flight per session, which
// the memory structure requires.
func (b *Bot) processInput(ctx context.Context, channelID, input string) {
	lock := b.channelLock(channelID)
	lock.Lock()
	defer lock.Unlock()

	_ = b.session.ChannelTyping(channelID)
	result := b.runner.Run(ctx, channelID, input)
	b.renderResult(channelID, result)
}

func (b *Bot) renderResult(channelID string, result domain.AgentResult) {
	switch result.Kind {
	case domain.ResultResponse:
		b.sendChunked(channelID, result.Response)
	case domain.ResultAskUser:
		b.sendOptions(channelID, *result.AskUser)
	case domain.ResultPerformAction:
		b.sendApprovalRequest(channelID, *result.PendingAction)
	case domain.ResultError:
		b.send(channelID, "Error: "+result.Err)
	}
}

func (b *Bot) channelAllowed(channelID string) bool {
	if len(b.allowed) == 0 {
		return true
	}
	_, ok := b.allowed[channelID]
	return ok
}

func (b *Bot) channelLock(channelID string) *sync.Mutex {
	b.mu.Lock()
	defer b.mu.Unlock()

	lock, ok := b.channelLocks[channelID]
	if !ok {
		lock = &sync.Mutex{}
		b.channelLocks[channelID] = lock
	}
	return lock
}

func (b *Bot) limiter(channelID string) *rate.Limiter {
	b.mu.Lock()
	defer b.mu.Unlock()

	limiter, ok := b.limiters[channelID]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(float64(b.ratePerMinute)/60.0), b.ratePerMinute)
		b.limiters[channelID] = limiter
	}
	return limiter
}

func (b *Bot) send(channelID, content string) {
	if _, err := b.session.ChannelMessageSend(channelID, content); err != nil {
		b.logger.Error("send_failed", "channel_id", channelID, "error", err)
	}
}

func (b *Bot) sendChunked(channelID, content string) {
	if len(content) <= messageCharLimit {
		b.send(channelID, content)
		return
	}
	for start := 0; start < len(content); start += chunkSize {
		end := start + chunkSize
		if end > len(content) {
			end = len(content)
		}
		b.send(channelID, content[start:end])
	}
}
