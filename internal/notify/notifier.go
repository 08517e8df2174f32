// Package notify relays completed submissions and reviews to the operator chat.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/homeservice/hsbot/core/logger"
	"github.com/homeservice/hsbot/internal/intake"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// ErrNotBound is returned when a relay is attempted before Bind.
var ErrNotBound = errors.New("notify: bot not bound")

// Sender is the subset of tele.Bot used by the notifier.
type Sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Notifier delivers operator notifications to a fixed admin chat.
// The bot is bound after startup; sends are synchronous so callers can
// react to relay failures.
type Notifier struct {
	mu    sync.RWMutex
	bot   Sender
	admin tele.ChatID
}

// New constructs a Notifier for the given admin chat id.
func New(adminID int64) *Notifier {
	return &Notifier{admin: tele.ChatID(adminID)}
}

// Bind attaches the outbound sender once the bot is running.
func (n *Notifier) Bind(bot Sender) {
	n.mu.Lock()
	n.bot = bot
	n.mu.Unlock()
}

func (n *Notifier) sender() (Sender, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.bot == nil {
		return nil, ErrNotBound
	}
	return n.bot, nil
}

// Submission relays a stored service request to the operator.
func (n *Notifier) Submission(ctx context.Context, sub intake.Submission) error {
	bot, err := n.sender()
	if err != nil {
		return err
	}
	if _, err := bot.Send(n.admin, SubmissionSummary(sub)); err != nil {
		return fmt.Errorf("notify: submission relay: %w", err)
	}
	logger.Debug(ctx, "service.notify", "submission.relayed",
		slog.String("status", "ok"),
		slog.Int64("request_id", sub.UserID),
	)
	return nil
}

// Review relays review text to the operator verbatim.
func (n *Notifier) Review(ctx context.Context, text string) error {
	bot, err := n.sender()
	if err != nil {
		return err
	}
	if _, err := bot.Send(n.admin, "Новый отзыв:\n"+text); err != nil {
		return fmt.Errorf("notify: review relay: %w", err)
	}
	logger.Debug(ctx, "service.notify", "review.relayed",
		slog.String("status", "ok"),
	)
	return nil
}

// SubmissionSummary renders the operator-facing request summary.
// The tax id line shows a dash when the request has none.
func SubmissionSummary(sub intake.Submission) string {
	taxID := "—"
	if sub.TaxID.Valid && strings.TrimSpace(sub.TaxID.String) != "" {
		taxID = sub.TaxID.String
	}
	return fmt.Sprintf("Новая заявка:\nОписание: %s\nИмя: %s\nТелефон: %s\nИНН: %s",
		sub.Description, sub.Name, sub.Phone, taxID)
}
