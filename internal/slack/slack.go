// Package slack delivers standup reports, processing errors, and daily
// reminders to a Slack channel.
package slack

import (
	"context"
	"fmt"
	"sync"
	"time"

	slackapi "github.com/slack-go/slack"
)

// poster is the slice of the Slack Web API the notifier uses; satisfied by
// *slackapi.Client and by fakes in tests.
type poster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

// Notifier posts to a fixed channel. Credentials can be swapped at runtime
// through the settings endpoint without restarting the service.
type Notifier struct {
	mu        sync.RWMutex
	client    poster
	channelID string
	now       func() time.Time
}

func New(botToken, channelID string) *Notifier {
	n := &Notifier{now: time.Now}
	if botToken != "" {
		n.client = slackapi.New(botToken)
	}
	n.channelID = channelID
	return n
}

// UpdateCredentials replaces the bot token and target channel.
func (n *Notifier) UpdateCredentials(botToken, channelID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if botToken != "" {
		n.client = slackapi.New(botToken)
	}
	if channelID != "" {
		n.channelID = channelID
	}
}

// Configured reports whether the notifier has a usable token and channel.
func (n *Notifier) Configured() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.client != nil && n.channelID != ""
}

// PostReport sends the formatted standup summary and returns the message
// timestamp Slack assigned.
func (n *Notifier) PostReport(ctx context.Context, summary string) (string, error) {
	client, channel, err := n.target()
	if err != nil {
		return "", err
	}

	text := fmt.Sprintf(":memo: *Team Update Summary:*\n```%s```", summary)
	_, ts, err := client.PostMessageContext(ctx, channel, slackapi.MsgOptionText(text, false))
	if err != nil {
		return "", fmt.Errorf("post report: %w", err)
	}
	return ts, nil
}

// PostError reports a processing failure to the channel so the team knows
// the transcript needs another look.
func (n *Notifier) PostError(ctx context.Context, cause string) error {
	client, channel, err := n.target()
	if err != nil {
		return err
	}

	text := fmt.Sprintf(":warning: *Error processing transcript:*\n%s", cause)
	if _, _, err := client.PostMessageContext(ctx, channel, slackapi.MsgOptionText(text, false)); err != nil {
		return fmt.Errorf("post error notice: %w", err)
	}
	return nil
}

// PostReminder sends the daily upload reminder.
func (n *Notifier) PostReminder(ctx context.Context, uploadLink string) error {
	client, channel, err := n.target()
	if err != nil {
		return err
	}

	now := n.now()
	text := fmt.Sprintf(
		":wave: *Good morning team!* :sunny:\n\n*Date:* %s, %s\n*Action Required:* Please upload today's standup transcript here:\n%s",
		now.Format("January 02, 2006"),
		now.Format("15:04:05"),
		uploadLink,
	)

	block := slackapi.NewSectionBlock(
		slackapi.NewTextBlockObject(slackapi.MarkdownType, text, false, false),
		nil, nil,
	)

	if _, _, err := client.PostMessageContext(ctx, channel,
		slackapi.MsgOptionText(text, false),
		slackapi.MsgOptionBlocks(block),
	); err != nil {
		return fmt.Errorf("post reminder: %w", err)
	}
	return nil
}

func (n *Notifier) target() (poster, string, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.client == nil || n.channelID == "" {
		return nil, "", fmt.Errorf("slack not configured")
	}
	return n.client, n.channelID, nil
}
