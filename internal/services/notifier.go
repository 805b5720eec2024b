package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"adbuilder/internal/interfaces"
	"adbuilder/internal/logger"
)

type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

type launchMessage struct {
	Type    string    `json:"type"`
	Message string    `json:"message"`
	SentAt  time.Time `json:"sent_at"`
}

// RedisNotifier publishes launch messages as JSON on a Redis channel.
type RedisNotifier struct {
	rdb     publisher
	channel string
	now     func() time.Time
}

func NewRedisNotifier(rdb publisher, channel string) *RedisNotifier {
	if strings.TrimSpace(channel) == "" {
		channel = "campaign-launches"
	}
	return &RedisNotifier{rdb: rdb, channel: channel, now: time.Now}
}

// NewRedisClient dials addr and pings it.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func (n *RedisNotifier) Notify(ctx context.Context, message string) error {
	raw, err := json.Marshal(launchMessage{Type: "campaign.launched", Message: message, SentAt: n.now().UTC()})
	if err != nil {
		return err
	}
	return n.rdb.Publish(ctx, n.channel, raw).Err()
}

// EmailNotifier mails the message to a fixed list of recipients.
type EmailNotifier struct {
	sender     EmailSender
	recipients []string
	subject    string
}

func NewEmailNotifier(sender EmailSender, recipients []string) *EmailNotifier {
	var to []string
	for _, r := range recipients {
		if r = strings.TrimSpace(r); r != "" {
			to = append(to, r)
		}
	}
	return &EmailNotifier{sender: sender, recipients: to, subject: "Campaign launched"}
}

// Notify tries every recipient and joins the failures.
func (n *EmailNotifier) Notify(ctx context.Context, message string) error {
	var errs []error
	for _, to := range n.recipients {
		if err := ctx.Err(); err != nil {
			return errors.Join(append(errs, err)...)
		}
		if err := n.sender.Send(to, n.subject, message); err != nil {
			errs = append(errs, fmt.Errorf("send to %s: %w", to, err))
		}
	}
	return errors.Join(errs...)
}

// LogNotifier writes the message to the log. Used when nothing else is configured.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: logger.OrNop(log).With("service", "LogNotifier")}
}

func (n *LogNotifier) Notify(_ context.Context, message string) error {
	n.log.Info("launch notification", "message", message)
	return nil
}

// MultiNotifier fans out to every notifier and joins their errors.
type MultiNotifier []interfaces.Notifier

func (m MultiNotifier) Notify(ctx context.Context, message string) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
