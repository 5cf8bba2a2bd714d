package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const activityLogName = "activity.log"

// StartActivityConsumer consumes the quest.completed queue and appends one
// line per event to <logDir>/activity.log.  It reconnects with exponential
// backoff and returns only when ctx is cancelled.
func StartActivityConsumer(ctx context.Context, url, logDir string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "activity-consumer"))

	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			logger.Warn("failed to dial broker", slog.Any("error", err), slog.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, logDir, logger)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Warn("consume loop ended, reconnecting", slog.Any("error", err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, logDir string, logger *slog.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		logger.Warn("set QoS failed", slog.Any("error", err))
	}
	if _, err := ch.QueueDeclare(QuestCompletedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(QuestCompletedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := handleMessage(logDir, d.Body); err != nil {
				logger.Error("handle message failed", slog.Any("error", err))
				// Rejected without requeue to avoid a poison-message loop.
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func handleMessage(logDir string, body []byte) error {
	var ev QuestCompletedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(logDir, activityLogName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(formatActivity(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

func formatActivity(ev QuestCompletedEvent) string {
	badges := "[]"
	if len(ev.NewBadges) > 0 {
		badges = fmt.Sprintf("[%s]", strings.Join(ev.NewBadges, ","))
	}
	return fmt.Sprintf("[%s] Quest completed | event_id=%s | user_id=%d | quest_id=%d | title=%q | category=%s | xp=+%d | coins=+%d | total_xp=%d | level=%d | streak=%d | day=%s | badges=%s\n",
		ev.CompletedAt, ev.EventID, ev.UserID, ev.QuestID, ev.QuestTitle, ev.Category,
		ev.Experience, ev.Coins, ev.TotalXP, ev.Level, ev.CurrentStreak, ev.ActivityDate, badges)
}
