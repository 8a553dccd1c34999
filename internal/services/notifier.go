package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/speechpal-backend/internal/logger"
	"github.com/yungbote/speechpal-backend/internal/sse"
)

// ProgressNotifier pushes progress updates to any live client connection for
// the user. Delivery is best-effort: failures are logged and swallowed, and
// no call ever blocks or fails the ledger commit that triggered it.
type ProgressNotifier interface {
	ProgressUpdated(userID uuid.UUID, data map[string]any)
	LevelUp(userID uuid.UUID, data map[string]any)
	AchievementEarned(userID uuid.UUID, data map[string]any)
}

type progressNotifier struct {
	log     *logger.Logger
	hub     *sse.SSEHub
	rdb     *goredis.Client
	channel string
}

// NewProgressNotifier builds a hub-local notifier.
func NewProgressNotifier(log *logger.Logger, hub *sse.SSEHub) ProgressNotifier {
	return &progressNotifier{log: log.With("service", "ProgressNotifier"), hub: hub}
}

// NewRedisProgressNotifier adds Redis pub/sub fan-out so updates reach hubs
// on other instances. The forwarder feeds remote messages into the local hub.
func NewRedisProgressNotifier(ctx context.Context, log *logger.Logger, hub *sse.SSEHub, addr, channel string) (ProgressNotifier, error) {
	if addr == "" {
		return nil, fmt.Errorf("missing redis addr")
	}
	if channel == "" {
		channel = "progress"
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	n := &progressNotifier{
		log:     log.With("service", "ProgressNotifier"),
		hub:     hub,
		rdb:     rdb,
		channel: channel,
	}
	n.startForwarder(ctx)
	return n, nil
}

func (n *progressNotifier) startForwarder(ctx context.Context) {
	sub := n.rdb.Subscribe(ctx, n.channel)
	go func() {
		defer func() { _ = sub.Close() }()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case payload, ok := <-ch:
				if !ok {
					return
				}
				var msg sse.SSEMessage
				if err := json.Unmarshal([]byte(payload.Payload), &msg); err != nil {
					n.log.Warn("Failed to decode forwarded progress message", "error", err)
					continue
				}
				n.hub.Broadcast(msg)
			}
		}
	}()
}

func (n *progressNotifier) ProgressUpdated(userID uuid.UUID, data map[string]any) {
	n.emit(userID, sse.SSEEventProgressUpdated, data)
}

func (n *progressNotifier) LevelUp(userID uuid.UUID, data map[string]any) {
	n.emit(userID, sse.SSEEventLevelUp, data)
}

func (n *progressNotifier) AchievementEarned(userID uuid.UUID, data map[string]any) {
	n.emit(userID, sse.SSEEventAchievementEarned, data)
}

func (n *progressNotifier) emit(userID uuid.UUID, event sse.SSEEvent, data map[string]any) {
	if n == nil || userID == uuid.Nil {
		return
	}
	msg := sse.SSEMessage{Channel: userID.String(), Event: event, Data: data}
	if n.rdb != nil {
		raw, err := json.Marshal(msg)
		if err != nil {
			n.log.Warn("Failed to marshal progress message", "error", err)
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := n.rdb.Publish(ctx, n.channel, raw).Err(); err != nil {
			n.log.Warn("Failed to publish progress message", "error", err)
			// Fall through to the local hub so a single-instance deploy
			// still delivers.
		} else {
			return
		}
	}
	n.hub.Broadcast(msg)
}
