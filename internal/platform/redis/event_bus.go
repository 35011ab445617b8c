package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	types "github.com/yungbote/invoice-ingest-backend/internal/domain"
	"github.com/yungbote/invoice-ingest-backend/internal/platform/logger"
)

// EventBus fans appended invoice events out to live subscribers (the portal).
type EventBus interface {
	Publish(ctx context.Context, ev *types.InvoiceEvent) error
}

type EventMessage struct {
	RecordID string    `json:"recordId"`
	Action   string    `json:"action"`
	Note     string    `json:"note,omitempty"`
	ByUID    string    `json:"byUid,omitempty"`
	At       time.Time `json:"at"`
}

type eventBus struct {
	log     *logger.Logger
	rdb     goredis.UniversalClient
	channel string
}

func NewEventBus(log *logger.Logger, rdb goredis.UniversalClient, channel string) (EventBus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if rdb == nil {
		return nil, fmt.Errorf("redis client required")
	}
	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = "invoice-events"
	}
	return &eventBus{
		log:     log.With("service", "RedisEventBus"),
		rdb:     rdb,
		channel: channel,
	}, nil
}

func (b *eventBus) Publish(ctx context.Context, ev *types.InvoiceEvent) error {
	payload, err := encodeEvent(ev)
	if err != nil {
		return err
	}
	if err := b.rdb.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", b.channel, err)
	}
	return nil
}

func encodeEvent(ev *types.InvoiceEvent) ([]byte, error) {
	if ev == nil {
		return nil, fmt.Errorf("nil event")
	}
	msg := EventMessage{
		RecordID: types.RecordID(ev.OwnerID, ev.InvoiceID),
		Action:   ev.Action,
		Note:     ev.Note,
		At:       ev.At.UTC(),
	}
	if ev.ByUID != nil {
		msg.ByUID = *ev.ByUID
	}
	return json.Marshal(msg)
}
