package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const bodyField = "body"

// StreamOptions configure a consumer of a Redis stream.
type StreamOptions struct {
	Group    string
	Consumer string
	// VisibilityTimeout is how long a delivered entry may stay unacknowledged before
	// another Receive claims it again.
	VisibilityTimeout time.Duration
}

// RedisStream is a Queue on top of a Redis stream and a consumer group.
//
// Send is XADD. Receive first reclaims entries idle for longer than the visibility timeout
// (XAUTOCLAIM) and then reads new ones (XREADGROUP). Delete is XACK followed by XDEL.
type RedisStream struct {
	client *redis.Client
	stream string
	opts   StreamOptions

	mu         sync.Mutex
	groupReady bool
}

var _ Queue = (*RedisStream)(nil)

func NewRedisStream(client *redis.Client, stream string, opts StreamOptions) *RedisStream {
	return &RedisStream{client: client, stream: stream, opts: opts}
}

func (q *RedisStream) Send(ctx context.Context, body []byte) (string, error) {
	id, err := q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		Values: map[string]any{bodyField: body},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("xadd %s: %w", q.stream, err)
	}
	return id, nil
}

func (q *RedisStream) Receive(ctx context.Context, max int) ([]Message, error) {
	if max <= 0 {
		return []Message{}, nil
	}
	if err := q.ensureGroup(ctx); err != nil {
		return nil, err
	}

	out, err := q.claimStale(ctx, max)
	if err != nil {
		return nil, err
	}
	if len(out) >= max {
		return out, nil
	}

	streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    q.opts.Group,
		Consumer: q.opts.Consumer,
		Streams:  []string{q.stream, ">"},
		Count:    int64(max - len(out)),
		Block:    -1,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return out, nil
		}
		return nil, fmt.Errorf("xreadgroup %s: %w", q.stream, err)
	}
	for _, s := range streams {
		for _, m := range s.Messages {
			out = append(out, toMessage(m, 1))
		}
	}
	return out, nil
}

func (q *RedisStream) claimStale(ctx context.Context, max int) ([]Message, error) {
	claimed, _, err := q.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   q.stream,
		Group:    q.opts.Group,
		Consumer: q.opts.Consumer,
		MinIdle:  q.opts.VisibilityTimeout,
		Start:    "0-0",
		Count:    int64(max),
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []Message{}, nil
		}
		return nil, fmt.Errorf("xautoclaim %s: %w", q.stream, err)
	}

	out := make([]Message, 0, len(claimed))
	for _, m := range claimed {
		if m.Values == nil {
			// trimmed entry, nothing left to deliver
			_ = q.client.XAck(ctx, q.stream, q.opts.Group, m.ID).Err()
			continue
		}
		count, err := q.deliveryCount(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, toMessage(m, count))
	}
	return out, nil
}

func (q *RedisStream) deliveryCount(ctx context.Context, id string) (int64, error) {
	pending, err := q.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: q.stream,
		Group:  q.opts.Group,
		Start:  id,
		End:    id,
		Count:  1,
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("xpending %s: %w", q.stream, err)
	}
	if len(pending) == 0 {
		return 1, nil
	}
	return pending[0].RetryCount, nil
}

func (q *RedisStream) Delete(ctx context.Context, msg Message) error {
	_, err := q.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.XAck(ctx, q.stream, q.opts.Group, msg.ID)
		p.XDel(ctx, q.stream, msg.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete %s from %s: %w", msg.ID, q.stream, err)
	}
	return nil
}

func (q *RedisStream) ensureGroup(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.groupReady {
		return nil
	}
	err := q.client.XGroupCreateMkStream(ctx, q.stream, q.opts.Group, "0").Err()
	if err != nil && !isBusyGroup(err) {
		return fmt.Errorf("create group %s on %s: %w", q.opts.Group, q.stream, err)
	}
	q.groupReady = true
	return nil
}

func isBusyGroup(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "BUSYGROUP")
}

func toMessage(m redis.XMessage, count int64) Message {
	var body []byte
	switch v := m.Values[bodyField].(type) {
	case string:
		body = []byte(v)
	case []byte:
		body = v
	}
	return Message{ID: m.ID, Body: body, DequeueCount: count}
}
