package live

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/go-redis/redis/v8"
)

const relayChannel = "tcg:live"

type relayEnvelope struct {
	Room string          `json:"room"`
	Data json.RawMessage `json:"data"`
}

// RedisRelay fans room messages out to every instance through Redis pub/sub.
// Each instance, including the publisher, delivers relayed messages to its own hub.
type RedisRelay struct {
	client *redis.Client
	hub    *Hub
	logger *slog.Logger
}

func NewRedisRelay(client *redis.Client, hub *Hub, logger *slog.Logger) *RedisRelay {
	return &RedisRelay{client: client, hub: hub, logger: logger}
}

func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, err
	}
	return rdb, nil
}

// BroadcastToRoom publishes msg. On publish failure it falls back to local delivery.
func (r *RedisRelay) BroadcastToRoom(roomID string, msg Message) {
	msg.RoomID = roomID
	data, err := json.Marshal(msg)
	if err != nil {
		r.logger.Error("failed to encode live message", slog.String("room", roomID), slog.Any("error", err))
		return
	}
	envelope, err := json.Marshal(relayEnvelope{Room: roomID, Data: data})
	if err != nil {
		r.logger.Error("failed to encode relay envelope", slog.String("room", roomID), slog.Any("error", err))
		return
	}
	if err := r.client.Publish(context.Background(), relayChannel, envelope).Err(); err != nil {
		r.logger.Warn("redis publish failed, delivering locally", slog.String("room", roomID), slog.Any("error", err))
		r.hub.deliver(roomID, data)
	}
}

// Run relays messages from Redis to the local hub until ctx is cancelled.
func (r *RedisRelay) Run(ctx context.Context) {
	sub := r.client.Subscribe(ctx, relayChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-ch:
			if !ok {
				return
			}
			var env relayEnvelope
			if err := json.Unmarshal([]byte(m.Payload), &env); err != nil {
				r.logger.Warn("dropping malformed relay message", slog.Any("error", err))
				continue
			}
			r.hub.deliver(env.Room, env.Data)
		}
	}
}
