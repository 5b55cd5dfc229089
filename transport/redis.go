package transport

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures a Redis pub/sub transport.
type RedisConfig struct {
	// PeerID names this peer; its inbox channel is derived from it.
	PeerID string

	// ChannelPrefix namespaces the pub/sub channels (e.g. "fleetcache").
	ChannelPrefix string
}

// RedisTransport connects a peer to the fleet over Redis pub/sub. Each peer
// owns an inbox channel <prefix>:peer:<id>; broadcasts go out on
// <prefix>:broadcast, which every peer subscribes to.
type RedisTransport struct {
	client  *redis.Client
	inboxCh string
	castCh  string

	pubsub *redis.PubSub
	done   chan struct{}
	wg     sync.WaitGroup

	handlersMu sync.RWMutex
	handlers   []Handler

	closeOnce sync.Once
}

// NewRedisTransport creates a transport endpoint on the given Redis client.
// The client's lifetime belongs to the caller.
func NewRedisTransport(client *redis.Client, cfg RedisConfig) *RedisTransport {
	prefix := cfg.ChannelPrefix
	if prefix == "" {
		prefix = "fleetcache"
	}

	return &RedisTransport{
		client:  client,
		inboxCh: prefix + ":peer:" + cfg.PeerID,
		castCh:  prefix + ":broadcast",
		done:    make(chan struct{}),
	}
}

// Send publishes a frame to the named peer's inbox channel.
func (t *RedisTransport) Send(ctx context.Context, peer string, data []byte) error {
	channel := t.peerChannel(peer)
	if err := t.client.Publish(ctx, channel, data).Err(); err != nil {
		return &SendError{Peer: peer, Err: err}
	}
	return nil
}

// Broadcast publishes a frame on the shared broadcast channel.
func (t *RedisTransport) Broadcast(ctx context.Context, data []byte) error {
	if err := t.client.Publish(ctx, t.castCh, data).Err(); err != nil {
		return &SendError{Err: err}
	}
	return nil
}

// Subscribe subscribes to this peer's inbox and the broadcast channel and
// starts the delivery goroutine.
func (t *RedisTransport) Subscribe(ctx context.Context) error {
	t.pubsub = t.client.Subscribe(ctx, t.inboxCh, t.castCh)

	// Force the subscription onto the wire before anyone publishes to us.
	if _, err := t.pubsub.Receive(ctx); err != nil {
		return err
	}

	t.wg.Add(1)
	go t.deliver()
	return nil
}

// OnMessage registers a handler for inbound frames.
func (t *RedisTransport) OnMessage(h Handler) {
	t.handlersMu.Lock()
	defer t.handlersMu.Unlock()
	t.handlers = append(t.handlers, h)
}

// Close stops delivery and closes the subscription. The Redis client itself
// stays open for the caller.
func (t *RedisTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.done)
		if t.pubsub != nil {
			err = t.pubsub.Close()
		}
		t.wg.Wait()
	})
	return err
}

func (t *RedisTransport) peerChannel(peer string) string {
	// castCh is <prefix>:broadcast; rebuild <prefix>:peer:<id> from it.
	prefix := t.castCh[:len(t.castCh)-len(":broadcast")]
	return prefix + ":peer:" + peer
}

func (t *RedisTransport) deliver() {
	defer t.wg.Done()

	ch := t.pubsub.Channel()

	for {
		select {
		case <-t.done:
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			t.handlersMu.RLock()
			handlers := t.handlers
			t.handlersMu.RUnlock()

			for _, h := range handlers {
				h([]byte(msg.Payload))
			}
		}
	}
}
