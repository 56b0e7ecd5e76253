package api

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// EventBroker distributes solve job events to stream subscribers.
type EventBroker interface {
	Subscribe(jobID string) chan SolveEvent
	Unsubscribe(jobID string, ch chan SolveEvent)
	Publish(jobID string, evt SolveEvent)
}

// In-memory broker already implemented in broker.go and satisfies EventBroker

// lastEventTTL bounds how long a finished job's terminal event stays
// replayable for late subscribers.
const lastEventTTL = time.Hour

// RedisBroker implements EventBroker over Redis Pub/Sub, so job streams
// work when the solve runs on a different API replica than the stream.
// Pub/Sub alone cannot give late subscribers the in-memory broker's
// catch-up, so every published event is mirrored into a keyed last-event
// entry that Subscribe replays before streaming.
type RedisBroker struct {
	rdb *redis.Client
	mu  sync.Mutex
	ps  map[chan SolveEvent]*redis.PubSub
}

func NewRedisBroker() (*RedisBroker, error) {
	opt, err := redis.ParseURL(os.Getenv("REDIS_URL"))
	if err != nil {
		return nil, err
	}
	return &RedisBroker{rdb: redis.NewClient(opt), ps: map[chan SolveEvent]*redis.PubSub{}}, nil
}

func (b *RedisBroker) Subscribe(jobID string) chan SolveEvent {
	ch := make(chan SolveEvent, 16)
	ctx := context.Background()
	ps := b.rdb.Subscribe(ctx, b.eventChannel(jobID))
	// initial consume so the subscription is active before the replay read
	_, _ = ps.Receive(ctx)

	b.mu.Lock()
	b.ps[ch] = ps
	b.mu.Unlock()

	go func() {
		defer close(ch)
		defer func() { _ = ps.Close() }()

		if raw, err := b.rdb.Get(ctx, b.lastKey(jobID)).Bytes(); err == nil {
			var evt SolveEvent
			if json.Unmarshal(raw, &evt) == nil {
				ch <- evt
				if evt.Terminal() {
					return
				}
			}
		}

		for msg := range ps.Channel() {
			var evt SolveEvent
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
				continue
			}
			// freshest-wins, as in the in-memory broker
			select {
			case ch <- evt:
			default:
				select {
				case <-ch:
				default:
				}
				select {
				case ch <- evt:
				default:
				}
			}
			if evt.Terminal() {
				return
			}
		}
	}()
	return ch
}

// Unsubscribe closes the underlying Pub/Sub subscription; the reader
// goroutine then drains out and closes the event channel itself.
func (b *RedisBroker) Unsubscribe(jobID string, ch chan SolveEvent) {
	b.mu.Lock()
	ps := b.ps[ch]
	delete(b.ps, ch)
	b.mu.Unlock()
	if ps != nil {
		_ = ps.Close()
	}
}

func (b *RedisBroker) Publish(jobID string, evt SolveEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	_ = b.rdb.Set(ctx, b.lastKey(jobID), data, lastEventTTL).Err()
	_ = b.rdb.Publish(ctx, b.eventChannel(jobID), data).Err()
}

func (b *RedisBroker) eventChannel(jobID string) string { return "solve:events:" + jobID }
func (b *RedisBroker) lastKey(jobID string) string      { return "solve:last:" + jobID }
