package ink

import "sync"

// Topic names an event channel.
type Topic string

// Topics emitted and consumed by the engine.
const (
	TopicStrokeCommitted   Topic = "stroke:committed"
	TopicLayerDirty        Topic = "layer:dirty"
	TopicHistoryChanged    Topic = "history:changed"
	TopicToolChanged       Topic = "tool:changed"
	TopicLayerSwitchActive Topic = "layer:switch-active"
)

// Event is a message on a Bus. Payload holds one of the typed payloads
// below, matching the topic.
type Event struct {
	Topic   Topic
	Payload any
}

// StrokeCommitted is published after a stroke lands in history.
type StrokeCommitted struct {
	LayerID  string
	StrokeID string
}

// LayerDirty is published when a region of a layer changes.
type LayerDirty struct {
	LayerID string
	Rect    Rect
}

// HistoryChanged is published after every history mutation.
type HistoryChanged struct {
	CanUndo bool
	CanRedo bool
}

// ToolChanged asks the engine to switch brushes.
type ToolChanged struct {
	Brush Brush
}

// LayerSwitchActive asks the engine to change the active layer.
type LayerSwitchActive struct {
	LayerID string
}

// Bus is the publish/subscribe dispatcher the engine talks to. Handlers
// run on the publishing goroutine.
type Bus interface {
	Publish(ev Event)
	Subscribe(topic Topic, fn func(Event)) (cancel func())
}

// NopBus drops every event.
type NopBus struct{}

func (NopBus) Publish(Event) {}

func (NopBus) Subscribe(Topic, func(Event)) func() { return func() {} }

// LocalBus is a synchronous in-process Bus. Handlers run in
// subscription order.
type LocalBus struct {
	mu   sync.Mutex
	next int
	subs map[Topic][]subscriber
}

type subscriber struct {
	id int
	fn func(Event)
}

// NewLocalBus creates an empty bus.
func NewLocalBus() *LocalBus {
	return &LocalBus{subs: make(map[Topic][]subscriber)}
}

// Publish calls every handler subscribed to ev.Topic.
func (b *LocalBus) Publish(ev Event) {
	b.mu.Lock()
	subs := append([]subscriber(nil), b.subs[ev.Topic]...)
	b.mu.Unlock()
	for _, s := range subs {
		s.fn(ev)
	}
}

// Subscribe registers fn for topic until cancel is called.
func (b *LocalBus) Subscribe(topic Topic, fn func(Event)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	b.subs[topic] = append(b.subs[topic], subscriber{id, fn})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subs[topic]
		for i, s := range subs {
			if s.id == id {
				b.subs[topic] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}
