package predictor

import "sync"

// Event is a service lifecycle event: catalog reloads, bundle loads and evictions.
type Event struct {
	Name   string
	Model  string
	Fields map[string]any
}

// EventPublisher receives events. Publish must not block or panic.
type EventPublisher interface {
	Publish(Event)
}

type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

// MemoryPublisher stores events in memory.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryPublisher() *MemoryPublisher { return &MemoryPublisher{} }

func (p *MemoryPublisher) Publish(e Event) {
	p.mu.Lock()
	p.events = append(p.events, e)
	p.mu.Unlock()
}

// Events returns a copy of the published events.
func (p *MemoryPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}

// Names returns the names of the published events in order.
func (p *MemoryPublisher) Names() []string {
	evts := p.Events()
	out := make([]string, len(evts))
	for i, e := range evts {
		out[i] = e.Name
	}
	return out
}

func (s *Service) emit(e Event) {
	s.mu.RLock()
	p := s.publisher
	s.mu.RUnlock()
	p.Publish(e)
}
