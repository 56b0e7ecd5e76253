package api

import "sync"

// Event types emitted over a solve job's lifetime.
const (
	EventStarted  = "job.started"
	EventProgress = "job.progress"
	EventDone     = "job.done"
)

// SolveEvent is one lifecycle or progress update of a solve job. Progress
// events carry the optimizer's generation counter and best fitness; the
// terminal event carries the decoded wave's objective and feasibility.
type SolveEvent struct {
	JobID       string  `json:"jobId"`
	Type        string  `json:"type"`
	Status      string  `json:"status,omitempty"`
	Generation  int     `json:"generation,omitempty"`
	BestFitness float64 `json:"bestFitness,omitempty"`
	Objective   float64 `json:"objective,omitempty"`
	Feasible    bool    `json:"feasible,omitempty"`
}

// Terminal reports whether the event ends the job's stream.
func (e SolveEvent) Terminal() bool { return e.Type == EventDone }

// Broker fans solve events out to in-process subscribers per job. It keeps
// the most recent event of every job so a late subscriber catches up
// immediately, and it closes all subscriber channels once the terminal
// event is delivered: a job's stream always ends when the job does.
type Broker struct {
	mu   sync.Mutex
	subs map[string]map[chan SolveEvent]struct{} // jobID -> subscriber set
	last map[string]SolveEvent                   // jobID -> latest event
}

func NewBroker() *Broker {
	return &Broker{
		subs: map[string]map[chan SolveEvent]struct{}{},
		last: map[string]SolveEvent{},
	}
}

// Subscribe returns a channel of the job's events, primed with the latest
// known event. For a job that already finished, the terminal event is
// delivered and the channel arrives closed.
func (b *Broker) Subscribe(jobID string) chan SolveEvent {
	ch := make(chan SolveEvent, 8)
	b.mu.Lock()
	defer b.mu.Unlock()
	if evt, ok := b.last[jobID]; ok {
		ch <- evt
		if evt.Terminal() {
			close(ch)
			return ch
		}
	}
	if b.subs[jobID] == nil {
		b.subs[jobID] = map[chan SolveEvent]struct{}{}
	}
	b.subs[jobID][ch] = struct{}{}
	return ch
}

// Unsubscribe detaches and closes the channel. It is a no-op for channels
// the terminal event already closed.
func (b *Broker) Unsubscribe(jobID string, ch chan SolveEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m := b.subs[jobID]
	if m == nil {
		return
	}
	if _, ok := m[ch]; !ok {
		return
	}
	delete(m, ch)
	if len(m) == 0 {
		delete(b.subs, jobID)
	}
	close(ch)
}

// Publish records the event as the job's latest and delivers it to every
// subscriber. Progress supersedes progress: when a subscriber's buffer is
// full, the oldest buffered event is dropped for the new one, so a slow
// consumer sees the freshest optimizer state instead of a stale backlog.
func (b *Broker) Publish(jobID string, evt SolveEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.last[jobID] = evt
	for ch := range b.subs[jobID] {
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
			close(ch)
		}
	}
	if evt.Terminal() {
		delete(b.subs, jobID)
	}
}
