package eventsourcing

// Event is a domain event carried by an aggregate's stream. Implementations
// are plain JSON-serializable structs whose EventType tag is registered with
// a Codec.
type Event interface {
	EventType() string
}

// Aggregate is the capability set a type needs to be event-sourced: identity,
// a persisted stream version, a buffer of uncommitted events, and a replay
// transition.
type Aggregate interface {
	AggregateID() string
	AggregateType() string

	// Version is the stream version the aggregate was loaded at. Mutators do
	// not advance it; the repository does after a successful save.
	Version() int64
	SetVersion(v int64)

	UncommittedEvents() []Event
	ClearUncommittedEvents()

	// Apply folds one event into state during replay. It must be
	// deterministic and free of side effects outside the aggregate.
	Apply(event Event) error
}

// Root carries the version and uncommitted-events bookkeeping for an
// aggregate. Concrete aggregates embed it and keep their identity themselves.
type Root struct {
	version int64
	pending []Event
}

func (r *Root) Version() int64     { return r.version }
func (r *Root) SetVersion(v int64) { r.version = v }

// Record appends an event to the uncommitted buffer. Every successful mutator
// records exactly one event.
func (r *Root) Record(event Event) {
	r.pending = append(r.pending, event)
}

func (r *Root) UncommittedEvents() []Event {
	return r.pending
}

func (r *Root) ClearUncommittedEvents() {
	r.pending = nil
}
