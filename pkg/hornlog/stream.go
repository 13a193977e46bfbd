package hornlog

import (
	"context"
	"sync"
)

// Stream represents a lazy, finite sequence of substitutions: the
// answers to a query. Answers are produced on demand over an unbuffered
// channel, so the search that feeds a stream suspends between answers
// and resumes when the consumer takes the next one. A caller that only
// needs the first answer takes it and closes the stream; the producing
// search is abandoned.
type Stream struct {
	ch     chan *Substitution
	done   chan struct{}
	mu     sync.Mutex
	cancel context.CancelFunc // optional; invoked by Close to stop producers
}

// NewStream creates a new empty stream.
func NewStream() *Stream {
	return &Stream{
		ch:   make(chan *Substitution),
		done: make(chan struct{}),
	}
}

// Take retrieves up to n substitutions from the stream, in the order
// the search produced them. The boolean reports whether more answers
// might be available; false means the stream is exhausted.
func (s *Stream) Take(n int) ([]*Substitution, bool) {
	var results []*Substitution

	for i := 0; i < n; i++ {
		select {
		case sub := <-s.ch:
			if sub != nil {
				results = append(results, sub)
			}
		case <-s.done:
			return results, false
		}
	}

	select {
	case <-s.done:
		return results, false
	default:
		return results, true
	}
}

// TakeAll drains the stream, honoring context cancellation. Prefer Take
// for queries that may have many answers.
func (s *Stream) TakeAll(ctx context.Context) []*Substitution {
	var results []*Substitution
	for {
		select {
		case <-ctx.Done():
			return results
		default:
		}
		batch, hasMore := s.Take(1)
		results = append(results, batch...)
		if !hasMore {
			return results
		}
	}
}

// Put offers a substitution to the stream, blocking until a consumer
// takes it. It returns false when the stream has been closed or the
// context cancelled, which tells the producer to abandon its branch.
func (s *Stream) Put(ctx context.Context, sub *Substitution) bool {
	select {
	case s.ch <- sub:
		return true
	case <-s.done:
		return false
	case <-ctx.Done():
		return false
	}
}

// Close marks the stream complete. Consumers see exhaustion, and any
// producer blocked in Put is released. Closing also cancels the
// producing search when the stream owns one, so abandoning a stream
// early does not leak goroutines. Close is idempotent.
func (s *Stream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	select {
	case <-s.done:
	default:
		close(s.done)
	}
	if s.cancel != nil {
		s.cancel()
	}
}

// forward drains src into dst one answer at a time, preserving order.
// Returns false when the context is cancelled or dst is closed, telling
// the caller to abandon the branch.
func forward(ctx context.Context, dst, src *Stream) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		default:
		}
		subs, hasMore := src.Take(1)
		if len(subs) == 0 {
			return true
		}
		if !dst.Put(ctx, subs[0]) {
			return false
		}
		if !hasMore {
			return true
		}
	}
}
