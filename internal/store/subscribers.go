package store

import (
	"context"
	"sync"
)

// subscriber receives collection snapshots with latest-value semantics: a
// slow consumer skips intermediate snapshots and only ever observes the
// newest one.
type subscriber struct {
	coll   Collection
	out    chan []Record
	mu     sync.Mutex
	closed bool
}

type subscribers struct {
	mu   sync.Mutex
	next int
	byID map[int]*subscriber
}

func newSubscribers() *subscribers {
	return &subscribers{byID: map[int]*subscriber{}}
}

func (s *subscribers) add(ctx context.Context, coll Collection) (*subscriber, func()) {
	sub := &subscriber{coll: coll, out: make(chan []Record, 1)}

	s.mu.Lock()
	id := s.next
	s.next++
	s.byID[id] = sub
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.byID, id)
			s.mu.Unlock()
			sub.close()
		})
	}
	if ctx != nil {
		go func() {
			<-ctx.Done()
			cancel()
		}()
	}
	return sub, cancel
}

func (s *subscribers) broadcast(coll Collection, snap []Record) {
	s.mu.Lock()
	subs := make([]*subscriber, 0, len(s.byID))
	for _, sub := range s.byID {
		if sub.coll == coll {
			subs = append(subs, sub)
		}
	}
	s.mu.Unlock()

	for _, sub := range subs {
		s.deliver(sub, snap)
	}
}

func (s *subscribers) deliver(sub *subscriber, snap []Record) {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.closed {
		return
	}
	// Drop the stale pending snapshot, if any, before pushing the new one.
	select {
	case <-sub.out:
	default:
	}
	sub.out <- snap
}

func (s *subscribers) closeAll() {
	s.mu.Lock()
	subs := make([]*subscriber, 0, len(s.byID))
	for id, sub := range s.byID {
		subs = append(subs, sub)
		delete(s.byID, id)
	}
	s.mu.Unlock()
	for _, sub := range subs {
		sub.close()
	}
}

func (sub *subscriber) close() {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.closed {
		return
	}
	sub.closed = true
	close(sub.out)
}
