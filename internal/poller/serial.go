package poller

import (
	"sync"

	tele "gopkg.in/telebot.v3"
)

// Serializer dispatches updates of one sender strictly in arrival order,
// while different senders are handled concurrently. A sender's worker
// exits once its queue is drained.
type Serializer struct {
	dispatch Dispatcher

	mu     sync.Mutex
	queues map[int64][]tele.Update
	wg     sync.WaitGroup
}

// NewSerializer wraps a synchronous dispatcher
func NewSerializer(dispatch Dispatcher) *Serializer {
	return &Serializer{
		dispatch: dispatch,
		queues:   make(map[int64][]tele.Update),
	}
}

// Dispatch queues the update behind earlier updates of the same sender
func (s *Serializer) Dispatch(u tele.Update) {
	key := senderID(u)

	s.mu.Lock()
	defer s.mu.Unlock()

	queue, running := s.queues[key]
	s.queues[key] = append(queue, u)
	if !running {
		s.wg.Add(1)
		go s.drain(key)
	}
}

// Wait blocks until every queued update has been handled
func (s *Serializer) Wait() {
	s.wg.Wait()
}

// Pending returns the number of senders with a live worker
func (s *Serializer) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queues)
}

func (s *Serializer) drain(key int64) {
	defer s.wg.Done()

	for {
		s.mu.Lock()
		queue := s.queues[key]
		if len(queue) == 0 {
			delete(s.queues, key)
			s.mu.Unlock()
			return
		}
		next := queue[0]
		s.queues[key] = queue[1:]
		s.mu.Unlock()

		s.dispatch(next)
	}
}

// senderID keys an update by its author; updates without one share key 0
func senderID(u tele.Update) int64 {
	var user *tele.User
	switch {
	case u.Message != nil:
		user = u.Message.Sender
	case u.EditedMessage != nil:
		user = u.EditedMessage.Sender
	case u.Callback != nil:
		user = u.Callback.Sender
	case u.Query != nil:
		user = u.Query.Sender
	}
	if user == nil {
		return 0
	}
	return user.ID
}
