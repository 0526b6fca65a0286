package blockchain

import (
	"sync"

	"github.com/0xPolygon/polygon-zenith/types"
)

type Subscription interface {
	GetEventCh() chan *Event
	GetEvent() *Event
	Close()
}

type subscription struct {
	updateCh  chan struct{}
	closeCh   chan struct{}
	closeOnce sync.Once
	elem      *eventElem
}

// GetEventCh streams the events of the subscription until it is closed
func (s *subscription) GetEventCh() chan *Event {
	eventCh := make(chan *Event)

	go func() {
		defer close(eventCh)

		for {
			evnt := s.GetEvent()
			if evnt == nil {
				return
			}

			select {
			case eventCh <- evnt:
			case <-s.closeCh:
				return
			}
		}
	}()

	return eventCh
}

// GetEvent blocks until the next event, it returns nil once closed
func (s *subscription) GetEvent() *Event {
	for {
		if next := s.elem.getNext(); next != nil {
			s.elem = next

			return next.event
		}

		// wait for an update
		select {
		case <-s.updateCh:
			continue
		case <-s.closeCh:
			return nil
		}
	}
}

func (s *subscription) Close() {
	s.closeOnce.Do(func() {
		close(s.closeCh)
	})
}

// Event is a change of the chain head
type Event struct {
	// NewChain holds the headers appended to the chain
	NewChain []*types.Header
}

func (e *Event) AddNewHeader(h *types.Header) {
	e.NewChain = append(e.NewChain, h.Copy())
}

type eventElem struct {
	lock  sync.RWMutex
	event *Event
	next  *eventElem
}

func (e *eventElem) getNext() *eventElem {
	e.lock.RLock()
	defer e.lock.RUnlock()

	return e.next
}

type eventStream struct {
	lock sync.Mutex
	head *eventElem

	// channel to notify updates
	updateCh []chan struct{}
}

func newEventStream() *eventStream {
	return &eventStream{head: &eventElem{}}
}

func (e *eventStream) subscribe() *subscription {
	head, updateCh := e.Head()

	return &subscription{
		elem:     head,
		updateCh: updateCh,
		closeCh:  make(chan struct{}),
	}
}

// Head returns the latest element and registers an update channel
func (e *eventStream) Head() (*eventElem, chan struct{}) {
	e.lock.Lock()
	defer e.lock.Unlock()

	// buffered so a notification sent between a check and a wait is not lost
	ch := make(chan struct{}, 1)
	e.updateCh = append(e.updateCh, ch)

	return e.head, ch
}

func (e *eventStream) push(event *Event) {
	e.lock.Lock()
	defer e.lock.Unlock()

	newHead := &eventElem{
		event: event,
	}

	e.head.lock.Lock()
	e.head.next = newHead
	e.head.lock.Unlock()

	e.head = newHead

	// notify the subscriptors
	for _, update := range e.updateCh {
		select {
		case update <- struct{}{}:
		default:
		}
	}
}
