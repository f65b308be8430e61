package eventbus

import (
	"sync"
	"time"

	metrics "github.com/rcrowley/go-metrics"
	"github.com/sirupsen/logrus"
)

// Event you can subscribe to
type Event struct {
	Name string
	At   time.Time
	Args interface{}
}

// NOOPHandler drops events on the floor without taking action
var NOOPHandler = Handler(func(_ Event) error { return nil })

// EventHandler deals with handling events
type EventHandler interface {
	On(Event) error
}

// Handler wraps a function that will be called when an event is received.
// Errors produced by the function are reported to the bus error handler.
func Handler(on func(Event) error) EventHandler {
	return &funcHandler{on: on}
}

type funcHandler struct {
	on func(Event) error
}

func (h *funcHandler) On(evt Event) error { return h.on(evt) }

// EventPredicate for filtering events
type EventPredicate func(Event) bool

// Filtered composes an event handler with a filter
func Filtered(matches EventPredicate, next EventHandler) EventHandler {
	return &filteredHandler{matches: matches, next: next}
}

type filteredHandler struct {
	matches EventPredicate
	next    EventHandler
}

func (f *filteredHandler) On(evt Event) error {
	if !f.matches(evt) {
		return nil
	}
	return f.next.On(evt)
}

// EventBus does fanout to registered handlers
type EventBus interface {
	Close() error
	Publish(Event)
	Subscribe(...EventHandler)
	Unsubscribe(...EventHandler)
	Len() int
}

// New event bus with the specified logger
func New(log logrus.FieldLogger) EventBus {
	return NewWithTimeout(log, 100*time.Millisecond)
}

// NewWithTimeout creates a new eventbus with a timeout after which
// delivery to a slow subscriber is abandoned
func NewWithTimeout(log logrus.FieldLogger, timeout time.Duration) EventBus {
	if log == nil {
		log = logrus.New().WithFields(nil)
	}
	e := &defaultEventBus{
		channel: make(chan Event, 100),
		closing: make(chan chan struct{}),
		log:     log,
	}
	e.errorHandler = func(err error) { log.Errorln(err) }
	go e.dispatcherLoop(timeout)
	return e
}

type defaultEventBus struct {
	lock sync.RWMutex

	channel      chan Event
	subs         []*subscription
	closing      chan chan struct{}
	log          logrus.FieldLogger
	errorHandler func(error)
}

func newSubscription(handler EventHandler, onError func(error)) *subscription {
	sub := &subscription{
		handler:  handler,
		listener: make(chan Event),
		done:     make(chan struct{}),
		onError:  onError,
	}
	go sub.consume()
	return sub
}

type subscription struct {
	listener chan Event
	done     chan struct{}
	handler  EventHandler
	onError  func(error)
}

func (s *subscription) consume() {
	defer close(s.done)
	for evt := range s.listener {
		if err := s.handler.On(evt); err != nil {
			s.onError(err)
		}
	}
}

// Stop the subscription and wait until its handler saw every delivered event
func (s *subscription) Stop() {
	close(s.listener)
	<-s.done
}

func (s *subscription) Matches(handler EventHandler) bool {
	return s.handler == handler
}

func (e *defaultEventBus) dispatcherLoop(timeout time.Duration) {
	for {
		select {
		case evt := <-e.channel:
			e.deliver(evt, timeout)
		case closed := <-e.closing:
			// drain what was published before the close request
			for {
				select {
				case evt := <-e.channel:
					e.deliver(evt, timeout)
					continue
				default:
				}
				break
			}
			close(e.channel)
			e.lock.Lock()
			for _, sub := range e.subs {
				sub.Stop()
			}
			e.subs = nil
			e.lock.Unlock()
			closed <- struct{}{}
			e.log.Debugln("event bus closed")
			return
		}
	}
}

// deliver fans the event out to every subscription. Events are delivered
// one at a time so each subscriber observes them in publish order.
func (e *defaultEventBus) deliver(evt Event, timeout time.Duration) {
	timer := metrics.GetOrRegisterTimer("events.notify", metrics.DefaultRegistry)
	timer.Time(func() {
		e.lock.RLock()
		defer e.lock.RUnlock()

		if len(e.subs) == 0 {
			e.log.Debugln("there are no active listeners, skipping broadcast")
			return
		}

		var wg sync.WaitGroup
		wg.Add(len(e.subs))
		e.log.Debugf("notifying %d listeners", len(e.subs))
		for _, sub := range e.subs {
			go func(listener chan<- Event) {
				defer wg.Done()
				t := time.NewTimer(timeout)
				select {
				case listener <- evt:
					t.Stop()
				case <-t.C:
					e.log.Warnf("failed to send event %+v to listener within %v", evt, timeout)
				}
			}(sub.listener)
		}
		wg.Wait()
	})
}

// Publish an event to all interested subscribers
func (e *defaultEventBus) Publish(evt Event) {
	e.channel <- evt
}

// Subscribe to events published on the bus
func (e *defaultEventBus) Subscribe(handlers ...EventHandler) {
	e.lock.Lock()
	for _, handler := range handlers {
		e.subs = append(e.subs, newSubscription(handler, e.errorHandler))
	}
	e.lock.Unlock()
}

func (e *defaultEventBus) Unsubscribe(handlers ...EventHandler) {
	e.lock.Lock()
	for _, h := range handlers {
		for i, sub := range e.subs {
			if sub.Matches(h) {
				sub.Stop()
				e.subs = append(e.subs[:i], e.subs[i+1:]...)
				break
			}
		}
	}
	e.lock.Unlock()
}

// Close drains in-flight events, stops every subscription and waits for
// their handlers to finish. After Close returns no handler runs anymore.
func (e *defaultEventBus) Close() error {
	ch := make(chan struct{})
	e.closing <- ch
	<-ch
	close(e.closing)
	return nil
}

func (e *defaultEventBus) Len() int {
	e.lock.RLock()
	sz := len(e.subs)
	e.lock.RUnlock()
	return sz
}
