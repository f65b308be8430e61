package handler

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-openapi/strfmt"
	multierror "github.com/hashicorp/go-multierror"
	"github.com/segmentio/ksuid"
	"github.com/sirupsen/logrus"

	"github.com/jperocho/salh"
	"github.com/jperocho/salh/chain"
	"github.com/jperocho/salh/eventbus"
)

// Response is the platform shape conventionally returned from a
// serverless handler: the envelope status as statusCode and the envelope
// data serialized into the body.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// A Handler encapsulates a single invocation: it owns the event bus for
// its lifecycle events, runs the chain, and renders the envelope into
// the platform response shape. A handler is used for exactly one Invoke.
type Handler interface {
	ID() string

	// Invoke runs the steps against this invocation's event and context.
	// The error is non-nil whenever the chain failed; the response then
	// carries the error envelope.
	Invoke(ctx context.Context, steps ...chain.Step) (Response, error)

	// Report of the finished invocation
	Report() Report

	Subscribe(...eventbus.EventHandler) Handler
	Unsubscribe(...eventbus.EventHandler) Handler
}

// Opt represents an option for a handler
type Opt func(*invocation)

// LogWith is used to log warning and error messages in a handler.
//
// There are very few usages of this, but when an error is seen and not
// returned, like a failed bus close, we will use this logger to report
// it. The default is to log nothing.
func LogWith(log salh.Logger) Opt {
	return func(h *invocation) { h.log = log }
}

// PublishTo replaces the default event bus of the handler
func PublishTo(bus eventbus.EventBus) Opt {
	return func(h *invocation) { h.bus = bus }
}

// New creates a handler for a single event and invocation context pair
func New(event, invocationContext interface{}, opts ...Opt) Handler {
	id := ksuid.New()
	h := &invocation{
		id:     id,
		event:  event,
		ictx:   invocationContext,
		log:    salh.NopLogger,
		states: newStateStore(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.bus == nil {
		h.bus = eventbus.New(logrus.StandardLogger().WithField("invocation", id.String()))
	}
	h.bus.Subscribe(eventbus.Handler(h.trackStepStates))
	return h
}

type invocation struct {
	id     ksuid.KSUID
	event  interface{}
	ictx   interface{}
	bus    eventbus.EventBus
	log    salh.Logger
	states *stateStore
	report Report
}

func (h *invocation) ID() string {
	return h.id.String()
}

func (h *invocation) Invoke(ctx context.Context, steps ...chain.Step) (Response, error) {
	h.report.ID = h.id.String()
	h.report.StartedAt = strfmt.DateTime(time.Now())

	exec := chain.New(h.event, h.ictx,
		chain.PublishTo(h.bus),
		chain.LogWith(h.log),
	)
	envelope, err := exec.Run(ctx, steps...)
	h.report.FinishedAt = strfmt.DateTime(time.Now())

	if err != nil {
		envelope = chain.StepErr(err).Envelope()
	}
	h.report.Status = envelope.Status

	body, merr := json.Marshal(envelope.Data)
	if merr != nil {
		err = multierror.Append(err, merr).ErrorOrNil()
		body = []byte("{}")
	}

	// drains in-flight lifecycle events so the report is complete
	if cerr := h.bus.Close(); cerr != nil {
		h.log.Warnf("failed to close eventbus: %v", cerr)
	}
	h.report.Steps = h.states.Infos()

	return Response{StatusCode: envelope.Status, Body: string(body)}, err
}

func (h *invocation) Report() Report {
	return h.report
}

func (h *invocation) Subscribe(handlers ...eventbus.EventHandler) Handler {
	h.bus.Subscribe(handlers...)
	return h
}

func (h *invocation) Unsubscribe(handlers ...eventbus.EventHandler) Handler {
	h.bus.Unsubscribe(handlers...)
	return h
}

func (h *invocation) trackStepStates(evt eventbus.Event) error {
	switch evt.Name {
	case chain.TopicLifecycle:
		if lce, ok := evt.Args.(chain.LifecycleEvent); ok {
			h.states.AddLifecycleEvent(lce)
		}
	case chain.TopicRetry:
		if re, ok := evt.Args.(chain.RetryEvent); ok {
			h.states.AddRetryEvent(re)
		}
	}
	return nil
}

// Report summarizes a completed invocation
type Report struct {
	ID         string          `json:"id"`
	StartedAt  strfmt.DateTime `json:"startedAt"`
	FinishedAt strfmt.DateTime `json:"finishedAt"`
	Status     int             `json:"status"`
	Steps      []StepInfo      `json:"steps,omitempty"`
}

// StepInfo contains the last known state of a step
type StepInfo struct {
	Name    string      `json:"name"`
	State   chain.State `json:"state"`
	Reason  string      `json:"reason,omitempty"`
	Retries int         `json:"retries,omitempty"`
}

type stateStore struct {
	m     sync.RWMutex
	order []string
	infos map[string]StepInfo
}

func newStateStore() *stateStore {
	return &stateStore{infos: make(map[string]StepInfo)}
}

func (s *stateStore) AddLifecycleEvent(evt chain.LifecycleEvent) {
	s.m.Lock()
	info := s.get(evt.Name)
	info.State = evt.State
	if evt.Reason != nil {
		info.Reason = evt.Reason.Error()
	}
	s.infos[evt.Name] = info
	s.m.Unlock()
}

func (s *stateStore) AddRetryEvent(evt chain.RetryEvent) {
	s.m.Lock()
	info := s.get(evt.Name)
	info.Retries++
	s.infos[evt.Name] = info
	s.m.Unlock()
}

func (s *stateStore) get(name string) StepInfo {
	info, ok := s.infos[name]
	if !ok {
		info = StepInfo{Name: name, State: chain.StateWaiting}
		s.order = append(s.order, name)
	}
	return info
}

// Infos lists the tracked steps in the order they were first seen
func (s *stateStore) Infos() []StepInfo {
	s.m.RLock()
	result := make([]StepInfo, 0, len(s.order))
	for _, name := range s.order {
		result = append(result, s.infos[name])
	}
	s.m.RUnlock()
	return result
}
