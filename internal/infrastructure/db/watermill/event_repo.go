package watermilldb

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/ark-network/counter/internal/core/domain"
	log "github.com/sirupsen/logrus"
)

type eventHandler struct {
	topic   string
	handler func(events []domain.Event)
}

type eventRepository struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	ctx        context.Context
	cancel     context.CancelFunc

	handlers    map[string][]eventHandler // topic -> handlers
	consumed    map[string]struct{}       // topics with a running consumer
	handlerLock *sync.Mutex
	caches      map[string]*eventCache // topic -> cache
	cacheLock   *sync.Mutex
}

// NewEventRepository publishes and consumes events on an in-process go
// channel. An optional watermill.LoggerAdapter can be given as config.
func NewEventRepository(config ...interface{}) (domain.EventRepository, error) {
	var logger watermill.LoggerAdapter = watermill.NopLogger{}
	if len(config) > 0 && config[0] != nil {
		l, ok := config[0].(watermill.LoggerAdapter)
		if !ok {
			return nil, fmt.Errorf("invalid logger")
		}
		logger = l
	}

	// Publishing blocks until the consumer acks, so events of the same id
	// are handled in the order they are saved.
	pubsub := gochannel.NewGoChannel(gochannel.Config{
		BlockPublishUntilSubscriberAck: true,
	}, logger)
	return NewWatermillEventRepository(pubsub, pubsub), nil
}

func NewWatermillEventRepository(
	publisher message.Publisher, subscriber message.Subscriber,
) domain.EventRepository {
	ctx, cancel := context.WithCancel(context.Background())
	return &eventRepository{
		publisher:   publisher,
		subscriber:  subscriber,
		ctx:         ctx,
		cancel:      cancel,
		handlers:    make(map[string][]eventHandler),
		consumed:    make(map[string]struct{}),
		handlerLock: &sync.Mutex{},
		caches:      make(map[string]*eventCache),
		cacheLock:   &sync.Mutex{},
	}
}

func (e *eventRepository) ClearRegisteredHandlers(topics ...string) {
	e.handlerLock.Lock()
	defer e.handlerLock.Unlock()

	if len(topics) == 0 {
		e.handlers = make(map[string][]eventHandler)
		return
	}

	for _, topic := range topics {
		delete(e.handlers, topic)
	}
}

func (e *eventRepository) Close() {
	e.cancel()
	//nolint:errcheck
	e.publisher.Close()
	//nolint:errcheck
	e.subscriber.Close()
}

// RegisterEventsHandler starts consuming the topic the first time a handler
// is registered for it.
func (e *eventRepository) RegisterEventsHandler(topic string, handler func(events []domain.Event)) {
	e.handlerLock.Lock()
	defer e.handlerLock.Unlock()

	e.handlers[topic] = append(e.handlers[topic], eventHandler{
		topic:   topic,
		handler: handler,
	})

	if _, ok := e.consumed[topic]; ok {
		return
	}
	messages, err := e.subscriber.Subscribe(e.ctx, topic)
	if err != nil {
		log.WithError(err).Warnf("failed to subscribe to topic %s", topic)
		return
	}
	e.consumed[topic] = struct{}{}
	go e.consume(topic, messages)
}

func (e *eventRepository) Save(ctx context.Context, topic string, id string, events []domain.Event) error {
	watermillMessages, err := toWatermillMessages(id, events)
	if err != nil {
		return err
	}
	return e.publisher.Publish(topic, watermillMessages...)
}

func (e *eventRepository) consume(topic string, messages <-chan *message.Message) {
	cache := e.cacheOf(topic)

	for msg := range messages {
		event, err := toEvent(msg)
		if err != nil {
			log.WithError(err).Warnf("failed to decode event %s", msg.UUID)
			msg.Ack()
			continue
		}

		e.dispatch(cache, topic, msg.Metadata.Get("id"), event)
		msg.Ack()
	}
}

// dispatch hands over to the handlers every event of the current round of
// the account identified by id. Only the events of pending rounds are kept
// in cache.
func (e *eventRepository) dispatch(cache *eventCache, topic, id string, event domain.Event) {
	var events []domain.Event
	switch event.GetType() {
	case domain.EventTypeRoundInitiated:
		events = cache.reset(id, event)
	default:
		events = cache.add(id, event)
	}
	if noMoreEventsAfter(event.GetType()) {
		cache.remove(id)
	}

	e.handlerLock.Lock()
	for _, h := range e.handlers[topic] {
		go h.handler(events)
	}
	e.handlerLock.Unlock()
}

func (e *eventRepository) cacheOf(topic string) *eventCache {
	e.cacheLock.Lock()
	defer e.cacheLock.Unlock()

	if _, ok := e.caches[topic]; !ok {
		e.caches[topic] = newEventCache()
	}
	return e.caches[topic]
}

func toWatermillMessages(id string, events []domain.Event) ([]*message.Message, error) {
	watermillMessages := make([]*message.Message, 0, len(events))
	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			return nil, fmt.Errorf("failed to encode event: %s", err)
		}

		msg := message.NewMessage(watermill.NewUUID(), payload)
		msg.Metadata.Set("type", event.GetType().String())
		msg.Metadata.Set("id", id)
		watermillMessages = append(watermillMessages, msg)
	}

	return watermillMessages, nil
}

func toEvent(msg *message.Message) (domain.Event, error) {
	switch eventType := msg.Metadata.Get("type"); eventType {
	case domain.EventTypeAccountInitialized.String():
		var event domain.AccountInitialized
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			return nil, err
		}
		return event, nil
	case domain.EventTypeRoundInitiated.String():
		var event domain.RoundInitiated
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			return nil, err
		}
		return event, nil
	case domain.EventTypeRoundSettled.String():
		var event domain.RoundSettled
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			return nil, err
		}
		return event, nil
	default:
		return nil, fmt.Errorf("unknown event type %s", eventType)
	}
}

func noMoreEventsAfter(eventType domain.EventType) bool {
	return eventType == domain.EventTypeAccountInitialized ||
		eventType == domain.EventTypeRoundSettled
}
