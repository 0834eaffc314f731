package watermilldb

import (
	"sync"

	"github.com/ark-network/counter/internal/core/domain"
)

type eventCache struct {
	cache map[string][]domain.Event // id -> events
	lock  *sync.Mutex
}

func newEventCache() *eventCache {
	return &eventCache{
		cache: make(map[string][]domain.Event),
		lock:  &sync.Mutex{},
	}
}

func (c *eventCache) add(id string, event domain.Event) []domain.Event {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.cache[id] = append(c.cache[id], event)
	return append([]domain.Event{}, c.cache[id]...)
}

// reset drops whatever is cached for id and starts over from event.
func (c *eventCache) reset(id string, event domain.Event) []domain.Event {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.cache[id] = []domain.Event{event}
	return []domain.Event{event}
}

func (c *eventCache) remove(id string) {
	c.lock.Lock()
	defer c.lock.Unlock()

	delete(c.cache, id)
}

func (c *eventCache) size() int {
	c.lock.Lock()
	defer c.lock.Unlock()

	return len(c.cache)
}

func (c *eventCache) get(id string) []domain.Event {
	c.lock.Lock()
	defer c.lock.Unlock()

	return append([]domain.Event{}, c.cache[id]...)
}
