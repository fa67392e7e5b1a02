package draw

import (
	"context"
	"sync"
)

// Channel fans draw events out to every subscriber of one tournament.
// Subscribers are called synchronously and must not call back into the
// publisher.
type Channel interface {
	Publish(ctx context.Context, ev Event) error
	Subscribe(fn func(Event)) (unsubscribe func())
}

// MemoryChannel is an in-process Channel.
type MemoryChannel struct {
	mu     sync.RWMutex
	nextID int
	subs   []subscriber
}

type subscriber struct {
	id int
	fn func(Event)
}

func NewMemoryChannel() *MemoryChannel {
	return &MemoryChannel{}
}

func (c *MemoryChannel) Publish(ctx context.Context, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.RLock()
	subs := append([]subscriber(nil), c.subs...)
	c.mu.RUnlock()

	for _, s := range subs {
		s.fn(ev)
	}
	return nil
}

func (c *MemoryChannel) Subscribe(fn func(Event)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	id := c.nextID
	c.subs = append(c.subs, subscriber{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			for i, s := range c.subs {
				if s.id == id {
					c.subs = append(c.subs[:i], c.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Subscribers reports how many listeners are attached.
func (c *MemoryChannel) Subscribers() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.subs)
}
