// Package events delivers the ledger's event lines, such as
// "Block mined: <hash>", to the websocket clients watching the node.
package events

import (
	"errors"
	"fmt"
	"sync"
)

// Set of errors returned by the feed.
var (
	ErrClosed            = errors.New("event feed is closed")
	ErrSubscribed        = errors.New("subscriber already registered")
	ErrUnknownSubscriber = errors.New("unknown subscriber")
)

// backlog is the number of lines held for a subscriber that is still
// writing an earlier line to its socket. Lines past the backlog are dropped
// for that subscriber only.
const backlog = 100

// Feed fans every published line out to the current subscribers. Once
// closed it accepts no new subscribers.
type Feed struct {
	mu     sync.RWMutex
	subs   map[string]chan string
	closed bool
}

// NewFeed constructs an open feed with no subscribers.
func NewFeed() *Feed {
	return &Feed{
		subs: make(map[string]chan string),
	}
}

// Subscribe registers the id, usually a request trace id, and returns the
// channel its lines arrive on. The channel is closed by Unsubscribe or Close.
func (f *Feed) Subscribe(id string) (<-chan string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, ErrClosed
	}

	if _, exists := f.subs[id]; exists {
		return nil, fmt.Errorf("%w: %q", ErrSubscribed, id)
	}

	ch := make(chan string, backlog)
	f.subs[id] = ch

	return ch, nil
}

// Unsubscribe removes the id and closes its channel.
func (f *Feed) Unsubscribe(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch, exists := f.subs[id]
	if !exists {
		return fmt.Errorf("%w: %q", ErrUnknownSubscriber, id)
	}

	delete(f.subs, id)
	close(ch)

	return nil
}

// Subscribers returns the number of registered subscribers.
func (f *Feed) Subscribers() int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return len(f.subs)
}

// Publish hands the line to every subscriber without waiting on any of them.
func (f *Feed) Publish(line string) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for _, ch := range f.subs {
		select {
		case ch <- line:
		default:
		}
	}
}

// Close closes every subscriber channel, which ends their websocket loops,
// and refuses later subscriptions.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	for id, ch := range f.subs {
		delete(f.subs, id)
		close(ch)
	}
}
