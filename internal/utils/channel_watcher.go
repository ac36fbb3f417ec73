package utils

import (
	"github.com/puzpuzpuz/xsync/v3"
)

// ChannelWatcher routes values arriving on a channel to the one-shot
// subscriber registered under the value's key. Used to match asynchronous
// replies back to the caller that issued the request.
type ChannelWatcher[T any] struct {
	ch          chan T
	subscribers *xsync.MapOf[string, func(T)]
}

func NewChannelWatcher[T any](ch chan T) *ChannelWatcher[T] {
	return &ChannelWatcher[T]{
		ch:          ch,
		subscribers: xsync.NewMapOf[string, func(T)](),
	}
}

func (cw *ChannelWatcher[T]) WatchChannel(key func(T) string) {
	for {
		response, more := <-cw.ch
		if !more {
			return
		}
		if subscriber, loaded := cw.subscribers.LoadAndDelete(key(response)); loaded {
			subscriber(response)
		}
	}
}

func (cw *ChannelWatcher[T]) Subscribe(id string, subscriber func(T)) {
	cw.subscribers.Store(id, subscriber)
}

// Unsubscribe drops a subscriber that gave up waiting, so a late reply is
// discarded instead of being sent to a closed channel.
func (cw *ChannelWatcher[T]) Unsubscribe(id string) {
	cw.subscribers.Delete(id)
}
