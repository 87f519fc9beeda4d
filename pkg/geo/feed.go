package geo

import (
	"context"
	"sync"
	"sync/atomic"
)

type feedEvent struct {
	position *Position
	err      error
}

type feedWatch struct {
	cancel context.CancelFunc
}

// FeedWatcher is a Watcher fed programmatically. Device integrations push
// fixes and errors into it; it fans them out to every active watch.
type FeedWatcher struct {
	mu      sync.Mutex
	nextID  int64
	watches map[WatchID]*feedWatch
	feeds   map[WatchID]chan feedEvent
}

// NewFeedWatcher constructs an empty feed-driven watcher.
func NewFeedWatcher() *FeedWatcher {
	return &FeedWatcher{
		watches: make(map[WatchID]*feedWatch),
		feeds:   make(map[WatchID]chan feedEvent),
	}
}

func (w *FeedWatcher) WatchPosition(ctx context.Context, _ WatchOptions, onPosition func(Position), onError func(error)) (WatchID, error) {
	id := WatchID(atomic.AddInt64(&w.nextID, 1))
	watchCtx, cancel := context.WithCancel(ctx)
	feed := make(chan feedEvent, 16)

	w.mu.Lock()
	w.watches[id] = &feedWatch{cancel: cancel}
	w.feeds[id] = feed
	w.mu.Unlock()

	go func() {
		defer w.drop(id)
		for {
			select {
			case <-watchCtx.Done():
				return
			case event := <-feed:
				if event.err != nil {
					if onError != nil {
						onError(event.err)
					}
					continue
				}
				if event.position != nil && onPosition != nil {
					onPosition(*event.position)
				}
			}
		}
	}()

	return id, nil
}

func (w *FeedWatcher) ClearWatch(id WatchID) {
	w.mu.Lock()
	watch, ok := w.watches[id]
	w.mu.Unlock()
	if ok {
		watch.cancel()
	}
}

// Push delivers a fix to every active watch.
func (w *FeedWatcher) Push(position Position) {
	w.broadcast(feedEvent{position: &position})
}

// PushError delivers a watch error to every active watch.
func (w *FeedWatcher) PushError(err error) {
	w.broadcast(feedEvent{err: err})
}

// ActiveWatches reports how many watches are currently running.
func (w *FeedWatcher) ActiveWatches() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.watches)
}

func (w *FeedWatcher) broadcast(event feedEvent) {
	w.mu.Lock()
	feeds := make([]chan feedEvent, 0, len(w.feeds))
	for _, feed := range w.feeds {
		feeds = append(feeds, feed)
	}
	w.mu.Unlock()

	for _, feed := range feeds {
		select {
		case feed <- event:
		default:
		}
	}
}

func (w *FeedWatcher) drop(id WatchID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.watches, id)
	delete(w.feeds, id)
}
