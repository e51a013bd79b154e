// Package playback reconciles notifications from every source into a single
// now playing Entry and fans it out to observers.
package playback

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/marcus-crane/tunestatus/artwork"
	"github.com/marcus-crane/tunestatus/backend"
	"github.com/marcus-crane/tunestatus/notify"
)

type Options struct {
	Adapters      backend.Set
	Artwork       *artwork.Cache
	Notifications <-chan notify.Notification

	// Ticks drives the playback clock. A one second ticker is used when
	// nil.
	Ticks <-chan time.Time

	// OnPublish hooks run on the reconciliation goroutine and must not
	// block.
	OnPublish []func(Entry)
}

type artworkResult struct {
	key    string
	source backend.Kind
	art    *artwork.Artwork
	err    error
}

type positionResult struct {
	generation uint64
	position   time.Duration
}

// Aggregator owns the live Entry. Only the goroutine running Run touches
// entry, active and generation; everything else talks to it through
// channels and reads the last published copy.
type Aggregator struct {
	adapters      backend.Set
	art           *artwork.Cache
	notifications <-chan notify.Notification
	ticks         <-chan time.Time
	onPublish     []func(Entry)

	entry      Entry
	generation uint64

	artworkResults  chan artworkResult
	positionResults chan positionResult
	requests        chan func(ctx context.Context)

	mu      sync.RWMutex
	current Entry
	subs    map[int]chan Entry
	nextSub int

	running chan struct{}
}

func New(opts Options) *Aggregator {
	if opts.Adapters == nil {
		opts.Adapters = backend.Set{backend.Generic: backend.NewGeneric()}
	}
	entry := NewEntry()
	return &Aggregator{
		adapters:        opts.Adapters,
		art:             opts.Artwork,
		notifications:   opts.Notifications,
		ticks:           opts.Ticks,
		onPublish:       opts.OnPublish,
		entry:           entry,
		current:         entry,
		artworkResults:  make(chan artworkResult),
		positionResults: make(chan positionResult),
		requests:        make(chan func(ctx context.Context)),
		subs:            map[int]chan Entry{},
		running:         make(chan struct{}),
	}
}

// Run processes inputs until ctx is cancelled.
func (a *Aggregator) Run(ctx context.Context) error {
	ticks := a.ticks
	if ticks == nil {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		ticks = ticker.C
	}

	a.publish()
	close(a.running)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n, ok := <-a.notifications:
			if !ok {
				a.notifications = nil
				continue
			}
			a.handleNotification(ctx, n)
		case <-ticks:
			a.handleTick()
		case r := <-a.artworkResults:
			a.applyArtwork(r)
		case r := <-a.positionResults:
			a.applyPosition(r)
		case fn := <-a.requests:
			fn(ctx)
		}
	}
}

// Running is closed once Run has published the initial entry.
func (a *Aggregator) Running() <-chan struct{} {
	return a.running
}

// do runs fn on the reconciliation goroutine and waits for it to finish.
func (a *Aggregator) do(ctx context.Context, fn func(ctx context.Context)) error {
	done := make(chan struct{})
	wrapped := func(ctx context.Context) {
		defer close(done)
		fn(ctx)
	}
	select {
	case a.requests <- wrapped:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Inject feeds a notification through the same path as the sources.
func (a *Aggregator) Inject(ctx context.Context, n notify.Notification) error {
	return a.do(ctx, func(ctx context.Context) {
		a.handleNotification(ctx, n)
	})
}

func (a *Aggregator) handleNotification(ctx context.Context, n notify.Notification) {
	a.generation++

	switched := n.Source != a.entry.Source
	if switched {
		a.entry.clearArtwork()
		a.entry.Source = n.Source
		slog.Info("Active backend changed", slog.String("backend", n.Source.String()))
	}

	name := valueOr(n.Name, a.entry.TrackName)
	artist := valueOr(n.Artist, a.entry.ArtistName)
	album := valueOr(n.Album, a.entry.AlbumName)
	incomingKey := TrackKey(name, artist, album)
	sameTrack := n.Name == nil || incomingKey == a.entry.TrackKey()

	if !sameTrack {
		a.entry.clearArtwork()
	}

	a.entry.TrackName = name
	a.entry.ArtistName = artist
	a.entry.AlbumName = album
	if playing, ok := n.IsPlaying(); ok {
		a.entry.IsPlaying = playing
	}
	if n.Duration != nil {
		a.entry.Duration = *n.Duration
	}

	adapter := a.adapters.For(n.Source)

	if n.Position != nil {
		a.entry.Position = *n.Position
	} else {
		if !sameTrack {
			a.entry.Position = 0
		}
		if n.Source != backend.Generic {
			a.pullPosition(ctx, adapter)
		}
	}

	// a different app playing the same track still needs its own cover
	needsArtwork := !sameTrack || (switched && !a.entry.HasArtwork())
	if needsArtwork && !n.ArtworkAbsent() && a.entry.HasTrack() {
		a.fetchArtwork(ctx, adapter)
	}

	a.publish()
}

func (a *Aggregator) handleTick() {
	if !a.entry.IsPlaying {
		return
	}
	a.entry.Position += time.Second
	a.publish()
}

func (a *Aggregator) pullPosition(ctx context.Context, adapter backend.Adapter) {
	generation := a.generation
	go func() {
		position := adapter.CurrentPosition(ctx)
		select {
		case a.positionResults <- positionResult{generation: generation, position: position}:
		case <-ctx.Done():
		}
	}()
}

func (a *Aggregator) applyPosition(r positionResult) {
	if r.generation != a.generation {
		slog.Debug("Discarding stale position")
		return
	}
	a.entry.Position = r.position
	a.publish()
}

func (a *Aggregator) fetchArtwork(ctx context.Context, adapter backend.Adapter) {
	if a.art == nil || adapter.Kind() == backend.Generic {
		return
	}
	key := a.entry.TrackKey()
	source := a.entry.Source
	go func() {
		art, err := a.art.Get(ctx, source.String()+":"+key, adapter.FetchArtwork)
		select {
		case a.artworkResults <- artworkResult{key: key, source: source, art: art, err: err}:
		case <-ctx.Done():
		}
	}()
}

func (a *Aggregator) applyArtwork(r artworkResult) {
	if r.key != a.entry.TrackKey() || r.source != a.entry.Source {
		slog.Debug("Discarding artwork for a previous track")
		return
	}
	if r.err != nil {
		if errors.Is(r.err, backend.ErrNoArtwork) {
			slog.Debug("Track has no artwork", slog.String("track", a.entry.TrackName))
		} else {
			slog.Warn("Failed to fetch artwork",
				slog.String("track", a.entry.TrackName),
				slog.String("error", r.err.Error()))
		}
		return
	}
	a.entry.setArtwork(r.art)
	a.publish()
}

func (a *Aggregator) publish() {
	a.entry.CapturedAt = time.Now()
	e := a.entry

	a.mu.Lock()
	a.current = e
	for _, ch := range a.subs {
		offer(ch, e)
	}
	a.mu.Unlock()

	for _, fn := range a.onPublish {
		fn(e)
	}
}

// Current returns the last published entry.
func (a *Aggregator) Current() Entry {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.current
}

// Subscribe returns a channel receiving every published entry. A slow
// reader loses intermediate entries but always sees the latest one.
// The current entry is delivered straight away.
func (a *Aggregator) Subscribe(buffer int) (<-chan Entry, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Entry, buffer)

	a.mu.Lock()
	id := a.nextSub
	a.nextSub++
	a.subs[id] = ch
	ch <- a.current
	a.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			a.mu.Lock()
			delete(a.subs, id)
			close(ch)
			a.mu.Unlock()
		})
	}
	return ch, cancel
}

// offer never blocks. When ch is full the oldest entry is dropped.
func offer(ch chan Entry, e Entry) {
	for {
		select {
		case ch <- e:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func valueOr(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return *v
}
