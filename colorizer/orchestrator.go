package colorizer

import (
	"context"
	"sync"

	"github.com/flanksource/commons/logger"

	"github.com/flanksource/colorize/analysis"
	"github.com/flanksource/colorize/config"
	"github.com/flanksource/colorize/internal/cache"
	"github.com/flanksource/colorize/internal/schedule"
	"github.com/flanksource/colorize/models"
	"github.com/flanksource/colorize/renderer"
)

// Orchestrator drives colorization for the set of visible documents. It
// decides when to reuse the annotation cache, when to recompute and when to
// invalidate, routing every trigger through the coalescing primitives and
// every state mutation through the serial queue.
//
// Per-document state and the cache are touched only from queue tasks: the
// queue's one-task-at-a-time contract is the serialization discipline, so
// a save event and an activation for the same document can never race on
// its annotation map.
type Orchestrator struct {
	queue      *schedule.SerialQueue
	cache      *cache.AnnotationCache
	extractor  analysis.Extractor
	renderer   renderer.Renderer
	clock      schedule.Clock
	reconciler *Reconciler

	ctx    context.Context
	cancel context.CancelFunc

	// docs is confined to queue tasks.
	docs map[models.DocKey]*docState

	// triggers guards only the coalescing tables and the active config,
	// never annotation state.
	triggers struct {
		sync.Mutex
		cfg        *config.Config
		extract    map[models.DocKey]*schedule.RateLimiter
		colorize   map[models.DocKey]*schedule.RateLimiter
		selection  map[models.DocKey]*schedule.Debouncer
		decoration map[models.DocKey]*schedule.Debouncer
	}

	handlers map[EventKind]func(Event)
}

type docState struct {
	state   State
	dirty   bool
	content string
	cursors []int
	live    models.LineAnnotations
	lastErr error
}

// NewOrchestrator wires the coordination core together. All collaborators
// are injected; nothing here is process-global.
func NewOrchestrator(cfg *config.Config, extractor analysis.Extractor, rend renderer.Renderer, clock schedule.Clock) *Orchestrator {
	ctx, cancel := context.WithCancel(context.Background())
	o := &Orchestrator{
		queue:      schedule.NewSerialQueue(),
		cache:      cache.NewAnnotationCache(cfg.CacheCapacity),
		extractor:  extractor,
		renderer:   rend,
		clock:      clock,
		reconciler: NewReconciler(),
		ctx:        ctx,
		cancel:     cancel,
		docs:       make(map[models.DocKey]*docState),
	}
	o.triggers.cfg = cfg
	o.resetTriggersLocked()

	// The full control surface: one external event kind, one handler.
	o.handlers = map[EventKind]func(Event){
		EventOpened:         o.handleVisible,
		EventActivated:      o.handleVisible,
		EventEdited:         o.handleEdited,
		EventSaved:          o.handleSaved,
		EventSelectionMoved: o.handleSelectionMoved,
		EventHidden:         o.handleHidden,
		EventClosed:         o.handleClosed,
		EventConfigChanged:  o.handleConfigChanged,
	}
	return o
}

// HandleEvent dispatches one external trigger. Safe to call from any
// goroutine; heavy work is coalesced and serialized internally.
func (o *Orchestrator) HandleEvent(ev Event) {
	handler, ok := o.handlers[ev.Kind]
	if !ok {
		logger.Warnf("no handler for event kind %s", ev.Kind)
		return
	}
	handler(ev)
}

// Status reports the document's lifecycle state and last extraction error.
func (o *Orchestrator) Status(doc models.DocKey) Status {
	var st Status
	o.sync(func() {
		if ds, ok := o.docs[doc]; ok {
			st = Status{State: ds.state, Err: ds.lastErr}
		}
	})
	return st
}

// CacheStats exposes annotation cache occupancy, mainly for the CLI.
func (o *Orchestrator) CacheStats() cache.Stats {
	return o.cache.Stats()
}

// Flush blocks until every task pushed before it has completed.
func (o *Orchestrator) Flush() {
	o.sync(func() {})
}

// Close cancels pending triggers, drains the queue and stops the worker.
func (o *Orchestrator) Close() {
	o.cancel()
	o.triggers.Lock()
	o.cancelTriggersLocked()
	o.triggers.Unlock()
	o.queue.Close()
}

// --- event handlers ---

// handleVisible covers open and re-activation: colorize through the
// colorize rate limiter so focus flapping cannot recompute unboundedly.
func (o *Orchestrator) handleVisible(ev Event) {
	o.push(func() {
		ds := o.ensureDoc(ev.Doc)
		if ev.Content != "" {
			ds.content = ev.Content
		}
	})
	o.colorizeLimiter(ev.Doc).Do(func() {
		o.push(func() { o.colorize(ev.Doc) })
	})
}

// handleEdited records the new content, marks the document dirty,
// invalidates the dirty-partition entry the edit just outdated and
// schedules recomputation through the extraction rate limiter. The saved
// partition's entry stays in place; a dirty document never reads it.
func (o *Orchestrator) handleEdited(ev Event) {
	o.push(func() {
		ds := o.ensureDoc(ev.Doc)
		ds.content = ev.Content
		ds.dirty = true
		o.cache.Invalidate(ev.Doc, true)
	})
	o.extractLimiter(ev.Doc).Do(func() {
		o.push(func() { o.colorize(ev.Doc) })
	})
}

// handleSaved flips the document to the saved partition. A normal editor
// save carries the content already colorized while dirty, so the live map
// is written straight into the saved partition. A save whose content
// differs from what is held (the file changed externally) invalidates both
// partitions and recomputes.
func (o *Orchestrator) handleSaved(ev Event) {
	o.push(func() {
		ds := o.ensureDoc(ev.Doc)
		if ev.Content != "" && ev.Content != ds.content {
			ds.content = ev.Content
			ds.live = nil
			ds.state = Uncolorized
			o.cache.Delete(ev.Doc)
		}
		ds.dirty = false
		if ds.live != nil {
			o.cache.Put(ev.Doc, false, ds.live)
			ds.state = Displayed
			ds.lastErr = nil
			o.paint(ev.Doc, ds)
		}
	})
	o.colorizeLimiter(ev.Doc).Do(func() {
		o.push(func() {
			if ds, ok := o.docs[ev.Doc]; ok && ds.live == nil {
				o.colorize(ev.Doc)
			}
		})
	})
}

// handleSelectionMoved debounces caret movement, then repaints with the new
// cursor lines through the decoration debouncer. No recomputation.
func (o *Orchestrator) handleSelectionMoved(ev Event) {
	o.selectionDebouncer(ev.Doc).Trigger(func() {
		o.push(func() {
			ds, ok := o.docs[ev.Doc]
			if !ok {
				return
			}
			ds.cursors = ev.CursorLines
		})
		o.decorationDebouncer(ev.Doc).Trigger(func() {
			o.push(func() { o.repaint(ev.Doc) })
		})
	})
}

// handleHidden persists the live map into the cache, keyed by the current
// dirty flag, before releasing it. Returning to the document is then a
// cache hit.
func (o *Orchestrator) handleHidden(ev Event) {
	o.push(func() {
		ds, ok := o.docs[ev.Doc]
		if !ok || ds.live == nil {
			return
		}
		o.cache.Put(ev.Doc, ds.dirty, ds.live)
		ds.live = nil
		ds.state = Uncolorized
	})
}

// handleClosed drops every trace of the document.
func (o *Orchestrator) handleClosed(ev Event) {
	o.cancelDocTriggers(ev.Doc)
	o.push(func() {
		o.cache.Delete(ev.Doc)
		delete(o.docs, ev.Doc)
		if err := o.renderer.Unpaint(ev.Doc); err != nil {
			logger.Warnf("failed to unpaint %s: %v", ev.Doc, err)
		}
	})
}

// handleConfigChanged swaps in the new intervals and invalidates the whole
// cache. The clear runs as a queue task so it is atomic with respect to any
// in-flight colorization.
func (o *Orchestrator) handleConfigChanged(ev Event) {
	if ev.Config == nil {
		return
	}
	o.triggers.Lock()
	o.cancelTriggersLocked()
	o.triggers.cfg = ev.Config
	o.resetTriggersLocked()
	o.triggers.Unlock()

	o.push(func() {
		o.cache.Clear()
		for doc, ds := range o.docs {
			if ds.state == Displayed {
				o.colorize(doc)
			}
		}
	})
}

// --- queue tasks (single-writer context) ---

// colorize is the Uncolorized/Displayed -> Computing -> Displayed
// transition. It consults the cache first; extraction runs only on a miss,
// and a failed extraction never poisons the cache.
func (o *Orchestrator) colorize(doc models.DocKey) {
	ds, ok := o.docs[doc]
	if !ok {
		return
	}

	if cached, ok := o.lookupCache(doc, ds.dirty); ok {
		ds.live = cached
		ds.state = Displayed
		ds.lastErr = nil
		logger.Debugf("%s colorized from cache", doc)
		o.paint(doc, ds)
		return
	}

	ds.state = Computing
	annotations, err := o.extractor.Extract(o.ctx, doc, ds.content, analysis.LineRange{})
	if err != nil {
		// Downgrade to a status update; prior cache and annotations stay
		// untouched.
		ds.state = Uncolorized
		ds.lastErr = err
		logger.Warnf("extraction failed for %s: %v", doc, err)
		return
	}

	// Extraction covered the whole document, so the previous live map is
	// superseded wholesale. Merging into it would keep annotations whose
	// ranges no longer exist in the new content live forever.
	next := models.NewLineAnnotations()
	o.reconciler.Merge(annotations, next)
	o.reconciler.Deduplicate(next)
	o.reconciler.Prune(next)
	ds.live = next
	o.cache.Put(doc, ds.dirty, ds.live)
	ds.state = Displayed
	ds.lastErr = nil
	o.paint(doc, ds)
}

// lookupCache checks the partition for the document's current dirty flag.
// For a saved document the dirty partition is consulted as a fallback:
// right after a save the content is identical, so the dirty entry is still
// accurate. The reverse lookup never happens; a freshly dirtied buffer must
// not show stale saved annotations.
func (o *Orchestrator) lookupCache(doc models.DocKey, dirty bool) (models.LineAnnotations, bool) {
	if dirty {
		return o.cache.Get(doc, true)
	}
	if m, ok := o.cache.Get(doc, false); ok {
		return m, true
	}
	return o.cache.Get(doc, true)
}

func (o *Orchestrator) repaint(doc models.DocKey) {
	if ds, ok := o.docs[doc]; ok && ds.state == Displayed {
		o.paint(doc, ds)
	}
}

func (o *Orchestrator) paint(doc models.DocKey, ds *docState) {
	if err := o.renderer.Paint(doc, ds.live, ds.cursors); err != nil {
		logger.Warnf("failed to paint %s: %v", doc, err)
	}
}

func (o *Orchestrator) ensureDoc(doc models.DocKey) *docState {
	ds, ok := o.docs[doc]
	if !ok {
		ds = &docState{state: Uncolorized}
		o.docs[doc] = ds
	}
	return ds
}

// --- plumbing ---

// push submits a state-mutating function as a queue task. Dropped silently
// after Close; there is nothing left to mutate then.
func (o *Orchestrator) push(fn func()) {
	err := o.queue.Push(func(done func(error)) {
		fn()
		done(nil)
	})
	if err != nil {
		logger.Debugf("event dropped: %v", err)
	}
}

// sync runs fn on the queue and waits for it.
func (o *Orchestrator) sync(fn func()) {
	completed := make(chan struct{})
	err := o.queue.Push(func(done func(error)) {
		fn()
		close(completed)
		done(nil)
	})
	if err != nil {
		return
	}
	<-completed
}

func (o *Orchestrator) resetTriggersLocked() {
	o.triggers.extract = make(map[models.DocKey]*schedule.RateLimiter)
	o.triggers.colorize = make(map[models.DocKey]*schedule.RateLimiter)
	o.triggers.selection = make(map[models.DocKey]*schedule.Debouncer)
	o.triggers.decoration = make(map[models.DocKey]*schedule.Debouncer)
}

func (o *Orchestrator) cancelTriggersLocked() {
	for _, l := range o.triggers.extract {
		l.Cancel()
	}
	for _, l := range o.triggers.colorize {
		l.Cancel()
	}
	for _, d := range o.triggers.selection {
		d.Stop()
	}
	for _, d := range o.triggers.decoration {
		d.Stop()
	}
}

func (o *Orchestrator) cancelDocTriggers(doc models.DocKey) {
	o.triggers.Lock()
	defer o.triggers.Unlock()
	if l, ok := o.triggers.extract[doc]; ok {
		l.Cancel()
		delete(o.triggers.extract, doc)
	}
	if l, ok := o.triggers.colorize[doc]; ok {
		l.Cancel()
		delete(o.triggers.colorize, doc)
	}
	if d, ok := o.triggers.selection[doc]; ok {
		d.Stop()
		delete(o.triggers.selection, doc)
	}
	if d, ok := o.triggers.decoration[doc]; ok {
		d.Stop()
		delete(o.triggers.decoration, doc)
	}
}

func (o *Orchestrator) extractLimiter(doc models.DocKey) *schedule.RateLimiter {
	o.triggers.Lock()
	defer o.triggers.Unlock()
	l, ok := o.triggers.extract[doc]
	if !ok {
		l = schedule.NewRateLimiter(o.clock, o.triggers.cfg.ExtractDelay())
		o.triggers.extract[doc] = l
	}
	return l
}

func (o *Orchestrator) colorizeLimiter(doc models.DocKey) *schedule.RateLimiter {
	o.triggers.Lock()
	defer o.triggers.Unlock()
	l, ok := o.triggers.colorize[doc]
	if !ok {
		l = schedule.NewRateLimiter(o.clock, o.triggers.cfg.ColorizeDelay())
		o.triggers.colorize[doc] = l
	}
	return l
}

func (o *Orchestrator) selectionDebouncer(doc models.DocKey) *schedule.Debouncer {
	o.triggers.Lock()
	defer o.triggers.Unlock()
	d, ok := o.triggers.selection[doc]
	if !ok {
		d = schedule.NewDebouncer(o.clock, o.triggers.cfg.SelectionDelay())
		o.triggers.selection[doc] = d
	}
	return d
}

func (o *Orchestrator) decorationDebouncer(doc models.DocKey) *schedule.Debouncer {
	o.triggers.Lock()
	defer o.triggers.Unlock()
	d, ok := o.triggers.decoration[doc]
	if !ok {
		d = schedule.NewDebouncer(o.clock, o.triggers.cfg.DecorationDelay())
		o.triggers.decoration[doc] = d
	}
	return d
}
