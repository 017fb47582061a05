package scene

import (
	"fmt"
	"io"
	"slices"
	"sort"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/chartkit/pkg/data"
	"github.com/matzehuels/chartkit/pkg/errors"
	"github.com/matzehuels/chartkit/pkg/observability"
)

// ElementID identifies a live element for as long as it exists. IDs are never
// reused, even across reconcilers.
type ElementID uint64

var lastID atomic.Uint64

func newID() ElementID { return ElementID(lastID.Add(1)) }

// Snapshot is a read-only view of an element at the last applied frame.
type Snapshot struct {
	ID      ElementID
	Key     string
	Kind    Kind
	Attrs   Attrs
	Datum   data.Point
	Order   int
	Exiting bool
}

// Drawable receives element changes as frames are applied. A retained
// surface implements it.
type Drawable interface {
	Draw(layer string, s Snapshot)
	Erase(layer string, id ElementID)
}

// element is the persistent visual entity behind a key.
type element struct {
	id      ElementID
	key     string
	kind    Kind
	attrs   Attrs // as last drawn
	target  Attrs // where the element is heading (or rests)
	datum   data.Point
	order   int
	exiting bool
	tr      *transition
}

func (e *element) snapshot() Snapshot {
	return Snapshot{
		ID:      e.id,
		Key:     e.key,
		Kind:    e.kind,
		Attrs:   e.attrs.Clone(),
		Datum:   e.datum,
		Order:   e.order,
		Exiting: e.exiting,
	}
}

// current returns the element's attributes at now, following any in-flight
// transition.
func (e *element) current(now time.Time) Attrs {
	if e.tr == nil {
		return e.attrs.Clone()
	}
	a, _ := e.tr.at(now)
	return a
}

// Diff reports how a pass partitioned the keys.
//
// Entering and Persisting follow the primitive sequence; Exiting is sorted
// ascending. Unchanged is the subset of Persisting whose attributes did not
// change and had no transition in flight.
type Diff struct {
	Entering   []string
	Persisting []string
	Unchanged  []string
	Exiting    []string
}

// Empty reports whether the pass changed nothing.
func (d Diff) Empty() bool {
	return len(d.Entering) == 0 && len(d.Exiting) == 0 && len(d.Persisting) == len(d.Unchanged)
}

func (d Diff) String() string {
	return fmt.Sprintf("entering=%d persisting=%d unchanged=%d exiting=%d",
		len(d.Entering), len(d.Persisting), len(d.Unchanged), len(d.Exiting))
}

// Options configures a Reconciler.
type Options struct {
	// Layer names the group of elements on the Drawable. Charts keep data
	// marks and guides in separate layers so their keys never collide.
	Layer string

	// Timeline schedules every transition. The zero value applies changes
	// immediately.
	Timeline Timeline

	// Logger receives per-pass debug output. Nil discards.
	Logger *log.Logger
}

// Reconciler keeps a persistent keyed scene in step with successive
// primitive sequences. It is not safe for concurrent use.
type Reconciler struct {
	layer    string
	timeline Timeline
	target   Drawable
	logger   *log.Logger

	live    map[string]*element
	exiting map[string]*element
}

// NewReconciler returns an empty scene drawing onto target. A nil target
// keeps the scene headless.
func NewReconciler(target Drawable, opts Options) *Reconciler {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Reconciler{
		layer:    opts.Layer,
		timeline: opts.Timeline,
		target:   target,
		logger:   opts.Logger,
		live:     make(map[string]*element),
		exiting:  make(map[string]*element),
	}
}

// SetTimeline replaces the timeline used by later passes. Transitions already
// in flight keep their schedule.
func (r *Reconciler) SetTimeline(tl Timeline) { r.timeline = tl }

// Reconcile brings the scene in line with prims at time now.
//
// New keys enter from their Enter attributes, persisting keys transition
// from wherever they currently are, and vanished keys transition to their
// Exit attributes and are removed once that completes. A key that returns
// while exiting revives its element and counts as entering.
//
// A duplicate key rejects the whole pass with a DUPLICATE_KEY error and the
// scene is left exactly as it was.
func (r *Reconciler) Reconcile(prims []Primitive, now time.Time) (Diff, error) {
	start := time.Now()

	if err := CheckKeys(prims); err != nil {
		observability.Reconcile().OnReconcile(r.layer, 0, 0, 0, time.Since(start), err)
		return Diff{}, err
	}

	var d Diff
	live := make(map[string]*element, len(prims))
	exiting := make(map[string]*element, len(r.exiting))
	for k, el := range r.exiting {
		exiting[k] = el
	}

	for i, p := range prims {
		el, wasLive := r.live[p.Key]
		switch {
		case wasLive:
			d.Persisting = append(d.Persisting, p.Key)
			if el.tr == nil && el.kind == p.Kind && el.target.Equal(p.Attrs) {
				d.Unchanged = append(d.Unchanged, p.Key)
				break
			}
			el.attrs = el.current(now)
			el.tr = r.timeline.schedule(el.attrs, p.Attrs.Clone(), now, i)

		case exiting[p.Key] != nil:
			el = exiting[p.Key]
			delete(exiting, p.Key)
			d.Entering = append(d.Entering, p.Key)
			el.attrs = el.current(now)
			el.exiting = false
			el.tr = r.timeline.schedule(el.attrs, p.Attrs.Clone(), now, i)

		default:
			d.Entering = append(d.Entering, p.Key)
			el = &element{id: newID(), key: p.Key, attrs: p.Enter()}
			el.tr = r.timeline.schedule(el.attrs, p.Attrs.Clone(), now, i)
		}
		el.kind = p.Kind
		el.target = p.Attrs.Clone()
		el.datum = p.Datum
		el.order = i
		live[p.Key] = el
	}

	for k := range r.live {
		if _, ok := live[k]; !ok {
			d.Exiting = append(d.Exiting, k)
		}
	}
	sort.Strings(d.Exiting)
	for j, k := range d.Exiting {
		el := r.live[k]
		el.attrs = el.current(now)
		el.exiting = true
		el.target = Primitive{Kind: el.kind, Key: k, Attrs: el.target}.Exit()
		el.tr = r.timeline.schedule(el.attrs, el.target.Clone(), now, j)
		el.order = len(prims) + j
		exiting[k] = el
	}

	r.live, r.exiting = live, exiting
	r.apply(now, true)

	r.logger.Debug("reconciled", "layer", r.layer,
		"entering", len(d.Entering), "persisting", len(d.Persisting),
		"unchanged", len(d.Unchanged), "exiting", len(d.Exiting))
	observability.Reconcile().OnReconcile(r.layer, len(d.Entering), len(d.Persisting), len(d.Exiting), time.Since(start), nil)
	return d, nil
}

// CheckKeys returns a DUPLICATE_KEY error naming the first repeated key in
// prims. Callers reconciling several layers in one pass check every layer
// before touching any of them.
func CheckKeys(prims []Primitive) error {
	seen := make(map[string]int, len(prims))
	for i, p := range prims {
		if j, dup := seen[p.Key]; dup {
			return errors.DuplicateKey(p.Key, j, i)
		}
		seen[p.Key] = i
	}
	return nil
}

// Advance applies the frame at now and reports whether any transition is
// still in flight.
func (r *Reconciler) Advance(now time.Time) bool {
	r.apply(now, false)
	return r.Active()
}

// Settle completes every transition immediately. Exiting elements are removed.
func (r *Reconciler) Settle() {
	for _, el := range r.all() {
		if el.tr == nil {
			continue
		}
		el.attrs = el.tr.to.Clone()
		el.tr = nil
		r.finish(el)
	}
}

// Cancel drops every transition. Live elements stay where they are; exiting
// elements are removed since their exit can no longer complete.
func (r *Reconciler) Cancel() {
	for _, el := range r.all() {
		el.tr = nil
		if el.exiting {
			r.remove(el)
		}
	}
}

// Active reports whether any transition is scheduled or running.
func (r *Reconciler) Active() bool {
	for _, el := range r.live {
		if el.tr != nil {
			return true
		}
	}
	for _, el := range r.exiting {
		if el.tr != nil {
			return true
		}
	}
	return false
}

// Len returns the number of live (non-exiting) elements.
func (r *Reconciler) Len() int { return len(r.live) }

// Element returns the element for key, including exiting ones.
func (r *Reconciler) Element(key string) (Snapshot, bool) {
	if el, ok := r.live[key]; ok {
		return el.snapshot(), true
	}
	if el, ok := r.exiting[key]; ok {
		return el.snapshot(), true
	}
	return Snapshot{}, false
}

// Elements returns every element in draw order.
func (r *Reconciler) Elements() []Snapshot {
	all := r.all()
	out := make([]Snapshot, len(all))
	for i, el := range all {
		out[i] = el.snapshot()
	}
	return out
}

// Keys returns the live keys in draw order.
func (r *Reconciler) Keys() []string {
	keys := make([]string, 0, len(r.live))
	for _, el := range r.all() {
		if !el.exiting {
			keys = append(keys, el.key)
		}
	}
	return keys
}

// all returns live and exiting elements sorted by draw order.
func (r *Reconciler) all() []*element {
	out := make([]*element, 0, len(r.live)+len(r.exiting))
	for _, el := range r.live {
		out = append(out, el)
	}
	for _, el := range r.exiting {
		out = append(out, el)
	}
	slices.SortFunc(out, func(a, b *element) int { return a.order - b.order })
	return out
}

// apply moves every animating element to its attributes at now. When full
// is set, resting elements are redrawn too so order and datum changes reach
// the target.
func (r *Reconciler) apply(now time.Time, full bool) {
	for _, el := range r.all() {
		if el.tr == nil {
			if full {
				r.draw(el)
			}
			continue
		}
		a, done := el.tr.at(now)
		el.attrs = a
		if done {
			el.tr = nil
			r.finish(el)
			continue
		}
		r.draw(el)
	}
}

// finish handles an element whose transition just completed.
func (r *Reconciler) finish(el *element) {
	if el.exiting {
		r.remove(el)
		return
	}
	r.draw(el)
}

func (r *Reconciler) remove(el *element) {
	delete(r.exiting, el.key)
	if r.target != nil {
		r.target.Erase(r.layer, el.id)
	}
}

func (r *Reconciler) draw(el *element) {
	if r.target != nil {
		r.target.Draw(r.layer, el.snapshot())
	}
}
