package dom

import "slices"

// RecordType classifies a mutation record.
type RecordType int

const (
	// RecordChildList reports node insertion or removal.
	RecordChildList RecordType = iota
	// RecordAttributes reports an attribute change.
	RecordAttributes
	// RecordCharacterData reports a text change.
	RecordCharacterData
)

// String returns the record type name.
func (t RecordType) String() string {
	switch t {
	case RecordChildList:
		return "childList"
	case RecordAttributes:
		return "attributes"
	case RecordCharacterData:
		return "characterData"
	default:
		return "unknown"
	}
}

// Record describes one observed mutation.
type Record struct {
	Type   RecordType
	Target *Element

	// Populated for childList records.
	AddedNodes   []*Element
	RemovedNodes []*Element

	// Populated for attributes records.
	AttributeName string

	// Previous attribute value or text content.
	OldValue string
}

// BatchCallback receives one batch of mutation records.
type BatchCallback func([]Record)

// Observer watches a subtree for mutations and delivers them in batches.
// An observer watches at most one root at a time.
type Observer struct {
	callback BatchCallback
	target   *Element
}

// NewObserver creates an observer with the given batch callback.
func NewObserver(cb BatchCallback) *Observer {
	return &Observer{callback: cb}
}

// Observe starts watching root's subtree. A previous target, if any, is
// released first.
func (o *Observer) Observe(root *Element) {
	if o.target != nil {
		o.Disconnect()
	}
	o.target = root
	root.observers = append(root.observers, o)
}

// Disconnect stops watching. Pending batched records for this observer are
// discarded.
func (o *Observer) Disconnect() {
	if o.target == nil {
		return
	}
	t := o.target
	o.target = nil
	if i := slices.Index(t.observers, o); i >= 0 {
		t.observers = slices.Delete(t.observers, i, i+1)
	}
	if b := t.Root().batch; b != nil {
		b.drop(o)
	}
}

// batchScope accumulates records while a Batch call is open on a root.
type batchScope struct {
	entries []batchEntry
}

type batchEntry struct {
	rec Record
	obs []*Observer
}

func (b *batchScope) add(rec Record, obs []*Observer) {
	b.entries = append(b.entries, batchEntry{rec: rec, obs: slices.Clone(obs)})
}

func (b *batchScope) drop(o *Observer) {
	for i := range b.entries {
		if j := slices.Index(b.entries[i].obs, o); j >= 0 {
			b.entries[i].obs = slices.Delete(b.entries[i].obs, j, j+1)
		}
	}
}

// flush delivers accumulated records, one batch per observer, preserving
// record order.
func (b *batchScope) flush() {
	type bucket struct {
		o    *Observer
		recs []Record
	}
	var buckets []*bucket
	byObs := make(map[*Observer]*bucket)
	for _, ent := range b.entries {
		for _, o := range ent.obs {
			bk, ok := byObs[o]
			if !ok {
				bk = &bucket{o: o}
				byObs[o] = bk
				buckets = append(buckets, bk)
			}
			bk.recs = append(bk.recs, ent.rec)
		}
	}
	for _, bk := range buckets {
		if bk.o.target != nil {
			bk.o.callback(bk.recs)
		}
	}
}

// Batch groups all mutations performed by fn on root's tree into a single
// batch per observer. Nested Batch calls on the same root join the
// outermost scope.
func Batch(root *Element, fn func()) {
	r := root.Root()
	if r.batch != nil {
		fn()
		return
	}
	scope := &batchScope{}
	r.batch = scope
	defer func() {
		r.batch = nil
		scope.flush()
	}()
	fn()
}

// notify routes a mutation record to observers registered on the target or
// any of its ancestors. Inside a Batch scope records accumulate; otherwise
// each record is delivered immediately as a one-record batch.
func (e *Element) notify(rec Record) {
	var obs []*Observer
	root := e
	for n := e; n != nil; n = n.parent {
		obs = append(obs, n.observers...)
		root = n
	}
	if len(obs) == 0 {
		return
	}
	if root.batch != nil {
		root.batch.add(rec, obs)
		return
	}
	batch := []Record{rec}
	for _, o := range obs {
		if o.target != nil {
			o.callback(batch)
		}
	}
}
