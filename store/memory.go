package store

import (
	"context"
	"sort"
	"sync"
)

// Memory is an in-process Store used for offline mode and tests. Snapshots
// are delivered latest-wins: a slow subscriber only ever observes the most
// recent full collection, which is all the adapters need.
type Memory struct {
	mu       sync.Mutex
	cols     map[string]map[string]map[string]any
	subs     map[int]*memSub
	next     int
	writeErr error
}

type memSub struct {
	path      string
	queries   []Query
	snapshots chan Snapshot
	errs      chan error
	closed    bool
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		cols: make(map[string]map[string]map[string]any),
		subs: make(map[int]*memSub),
	}
}

// FailWrites makes every subsequent mutation return err until called again
// with nil. Reads and subscriptions are unaffected.
func (m *Memory) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

func (m *Memory) Subscribe(ctx context.Context, path string, queries ...Query) (*Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.next
	m.next++
	sub := &memSub{
		path:      path,
		queries:   queries,
		snapshots: make(chan Snapshot, 1),
		errs:      make(chan error, 1),
	}
	m.subs[id] = sub
	sub.snapshots <- m.snapshotLocked(path, queries)

	closeFn := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if s, ok := m.subs[id]; ok && !s.closed {
			s.closed = true
			delete(m.subs, id)
		}
	}
	return NewSubscription(sub.snapshots, sub.errs, closeFn), nil
}

func (m *Memory) Put(ctx context.Context, path, id string, value map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.putLocked(path, id, value)
	m.broadcastLocked(path)
	return nil
}

func (m *Memory) Patch(ctx context.Context, path, id string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.patchLocked(path, id, fields)
	m.broadcastLocked(path)
	return nil
}

func (m *Memory) Delete(ctx context.Context, path, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	if col, ok := m.cols[path]; ok {
		delete(col, id)
	}
	m.broadcastLocked(path)
	return nil
}

func (m *Memory) DeleteAll(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	delete(m.cols, path)
	m.broadcastLocked(path)
	return nil
}

func (m *Memory) Get(ctx context.Context, path, id string) (map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	col, ok := m.cols[path]
	if !ok {
		return nil, ErrNotFound
	}
	doc, ok := col[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneDoc(doc), nil
}

func (m *Memory) GetAll(ctx context.Context, path string, queries ...Query) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked(path, queries), nil
}

func (m *Memory) RunTransaction(ctx context.Context, fn func(tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}

	tx := &memTx{m: m}
	if err := fn(tx); err != nil {
		return err
	}
	touched := map[string]bool{}
	for _, op := range tx.ops {
		op.apply(m)
		touched[op.path()] = true
	}
	for path := range touched {
		m.broadcastLocked(path)
	}
	return nil
}

func (m *Memory) Close() error { return nil }

// memTx buffers writes until commit; reads see pre-transaction state, which
// matches the read-then-write discipline of the Tx contract.
type memTx struct {
	m   *Memory
	ops []memOp
}

func (t *memTx) GetAll(path string, queries ...Query) (Snapshot, error) {
	return t.m.snapshotLocked(path, queries), nil
}

func (t *memTx) Put(path, id string, value map[string]any) {
	t.ops = append(t.ops, memOp{kind: opPut, p: path, id: id, data: value})
}

func (t *memTx) Patch(path, id string, fields map[string]any) {
	t.ops = append(t.ops, memOp{kind: opPatch, p: path, id: id, data: fields})
}

func (t *memTx) Delete(path, id string) {
	t.ops = append(t.ops, memOp{kind: opDelete, p: path, id: id})
}

type opKind int

const (
	opPut opKind = iota
	opPatch
	opDelete
)

type memOp struct {
	kind opKind
	p    string
	id   string
	data map[string]any
}

func (o memOp) path() string { return o.p }

func (o memOp) apply(m *Memory) {
	switch o.kind {
	case opPut:
		m.putLocked(o.p, o.id, o.data)
	case opPatch:
		m.patchLocked(o.p, o.id, o.data)
	case opDelete:
		if col, ok := m.cols[o.p]; ok {
			delete(col, o.id)
		}
	}
}

func (m *Memory) putLocked(path, id string, value map[string]any) {
	col, ok := m.cols[path]
	if !ok {
		col = make(map[string]map[string]any)
		m.cols[path] = col
	}
	col[id] = cloneDoc(value)
}

func (m *Memory) patchLocked(path, id string, fields map[string]any) {
	col, ok := m.cols[path]
	if !ok {
		col = make(map[string]map[string]any)
		m.cols[path] = col
	}
	doc, ok := col[id]
	if !ok {
		doc = make(map[string]any)
		col[id] = doc
	}
	for k, v := range fields {
		doc[k] = v
	}
}

func (m *Memory) snapshotLocked(path string, queries []Query) Snapshot {
	col := m.cols[path]
	snap := make(Snapshot, 0, len(col))
	for id, doc := range col {
		if !matches(doc, queries) {
			continue
		}
		snap = append(snap, Document{ID: id, Data: cloneDoc(doc)})
	}
	sort.Slice(snap, func(i, j int) bool { return snap[i].ID < snap[j].ID })
	return snap
}

func (m *Memory) broadcastLocked(path string) {
	for _, sub := range m.subs {
		if sub.path != path || sub.closed {
			continue
		}
		snap := m.snapshotLocked(path, sub.queries)
		select {
		case sub.snapshots <- snap:
		default:
			select {
			case <-sub.snapshots:
			default:
			}
			sub.snapshots <- snap
		}
	}
}

func matches(doc map[string]any, queries []Query) bool {
	for _, q := range queries {
		if doc[q.Field] != q.Value {
			return false
		}
	}
	return true
}

func cloneDoc(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
