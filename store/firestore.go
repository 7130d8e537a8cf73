package store

import (
	"context"
	"fmt"
	"log"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Firestore implements Store on Cloud Firestore. Collection paths map
// directly onto Firestore references ("carts/<uid>/items" becomes
// collection/doc/collection), and Subscribe rides the native query snapshot
// listener, which already delivers the full result set on every change.
type Firestore struct {
	client *firestore.Client
}

// NewFirestore connects to the given project. With an empty credentialsFile
// Application Default Credentials are used.
func NewFirestore(ctx context.Context, projectID, credentialsFile string) (*Firestore, error) {
	var (
		client *firestore.Client
		err    error
	)
	if credentialsFile != "" {
		client, err = firestore.NewClient(ctx, projectID, option.WithCredentialsFile(credentialsFile))
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	log.Printf("Firestore connected (project: %s)", projectID)
	return &Firestore{client: client}, nil
}

// collection resolves a slash-separated path to a collection reference. The
// path must have an odd number of segments.
func (f *Firestore) collection(path string) (*firestore.CollectionRef, error) {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	if len(segs) == 0 || len(segs)%2 == 0 {
		return nil, fmt.Errorf("store: %q is not a collection path", path)
	}
	col := f.client.Collection(segs[0])
	for i := 1; i < len(segs); i += 2 {
		col = col.Doc(segs[i]).Collection(segs[i+1])
	}
	return col, nil
}

func applyQueries(q firestore.Query, queries []Query) firestore.Query {
	for _, filter := range queries {
		q = q.Where(filter.Field, "==", filter.Value)
	}
	return q
}

func (f *Firestore) Subscribe(ctx context.Context, path string, queries ...Query) (*Subscription, error) {
	col, err := f.collection(path)
	if err != nil {
		return nil, err
	}

	subCtx, cancel := context.WithCancel(ctx)
	it := applyQueries(col.Query, queries).Snapshots(subCtx)

	snapshots := make(chan Snapshot, 1)
	errs := make(chan error, 1)

	go func() {
		defer it.Stop()
		for {
			qs, err := it.Next()
			if err != nil {
				if subCtx.Err() == nil {
					errs <- err
				}
				return
			}
			docs, err := qs.Documents.GetAll()
			if err != nil {
				errs <- err
				return
			}
			snap := make(Snapshot, 0, len(docs))
			for _, doc := range docs {
				snap = append(snap, Document{ID: doc.Ref.ID, Data: doc.Data()})
			}
			select {
			case snapshots <- snap:
			default:
				select {
				case <-snapshots:
				default:
				}
				snapshots <- snap
			}
		}
	}()

	return NewSubscription(snapshots, errs, cancel), nil
}

func (f *Firestore) Put(ctx context.Context, path, id string, value map[string]any) error {
	col, err := f.collection(path)
	if err != nil {
		return err
	}
	_, err = col.Doc(id).Set(ctx, value)
	return err
}

func (f *Firestore) Patch(ctx context.Context, path, id string, fields map[string]any) error {
	col, err := f.collection(path)
	if err != nil {
		return err
	}
	updates := make([]firestore.Update, 0, len(fields))
	for k, v := range fields {
		updates = append(updates, firestore.Update{Path: k, Value: v})
	}
	_, err = col.Doc(id).Update(ctx, updates)
	return err
}

func (f *Firestore) Delete(ctx context.Context, path, id string) error {
	col, err := f.collection(path)
	if err != nil {
		return err
	}
	_, err = col.Doc(id).Delete(ctx)
	return err
}

func (f *Firestore) DeleteAll(ctx context.Context, path string) error {
	col, err := f.collection(path)
	if err != nil {
		return err
	}
	docs, err := col.Documents(ctx).GetAll()
	if err != nil {
		return err
	}
	bw := f.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(docs))
	for _, doc := range docs {
		job, err := bw.Delete(doc.Ref)
		if err != nil {
			return err
		}
		jobs = append(jobs, job)
	}
	bw.End()
	// End flushes every enqueued write; each job still carries its own result
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return err
		}
	}
	return nil
}

func (f *Firestore) Get(ctx context.Context, path, id string) (map[string]any, error) {
	col, err := f.collection(path)
	if err != nil {
		return nil, err
	}
	snap, err := col.Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return snap.Data(), nil
}

func (f *Firestore) GetAll(ctx context.Context, path string, queries ...Query) (Snapshot, error) {
	col, err := f.collection(path)
	if err != nil {
		return nil, err
	}
	docs, err := applyQueries(col.Query, queries).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	snap := make(Snapshot, 0, len(docs))
	for _, doc := range docs {
		snap = append(snap, Document{ID: doc.Ref.ID, Data: doc.Data()})
	}
	return snap, nil
}

func (f *Firestore) RunTransaction(ctx context.Context, fn func(tx Tx) error) error {
	return f.client.RunTransaction(ctx, func(ctx context.Context, t *firestore.Transaction) error {
		ftx := &firestoreTx{f: f, t: t}
		if err := fn(ftx); err != nil {
			return err
		}
		return ftx.err
	})
}

func (f *Firestore) Close() error { return f.client.Close() }

// firestoreTx adapts a Firestore transaction to the Tx contract. Write
// errors are deferred to commit because Tx writes do not return errors.
type firestoreTx struct {
	f   *Firestore
	t   *firestore.Transaction
	err error
}

func (tx *firestoreTx) GetAll(path string, queries ...Query) (Snapshot, error) {
	col, err := tx.f.collection(path)
	if err != nil {
		return nil, err
	}
	docs, err := tx.t.Documents(applyQueries(col.Query, queries)).GetAll()
	if err != nil {
		return nil, err
	}
	snap := make(Snapshot, 0, len(docs))
	for _, doc := range docs {
		snap = append(snap, Document{ID: doc.Ref.ID, Data: doc.Data()})
	}
	return snap, nil
}

func (tx *firestoreTx) Put(path, id string, value map[string]any) {
	col, err := tx.f.collection(path)
	if err != nil {
		tx.setErr(err)
		return
	}
	tx.setErr(tx.t.Set(col.Doc(id), value))
}

func (tx *firestoreTx) Patch(path, id string, fields map[string]any) {
	col, err := tx.f.collection(path)
	if err != nil {
		tx.setErr(err)
		return
	}
	updates := make([]firestore.Update, 0, len(fields))
	for k, v := range fields {
		updates = append(updates, firestore.Update{Path: k, Value: v})
	}
	tx.setErr(tx.t.Update(col.Doc(id), updates))
}

func (tx *firestoreTx) Delete(path, id string) {
	col, err := tx.f.collection(path)
	if err != nil {
		tx.setErr(err)
		return
	}
	tx.setErr(tx.t.Delete(col.Doc(id)))
}

func (tx *firestoreTx) setErr(err error) {
	if tx.err == nil && err != nil {
		tx.err = err
	}
}
