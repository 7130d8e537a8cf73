package store

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo implements Store on MongoDB. Each collection path maps to one Mongo
// collection (slashes replaced by underscores). Subscribe opens a change
// stream and re-reads the whole collection on every event, so subscribers
// see the same full-snapshot semantics as the Firestore backend. Change
// streams require a replica set deployment.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongo connects to MongoDB at uri and uses the named database.
func NewMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	log.Println("Connected to MongoDB")
	return &Mongo{client: client, db: client.Database(database)}, nil
}

func (m *Mongo) collection(path string) *mongo.Collection {
	name := strings.ReplaceAll(strings.Trim(path, "/"), "/", "_")
	return m.db.Collection(name)
}

func mongoFilter(queries []Query) bson.M {
	filter := bson.M{}
	for _, q := range queries {
		filter[q.Field] = q.Value
	}
	return filter
}

func (m *Mongo) Subscribe(ctx context.Context, path string, queries ...Query) (*Subscription, error) {
	col := m.collection(path)

	subCtx, cancel := context.WithCancel(ctx)
	stream, err := col.Watch(subCtx, mongo.Pipeline{})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}

	snapshots := make(chan Snapshot, 1)
	errs := make(chan error, 1)

	emit := func() bool {
		snap, err := m.readAll(subCtx, col, queries)
		if err != nil {
			if subCtx.Err() == nil {
				errs <- err
			}
			return false
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
		return true
	}

	go func() {
		defer stream.Close(subCtx)
		if !emit() {
			return
		}
		for stream.Next(subCtx) {
			if !emit() {
				return
			}
		}
		if err := stream.Err(); err != nil && subCtx.Err() == nil {
			errs <- err
		}
	}()

	return NewSubscription(snapshots, errs, cancel), nil
}

func (m *Mongo) readAll(ctx context.Context, col *mongo.Collection, queries []Query) (Snapshot, error) {
	cursor, err := col.Find(ctx, mongoFilter(queries))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var snap Snapshot
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		snap = append(snap, mongoDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	sort.Slice(snap, func(i, j int) bool { return snap[i].ID < snap[j].ID })
	return snap, nil
}

func mongoDocument(doc bson.M) Document {
	id, _ := doc["_id"].(string)
	data := make(map[string]any, len(doc))
	for k, v := range doc {
		if k == "_id" {
			continue
		}
		data[k] = v
	}
	return Document{ID: id, Data: data}
}

func withID(id string, value map[string]any) bson.M {
	doc := bson.M{"_id": id}
	for k, v := range value {
		doc[k] = v
	}
	return doc
}

func (m *Mongo) Put(ctx context.Context, path, id string, value map[string]any) error {
	opts := options.Replace().SetUpsert(true)
	_, err := m.collection(path).ReplaceOne(ctx, bson.M{"_id": id}, withID(id, value), opts)
	return err
}

func (m *Mongo) Patch(ctx context.Context, path, id string, fields map[string]any) error {
	_, err := m.collection(path).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M(fields)})
	return err
}

func (m *Mongo) Delete(ctx context.Context, path, id string) error {
	_, err := m.collection(path).DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (m *Mongo) DeleteAll(ctx context.Context, path string) error {
	_, err := m.collection(path).DeleteMany(ctx, bson.M{})
	return err
}

func (m *Mongo) Get(ctx context.Context, path, id string) (map[string]any, error) {
	var doc bson.M
	err := m.collection(path).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return mongoDocument(doc).Data, nil
}

func (m *Mongo) GetAll(ctx context.Context, path string, queries ...Query) (Snapshot, error) {
	return m.readAll(ctx, m.collection(path), queries)
}

func (m *Mongo) RunTransaction(ctx context.Context, fn func(tx Tx) error) error {
	session, err := m.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (any, error) {
		mtx := &mongoTx{m: m, ctx: sessCtx}
		if err := fn(mtx); err != nil {
			return nil, err
		}
		return nil, mtx.err
	})
	return err
}

func (m *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

// mongoTx runs reads and writes inside one session transaction. Write errors
// are deferred to commit because Tx writes do not return errors.
type mongoTx struct {
	m   *Mongo
	ctx mongo.SessionContext
	err error
}

func (tx *mongoTx) GetAll(path string, queries ...Query) (Snapshot, error) {
	return tx.m.readAll(tx.ctx, tx.m.collection(path), queries)
}

func (tx *mongoTx) Put(path, id string, value map[string]any) {
	tx.setErr(tx.m.Put(tx.ctx, path, id, value))
}

func (tx *mongoTx) Patch(path, id string, fields map[string]any) {
	tx.setErr(tx.m.Patch(tx.ctx, path, id, fields))
}

func (tx *mongoTx) Delete(path, id string) {
	tx.setErr(tx.m.Delete(tx.ctx, path, id))
}

func (tx *mongoTx) setErr(err error) {
	if tx.err == nil && err != nil {
		tx.err = err
	}
}
