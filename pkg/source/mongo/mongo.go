// Package mongo loads event histories stored in a MongoDB collection.
//
// Each document is one event:
//
//	{ "_id": "c3", "deps": ["c1", "c2"], "lamport": 3, "message": "merge", "meta": {...} }
//
// The event ID is taken from an "id" field when present, otherwise from
// "_id" (strings as is, ObjectIDs as hex). As with dataset files, lamport
// must be set on every document or on none; when absent everywhere it is
// computed from the graph.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/lanegraph/pkg/dag"
	errs "github.com/matzehuels/lanegraph/pkg/errors"
	lgio "github.com/matzehuels/lanegraph/pkg/io"
)

// DefaultTimeout bounds server selection when Options.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// Options configures the connection and the query.
type Options struct {
	URI        string
	Database   string
	Collection string

	// Filter selects documents. Nil loads the whole collection.
	Filter bson.M

	// Limit caps the number of documents read. Zero means no limit.
	Limit int64

	Timeout time.Duration
}

// Store reads and writes events in one collection.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
	opts   Options
}

// document is the stored shape of an event.
type document struct {
	ObjectID any      `bson:"_id,omitempty"`
	ID       string   `bson:"id,omitempty"`
	Deps     []string `bson:"deps,omitempty"`
	Lamport  *int64   `bson:"lamport,omitempty"`
	Message  string   `bson:"message,omitempty"`
	Meta     bson.M   `bson:"meta,omitempty"`
}

// Connect opens a client and verifies the server is reachable.
func Connect(ctx context.Context, opts Options) (*Store, error) {
	if opts.URI == "" {
		return nil, errs.New(errs.ErrCodeInvalidInput, "mongo uri is required")
	}
	if err := errs.ValidateCollectionName(opts.Database); err != nil {
		return nil, err
	}
	if err := errs.ValidateCollectionName(opts.Collection); err != nil {
		return nil, err
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	clientOpts := options.Client().
		ApplyURI(opts.URI).
		SetServerSelectionTimeout(opts.Timeout)
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "mongo client")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errs.Wrap(errs.ErrCodeNetwork, err, "connect to mongo")
	}

	return &Store{
		client: client,
		coll:   client.Database(opts.Database).Collection(opts.Collection),
		opts:   opts,
	}, nil
}

// Source describes the collection for logs and cache keys.
func (s *Store) Source() string { return SourceName(s.opts.Database, s.opts.Collection) }

// SourceName is the [Store.Source] of a collection, available before
// connecting.
func SourceName(database, collection string) string {
	return fmt.Sprintf("mongo:%s.%s", database, collection)
}

// Load reads the matching documents into a dataset. Frontiers are left
// empty, so the dataset's heads are used.
func (s *Store) Load(ctx context.Context) (*lgio.Dataset, error) {
	filter := s.opts.Filter
	if filter == nil {
		filter = bson.M{}
	}
	findOpts := options.Find()
	if s.opts.Limit > 0 {
		findOpts.SetLimit(s.opts.Limit)
	}

	cur, err := s.coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeNetwork, err, "query %s", s.Source())
	}
	defer cur.Close(ctx)

	var docs []document
	for cur.Next(ctx) {
		var d document
		if err := cur.Decode(&d); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode document")
		}
		docs = append(docs, d)
	}
	if err := cur.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeNetwork, err, "read %s", s.Source())
	}

	g, err := build(docs)
	if err != nil {
		return nil, err
	}
	return &lgio.Dataset{Graph: g}, nil
}

// Insert stores events, one document each, with the event ID as _id.
func (s *Store) Insert(ctx context.Context, events []dag.Event) error {
	if len(events) == 0 {
		return nil
	}
	docs := make([]any, len(events))
	for i, e := range events {
		docs[i] = toDocument(e)
	}
	if _, err := s.coll.InsertMany(ctx, docs); err != nil {
		return errs.Wrap(errs.ErrCodeNetwork, err, "insert into %s", s.Source())
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func toDocument(e dag.Event) document {
	lamport := e.Lamport
	d := document{
		ObjectID: e.ID,
		Deps:     e.Deps,
		Lamport:  &lamport,
	}
	meta := bson.M{}
	for k, v := range e.Meta {
		if k == dag.MetaMessage {
			if m, ok := v.(string); ok {
				d.Message = m
				continue
			}
		}
		meta[k] = v
	}
	if len(meta) > 0 {
		d.Meta = meta
	}
	return d
}

// eventID returns the event ID of a document.
func (d document) eventID() string {
	if d.ID != "" {
		return d.ID
	}
	switch v := d.ObjectID.(type) {
	case string:
		return v
	case primitive.ObjectID:
		return v.Hex()
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func (d document) event() dag.Event {
	meta := dag.Metadata{}
	for k, v := range d.Meta {
		meta[k] = v
	}
	if d.Message != "" {
		meta[dag.MetaMessage] = d.Message
	}
	e := dag.Event{ID: d.eventID(), Deps: d.Deps, Meta: meta}
	if d.Lamport != nil {
		e.Lamport = *d.Lamport
	}
	return e
}

func build(docs []document) (*dag.DAG, error) {
	clocked := 0
	for _, d := range docs {
		if d.Lamport != nil {
			clocked++
		}
	}
	if clocked > 0 && clocked < len(docs) {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, lgio.ErrPartialLamport, "%d of %d documents", clocked, len(docs))
	}

	g := dag.New(nil)
	for _, d := range docs {
		if err := g.AddEvent(d.event()); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "document %s", d.eventID())
		}
	}
	if clocked == 0 {
		g.AssignLamport()
	}
	return g, nil
}
