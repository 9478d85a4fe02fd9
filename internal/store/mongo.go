package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Mongo maps collections one to one onto MongoDB collections. The _id of each
// document is the text identifier assigned here, not an ObjectID.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	return &Mongo{client: client, db: client.Database(database)}, nil
}

func (m *Mongo) Create(ctx context.Context, collection string, doc any) (string, error) {
	id := newID()
	d, err := toBSON(id, doc)
	if err != nil {
		return "", err
	}

	if _, err := m.db.Collection(collection).InsertOne(ctx, d); err != nil {
		return "", unavailable("insert into "+collection, err)
	}

	return id, nil
}

func (m *Mongo) CreateMany(ctx context.Context, collection string, docs []any) ([]string, error) {
	ids := make([]string, 0, len(docs))
	batch := make([]any, 0, len(docs))
	for _, doc := range docs {
		id := newID()
		d, err := toBSON(id, doc)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
		batch = append(batch, d)
	}

	_, err := m.db.Collection(collection).InsertMany(ctx, batch, options.InsertMany().SetOrdered(true))
	if err != nil {
		return nil, unavailable("bulk insert into "+collection, err)
	}

	return ids, nil
}

func (m *Mongo) FindOne(ctx context.Context, collection, id string) (*Record, error) {
	raw, err := m.db.Collection(collection).FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Raw()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, unavailable("select from "+collection, err)
	}

	rec, err := fromBSON(raw)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (m *Mongo) FindMany(ctx context.Context, collection string, filter Filter) ([]Record, error) {
	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	query := bson.D{}
	for _, k := range keys {
		query = append(query, bson.E{Key: k, Value: filter[k]})
	}

	cur, err := m.db.Collection(collection).Find(ctx, query)
	if err != nil {
		return nil, unavailable("query "+collection, err)
	}
	defer func() { _ = cur.Close(ctx) }()

	records := make([]Record, 0)
	for cur.Next(ctx) {
		rec, err := fromBSON(cur.Current)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := cur.Err(); err != nil {
		return nil, unavailable("iterate "+collection, err)
	}

	return records, nil
}

func (m *Mongo) Count(ctx context.Context, collection string) (int64, error) {
	n, err := m.db.Collection(collection).CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, unavailable("count "+collection, err)
	}
	return n, nil
}

func (m *Mongo) Collections(ctx context.Context) ([]string, error) {
	names, err := m.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, unavailable("list collections", err)
	}
	sort.Strings(names)
	return names, nil
}

func (m *Mongo) Ping(ctx context.Context) error {
	if err := m.client.Ping(ctx, readpref.Primary()); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

func (m *Mongo) Name() string { return m.db.Name() }

func (m *Mongo) Close() error {
	return m.client.Disconnect(context.Background())
}

// toBSON converts doc through its JSON form so every backend stores the same
// field names and shapes.
func toBSON(id string, doc any) (bson.D, error) {
	body, err := encode(doc)
	if err != nil {
		return nil, err
	}

	var d bson.D
	if err := bson.UnmarshalExtJSON(body, false, &d); err != nil {
		return nil, fmt.Errorf("convert document to bson: %w", err)
	}

	return append(bson.D{{Key: "_id", Value: id}}, d...), nil
}

func fromBSON(raw bson.Raw) (Record, error) {
	var d bson.D
	if err := bson.Unmarshal(raw, &d); err != nil {
		return Record{}, fmt.Errorf("decode bson document: %w", err)
	}

	var rec Record
	fields := make(bson.D, 0, len(d))
	for _, e := range d {
		if e.Key == "_id" {
			rec.ID = fmt.Sprint(e.Value)
			continue
		}
		fields = append(fields, e)
	}

	body, err := bson.MarshalExtJSON(fields, false, false)
	if err != nil {
		return Record{}, fmt.Errorf("convert bson document to json: %w", err)
	}
	rec.Body = body

	return rec, nil
}

var _ Store = (*Mongo)(nil)
