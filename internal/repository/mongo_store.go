package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rentease-service/internal/model"
)

// MongoStore maps each collection onto a MongoDB collection keyed by _id.
type MongoStore struct {
	DB *mongo.Database
}

func NewMongoStore(client *mongo.Client, dbName string) *MongoStore {
	return &MongoStore{DB: client.Database(dbName)}
}

func (s *MongoStore) Create(ctx context.Context, collection, id string, doc model.Document) (string, error) {
	if id == "" {
		id = newID()
	}
	data := bson.M(payload(doc, time.Now().UTC(), true))
	data["_id"] = id
	if _, err := s.DB.Collection(collection).InsertOne(ctx, data); err != nil {
		return "", fmt.Errorf("MongoStore.Create: %w", err)
	}
	return id, nil
}

func (s *MongoStore) Get(ctx context.Context, collection, id string) (model.Document, error) {
	var raw bson.M
	err := s.DB.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("MongoStore.Get: %w", err)
	}
	return fromBSON(raw), nil
}

func (s *MongoStore) Set(ctx context.Context, collection, id string, doc model.Document) error {
	data := bson.M(payload(doc, time.Now().UTC(), false))
	_, err := s.DB.Collection(collection).ReplaceOne(ctx, bson.M{"_id": id}, data, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("MongoStore.Set: %w", err)
	}
	return nil
}

func (s *MongoStore) Update(ctx context.Context, collection, id string, fields model.Document) error {
	set := bson.M(payload(fields, time.Now().UTC(), false))
	set["updatedAt"] = time.Now().UTC()
	res, err := s.DB.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("MongoStore.Update: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateIf cannot tell a missing document from a changed one; both are
// reported as ErrConflict.
func (s *MongoStore) UpdateIf(ctx context.Context, collection, id, field, want string, fields model.Document) error {
	set := bson.M(payload(fields, time.Now().UTC(), false))
	set["updatedAt"] = time.Now().UTC()
	filter := bson.M{
		"_id": id,
		"$or": bson.A{
			bson.M{field: want},
			bson.M{field: bson.M{"$exists": false}},
			bson.M{field: ""},
		},
	}
	res, err := s.DB.Collection(collection).UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("MongoStore.UpdateIf: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrConflict
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, collection, id string) error {
	res, err := s.DB.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("MongoStore.Delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) FindByField(ctx context.Context, collection, field string, value any) ([]model.Document, error) {
	return s.find(ctx, collection, bson.M{field: value})
}

func (s *MongoStore) FindAll(ctx context.Context, collection string) ([]model.Document, error) {
	return s.find(ctx, collection, bson.M{})
}

// FindByDateRange scans the collection and filters in memory: stored dates
// come in several encodings that a single range predicate cannot match.
func (s *MongoStore) FindByDateRange(ctx context.Context, collection, field string, start, end time.Time) ([]model.Document, error) {
	all, err := s.FindAll(ctx, collection)
	if err != nil {
		return nil, err
	}
	return FilterByDateRange(all, field, start, end), nil
}

func (s *MongoStore) find(ctx context.Context, collection string, filter bson.M) ([]model.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.DB.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("MongoStore.find %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	var raws []bson.M
	if err := cursor.All(ctx, &raws); err != nil {
		return nil, fmt.Errorf("MongoStore.find %s: decode: %w", collection, err)
	}
	out := make([]model.Document, 0, len(raws))
	for _, raw := range raws {
		out = append(out, fromBSON(raw))
	}
	return out, nil
}

// fromBSON moves _id to "id" and unwraps nested BSON containers into plain
// maps and slices.
func fromBSON(raw bson.M) model.Document {
	doc := make(model.Document, len(raw))
	for k, v := range raw {
		if k == "_id" {
			switch id := v.(type) {
			case string:
				doc["id"] = id
			case primitive.ObjectID:
				doc["id"] = id.Hex()
			default:
				doc["id"] = fmt.Sprint(id)
			}
			continue
		}
		doc[k] = unwrapBSON(v)
	}
	return doc
}

func unwrapBSON(v any) any {
	switch t := v.(type) {
	case primitive.M:
		m := make(map[string]any, len(t))
		for k, inner := range t {
			m[k] = unwrapBSON(inner)
		}
		return m
	case primitive.D:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.Key] = unwrapBSON(e.Value)
		}
		return m
	case primitive.A:
		a := make([]any, len(t))
		for i, inner := range t {
			a[i] = unwrapBSON(inner)
		}
		return a
	}
	return v
}

var _ DocumentStore = (*MongoStore)(nil)
