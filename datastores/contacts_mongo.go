package datastores

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const (
	mongoCollection = "people"
	mongoNameIndex  = "name_key_unique"
)

// ContactsMongo implements [ContactsStore] on a MongoDB collection.
// Identifiers are the hex form of the documents' ObjectIDs.
type ContactsMongo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

var _ ContactsStore = (*ContactsMongo)(nil)

type contactDocument struct {
	ID      bson.ObjectID `bson:"_id,omitempty"`
	Name    string        `bson:"name"`
	NameKey string        `bson:"name_key"`
	Number  string        `bson:"number"`
}

func (d *contactDocument) contact() *Contact {
	return &Contact{ID: d.ID.Hex(), Name: d.Name, Number: d.Number}
}

// NewContactsMongo connects to uri, verifies the connection and makes sure
// the unique index on folded names exists.
func NewContactsMongo(ctx context.Context, uri, database string) (*ContactsMongo, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}

	coll := client.Database(database).Collection(mongoCollection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name_key", Value: 1}},
		Options: options.Index().SetName(mongoNameIndex).SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongodb create index: %w", err)
	}

	return &ContactsMongo{client: client, coll: coll}, nil
}

func (s *ContactsMongo) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *ContactsMongo) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *ContactsMongo) List(ctx context.Context) ([]*Contact, error) {
	cur, err := s.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	var docs []contactDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	contacts := make([]*Contact, 0, len(docs))
	for i := range docs {
		contacts = append(contacts, docs[i].contact())
	}
	return contacts, nil
}

func (s *ContactsMongo) Get(ctx context.Context, id ContactID) (*Contact, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, errors.Join(ErrMalformedID, err)
	}
	var doc contactDocument
	err = s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrObjectNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.contact(), nil
}

func (s *ContactsMongo) Create(ctx context.Context, c *Contact) (ContactID, error) {
	res, err := s.coll.InsertOne(ctx, contactDocument{Name: c.Name, NameKey: nameKey(c.Name), Number: c.Number})
	if mongo.IsDuplicateKeyError(err) {
		return "", ErrDuplicateName
	}
	if err != nil {
		return "", err
	}
	oid, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return "", fmt.Errorf("mongodb: unexpected inserted id %T", res.InsertedID)
	}
	c.ID = oid.Hex()
	return c.ID, nil
}

func (s *ContactsMongo) Update(ctx context.Context, id ContactID, c *Contact) (*Contact, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, errors.Join(ErrMalformedID, err)
	}
	var doc contactDocument
	err = s.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "name", Value: c.Name},
			{Key: "name_key", Value: nameKey(c.Name)},
			{Key: "number", Value: c.Number},
		}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	switch {
	case err == nil:
		return doc.contact(), nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, ErrObjectNotFound
	case mongo.IsDuplicateKeyError(err):
		return nil, ErrDuplicateName
	default:
		return nil, err
	}
}

func (s *ContactsMongo) Delete(ctx context.Context, id ContactID) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil //nolint: nilerr // nothing can be stored under a malformed id
	}
	_, err = s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	return err
}

func (s *ContactsMongo) Count(ctx context.Context) (int, error) {
	n, err := s.coll.CountDocuments(ctx, bson.D{})
	return int(n), err
}
