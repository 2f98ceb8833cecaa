package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const partitionCollection = "partitions"

type partitionDoc struct {
	Name      string    `bson:"_id"`
	Payload   string    `bson:"payload"`
	LockSeq   int64     `bson:"lockSeq"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// MongoStore keeps each partition as one document in the partitions collection.
// Atomic requires a replica set, since it runs inside a multi-document transaction.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoClient connects to uri and pings the primary.
func NewMongoClient(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return client, nil
}

// NewMongoStore creates a MongoStore in database.
func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(partitionCollection),
	}
}

func (s *MongoStore) Load(ctx context.Context, name string, dst any) error {
	return loadDoc(ctx, s.coll, name, dst)
}

func (s *MongoStore) Save(ctx context.Context, name string, v any) error {
	return saveDoc(ctx, s.coll, name, v)
}

// Atomic runs fn in a session transaction. The driver retries the callback on
// transient transaction errors, so fn must not have side effects outside p.
func (s *MongoStore) Atomic(ctx context.Context, fn func(p Partitions) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start mongo session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(&mongoTx{coll: s.coll, sc: sc})
	})
	return err
}

type mongoTx struct {
	coll *mongo.Collection
	sc   mongo.SessionContext
}

// Load writes to the partition document as it reads it. Plain reads do not take
// part in write-conflict detection, so without the write a transaction could act
// on a partition another transaction is changing.
func (p *mongoTx) Load(_ context.Context, name string, dst any) error {
	var doc partitionDoc
	err := p.coll.FindOneAndUpdate(p.sc,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"lockSeq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return fmt.Errorf("lock partition %s: %w", name, err)
	}
	return unmarshalPartition(name, []byte(doc.Payload), dst)
}

func (p *mongoTx) Save(_ context.Context, name string, v any) error {
	return saveDoc(p.sc, p.coll, name, v)
}

func loadDoc(ctx context.Context, coll *mongo.Collection, name string, dst any) error {
	var doc partitionDoc
	err := coll.FindOne(ctx, bson.M{"_id": name}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil
		}
		return fmt.Errorf("find partition %s: %w", name, err)
	}
	return unmarshalPartition(name, []byte(doc.Payload), dst)
}

func saveDoc(ctx context.Context, coll *mongo.Collection, name string, v any) error {
	raw, err := marshalPartition(name, v)
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{"payload": string(raw), "updatedAt": time.Now().UTC()}}
	_, err = coll.UpdateOne(ctx, bson.M{"_id": name}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert partition %s: %w", name, err)
	}
	return nil
}
