package ledger

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/mapease/checkin-service/internal/domain"
)

// MongoCollection is the collection holding consumption documents.
const MongoCollection = "checkin_consumptions"

type mongoRecord struct {
	RegistrationID string    `bson:"_id"`
	EventID        string    `bson:"event_id"`
	UserID         string    `bson:"user_id"`
	Station        string    `bson:"station,omitempty"`
	ConsumedAt     time.Time `bson:"consumed_at"`
}

// Mongo keys documents by registration id, so a second insert fails with a
// duplicate key error.
type Mongo struct {
	coll *mongo.Collection
}

// NewMongo builds a Mongo ledger on db.
func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{coll: db.Collection(MongoCollection)}
}

func (m *Mongo) IsConsumed(ctx context.Context, registrationID string) (bool, error) {
	n, err := m.coll.CountDocuments(ctx, bson.M{"_id": registrationID}, options.Count().SetLimit(1))
	if err != nil {
		return false, unavailable("is_consumed", err)
	}
	return n > 0, nil
}

func (m *Mongo) TryConsume(ctx context.Context, rec domain.ConsumptionRecord) (bool, error) {
	_, err := m.coll.InsertOne(ctx, mongoRecord{
		RegistrationID: rec.RegistrationID,
		EventID:        rec.EventID,
		UserID:         rec.UserID,
		Station:        rec.Station,
		ConsumedAt:     rec.ConsumedAt.UTC(),
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, unavailable("try_consume", err)
	}
	return true, nil
}

func (m *Mongo) Record(ctx context.Context, registrationID string) (*domain.ConsumptionRecord, error) {
	var doc mongoRecord
	if err := m.coll.FindOne(ctx, bson.M{"_id": registrationID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, unavailable("record", err)
	}
	return &domain.ConsumptionRecord{
		RegistrationID: doc.RegistrationID,
		EventID:        doc.EventID,
		UserID:         doc.UserID,
		Station:        doc.Station,
		ConsumedAt:     doc.ConsumedAt,
	}, nil
}

func (m *Mongo) Ping(ctx context.Context) error {
	if err := m.coll.Database().Client().Ping(ctx, readpref.Primary()); err != nil {
		return unavailable("ping", err)
	}
	return nil
}
