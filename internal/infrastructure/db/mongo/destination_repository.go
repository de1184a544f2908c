package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/datapusher/webhook-relay/internal/core/domain"
)

const collectionDestinations = "destinations"

type DestinationRepository struct {
	col *mongo.Collection
}

func NewDestinationRepository(db *mongo.Database) *DestinationRepository {
	return &DestinationRepository{col: db.Collection(collectionDestinations)}
}

type destinationDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	AccountID  string             `bson:"account_id"`
	URL        string             `bson:"url"`
	HTTPMethod string             `bson:"http_method"`
	Headers    map[string]string  `bson:"headers"`
	CreatedAt  time.Time          `bson:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at"`
}

func (d destinationDoc) toDomain() *domain.Destination {
	headers := d.Headers
	if headers == nil {
		headers = map[string]string{}
	}
	return &domain.Destination{
		ID:         d.ID.Hex(),
		AccountID:  d.AccountID,
		URL:        d.URL,
		HTTPMethod: domain.HTTPMethod(d.HTTPMethod),
		Headers:    headers,
		CreatedAt:  d.CreatedAt.UTC(),
		UpdatedAt:  d.UpdatedAt.UTC(),
	}
}

var newestFirst = options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

func (r *DestinationRepository) Create(ctx context.Context, d *domain.Destination) (*domain.Destination, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := destinationDoc{
		AccountID:  d.AccountID,
		URL:        d.URL,
		HTTPMethod: string(d.HTTPMethod),
		Headers:    d.Headers,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert destination: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return doc.toDomain(), nil
}

func (r *DestinationRepository) List(ctx context.Context) ([]*domain.Destination, error) {
	return r.find(ctx, bson.M{})
}

func (r *DestinationRepository) FindByAccountID(ctx context.Context, accountID string) ([]*domain.Destination, error) {
	return r.find(ctx, bson.M{"account_id": accountID})
}

func (r *DestinationRepository) find(ctx context.Context, filter bson.M) ([]*domain.Destination, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, newestFirst)
	if err != nil {
		return nil, fmt.Errorf("find destinations: %w", err)
	}

	var docs []destinationDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode destinations: %w", err)
	}

	out := make([]*domain.Destination, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *DestinationRepository) FindByID(ctx context.Context, id string) (*domain.Destination, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrDestinationNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc destinationDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrDestinationNotFound
		}
		return nil, fmt.Errorf("find destination: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *DestinationRepository) Update(ctx context.Context, id string, u domain.DestinationUpdate) (*domain.Destination, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrDestinationNotFound
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if u.URL != nil {
		set["url"] = *u.URL
	}
	if u.HTTPMethod != nil {
		set["http_method"] = string(*u.HTTPMethod)
	}
	if u.Headers != nil {
		set["headers"] = u.Headers
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc destinationDoc
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrDestinationNotFound
		}
		return nil, fmt.Errorf("update destination: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *DestinationRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrDestinationNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete destination: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrDestinationNotFound
	}
	return nil
}

func (r *DestinationRepository) DeleteByAccountID(ctx context.Context, accountID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteMany(ctx, bson.M{"account_id": accountID})
	if err != nil {
		return 0, fmt.Errorf("delete destinations of account: %w", err)
	}
	return res.DeletedCount, nil
}

// EnsureIndexes creates the lookup index used by dispatch.
func (r *DestinationRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
