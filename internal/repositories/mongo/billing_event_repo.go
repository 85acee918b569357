package mongo

import (
	"context"
	"time"

	"github.com/Varial17/studyfin-jobboard-sub000/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BillingEventRepository journals every payment-provider event the webhook
// receives, whatever its outcome. Entries expire through a TTL index.
type BillingEventRepository interface {
	Record(ctx context.Context, e *models.BillingEvent) error
	ListByUser(ctx context.Context, userID string, limit int64) ([]models.BillingEvent, error)
	Ping(ctx context.Context) error
}

type billingEventRepo struct {
	col *mongo.Collection
	ttl time.Duration
}

func NewBillingEventRepo(db *mongo.Database, ttl time.Duration) BillingEventRepository {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &billingEventRepo{col: db.Collection("billing_events"), ttl: ttl}
}

func (r *billingEventRepo) Record(ctx context.Context, e *models.BillingEvent) error {
	if e.ReceivedAt.IsZero() {
		e.ReceivedAt = time.Now().UTC()
	}
	if e.ExpiresAt.IsZero() {
		e.ExpiresAt = e.ReceivedAt.Add(r.ttl)
	}
	_, err := r.col.InsertOne(ctx, e)
	return err
}

func (r *billingEventRepo) ListByUser(ctx context.Context, userID string, limit int64) ([]models.BillingEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "received_at", Value: -1}}).
		SetLimit(limit)

	cur, err := r.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.BillingEvent
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *billingEventRepo) Ping(ctx context.Context) error {
	return r.col.Database().Client().Ping(ctx, nil)
}
