package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainunit "stayd/internal/domain/unit"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

type UnitRepository struct {
	col *mongo.Collection
}

func NewUnitRepository(db *mongo.Database) *UnitRepository {
	return &UnitRepository{col: db.Collection("agg_unit")}
}

func (r *UnitRepository) ByID(ctx context.Context, id domainunit.UnitID) (*domainunit.RentalUnit, error) {
	var doc unitDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainunit.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *UnitRepository) Save(ctx context.Context, u *domainunit.RentalUnit) error {
	doc := newUnitDocument(u)
	filter := bson.M{"_id": doc.ID, "version": u.Version}
	doc.Version = u.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	u.Version = doc.Version
	return nil
}

func (r *UnitRepository) ListByOwner(ctx context.Context, owner domainunit.OwnerID) ([]*domainunit.RentalUnit, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.col.Find(ctx, bson.M{"owner_id": string(owner)}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []*domainunit.RentalUnit
	for cursor.Next(ctx) {
		var doc unitDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

type unitDocument struct {
	ID               string `bson:"_id"`
	OwnerID          string `bson:"owner_id"`
	Name             string `bson:"name"`
	Currency         string `bson:"currency"`
	BaseRateCents    int64  `bson:"base_rate_cents"`
	CleaningFeeCents int64  `bson:"cleaning_fee_cents"`
	ServiceFeePct    int64  `bson:"service_fee_pct"`
	TaxPct           int64  `bson:"tax_pct"`
	TouristTaxCents  int64  `bson:"tourist_tax_cents"`
	MaxGuests        int    `bson:"max_guests"`
	Status           string `bson:"status"`
	CreatedAt        int64  `bson:"created_at"`
	UpdatedAt        int64  `bson:"updated_at"`
	Version          int64  `bson:"version"`
}

func newUnitDocument(u *domainunit.RentalUnit) unitDocument {
	return unitDocument{
		ID:               string(u.ID),
		OwnerID:          string(u.Owner),
		Name:             u.Name,
		Currency:         u.Currency,
		BaseRateCents:    u.BaseRateCents,
		CleaningFeeCents: u.CleaningFeeCents,
		ServiceFeePct:    u.ServiceFeePct,
		TaxPct:           u.TaxPct,
		TouristTaxCents:  u.TouristTaxCents,
		MaxGuests:        u.MaxGuests,
		Status:           string(u.Status),
		CreatedAt:        u.CreatedAt.UnixMilli(),
		UpdatedAt:        u.UpdatedAt.UnixMilli(),
		Version:          u.Version,
	}
}

func (d unitDocument) toAggregate() *domainunit.RentalUnit {
	return &domainunit.RentalUnit{
		ID:               domainunit.UnitID(d.ID),
		Owner:            domainunit.OwnerID(d.OwnerID),
		Name:             d.Name,
		Currency:         d.Currency,
		BaseRateCents:    d.BaseRateCents,
		CleaningFeeCents: d.CleaningFeeCents,
		ServiceFeePct:    d.ServiceFeePct,
		TaxPct:           d.TaxPct,
		TouristTaxCents:  d.TouristTaxCents,
		MaxGuests:        d.MaxGuests,
		Status:           domainunit.Status(d.Status),
		CreatedAt:        timestampToTime(d.CreatedAt),
		UpdatedAt:        timestampToTime(d.UpdatedAt),
		Version:          d.Version,
	}
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
