package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "stayd/internal/domain/booking"
	domainpricing "stayd/internal/domain/pricing"
	domainrange "stayd/internal/domain/shared/daterange"
	domainunit "stayd/internal/domain/unit"
)

type ReservationRepository struct {
	col *mongo.Collection
}

func NewReservationRepository(db *mongo.Database) *ReservationRepository {
	return &ReservationRepository{col: db.Collection("agg_reservation")}
}

func (r *ReservationRepository) ByID(ctx context.Context, id domainbooking.ReservationID) (*domainbooking.Reservation, error) {
	var doc reservationDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ReservationRepository) Save(ctx context.Context, res *domainbooking.Reservation) error {
	doc := newReservationDocument(res)
	filter := bson.M{"_id": doc.ID, "version": res.Version}
	doc.Version = res.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	result, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if result.MatchedCount == 0 && result.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	res.Version = doc.Version
	return nil
}

func (r *ReservationRepository) ActiveByUnit(ctx context.Context, unitID domainunit.UnitID) ([]*domainbooking.Reservation, error) {
	filter := bson.M{
		"unit_id": string(unitID),
		"status":  bson.M{"$in": []string{string(domainbooking.StatusPending), string(domainbooking.StatusConfirmed)}},
	}
	opts := options.Find().SetSort(bson.D{{Key: "range.check_in", Value: 1}})
	return r.find(ctx, filter, opts)
}

func (r *ReservationRepository) ListByRequester(ctx context.Context, requesterID string) ([]*domainbooking.Reservation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, bson.M{"requester_id": requesterID}, opts)
}

func (r *ReservationRepository) PendingBefore(ctx context.Context, cutoff time.Time, unitID domainunit.UnitID) ([]*domainbooking.Reservation, error) {
	filter := bson.M{
		"status":     string(domainbooking.StatusPending),
		"payment":    string(domainbooking.PaymentPending),
		"created_at": bson.M{"$lte": cutoff.UnixMilli()},
	}
	if unitID != "" {
		filter["unit_id"] = string(unitID)
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	return r.find(ctx, filter, opts)
}

func (r *ReservationRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domainbooking.Reservation, error) {
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []*domainbooking.Reservation
	for cursor.Next(ctx) {
		var doc reservationDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

type reservationDocument struct {
	ID              string                  `bson:"_id"`
	UnitID          string                  `bson:"unit_id"`
	RequesterID     string                  `bson:"requester_id"`
	Range           rangeDocument           `bson:"range"`
	Guests          int                     `bson:"guests"`
	Price           domainpricing.Breakdown `bson:"price"`
	Status          string                  `bson:"status"`
	Payment         string                  `bson:"payment"`
	Guest           domainbooking.GuestInfo `bson:"guest"`
	SpecialRequests string                  `bson:"special_requests"`
	Reference       string                  `bson:"reference"`
	CancelReason    string                  `bson:"cancel_reason"`
	CreatedAt       int64                   `bson:"created_at"`
	UpdatedAt       int64                   `bson:"updated_at"`
	Version         int64                   `bson:"version"`
}

type rangeDocument struct {
	CheckIn  int64 `bson:"check_in"`
	CheckOut int64 `bson:"check_out"`
}

func newReservationDocument(res *domainbooking.Reservation) reservationDocument {
	return reservationDocument{
		ID:              string(res.ID),
		UnitID:          string(res.UnitID),
		RequesterID:     res.RequesterID,
		Range:           rangeDocument{CheckIn: res.Range.CheckIn.UnixMilli(), CheckOut: res.Range.CheckOut.UnixMilli()},
		Guests:          res.Guests,
		Price:           res.Price,
		Status:          string(res.Status),
		Payment:         string(res.Payment),
		Guest:           res.Guest,
		SpecialRequests: res.SpecialRequests,
		Reference:       res.Reference,
		CancelReason:    res.CancelReason,
		CreatedAt:       res.CreatedAt.UnixMilli(),
		UpdatedAt:       res.UpdatedAt.UnixMilli(),
		Version:         res.Version,
	}
}

func (d reservationDocument) toAggregate() *domainbooking.Reservation {
	return &domainbooking.Reservation{
		ID:          domainbooking.ReservationID(d.ID),
		UnitID:      domainunit.UnitID(d.UnitID),
		RequesterID: d.RequesterID,
		Range: domainrange.DateRange{
			CheckIn:  timestampToTime(d.Range.CheckIn),
			CheckOut: timestampToTime(d.Range.CheckOut),
		},
		Guests:          d.Guests,
		Price:           d.Price,
		Status:          domainbooking.Status(d.Status),
		Payment:         domainbooking.PaymentStatus(d.Payment),
		Guest:           d.Guest,
		SpecialRequests: d.SpecialRequests,
		Reference:       d.Reference,
		CancelReason:    d.CancelReason,
		CreatedAt:       timestampToTime(d.CreatedAt),
		UpdatedAt:       timestampToTime(d.UpdatedAt),
		Version:         d.Version,
	}
}
