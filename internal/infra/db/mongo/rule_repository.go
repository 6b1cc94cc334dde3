package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainrates "stayd/internal/domain/rates"
	domainunit "stayd/internal/domain/unit"
)

type RuleRepository struct {
	col *mongo.Collection
}

func NewRuleRepository(db *mongo.Database) *RuleRepository {
	return &RuleRepository{col: db.Collection("agg_pricing_rule")}
}

func (r *RuleRepository) ByID(ctx context.Context, id domainrates.RuleID) (*domainrates.PricingRule, error) {
	var doc ruleDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainrates.ErrRuleNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *RuleRepository) Save(ctx context.Context, rule *domainrates.PricingRule) error {
	doc := newRuleDocument(rule)
	filter := bson.M{"_id": doc.ID, "version": rule.Version}
	doc.Version = rule.Version + 1
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
	rule.Version = doc.Version
	return nil
}

func (r *RuleRepository) ActiveByUnit(ctx context.Context, unitID domainunit.UnitID) ([]*domainrates.PricingRule, error) {
	opts := options.Find().SetSort(bson.D{{Key: "start", Value: 1}})
	cursor, err := r.col.Find(ctx, bson.M{"unit_id": string(unitID), "active": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []*domainrates.PricingRule
	for cursor.Next(ctx) {
		var doc ruleDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

type ruleDocument struct {
	ID            string `bson:"_id"`
	UnitID        string `bson:"unit_id"`
	Label         string `bson:"label"`
	Start         int64  `bson:"start"`
	End           int64  `bson:"end"`
	MultiplierPct int64  `bson:"multiplier_pct"`
	Active        bool   `bson:"active"`
	CreatedAt     int64  `bson:"created_at"`
	UpdatedAt     int64  `bson:"updated_at"`
	Version       int64  `bson:"version"`
}

func newRuleDocument(rule *domainrates.PricingRule) ruleDocument {
	return ruleDocument{
		ID:            string(rule.ID),
		UnitID:        string(rule.UnitID),
		Label:         rule.Label,
		Start:         rule.Start.UnixMilli(),
		End:           rule.End.UnixMilli(),
		MultiplierPct: rule.MultiplierPct,
		Active:        rule.Active,
		CreatedAt:     rule.CreatedAt.UnixMilli(),
		UpdatedAt:     rule.UpdatedAt.UnixMilli(),
		Version:       rule.Version,
	}
}

func (d ruleDocument) toAggregate() *domainrates.PricingRule {
	return &domainrates.PricingRule{
		ID:            domainrates.RuleID(d.ID),
		UnitID:        domainunit.UnitID(d.UnitID),
		Label:         d.Label,
		Start:         timestampToTime(d.Start),
		End:           timestampToTime(d.End),
		MultiplierPct: d.MultiplierPct,
		Active:        d.Active,
		CreatedAt:     timestampToTime(d.CreatedAt),
		UpdatedAt:     timestampToTime(d.UpdatedAt),
		Version:       d.Version,
	}
}
