package program

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store interface {
	Create(ctx context.Context, p *Program) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Program, error)
	Find(ctx context.Context, filter Filter) ([]*Program, error)
	Update(ctx context.Context, p *Program) (bool, error)
	SoftDelete(ctx context.Context, id primitive.ObjectID, at time.Time) (bool, error)
	FindDeadlinesBetween(ctx context.Context, from, to time.Time) ([]*Program, error)
	CountByStatus(ctx context.Context) (map[Status]int64, error)
}

type ProgramRepository struct {
	collection *mongo.Collection
}

func NewProgramRepository(db *mongo.Database) *ProgramRepository {
	return &ProgramRepository{collection: db.Collection("programs")}
}

func (r *ProgramRepository) Create(ctx context.Context, p *Program) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, p)
	return err
}

// FindByID returns nil, nil for unknown and soft-deleted programs.
func (r *ProgramRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*Program, error) {
	var p Program
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "is_deleted": bson.M{"$ne": true}}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProgramRepository) Find(ctx context.Context, f Filter) ([]*Program, error) {
	query := bson.M{"is_deleted": bson.M{"$ne": true}}
	if f.Query != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Query), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"short_description": pattern},
			bson.M{"description": pattern},
			bson.M{"tags": pattern},
		}
	}
	if f.Category != "" {
		query["category"] = f.Category
	}
	if len(f.Statuses) > 0 {
		query["status"] = bson.M{"$in": f.Statuses}
	}
	return r.find(ctx, query)
}

func (r *ProgramRepository) FindDeadlinesBetween(ctx context.Context, from, to time.Time) ([]*Program, error) {
	return r.find(ctx, bson.M{
		"is_deleted":           bson.M{"$ne": true},
		"status":               bson.M{"$in": []Status{StatusPublished, StatusActive}},
		"application_deadline": bson.M{"$gte": from, "$lte": to},
	})
}

func (r *ProgramRepository) find(ctx context.Context, query bson.M) ([]*Program, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	programs := []*Program{}
	if err := cursor.All(ctx, &programs); err != nil {
		return nil, err
	}
	return programs, nil
}

func (r *ProgramRepository) Update(ctx context.Context, p *Program) (bool, error) {
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": p.ID, "is_deleted": bson.M{"$ne": true}}, p)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *ProgramRepository) SoftDelete(ctx context.Context, id primitive.ObjectID, at time.Time) (bool, error) {
	update := bson.M{"$set": bson.M{
		"is_deleted": true,
		"status":     StatusArchived,
		"deleted_at": at,
		"updated_at": at,
	}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "is_deleted": bson.M{"$ne": true}}, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *ProgramRepository) CountByStatus(ctx context.Context) (map[Status]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"is_deleted": bson.M{"$ne": true}}}},
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		Status Status `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	counts := make(map[Status]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
