package mentor

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
	Create(ctx context.Context, m *Mentor) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Mentor, error)
	List(ctx context.Context, query string) ([]*Mentor, error)
	Update(ctx context.Context, m *Mentor) (bool, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
	Count(ctx context.Context) (int64, error)
}

type MentorRepository struct {
	collection *mongo.Collection
}

func NewMentorRepository(db *mongo.Database) *MentorRepository {
	return &MentorRepository{collection: db.Collection("mentors")}
}

func (r *MentorRepository) Create(ctx context.Context, m *Mentor) error {
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, m)
	return err
}

// FindByID returns nil, nil when the mentor does not exist.
func (r *MentorRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*Mentor, error) {
	var m Mentor
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// List matches query against name, company and expertise; empty lists all.
func (r *MentorRepository) List(ctx context.Context, query string) ([]*Mentor, error) {
	filter := bson.M{}
	if query != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"company": pattern},
			bson.M{"expertise": pattern},
		}
	}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	mentors := []*Mentor{}
	if err := cursor.All(ctx, &mentors); err != nil {
		return nil, err
	}
	return mentors, nil
}

func (r *MentorRepository) Update(ctx context.Context, m *Mentor) (bool, error) {
	m.UpdatedAt = time.Now().UTC()
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": m.ID}, m)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *MentorRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *MentorRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}
