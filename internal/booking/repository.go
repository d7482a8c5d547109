package booking

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrSlotTaken is returned by Create when another active booking already holds
// the mentor slot.
var ErrSlotTaken = errors.New("booking: mentor slot already taken")

type Store interface {
	Create(ctx context.Context, b *Booking) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Booking, error)
	ListForUser(ctx context.Context, userID primitive.ObjectID, from time.Time) ([]*Booking, error)
	SlotTaken(ctx context.Context, mentorID primitive.ObjectID, date time.Time, slot string) (bool, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status Status, at time.Time) (bool, error)
	Count(ctx context.Context) (int64, error)
}

type BookingRepository struct {
	collection *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{collection: db.Collection("bookings")}
}

func (r *BookingRepository) Create(ctx context.Context, b *Booking) error {
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, b)
	if mongo.IsDuplicateKeyError(err) {
		return ErrSlotTaken
	}
	return err
}

// FindByID returns nil, nil when the booking does not exist.
func (r *BookingRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*Booking, error) {
	var b Booking
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&b); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

// ListForUser returns the user's bookings on or after from, earliest first.
// A zero from lists everything.
func (r *BookingRepository) ListForUser(ctx context.Context, userID primitive.ObjectID, from time.Time) ([]*Booking, error) {
	filter := bson.M{"user_id": userID}
	if !from.IsZero() {
		filter["date"] = bson.M{"$gte": from}
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "time_slot", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	items := []*Booking{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *BookingRepository) SlotTaken(ctx context.Context, mentorID primitive.ObjectID, date time.Time, slot string) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{
		"mentor_id": mentorID,
		"date":      date,
		"time_slot": slot,
		"status":    bson.M{"$ne": StatusCancelled},
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *BookingRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status Status, at time.Time) (bool, error) {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": at}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *BookingRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}
