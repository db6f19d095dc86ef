package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lubetrack/workshop-backend/internal/models"
)

// ServiceTypeCollection defines the interface for service type operations
type ServiceTypeCollection interface {
	InsertServiceType(ctx context.Context, st models.ServiceType) error
	FindServiceTypeByID(ctx context.Context, id string) (*models.ServiceType, error)
	FindServiceTypes(ctx context.Context, filter bson.M, opts ...*options.FindOptions) (Cursor, error)
	CountServiceTypes(ctx context.Context, filter bson.M) (int64, error)
	UpdateServiceType(ctx context.Context, id string, st models.ServiceType) error
	DeleteServiceType(ctx context.Context, id string) error
}

// MongoServiceTypeCollection implements ServiceTypeCollection for MongoDB
type MongoServiceTypeCollection struct {
	Collection *mongo.Collection
}

// InsertServiceType inserts a new service type into the database
func (c *MongoServiceTypeCollection) InsertServiceType(ctx context.Context, st models.ServiceType) error {
	st.Active = true
	st.CreatedAt = time.Now()
	st.UpdatedAt = time.Now()

	_, err := c.Collection.InsertOne(ctx, st)
	return err
}

// FindServiceTypeByID finds a service type by its ID
func (c *MongoServiceTypeCollection) FindServiceTypeByID(ctx context.Context, id string) (*models.ServiceType, error) {
	objectID, err := parseObjectID("service type", id)
	if err != nil {
		return nil, err
	}

	var st models.ServiceType
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&st)
	if err != nil {
		return nil, notFound(err, "service type", id)
	}

	return &st, nil
}

// FindServiceTypes finds service types matching the filter
func (c *MongoServiceTypeCollection) FindServiceTypes(ctx context.Context, filter bson.M, opts ...*options.FindOptions) (Cursor, error) {
	cursor, err := c.Collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	return &mongoCursor{cursor: cursor}, nil
}

// CountServiceTypes counts service types matching the filter
func (c *MongoServiceTypeCollection) CountServiceTypes(ctx context.Context, filter bson.M) (int64, error) {
	return c.Collection.CountDocuments(ctx, filter)
}

// UpdateServiceType updates a service type in the database
func (c *MongoServiceTypeCollection) UpdateServiceType(ctx context.Context, id string, st models.ServiceType) error {
	objectID, err := parseObjectID("service type", id)
	if err != nil {
		return err
	}

	st.ID = objectID
	st.UpdatedAt = time.Now()

	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": st})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return notFound(mongo.ErrNoDocuments, "service type", id)
	}

	return nil
}

// DeleteServiceType deletes a service type from the database
func (c *MongoServiceTypeCollection) DeleteServiceType(ctx context.Context, id string) error {
	objectID, err := parseObjectID("service type", id)
	if err != nil {
		return err
	}

	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return notFound(mongo.ErrNoDocuments, "service type", id)
	}

	return nil
}
