package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lubetrack/workshop-backend/internal/models"
)

// ServiceRecordCollection defines the interface for service record operations
type ServiceRecordCollection interface {
	InsertServiceRecord(ctx context.Context, record models.ServiceRecord) error
	FindServiceRecordByID(ctx context.Context, id string) (*models.ServiceRecord, error)
	FindServiceRecords(ctx context.Context, filter bson.M, opts ...*options.FindOptions) (Cursor, error)
	CountServiceRecords(ctx context.Context, filter bson.M) (int64, error)
	UpdateServiceRecord(ctx context.Context, id string, record models.ServiceRecord) error
	DeleteServiceRecord(ctx context.Context, id string) error
	FindLatestPerVehicle(ctx context.Context) ([]models.ServiceRecord, error)
	AggregateStats(ctx context.Context, filter bson.M) (*models.StatsTotals, error)
}

// MongoServiceRecordCollection implements ServiceRecordCollection for MongoDB
type MongoServiceRecordCollection struct {
	Collection *mongo.Collection
}

// InsertServiceRecord inserts a new service record into the database
func (c *MongoServiceRecordCollection) InsertServiceRecord(ctx context.Context, record models.ServiceRecord) error {
	record.CreatedAt = time.Now()
	record.UpdatedAt = time.Now()

	_, err := c.Collection.InsertOne(ctx, record)
	return err
}

// FindServiceRecordByID finds a service record by its ID
func (c *MongoServiceRecordCollection) FindServiceRecordByID(ctx context.Context, id string) (*models.ServiceRecord, error) {
	objectID, err := parseObjectID("service record", id)
	if err != nil {
		return nil, err
	}

	var record models.ServiceRecord
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&record)
	if err != nil {
		return nil, notFound(err, "service record", id)
	}

	return &record, nil
}

// FindServiceRecords finds service records matching the filter
func (c *MongoServiceRecordCollection) FindServiceRecords(ctx context.Context, filter bson.M, opts ...*options.FindOptions) (Cursor, error) {
	cursor, err := c.Collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	return &mongoCursor{cursor: cursor}, nil
}

// CountServiceRecords counts service records matching the filter
func (c *MongoServiceRecordCollection) CountServiceRecords(ctx context.Context, filter bson.M) (int64, error) {
	return c.Collection.CountDocuments(ctx, filter)
}

// UpdateServiceRecord updates a service record in the database
func (c *MongoServiceRecordCollection) UpdateServiceRecord(ctx context.Context, id string, record models.ServiceRecord) error {
	objectID, err := parseObjectID("service record", id)
	if err != nil {
		return err
	}

	record.ID = objectID
	record.UpdatedAt = time.Now()

	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": record})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return notFound(mongo.ErrNoDocuments, "service record", id)
	}

	return nil
}

// DeleteServiceRecord deletes a service record from the database
func (c *MongoServiceRecordCollection) DeleteServiceRecord(ctx context.Context, id string) error {
	objectID, err := parseObjectID("service record", id)
	if err != nil {
		return err
	}

	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return notFound(mongo.ErrNoDocuments, "service record", id)
	}

	return nil
}

// FindLatestPerVehicle returns the most recent service record of every
// vehicle. Records sharing a service date tie-break on _id, so the most
// recently inserted one wins.
func (c *MongoServiceRecordCollection) FindLatestPerVehicle(ctx context.Context) ([]models.ServiceRecord, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{
			{Key: "service_date", Value: -1},
			{Key: "_id", Value: -1},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$vehicle_id"},
			{Key: "doc", Value: bson.D{{Key: "$first", Value: "$$ROOT"}}},
		}}},
		{{Key: "$replaceRoot", Value: bson.D{{Key: "newRoot", Value: "$doc"}}}},
	}

	cursor, err := c.Collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.ServiceRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// AggregateStats sums record counts, charges, and liters over every
// record matching the filter. A filter that matches nothing yields zero
// totals, not an error.
func (c *MongoServiceRecordCollection) AggregateStats(ctx context.Context, filter bson.M) (*models.StatsTotals, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "revenue", Value: bson.D{{Key: "$sum", Value: "$total"}}},
			{Key: "oil_charges", Value: bson.D{{Key: "$sum", Value: "$oil_charge"}}},
			{Key: "labor_charges", Value: bson.D{{Key: "$sum", Value: "$labor_charge"}}},
			{Key: "liters", Value: bson.D{{Key: "$sum", Value: "$liters_used"}}},
		}}},
	}

	cursor, err := c.Collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []models.StatsTotals
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &models.StatsTotals{}, nil
	}
	return &rows[0], nil
}
