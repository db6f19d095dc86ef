package db

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lubetrack/workshop-backend/internal/models"
)

// VehicleCollection defines the interface for vehicle database operations
type VehicleCollection interface {
	InsertVehicle(ctx context.Context, vehicle models.Vehicle) error
	FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error)
	FindVehicleByPlate(ctx context.Context, plate string) (*models.Vehicle, error)
	FindVehicles(ctx context.Context, filter bson.M, opts ...*options.FindOptions) (Cursor, error)
	CountVehicles(ctx context.Context, filter bson.M) (int64, error)
	UpdateVehicle(ctx context.Context, id string, vehicle models.Vehicle) error
	UpdateVehicleOdometer(ctx context.Context, id string, km int64) error
	DeleteVehicle(ctx context.Context, id string) error
	DeleteVehiclesByCustomer(ctx context.Context, customerID primitive.ObjectID) (int64, error)
}

// MongoVehicleCollection implements VehicleCollection for MongoDB
type MongoVehicleCollection struct {
	Collection *mongo.Collection
}

// InsertVehicle inserts a new vehicle into the database
func (c *MongoVehicleCollection) InsertVehicle(ctx context.Context, vehicle models.Vehicle) error {
	vehicle.Plate = strings.ToUpper(vehicle.Plate)
	vehicle.Active = true
	vehicle.CreatedAt = time.Now()
	vehicle.UpdatedAt = time.Now()

	_, err := c.Collection.InsertOne(ctx, vehicle)
	return err
}

// FindVehicleByID finds a vehicle by its ID
func (c *MongoVehicleCollection) FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error) {
	objectID, err := parseObjectID("vehicle", id)
	if err != nil {
		return nil, err
	}

	var vehicle models.Vehicle
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&vehicle)
	if err != nil {
		return nil, notFound(err, "vehicle", id)
	}

	return &vehicle, nil
}

// FindVehicleByPlate finds a vehicle by its license plate. Plates are
// stored uppercased, so the lookup uppercases too.
func (c *MongoVehicleCollection) FindVehicleByPlate(ctx context.Context, plate string) (*models.Vehicle, error) {
	plate = strings.ToUpper(plate)

	var vehicle models.Vehicle
	err := c.Collection.FindOne(ctx, bson.M{"plate": plate}).Decode(&vehicle)
	if err != nil {
		return nil, notFound(err, "vehicle plate", plate)
	}

	return &vehicle, nil
}

// FindVehicles finds vehicles matching the filter
func (c *MongoVehicleCollection) FindVehicles(ctx context.Context, filter bson.M, opts ...*options.FindOptions) (Cursor, error) {
	cursor, err := c.Collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	return &mongoCursor{cursor: cursor}, nil
}

// CountVehicles counts vehicles matching the filter
func (c *MongoVehicleCollection) CountVehicles(ctx context.Context, filter bson.M) (int64, error) {
	return c.Collection.CountDocuments(ctx, filter)
}

// UpdateVehicle updates a vehicle in the database
func (c *MongoVehicleCollection) UpdateVehicle(ctx context.Context, id string, vehicle models.Vehicle) error {
	objectID, err := parseObjectID("vehicle", id)
	if err != nil {
		return err
	}

	vehicle.ID = objectID
	vehicle.Plate = strings.ToUpper(vehicle.Plate)
	vehicle.UpdatedAt = time.Now()

	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": vehicle})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return notFound(mongo.ErrNoDocuments, "vehicle", id)
	}

	return nil
}

// UpdateVehicleOdometer sets the vehicle's current odometer reading
func (c *MongoVehicleCollection) UpdateVehicleOdometer(ctx context.Context, id string, km int64) error {
	objectID, err := parseObjectID("vehicle", id)
	if err != nil {
		return err
	}

	result, err := c.Collection.UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"current_km": km, "updated_at": time.Now()}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return notFound(mongo.ErrNoDocuments, "vehicle", id)
	}

	return nil
}

// DeleteVehicle deletes a vehicle from the database
func (c *MongoVehicleCollection) DeleteVehicle(ctx context.Context, id string) error {
	objectID, err := parseObjectID("vehicle", id)
	if err != nil {
		return err
	}

	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return notFound(mongo.ErrNoDocuments, "vehicle", id)
	}

	return nil
}

// DeleteVehiclesByCustomer deletes every vehicle owned by the customer
// and returns how many were removed.
func (c *MongoVehicleCollection) DeleteVehiclesByCustomer(ctx context.Context, customerID primitive.ObjectID) (int64, error) {
	result, err := c.Collection.DeleteMany(ctx, bson.M{"customer_id": customerID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}
