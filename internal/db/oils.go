package db

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lubetrack/workshop-backend/internal/models"
)

// OilCollection defines the interface for oil database operations
type OilCollection interface {
	InsertOil(ctx context.Context, oil models.Oil) error
	FindOilByID(ctx context.Context, id string) (*models.Oil, error)
	FindOils(ctx context.Context, filter bson.M, opts ...*options.FindOptions) (Cursor, error)
	CountOils(ctx context.Context, filter bson.M) (int64, error)
	UpdateOil(ctx context.Context, id string, oil models.Oil) error
	UpdateOilStock(ctx context.Context, id string, liters decimal.Decimal) error
	FindLowStockOils(ctx context.Context) ([]models.Oil, error)
	DeleteOil(ctx context.Context, id string) error
}

// MongoOilCollection implements OilCollection for MongoDB
type MongoOilCollection struct {
	Collection *mongo.Collection
}

// InsertOil inserts a new oil product into the database
func (c *MongoOilCollection) InsertOil(ctx context.Context, oil models.Oil) error {
	oil.Active = true
	oil.CreatedAt = time.Now()
	oil.UpdatedAt = time.Now()

	_, err := c.Collection.InsertOne(ctx, oil)
	return err
}

// FindOilByID finds an oil product by its ID
func (c *MongoOilCollection) FindOilByID(ctx context.Context, id string) (*models.Oil, error) {
	objectID, err := parseObjectID("oil", id)
	if err != nil {
		return nil, err
	}

	var oil models.Oil
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&oil)
	if err != nil {
		return nil, notFound(err, "oil", id)
	}

	return &oil, nil
}

// FindOils finds oil products matching the filter
func (c *MongoOilCollection) FindOils(ctx context.Context, filter bson.M, opts ...*options.FindOptions) (Cursor, error) {
	cursor, err := c.Collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	return &mongoCursor{cursor: cursor}, nil
}

// CountOils counts oil products matching the filter
func (c *MongoOilCollection) CountOils(ctx context.Context, filter bson.M) (int64, error) {
	return c.Collection.CountDocuments(ctx, filter)
}

// UpdateOil updates an oil product in the database
func (c *MongoOilCollection) UpdateOil(ctx context.Context, id string, oil models.Oil) error {
	objectID, err := parseObjectID("oil", id)
	if err != nil {
		return err
	}

	oil.ID = objectID
	oil.UpdatedAt = time.Now()

	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": oil})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return notFound(mongo.ErrNoDocuments, "oil", id)
	}

	return nil
}

// UpdateOilStock sets the oil's stock level in liters
func (c *MongoOilCollection) UpdateOilStock(ctx context.Context, id string, liters decimal.Decimal) error {
	objectID, err := parseObjectID("oil", id)
	if err != nil {
		return err
	}

	result, err := c.Collection.UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"stock_liters": liters, "updated_at": time.Now()}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return notFound(mongo.ErrNoDocuments, "oil", id)
	}

	return nil
}

// FindLowStockOils returns active oils whose stock is below their minimum
func (c *MongoOilCollection) FindLowStockOils(ctx context.Context) ([]models.Oil, error) {
	cursor, err := c.Collection.Find(ctx, bson.M{
		"active": true,
		"$expr":  bson.M{"$lt": bson.A{"$stock_liters", "$min_stock_liters"}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var oils []models.Oil
	if err := cursor.All(ctx, &oils); err != nil {
		return nil, err
	}
	return oils, nil
}

// DeleteOil deletes an oil product from the database
func (c *MongoOilCollection) DeleteOil(ctx context.Context, id string) error {
	objectID, err := parseObjectID("oil", id)
	if err != nil {
		return err
	}

	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return notFound(mongo.ErrNoDocuments, "oil", id)
	}

	return nil
}
