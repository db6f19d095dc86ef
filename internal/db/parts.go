package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lubetrack/workshop-backend/internal/models"
)

// PartCollection defines the interface for part database operations
type PartCollection interface {
	InsertPart(ctx context.Context, part models.Part) error
	FindPartByID(ctx context.Context, id string) (*models.Part, error)
	FindParts(ctx context.Context, filter bson.M, opts ...*options.FindOptions) (Cursor, error)
	CountParts(ctx context.Context, filter bson.M) (int64, error)
	UpdatePart(ctx context.Context, id string, part models.Part) error
	UpdatePartStock(ctx context.Context, id string, stock int64) error
	FindLowStockParts(ctx context.Context) ([]models.Part, error)
	DeletePart(ctx context.Context, id string) error
}

// MongoPartCollection implements PartCollection for MongoDB
type MongoPartCollection struct {
	Collection *mongo.Collection
}

// InsertPart inserts a new part into the database
func (c *MongoPartCollection) InsertPart(ctx context.Context, part models.Part) error {
	part.Active = true
	part.CreatedAt = time.Now()
	part.UpdatedAt = time.Now()

	_, err := c.Collection.InsertOne(ctx, part)
	return err
}

// FindPartByID finds a part by its ID
func (c *MongoPartCollection) FindPartByID(ctx context.Context, id string) (*models.Part, error) {
	objectID, err := parseObjectID("part", id)
	if err != nil {
		return nil, err
	}

	var part models.Part
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&part)
	if err != nil {
		return nil, notFound(err, "part", id)
	}

	return &part, nil
}

// FindParts finds parts matching the filter
func (c *MongoPartCollection) FindParts(ctx context.Context, filter bson.M, opts ...*options.FindOptions) (Cursor, error) {
	cursor, err := c.Collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	return &mongoCursor{cursor: cursor}, nil
}

// CountParts counts parts matching the filter
func (c *MongoPartCollection) CountParts(ctx context.Context, filter bson.M) (int64, error) {
	return c.Collection.CountDocuments(ctx, filter)
}

// UpdatePart updates a part in the database
func (c *MongoPartCollection) UpdatePart(ctx context.Context, id string, part models.Part) error {
	objectID, err := parseObjectID("part", id)
	if err != nil {
		return err
	}

	part.ID = objectID
	part.UpdatedAt = time.Now()

	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": part})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return notFound(mongo.ErrNoDocuments, "part", id)
	}

	return nil
}

// UpdatePartStock sets the part's stock level in units
func (c *MongoPartCollection) UpdatePartStock(ctx context.Context, id string, stock int64) error {
	objectID, err := parseObjectID("part", id)
	if err != nil {
		return err
	}

	result, err := c.Collection.UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"stock": stock, "updated_at": time.Now()}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return notFound(mongo.ErrNoDocuments, "part", id)
	}

	return nil
}

// FindLowStockParts returns active parts whose stock is below their minimum
func (c *MongoPartCollection) FindLowStockParts(ctx context.Context) ([]models.Part, error) {
	cursor, err := c.Collection.Find(ctx, bson.M{
		"active": true,
		"$expr":  bson.M{"$lt": bson.A{"$stock", "$min_stock"}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var parts []models.Part
	if err := cursor.All(ctx, &parts); err != nil {
		return nil, err
	}
	return parts, nil
}

// DeletePart deletes a part from the database
func (c *MongoPartCollection) DeletePart(ctx context.Context, id string) error {
	objectID, err := parseObjectID("part", id)
	if err != nil {
		return err
	}

	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return notFound(mongo.ErrNoDocuments, "part", id)
	}

	return nil
}
