package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lubetrack/workshop-backend/internal/models"
)

// CustomerCollection defines the interface for customer database operations
type CustomerCollection interface {
	InsertCustomer(ctx context.Context, customer models.Customer) error
	FindCustomerByID(ctx context.Context, id string) (*models.Customer, error)
	FindCustomerByTaxID(ctx context.Context, taxID string) (*models.Customer, error)
	FindCustomers(ctx context.Context, filter bson.M, opts ...*options.FindOptions) (Cursor, error)
	CountCustomers(ctx context.Context, filter bson.M) (int64, error)
	UpdateCustomer(ctx context.Context, id string, customer models.Customer) error
	DeleteCustomer(ctx context.Context, id string) error
}

// MongoCustomerCollection implements CustomerCollection for MongoDB
type MongoCustomerCollection struct {
	Collection *mongo.Collection
}

// InsertCustomer inserts a new customer into the database
func (c *MongoCustomerCollection) InsertCustomer(ctx context.Context, customer models.Customer) error {
	customer.CreatedAt = time.Now()
	customer.UpdatedAt = time.Now()

	_, err := c.Collection.InsertOne(ctx, customer)
	return err
}

// FindCustomerByID finds a customer by their ID
func (c *MongoCustomerCollection) FindCustomerByID(ctx context.Context, id string) (*models.Customer, error) {
	objectID, err := parseObjectID("customer", id)
	if err != nil {
		return nil, err
	}

	var customer models.Customer
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&customer)
	if err != nil {
		return nil, notFound(err, "customer", id)
	}

	return &customer, nil
}

// FindCustomerByTaxID finds a customer by their tax id
func (c *MongoCustomerCollection) FindCustomerByTaxID(ctx context.Context, taxID string) (*models.Customer, error) {
	var customer models.Customer
	err := c.Collection.FindOne(ctx, bson.M{"tax_id": taxID}).Decode(&customer)
	if err != nil {
		return nil, notFound(err, "customer tax id", taxID)
	}

	return &customer, nil
}

// FindCustomers finds customers matching the filter
func (c *MongoCustomerCollection) FindCustomers(ctx context.Context, filter bson.M, opts ...*options.FindOptions) (Cursor, error) {
	cursor, err := c.Collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	return &mongoCursor{cursor: cursor}, nil
}

// CountCustomers counts customers matching the filter
func (c *MongoCustomerCollection) CountCustomers(ctx context.Context, filter bson.M) (int64, error) {
	return c.Collection.CountDocuments(ctx, filter)
}

// UpdateCustomer updates a customer in the database
func (c *MongoCustomerCollection) UpdateCustomer(ctx context.Context, id string, customer models.Customer) error {
	objectID, err := parseObjectID("customer", id)
	if err != nil {
		return err
	}

	customer.ID = objectID
	customer.UpdatedAt = time.Now()

	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": customer})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return notFound(mongo.ErrNoDocuments, "customer", id)
	}

	return nil
}

// DeleteCustomer deletes a customer from the database
func (c *MongoCustomerCollection) DeleteCustomer(ctx context.Context, id string) error {
	objectID, err := parseObjectID("customer", id)
	if err != nil {
		return err
	}

	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return notFound(mongo.ErrNoDocuments, "customer", id)
	}

	return nil
}
