package db

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lubetrack/workshop-backend/internal/models"
)

// Cursor defines the interface for iterating query results.
type Cursor interface {
	All(ctx context.Context, out interface{}) error
	Close(ctx context.Context) error
}

// mongoCursor wraps a live *mongo.Cursor behind the Cursor interface.
type mongoCursor struct {
	cursor *mongo.Cursor
}

// All retrieves all results from the cursor.
func (c *mongoCursor) All(ctx context.Context, out interface{}) error {
	return c.cursor.All(ctx, out)
}

// Close closes the cursor.
func (c *mongoCursor) Close(ctx context.Context) error {
	return c.cursor.Close(ctx)
}

// parseObjectID parses a hex id. Malformed input maps to ErrNotFound: no
// document can exist under an id the database cannot hold.
func parseObjectID(kind, id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%s %q: %w", kind, id, models.ErrNotFound)
	}
	return oid, nil
}

// notFound translates mongo.ErrNoDocuments into the domain's ErrNotFound.
func notFound(err error, kind, id string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s %s: %w", kind, id, models.ErrNotFound)
	}
	return err
}
