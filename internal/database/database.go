package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chachabrian/carrental-backend/internal/config"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	CarsCollection     = "cars"
	BookingsCollection = "bookings"
)

var (
	// ErrNotFound is returned when no document matches.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidID is returned for ids that are not valid ObjectIDs.
	ErrInvalidID = errors.New("invalid document id")
	// ErrConflict is returned when a conditional write matched nothing,
	// a unique index rejected the write, or the transaction lost a write
	// conflict to a concurrent one.
	ErrConflict = errors.New("write conflict")
)

// DB is the process-wide connection pool. It is created once in main and
// handed to everything that needs the store.
type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// InitDB connects to MongoDB and verifies the primary is reachable.
func InitDB(ctx context.Context, cfg config.Mongo) (*DB, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(cfg.ServerSelectionTimeout).
		SetSocketTimeout(cfg.SocketTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ServerSelectionTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &DB{Client: client, Database: client.Database(cfg.Database)}, nil
}

// Ping checks the primary is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.Client.Ping(ctx, readpref.Primary())
}

// Close drains the pool.
func (db *DB) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return db.Client.Disconnect(ctx)
}

func (db *DB) Cars() *mongo.Collection     { return db.Database.Collection(CarsCollection) }
func (db *DB) Bookings() *mongo.Collection { return db.Database.Collection(BookingsCollection) }

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) || isWriteConflict(err) {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}

const writeConflictCode = 112

func isWriteConflict(err error) bool {
	var se mongo.ServerError
	if !errors.As(err, &se) {
		return false
	}
	return se.HasErrorCode(writeConflictCode) || se.HasErrorLabel("TransientTransactionError")
}
