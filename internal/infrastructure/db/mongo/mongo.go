package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/postboard/postboard-api/internal/core/domain"
)

const (
	defaultTimeout = 10 * time.Second

	collectionAccounts = "accounts"
	collectionRoles    = "roles"
	collectionPosts    = "posts"
	collectionCounters = "counters"
)

// seedRoles mirrors the ids used by the SQL backends.
var seedRoles = []domain.Role{
	{ID: 1, Name: domain.RoleAdmin},
	{ID: 2, Name: domain.RoleBasic},
}

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}

// Store groups the repositories that share one database handle.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Open connects, creates indexes and seeds the role collection.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	client, db, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s := &Store{client: client, db: db}
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	if err := s.seedRoles(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *Store) Accounts() *AccountRepository { return NewAccountRepository(s.db) }
func (s *Store) Roles() *RoleRepository       { return NewRoleRepository(s.db) }
func (s *Store) Posts() *PostRepository       { return NewPostRepository(s.db) }

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// EnsureIndexes creates the unique and feed indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := s.db.Collection(collectionAccounts).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("account indexes: %w", err)
	}
	if _, err := s.db.Collection(collectionRoles).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("role indexes: %w", err)
	}
	if _, err := s.db.Collection(collectionPosts).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
	}); err != nil {
		return fmt.Errorf("post indexes: %w", err)
	}
	return nil
}

func (s *Store) seedRoles(ctx context.Context) error {
	coll := s.db.Collection(collectionRoles)
	for _, r := range seedRoles {
		_, err := coll.UpdateOne(ctx,
			bson.M{"_id": r.ID},
			bson.M{"$setOnInsert": bson.M{"name": string(r.Name)}},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return fmt.Errorf("seed role %s: %w", r.Name, err)
		}
	}
	return nil
}
