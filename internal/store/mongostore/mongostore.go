// Package mongostore implements store.Store over MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"trading-journal-go/internal/models"
	"trading-journal-go/internal/store"
)

// Collection names shared with the frontend's existing database.
const (
	HoldingsCollection  = "holdings"
	PositionsCollection = "positions"
	OrdersCollection    = "orders"
	UsersCollection     = "users"
)

// Store is a store.Store backed by a single mongo.Client.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

var _ store.Store = (*Store)(nil)

// Open connects to uri, pings the primary and makes sure the unique email
// index exists. The connection is not usable until Open returns nil.
func Open(ctx context.Context, uri, database string, timeout time.Duration, logger *zap.Logger) (*Store, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	s := &Store{client: client, db: client.Database(database), logger: logger}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := s.Ping(pingCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	logger.Info("Connected to MongoDB", zap.String("database", database))
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(UsersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create users email index: %w", err)
	}
	return nil
}

func (s *Store) ListHoldings(ctx context.Context) ([]models.Holding, error) {
	out := make([]models.Holding, 0)
	if err := s.findAll(ctx, HoldingsCollection, nil, &out); err != nil {
		return nil, fmt.Errorf("list holdings: %w", err)
	}
	if out == nil {
		out = []models.Holding{}
	}
	return out, nil
}

func (s *Store) ListPositions(ctx context.Context) ([]models.Position, error) {
	out := make([]models.Position, 0)
	if err := s.findAll(ctx, PositionsCollection, nil, &out); err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}
	if out == nil {
		out = []models.Position{}
	}
	return out, nil
}

func (s *Store) CreateOrder(ctx context.Context, o *models.Order) error {
	o.ID = primitive.NewObjectID()
	if _, err := s.db.Collection(OrdersCollection).InsertOne(ctx, o); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// ListOrders sorts on _id; ObjectIDs grow with insertion time.
func (s *Store) ListOrders(ctx context.Context) ([]models.Order, error) {
	out := make([]models.Order, 0)
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: -1}})
	if err := s.findAll(ctx, OrdersCollection, opts, &out); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if out == nil {
		out = []models.Order{}
	}
	return out, nil
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	u.ID = primitive.NewObjectID()
	if _, err := s.db.Collection(UsersCollection).InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"email": email})
}

func (s *Store) UserByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ErrNotFound
	}
	return s.findUser(ctx, bson.M{"_id": oid})
}

func (s *Store) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	err := s.db.Collection(UsersCollection).FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (s *Store) InsertHoldings(ctx context.Context, hs []models.Holding) error {
	docs := make([]interface{}, len(hs))
	for i := range hs {
		hs[i].ID = primitive.NewObjectID()
		docs[i] = hs[i]
	}
	return s.insertMany(ctx, HoldingsCollection, docs)
}

func (s *Store) InsertPositions(ctx context.Context, ps []models.Position) error {
	docs := make([]interface{}, len(ps))
	for i := range ps {
		ps[i].ID = primitive.NewObjectID()
		docs[i] = ps[i]
	}
	return s.insertMany(ctx, PositionsCollection, docs)
}

func (s *Store) insertMany(ctx context.Context, collection string, docs []interface{}) error {
	if len(docs) == 0 {
		return nil
	}
	if _, err := s.db.Collection(collection).InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert %s: %w", collection, err)
	}
	return nil
}

// findAll decodes every document matching an empty filter into out, which must
// be a pointer to a slice.
func (s *Store) findAll(ctx context.Context, collection string, opts *options.FindOptions, out interface{}) error {
	var findOpts []*options.FindOptions
	if opts != nil {
		findOpts = append(findOpts, opts)
	}
	cur, err := s.db.Collection(collection).Find(ctx, bson.D{}, findOpts...)
	if err != nil {
		return err
	}
	return cur.All(ctx, out)
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("failed to ping mongo: %w", err)
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
