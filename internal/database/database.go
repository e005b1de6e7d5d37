package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"trading-journal-go/internal/models"
	"trading-journal-go/internal/store"
)

// Database is a store.Store over an embedded sqlite file. Each table keeps an
// autoincrement sequence for insertion order and the ObjectID-style document
// id the API exposes.
type Database struct {
	db     *gorm.DB
	logger *zap.Logger
}

var _ store.Store = (*Database)(nil)

// NewDatabase opens the sqlite database at dsn and migrates the schema.
func NewDatabase(dsn string, logger *zap.Logger) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := AutoMigrate(db); err != nil {
		if sqlDB, derr := db.DB(); derr == nil {
			_ = sqlDB.Close()
		}
		return nil, err
	}

	logger.Info("Opened sqlite database", zap.String("dsn", dsn))
	return &Database{db: db, logger: logger}, nil
}

// AutoMigrate creates or updates the tables of every record type.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&holdingRecord{}, &positionRecord{}, &orderRecord{}, &userRecord{}); err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return nil
}

func (d *Database) ListHoldings(ctx context.Context) ([]models.Holding, error) {
	var rows []holdingRecord
	if err := d.db.WithContext(ctx).Order("seq asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list holdings: %w", err)
	}
	out := make([]models.Holding, 0, len(rows))
	for _, r := range rows {
		m, err := r.model()
		if err != nil {
			return nil, fmt.Errorf("list holdings: %w", err)
		}
		out = append(out, m)
	}
	return out, nil
}

func (d *Database) ListPositions(ctx context.Context) ([]models.Position, error) {
	var rows []positionRecord
	if err := d.db.WithContext(ctx).Order("seq asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}
	out := make([]models.Position, 0, len(rows))
	for _, r := range rows {
		m, err := r.model()
		if err != nil {
			return nil, fmt.Errorf("list positions: %w", err)
		}
		out = append(out, m)
	}
	return out, nil
}

func (d *Database) CreateOrder(ctx context.Context, o *models.Order) error {
	o.ID = primitive.NewObjectID()
	rec := newOrderRecord(*o)
	if err := d.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// ListOrders orders by the autoincrement sequence, newest first.
func (d *Database) ListOrders(ctx context.Context) ([]models.Order, error) {
	var rows []orderRecord
	if err := d.db.WithContext(ctx).Order("seq desc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	out := make([]models.Order, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, nil
}

func (d *Database) CreateUser(ctx context.Context, u *models.User) error {
	u.ID = primitive.NewObjectID()
	rec := newUserRecord(*u)
	if err := d.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (d *Database) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return d.findUser(ctx, "email = ?", email)
}

func (d *Database) UserByID(ctx context.Context, id string) (*models.User, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, store.ErrNotFound
	}
	return d.findUser(ctx, "doc_id = ?", id)
}

func (d *Database) findUser(ctx context.Context, query string, arg string) (*models.User, error) {
	var rec userRecord
	err := d.db.WithContext(ctx).Where(query, arg).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	u := rec.model()
	return &u, nil
}

func (d *Database) InsertHoldings(ctx context.Context, hs []models.Holding) error {
	if len(hs) == 0 {
		return nil
	}
	recs := make([]holdingRecord, len(hs))
	for i := range hs {
		hs[i].ID = primitive.NewObjectID()
		rec, err := newHoldingRecord(hs[i])
		if err != nil {
			return fmt.Errorf("insert holdings: %w", err)
		}
		recs[i] = rec
	}
	if err := d.db.WithContext(ctx).Create(&recs).Error; err != nil {
		return fmt.Errorf("insert holdings: %w", err)
	}
	return nil
}

func (d *Database) InsertPositions(ctx context.Context, ps []models.Position) error {
	if len(ps) == 0 {
		return nil
	}
	recs := make([]positionRecord, len(ps))
	for i := range ps {
		ps[i].ID = primitive.NewObjectID()
		rec, err := newPositionRecord(ps[i])
		if err != nil {
			return fmt.Errorf("insert positions: %w", err)
		}
		recs[i] = rec
	}
	if err := d.db.WithContext(ctx).Create(&recs).Error; err != nil {
		return fmt.Errorf("insert positions: %w", err)
	}
	return nil
}

func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql handle: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

func (d *Database) Close(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// isUniqueViolation matches sqlite's constraint message; the driver error type
// is not exported through gorm without TranslateError.
func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed")
}
