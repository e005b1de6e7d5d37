package database

import (
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"trading-journal-go/internal/models"
)

// holdingRecord is the sqlite row of a models.Holding.
type holdingRecord struct {
	Seq    uint   `gorm:"primaryKey;autoIncrement"`
	DocID  string `gorm:"uniqueIndex;size:24;not null"`
	Name   string
	Qty    float64
	Avg    float64
	Price  float64
	Net    string
	Day    string
	IsLoss bool
	Extra  string // JSON object of fields outside the columns above
}

func (holdingRecord) TableName() string { return "holdings" }

func newHoldingRecord(h models.Holding) (holdingRecord, error) {
	extra, err := encodeExtra(h.Extra)
	if err != nil {
		return holdingRecord{}, err
	}
	return holdingRecord{
		DocID: h.ID.Hex(), Name: h.Name, Qty: h.Qty, Avg: h.Avg,
		Price: h.Price, Net: h.Net, Day: h.Day, IsLoss: h.IsLoss, Extra: extra,
	}, nil
}

func (r holdingRecord) model() (models.Holding, error) {
	extra, err := decodeExtra(r.Extra)
	if err != nil {
		return models.Holding{}, fmt.Errorf("holding %s: %w", r.DocID, err)
	}
	return models.Holding{
		ID: objectID(r.DocID), Name: r.Name, Qty: r.Qty, Avg: r.Avg,
		Price: r.Price, Net: r.Net, Day: r.Day, IsLoss: r.IsLoss, Extra: extra,
	}, nil
}

// positionRecord is the sqlite row of a models.Position.
type positionRecord struct {
	Seq     uint   `gorm:"primaryKey;autoIncrement"`
	DocID   string `gorm:"uniqueIndex;size:24;not null"`
	Product string
	Name    string
	Qty     float64
	Avg     float64
	Price   float64
	Net     string
	Day     string
	IsLoss  bool
	Extra   string
}

func (positionRecord) TableName() string { return "positions" }

func newPositionRecord(p models.Position) (positionRecord, error) {
	extra, err := encodeExtra(p.Extra)
	if err != nil {
		return positionRecord{}, err
	}
	return positionRecord{
		DocID: p.ID.Hex(), Product: p.Product, Name: p.Name, Qty: p.Qty, Avg: p.Avg,
		Price: p.Price, Net: p.Net, Day: p.Day, IsLoss: p.IsLoss, Extra: extra,
	}, nil
}

func (r positionRecord) model() (models.Position, error) {
	extra, err := decodeExtra(r.Extra)
	if err != nil {
		return models.Position{}, fmt.Errorf("position %s: %w", r.DocID, err)
	}
	return models.Position{
		ID: objectID(r.DocID), Product: r.Product, Name: r.Name, Qty: r.Qty, Avg: r.Avg,
		Price: r.Price, Net: r.Net, Day: r.Day, IsLoss: r.IsLoss, Extra: extra,
	}, nil
}

// orderRecord is the sqlite row of a models.Order.
type orderRecord struct {
	Seq   uint   `gorm:"primaryKey;autoIncrement"`
	DocID string `gorm:"uniqueIndex;size:24;not null"`
	Name  string `gorm:"not null"`
	Qty   float64
	Price float64
	Mode  string
}

func (orderRecord) TableName() string { return "orders" }

func newOrderRecord(o models.Order) orderRecord {
	return orderRecord{DocID: o.ID.Hex(), Name: o.Name, Qty: o.Qty, Price: o.Price, Mode: o.Mode}
}

func (r orderRecord) model() models.Order {
	return models.Order{ID: objectID(r.DocID), Name: r.Name, Qty: r.Qty, Price: r.Price, Mode: r.Mode}
}

// userRecord is the sqlite row of a models.User.
type userRecord struct {
	Seq       uint   `gorm:"primaryKey;autoIncrement"`
	DocID     string `gorm:"uniqueIndex;size:24;not null"`
	Email     string `gorm:"uniqueIndex;not null"`
	Username  string `gorm:"not null"`
	Password  string `gorm:"not null"`
	CreatedAt time.Time
}

func (userRecord) TableName() string { return "users" }

func newUserRecord(u models.User) userRecord {
	return userRecord{DocID: u.ID.Hex(), Email: u.Email, Username: u.Username, Password: u.Password, CreatedAt: u.CreatedAt}
}

func (r userRecord) model() models.User {
	return models.User{ID: objectID(r.DocID), Email: r.Email, Username: r.Username, Password: r.Password, CreatedAt: r.CreatedAt}
}

func encodeExtra(e models.Extra) (string, error) {
	if len(e) == 0 {
		return "", nil
	}
	raw, err := json.Marshal(e.JSONValues())
	if err != nil {
		return "", fmt.Errorf("encode extra fields: %w", err)
	}
	return string(raw), nil
}

func decodeExtra(s string) (models.Extra, error) {
	if s == "" {
		return nil, nil
	}
	var e models.Extra
	if err := json.Unmarshal([]byte(s), &e); err != nil {
		return nil, fmt.Errorf("decode extra fields: %w", err)
	}
	return e, nil
}

// objectID parses a stored hex id; rows are only written with valid ids.
func objectID(hex string) primitive.ObjectID {
	id, _ := primitive.ObjectIDFromHex(hex)
	return id
}
