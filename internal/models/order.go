package models

import "go.mongodb.org/mongo-driver/bson/primitive"

const (
	ModeBuy  = "BUY"
	ModeSell = "SELL"
)

// Order is a user-submitted trade instruction. Orders are only ever created.
type Order struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name  string             `bson:"name" json:"name"`
	Qty   float64            `bson:"qty" json:"qty"`
	Price float64            `bson:"price" json:"price"`
	Mode  string             `bson:"mode" json:"mode"` // ModeBuy or ModeSell
}
