package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Holding is a snapshot of an instrument currently held. Stored fields it
// does not model are kept in Extra and written back out unchanged.
type Holding struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name   string             `bson:"name" json:"name"`
	Qty    float64            `bson:"qty" json:"qty"`
	Avg    float64            `bson:"avg" json:"avg"`
	Price  float64            `bson:"price" json:"price"`
	Net    string             `bson:"net" json:"net"`
	Day    string             `bson:"day" json:"day"`
	IsLoss bool               `bson:"isLoss" json:"isLoss"`
	Extra  Extra              `bson:",inline" json:"-"`
}

type holdingDoc Holding

func (h *Holding) UnmarshalBSON(data []byte) error {
	return decodeBSONLenient(data, (*holdingDoc)(h), &h.Extra)
}

func (h Holding) MarshalBSON() ([]byte, error) {
	doc := holdingDoc(h)
	doc.Extra = nil
	return encodeBSONWithExtra(doc, h.Extra)
}

func (h *Holding) UnmarshalJSON(data []byte) error {
	return decodeJSONLenient(data, (*holdingDoc)(h), &h.Extra)
}

func (h Holding) MarshalJSON() ([]byte, error) {
	return encodeJSONWithExtra(holdingDoc(h), h.Extra)
}
