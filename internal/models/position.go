package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Position is a derived snapshot of current market exposure. Like Holding it
// passes unmodelled stored fields through in Extra.
type Position struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Product string             `bson:"product" json:"product"` // e.g. "CNC", "MIS"
	Name    string             `bson:"name" json:"name"`
	Qty     float64            `bson:"qty" json:"qty"`
	Avg     float64            `bson:"avg" json:"avg"`
	Price   float64            `bson:"price" json:"price"`
	Net     string             `bson:"net" json:"net"`
	Day     string             `bson:"day" json:"day"`
	IsLoss  bool               `bson:"isLoss" json:"isLoss"`
	Extra   Extra              `bson:",inline" json:"-"`
}

type positionDoc Position

func (p *Position) UnmarshalBSON(data []byte) error {
	return decodeBSONLenient(data, (*positionDoc)(p), &p.Extra)
}

func (p Position) MarshalBSON() ([]byte, error) {
	doc := positionDoc(p)
	doc.Extra = nil
	return encodeBSONWithExtra(doc, p.Extra)
}

func (p *Position) UnmarshalJSON(data []byte) error {
	return decodeJSONLenient(data, (*positionDoc)(p), &p.Extra)
}

func (p Position) MarshalJSON() ([]byte, error) {
	return encodeJSONWithExtra(positionDoc(p), p.Extra)
}
