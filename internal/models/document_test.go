package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestHolding_UnknownFieldsSurvive(t *testing.T) {
	id := primitive.NewObjectID()
	raw, err := bson.Marshal(bson.D{
		{Key: "_id", Value: id},
		{Key: "name", Value: "ITC"},
		{Key: "qty", Value: 5.0},
		{Key: "avg", Value: 202.0},
		{Key: "__v", Value: int32(0)},
		{Key: "exchange", Value: "NSE"},
	})
	require.NoError(t, err)

	var h Holding
	require.NoError(t, bson.Unmarshal(raw, &h))
	assert.Equal(t, id, h.ID)
	assert.Equal(t, "ITC", h.Name)
	assert.Equal(t, 5.0, h.Qty)
	assert.Equal(t, Extra{"__v": int32(0), "exchange": "NSE"}, h.Extra)

	out, err := json.Marshal(h)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, id.Hex(), got["_id"])
	assert.Equal(t, "ITC", got["name"])
	assert.Equal(t, float64(5), got["qty"])
	assert.Equal(t, float64(0), got["__v"])
	assert.Equal(t, "NSE", got["exchange"])
}

func TestHolding_MistypedFieldKeptAsStored(t *testing.T) {
	raw, err := bson.Marshal(bson.D{
		{Key: "name", Value: "ITC"},
		{Key: "qty", Value: "5"},
		{Key: "price", Value: 207.9},
		{Key: "meta", Value: bson.D{{Key: "source", Value: "kite"}}},
	})
	require.NoError(t, err)

	var h Holding
	require.NoError(t, bson.Unmarshal(raw, &h))
	assert.Equal(t, "ITC", h.Name)
	assert.Equal(t, 207.9, h.Price)
	assert.Zero(t, h.Qty)
	assert.Equal(t, "5", h.Extra["qty"])

	out, err := json.Marshal(h)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, "5", got["qty"])
	assert.Equal(t, map[string]any{"source": "kite"}, got["meta"])

	// Written back to BSON the stored value wins over the zero field.
	back, err := bson.Marshal(h)
	require.NoError(t, err)
	var doc bson.M
	require.NoError(t, bson.Unmarshal(back, &doc))
	assert.Equal(t, "5", doc["qty"])
	assert.Equal(t, "ITC", doc["name"])
}

func TestPosition_JSONRoundTripKeepsExtra(t *testing.T) {
	in := `{"_id":"65a000000000000000000003","product":"CNC","name":"EVEREADY","qty":2,"isLoss":true,"exchange":"BSE","tags":["a","b"]}`

	var p Position
	require.NoError(t, json.Unmarshal([]byte(in), &p))
	assert.Equal(t, "65a000000000000000000003", p.ID.Hex())
	assert.Equal(t, "CNC", p.Product)
	assert.True(t, p.IsLoss)
	assert.Equal(t, Extra{"exchange": "BSE", "tags": []any{"a", "b"}}, p.Extra)

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"_id":"65a000000000000000000003","product":"CNC","name":"EVEREADY","qty":2,"avg":0,"price":0,"net":"","day":"","isLoss":true,"exchange":"BSE","tags":["a","b"]}`, string(out))
}

func TestPosition_BSONKeepsUnknownFields(t *testing.T) {
	raw, err := bson.Marshal(bson.D{
		{Key: "product", Value: "MIS"},
		{Key: "name", Value: "JUBLFOOD"},
		{Key: "exchange", Value: "NSE"},
	})
	require.NoError(t, err)

	var p Position
	require.NoError(t, bson.Unmarshal(raw, &p))
	assert.Equal(t, "MIS", p.Product)
	assert.Equal(t, Extra{"exchange": "NSE"}, p.Extra)

	back, err := bson.Marshal(p)
	require.NoError(t, err)
	var doc bson.M
	require.NoError(t, bson.Unmarshal(back, &doc))
	assert.Equal(t, "NSE", doc["exchange"])
	assert.Equal(t, "JUBLFOOD", doc["name"])
}

func TestIsLossAlwaysSerialized(t *testing.T) {
	out, err := json.Marshal(Holding{Name: "ITC"})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"isLoss":false`)

	out, err = json.Marshal(Position{Name: "ITC"})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"isLoss":false`)

	out, err = json.Marshal([]Holding{{Name: "ITC", IsLoss: true}})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"isLoss":true`)
}

func TestHolding_NoExtraStaysNil(t *testing.T) {
	raw, err := bson.Marshal(bson.D{{Key: "name", Value: "ITC"}, {Key: "qty", Value: 1.0}})
	require.NoError(t, err)

	var h Holding
	require.NoError(t, bson.Unmarshal(raw, &h))
	assert.Nil(t, h.Extra)

	require.NoError(t, json.Unmarshal([]byte(`{"name":"ITC","qty":1}`), &h))
	assert.Nil(t, h.Extra)
}
