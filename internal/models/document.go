package models

import (
	"encoding/json"
	"reflect"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Extra carries the fields of a passthrough document that the typed struct
// does not hold: unknown keys, and known keys whose stored value has another
// type. They are written back out as stored.
type Extra map[string]interface{}

// JSONValues returns e with nested BSON documents and arrays turned into
// plain maps and slices.
func (e Extra) JSONValues() map[string]interface{} {
	if len(e) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(e))
	for k, v := range e {
		out[k] = jsonValue(v)
	}
	return out
}

func jsonValue(v interface{}) interface{} {
	switch t := v.(type) {
	case primitive.D:
		m := make(map[string]interface{}, len(t))
		for _, e := range t {
			m[e.Key] = jsonValue(e.Value)
		}
		return m
	case primitive.M:
		m := make(map[string]interface{}, len(t))
		for k, x := range t {
			m[k] = jsonValue(x)
		}
		return m
	case map[string]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, x := range t {
			m[k] = jsonValue(x)
		}
		return m
	case primitive.A:
		return jsonSlice(t)
	case []interface{}:
		return jsonSlice(t)
	default:
		return v
	}
}

func jsonSlice(in []interface{}) []interface{} {
	out := make([]interface{}, len(in))
	for i, x := range in {
		out[i] = jsonValue(x)
	}
	return out
}

// decodeBSONLenient decodes data into dst, a pointer to a method-less struct
// with an inline Extra. Elements that do not fit their typed field are moved
// to *extra instead of failing the whole document.
func decodeBSONLenient(data []byte, dst interface{}, extra *Extra) error {
	data = append([]byte(nil), data...)
	defer dropEmpty(extra)
	typ := reflect.TypeOf(dst).Elem()
	reflect.ValueOf(dst).Elem().Set(reflect.Zero(typ))
	if err := bson.Unmarshal(data, dst); err == nil {
		return nil
	}

	elems, err := bson.Raw(data).Elements()
	if err != nil {
		return err
	}

	var kept bson.D
	misfit := Extra{}
	for _, el := range elems {
		one, err := bson.Marshal(bson.D{{Key: el.Key(), Value: el.Value()}})
		if err != nil {
			return err
		}
		if bson.Unmarshal(one, reflect.New(typ).Interface()) == nil {
			kept = append(kept, bson.E{Key: el.Key(), Value: el.Value()})
			continue
		}
		var v interface{}
		if err := el.Value().Unmarshal(&v); err != nil {
			return err
		}
		misfit[el.Key()] = v
	}

	raw, err := bson.Marshal(kept)
	if err != nil {
		return err
	}
	reflect.ValueOf(dst).Elem().Set(reflect.Zero(typ))
	if err := bson.Unmarshal(raw, dst); err != nil {
		return err
	}
	mergeExtra(extra, misfit)
	return nil
}

// decodeJSONLenient is decodeBSONLenient for JSON input. Keys outside the
// json tags of dst's type are kept in *extra.
func decodeJSONLenient(data []byte, dst interface{}, extra *Extra) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	defer dropEmpty(extra)
	typ := reflect.TypeOf(dst).Elem()
	known := jsonFieldNames(typ)

	kept := make(map[string]json.RawMessage, len(fields))
	rest := Extra{}
	for k, v := range fields {
		if known[k] {
			one, err := json.Marshal(map[string]json.RawMessage{k: v})
			if err != nil {
				return err
			}
			if json.Unmarshal(one, reflect.New(typ).Interface()) == nil {
				kept[k] = v
				continue
			}
		}
		var x interface{}
		if err := json.Unmarshal(v, &x); err != nil {
			return err
		}
		rest[k] = x
	}

	raw, err := json.Marshal(kept)
	if err != nil {
		return err
	}
	reflect.ValueOf(dst).Elem().Set(reflect.Zero(typ))
	if err := json.Unmarshal(raw, dst); err != nil {
		return err
	}
	mergeExtra(extra, rest)
	return nil
}

// encodeBSONWithExtra marshals typed, whose own Extra must be empty, and
// overlays extra on the result. Keys present in both keep the extra value.
func encodeBSONWithExtra(typed interface{}, extra Extra) ([]byte, error) {
	raw, err := bson.Marshal(typed)
	if err != nil || len(extra) == 0 {
		return raw, err
	}
	var doc bson.D
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		replaced := false
		for i := range doc {
			if doc[i].Key == k {
				doc[i].Value = extra[k]
				replaced = true
				break
			}
		}
		if !replaced {
			doc = append(doc, bson.E{Key: k, Value: extra[k]})
		}
	}
	return bson.Marshal(doc)
}

// encodeJSONWithExtra marshals typed and overlays extra on its top-level keys.
func encodeJSONWithExtra(typed interface{}, extra Extra) ([]byte, error) {
	raw, err := json.Marshal(typed)
	if err != nil || len(extra) == 0 {
		return raw, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	for k, v := range extra.JSONValues() {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		fields[k] = b
	}
	return json.Marshal(fields)
}

func mergeExtra(dst *Extra, src Extra) {
	if len(src) == 0 {
		return
	}
	if *dst == nil {
		*dst = Extra{}
	}
	for k, v := range src {
		(*dst)[k] = v
	}
}

func dropEmpty(extra *Extra) {
	if len(*extra) == 0 {
		*extra = nil
	}
}

func jsonFieldNames(typ reflect.Type) map[string]bool {
	names := make(map[string]bool, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if name == "" {
			name = f.Name
		}
		names[name] = true
	}
	return names
}
