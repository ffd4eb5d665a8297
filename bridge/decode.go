package bridge

import (
	"bytes"
	"math"
	"reflect"
	"unicode/utf8"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/teranos/sdkgen/errors"
	"github.com/teranos/sdkgen/sdkgen"
)

// Set is the decoded form of an UntypedSet payload.
type Set map[any]struct{}

// Contains reports whether v is a member of the set.
func (s Set) Contains(v any) bool {
	_, ok := s[v]
	return ok
}

// EncodePayload produces an opaque payload the way a worker sends one.
func EncodePayload(v any) ([]byte, error) {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "encode payload")
	}
	return data, nil
}

// Decode turns a reply payload into a Go value following the decode rule of
// category:
//
//	utf8  -> string
//	raw   -> []byte (BinaryBuffer) or []int (list of integers)
//	set   -> Set
//	cast  -> the unpacked value checked against category
//	none  -> nil
func Decode(category sdkgen.TypeCategory, payload []byte) (any, error) {
	switch category.DecodeRule() {
	case sdkgen.DecodeNone:
		return nil, nil

	case sdkgen.DecodeUTF8:
		if !utf8.Valid(payload) {
			return nil, errors.New("payload is not valid UTF-8")
		}
		return string(payload), nil

	case sdkgen.DecodeRaw:
		if category.Host == sdkgen.HostBinaryBuffer {
			return bytes.Clone(payload), nil
		}
		ints := make([]int, len(payload))
		for i, b := range payload {
			ints[i] = int(b)
		}
		return ints, nil

	case sdkgen.DecodeSet:
		value, err := unpack(payload)
		if err != nil {
			return nil, err
		}
		return toSet(value)
	}

	value, err := unpack(payload)
	if err != nil {
		return nil, err
	}
	return cast(category, value)
}

func unpack(payload []byte) (any, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(payload))
	dec.UseLooseInterfaceDecoding(true)
	value, err := dec.DecodeInterfaceLoose()
	if err != nil {
		return nil, errors.Wrap(err, "unpack payload")
	}
	return value, nil
}

func toSet(value any) (Set, error) {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, errors.Newf("cannot build a set from %T", value)
	}
	set := make(Set, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i).Interface()
		if elem != nil && !reflect.TypeOf(elem).Comparable() {
			return nil, errors.Newf("set element %d of type %T is not hashable", i, elem)
		}
		set[elem] = struct{}{}
	}
	return set, nil
}

// cast checks an unpacked value against category, converting numbers to
// int64 or float64 and list elements recursively.
func cast(category sdkgen.TypeCategory, value any) (any, error) {
	switch category.Host {
	case sdkgen.HostDynamic:
		return value, nil

	case sdkgen.HostString:
		if s, ok := value.(string); ok {
			return s, nil
		}

	case sdkgen.HostBoolean:
		if b, ok := value.(bool); ok {
			return b, nil
		}

	case sdkgen.HostNumber, sdkgen.HostDouble:
		if f, ok := toFloat(value); ok {
			return f, nil
		}

	case sdkgen.HostInteger:
		if i, ok := toInt(value); ok {
			return i, nil
		}

	case sdkgen.HostUntypedMap:
		if value != nil && reflect.TypeOf(value).Kind() == reflect.Map {
			return value, nil
		}

	case sdkgen.HostUntypedList:
		if list, ok := value.([]any); ok {
			return list, nil
		}

	case sdkgen.HostListOf:
		list, ok := value.([]any)
		if !ok {
			break
		}
		if category.Elem == nil {
			return list, nil
		}
		out := make([]any, len(list))
		for i, elem := range list {
			v, err := cast(*category.Elem, elem)
			if err != nil {
				return nil, errors.Wrapf(err, "element %d", i)
			}
			out[i] = v
		}
		return out, nil
	}
	return nil, errors.Newf("cannot cast %T to %s", value, category)
}

// toInt converts integers exactly and floats only when integral and in
// int64 range.
func toInt(value any) (int64, bool) {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() {
		return 0, false
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		// float64(math.MaxInt64) rounds up to 2^63, which is out of range
		if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, false
		}
		return int64(f), true
	}
	return 0, false
}

func toFloat(value any) (float64, bool) {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() {
		return 0, false
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}
