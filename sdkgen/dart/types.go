package dart

import (
	"fmt"

	"github.com/teranos/sdkgen/sdkgen"
)

// HostTypes maps host kinds to Dart type names
var HostTypes = map[sdkgen.HostKind]string{
	sdkgen.HostString:       "String",
	sdkgen.HostNumber:       "num",
	sdkgen.HostInteger:      "int",
	sdkgen.HostDouble:       "double",
	sdkgen.HostBoolean:      "bool",
	sdkgen.HostBinaryBuffer: "Uint8List",
	sdkgen.HostUntypedMap:   "Map<dynamic, dynamic>",
	sdkgen.HostUntypedList:  "List<dynamic>",
	sdkgen.HostUntypedSet:   "Set<dynamic>",
	sdkgen.HostVoid:         "void",
	sdkgen.HostDynamic:      "dynamic",
}

// WireTypes maps wire kinds to the runtime's FFI type names
var WireTypes = map[sdkgen.WireKind]string{
	sdkgen.WireString:   "FFIString",
	sdkgen.WireNumber:   "FFINumber",
	sdkgen.WireBoolean:  "FFIBool",
	sdkgen.WireRawBytes: "FFIBytes",
	sdkgen.WireOpaque:   "FFIJsonPayload",
	sdkgen.WireVoid:     "void",
}

// TypeName returns the Dart type of a category.
func TypeName(c sdkgen.TypeCategory) string {
	if c.Host == sdkgen.HostListOf {
		elem := "dynamic"
		if c.Elem != nil {
			elem = TypeName(*c.Elem)
		}
		return "List<" + elem + ">"
	}
	if name, ok := HostTypes[c.Host]; ok {
		return name
	}
	return "dynamic"
}

// usesTypedData reports whether a category's Dart type needs dart:typed_data.
func usesTypedData(c sdkgen.TypeCategory) bool {
	switch {
	case c.Host == sdkgen.HostBinaryBuffer:
		return true
	case c.Host == sdkgen.HostListOf && c.Elem != nil:
		return usesTypedData(*c.Elem)
	}
	return false
}

// payloadAccess returns the expression reading a reply payload: the raw
// bytes, or the unpacked opaque payload.
func payloadAccess(c sdkgen.TypeCategory) string {
	switch c.DecodeRule() {
	case sdkgen.DecodeUTF8, sdkgen.DecodeRaw:
		return "data.data"
	}
	return "data.data.unpack()"
}

// decodeExpr converts the payload variable into the host value.
func decodeExpr(c sdkgen.TypeCategory, value string) string {
	switch c.DecodeRule() {
	case sdkgen.DecodeUTF8:
		return "utf8.decode(" + value + ")"
	case sdkgen.DecodeRaw:
		if c.Host == sdkgen.HostBinaryBuffer {
			return "Uint8List.fromList(" + value + ")"
		}
		return value
	case sdkgen.DecodeSet:
		return "Set.from(" + value + ")"
	case sdkgen.DecodeNone:
		return "null"
	}
	return castExpr(c, value, 0)
}

// castExpr casts an unpacked value. Lists convert element-wise so that
// List<T> is produced rather than a List<dynamic> cast.
func castExpr(c sdkgen.TypeCategory, value string, depth int) string {
	switch c.Host {
	case sdkgen.HostDynamic:
		return value
	case sdkgen.HostUntypedSet:
		return "Set.from(" + value + " as Iterable)"
	case sdkgen.HostListOf:
		if c.Elem == nil {
			return value + " as List"
		}
		elem := fmt.Sprintf("e%d", depth)
		return fmt.Sprintf("(%s as List).map((%s) => %s).toList()",
			value, elem, castExpr(*c.Elem, elem, depth+1))
	}
	return value + " as " + TypeName(c)
}
