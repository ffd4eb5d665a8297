package sdkgen

import (
	"strings"

	"github.com/teranos/sdkgen/dts"
)

// Reserved type names recognized by name after namespace stripping.
const (
	MarkerMap          = "DartMap"
	MarkerList         = "DartList"
	MarkerSet          = "DartSet"
	MarkerInt          = "DartInt"
	MarkerDouble       = "DartDouble"
	MarkerReturn       = "DartReturn"
	MarkerStreamReturn = "DartStreamReturn"

	// BinaryBufferName is the buffer type that maps to BinaryBuffer
	BinaryBufferName = "Uint8Array"

	// SdkTypeName and SdkDefinitionTypeName name the SDK definition wrapper
	SdkTypeName           = "Sdk"
	SdkDefinitionTypeName = "SdkDefinition"
)

// Structural markers: the runtime_types package defines the collection
// markers as { __dartType: "Map" } and the return markers as
// void & { __dartReturnType?: T }. Bundlers sometimes inline them.
const (
	dartTypeProperty         = "__dartType"
	dartReturnProperty       = "__dartReturnType"
	dartStreamReturnProperty = "__dartStreamReturnType"
)

var collectionMarkers = map[string]TypeCategory{
	MarkerMap:    UntypedMap,
	MarkerList:   UntypedList,
	MarkerSet:    UntypedSet,
	MarkerInt:    Integer,
	MarkerDouble: Double,
}

var structuralCollectionMarkers = map[string]TypeCategory{
	"Map":    UntypedMap,
	"List":   UntypedList,
	"Set":    UntypedSet,
	"Int":    Integer,
	"Double": Double,
}

// StripNamespace returns the final segment of a dotted name.
func StripNamespace(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// CollectionMarker reports the category of a collection marker reference.
func CollectionMarker(name string) (TypeCategory, bool) {
	c, ok := collectionMarkers[StripNamespace(name)]
	return c, ok
}

// IsSdkTypeName reports whether name refers to the SDK definition wrapper.
func IsSdkTypeName(name string) bool {
	base := StripNamespace(name)
	return base == SdkTypeName || base == SdkDefinitionTypeName
}

func structuralCollectionMarker(obj *dts.ObjectType) (TypeCategory, bool) {
	for _, m := range obj.Members {
		prop, ok := m.(*dts.PropertySignature)
		if !ok || prop.Name != dartTypeProperty {
			continue
		}
		if lit, ok := prop.Type.(*dts.LiteralType); ok && lit.Kind == dts.LiteralString {
			c, ok := structuralCollectionMarkers[lit.Value]
			return c, ok
		}
	}
	return TypeCategory{}, false
}

// returnMarker is the recognized wrapper of a worker function's return type.
type returnMarker struct {
	streaming bool
	arg       dts.Type
}

// nameReturnMarker matches DartStreamReturn<T> and DartReturn<T> by name.
// The streaming marker is checked first since its name contains the other.
func nameReturnMarker(ref *dts.TypeRef) (returnMarker, bool) {
	base := StripNamespace(ref.Name)
	if len(ref.Args) != 1 {
		return returnMarker{}, false
	}
	switch {
	case strings.Contains(base, MarkerStreamReturn):
		return returnMarker{streaming: true, arg: ref.Args[0]}, true
	case strings.Contains(base, MarkerReturn):
		return returnMarker{arg: ref.Args[0]}, true
	}
	return returnMarker{}, false
}

// structuralReturnMarker matches the inlined form void & { __dartReturnType?: T }.
func structuralReturnMarker(t dts.Type) (returnMarker, bool) {
	var members []dts.Type
	switch n := t.(type) {
	case *dts.IntersectionType:
		members = n.Types
	case *dts.ObjectType:
		members = []dts.Type{n}
	default:
		return returnMarker{}, false
	}
	for _, member := range members {
		obj, ok := unwrapParens(member).(*dts.ObjectType)
		if !ok {
			continue
		}
		for _, m := range obj.Members {
			prop, ok := m.(*dts.PropertySignature)
			if !ok || prop.Type == nil {
				continue
			}
			switch prop.Name {
			case dartStreamReturnProperty:
				return returnMarker{streaming: true, arg: prop.Type}, true
			case dartReturnProperty:
				return returnMarker{arg: prop.Type}, true
			}
		}
	}
	return returnMarker{}, false
}

func unwrapParens(t dts.Type) dts.Type {
	for {
		p, ok := t.(*dts.ParenType)
		if !ok {
			return t
		}
		t = p.Inner
	}
}

func isAbsentType(t dts.Type) bool {
	kw, ok := unwrapParens(t).(*dts.KeywordType)
	if !ok {
		return false
	}
	switch kw.Name {
	case "undefined", "null", "void":
		return true
	}
	return false
}

func isStringLiteral(t dts.Type) bool {
	lit, ok := t.(*dts.LiteralType)
	return ok && lit.Kind == dts.LiteralString
}

func isBooleanLiteral(t dts.Type) bool {
	lit, ok := t.(*dts.LiteralType)
	return ok && lit.Kind == dts.LiteralBoolean
}
