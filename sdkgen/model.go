// Package sdkgen compiles SDK declaration files into host-language bindings.
//
// # Architecture
//
// The package uses a two-layer design:
//  1. Language-agnostic extraction (extract.go) turns a parsed declaration
//     file into an ExtractionResult: init arguments and worker functions with
//     resolved TypeCategory values and documentation.
//  2. Language-specific generators (dart/) format the ExtractionResult.
//
// Type resolution (resolver.go) is pure and total: shapes it does not
// recognize degrade to Dynamic instead of failing. Only structural absence of
// the SDK definition is an error (ErrMalformedSdkDeclaration).
package sdkgen

import (
	"fmt"
)

// HostKind is the host-language representation of a resolved type.
type HostKind int

const (
	HostDynamic HostKind = iota
	HostString
	HostNumber
	HostInteger
	HostDouble
	HostBoolean
	HostBinaryBuffer
	HostUntypedMap
	HostUntypedList
	HostUntypedSet
	HostListOf
	HostVoid
)

var hostKindNames = [...]string{
	HostDynamic:      "Dynamic",
	HostString:       "String",
	HostNumber:       "Number",
	HostInteger:      "Integer",
	HostDouble:       "Double",
	HostBoolean:      "Boolean",
	HostBinaryBuffer: "BinaryBuffer",
	HostUntypedMap:   "UntypedMap",
	HostUntypedList:  "UntypedList",
	HostUntypedSet:   "UntypedSet",
	HostListOf:       "ListOf",
	HostVoid:         "Void",
}

func (k HostKind) String() string {
	if int(k) < len(hostKindNames) {
		return hostKindNames[k]
	}
	return fmt.Sprintf("HostKind(%d)", int(k))
}

// WireKind is the serialized form a value takes when it crosses the runtime
// boundary.
type WireKind int

const (
	WireOpaque WireKind = iota // encoded payload (MessagePack)
	WireString
	WireNumber
	WireBoolean
	WireRawBytes
	WireVoid
)

var wireKindNames = [...]string{
	WireOpaque:   "Opaque",
	WireString:   "String",
	WireNumber:   "Number",
	WireBoolean:  "Boolean",
	WireRawBytes: "RawBytes",
	WireVoid:     "Void",
}

func (k WireKind) String() string {
	if int(k) < len(wireKindNames) {
		return wireKindNames[k]
	}
	return fmt.Sprintf("WireKind(%d)", int(k))
}

// DecodeRule says how a reply payload becomes a host value.
type DecodeRule int

const (
	// DecodeCast decodes the opaque payload and casts it to the host type
	DecodeCast DecodeRule = iota
	// DecodeUTF8 reads the raw payload bytes as UTF-8 text
	DecodeUTF8
	// DecodeRaw passes the raw payload bytes through
	DecodeRaw
	// DecodeSet decodes the opaque payload and wraps the list into a set
	DecodeSet
	// DecodeNone ignores the payload
	DecodeNone
)

func (r DecodeRule) String() string {
	switch r {
	case DecodeCast:
		return "cast"
	case DecodeUTF8:
		return "utf8"
	case DecodeRaw:
		return "raw"
	case DecodeSet:
		return "set"
	case DecodeNone:
		return "none"
	}
	return fmt.Sprintf("DecodeRule(%d)", int(r))
}

// TypeCategory is a resolved type. Host and Wire are always both set, and
// Host is HostVoid exactly when Wire is WireVoid. Elem is set only for
// HostListOf.
type TypeCategory struct {
	Host HostKind
	Wire WireKind
	Elem *TypeCategory
}

var (
	String       = TypeCategory{Host: HostString, Wire: WireString}
	Number       = TypeCategory{Host: HostNumber, Wire: WireNumber}
	Integer      = TypeCategory{Host: HostInteger, Wire: WireNumber}
	Double       = TypeCategory{Host: HostDouble, Wire: WireNumber}
	Boolean      = TypeCategory{Host: HostBoolean, Wire: WireBoolean}
	BinaryBuffer = TypeCategory{Host: HostBinaryBuffer, Wire: WireRawBytes}
	UntypedMap   = TypeCategory{Host: HostUntypedMap, Wire: WireOpaque}
	UntypedList  = TypeCategory{Host: HostUntypedList, Wire: WireOpaque}
	UntypedSet   = TypeCategory{Host: HostUntypedSet, Wire: WireOpaque}
	Void         = TypeCategory{Host: HostVoid, Wire: WireVoid}
	Dynamic      = TypeCategory{Host: HostDynamic, Wire: WireOpaque}
)

// ListOf wraps elem into a list category. Lists of integers travel as raw
// bytes, every other list as an opaque payload.
func ListOf(elem TypeCategory) TypeCategory {
	wire := WireOpaque
	if elem.Host == HostInteger {
		wire = WireRawBytes
	}
	return TypeCategory{Host: HostListOf, Wire: wire, Elem: &elem}
}

// IsVoid reports whether c is the Void category.
func (c TypeCategory) IsVoid() bool {
	return c.Host == HostVoid
}

// Equal compares two categories structurally.
func (c TypeCategory) Equal(other TypeCategory) bool {
	if c.Host != other.Host || c.Wire != other.Wire {
		return false
	}
	if c.Elem == nil || other.Elem == nil {
		return c.Elem == nil && other.Elem == nil
	}
	return c.Elem.Equal(*other.Elem)
}

// DecodeRule returns the rule a binding applies to reply payloads of this
// category.
func (c TypeCategory) DecodeRule() DecodeRule {
	switch {
	case c.Host == HostVoid:
		return DecodeNone
	case c.Host == HostString:
		return DecodeUTF8
	case c.Host == HostBinaryBuffer, c.Wire == WireRawBytes:
		return DecodeRaw
	case c.Host == HostUntypedSet:
		return DecodeSet
	default:
		return DecodeCast
	}
}

func (c TypeCategory) String() string {
	if c.Host == HostListOf && c.Elem != nil {
		return "ListOf(" + c.Elem.String() + ")"
	}
	return c.Host.String()
}

// ArgumentSpec is one init or function argument.
type ArgumentSpec struct {
	// Name is the normalized identifier exposed by the binding
	Name string
	// Declared is the name as written in the declaration file
	Declared    string
	Type        TypeCategory
	Description string
}

// InitSpec describes the construction-time parameters. Argument order is the
// positional contract of the generated factory.
type InitSpec struct {
	Args        []ArgumentSpec
	Description string
}

// FunctionSpec describes one worker function. Args never contain the leading
// state parameter or the trailing call identifier.
type FunctionSpec struct {
	// Name is the declared name used in runtime calls
	Name string
	// DartName is the normalized method name
	DartName          string
	Returns           TypeCategory
	Streaming         bool
	Args              []ArgumentSpec
	Description       string
	ReturnDescription string
}

// ExtractionResult is the hand-off between extraction and generation.
// Functions are in declaration order.
type ExtractionResult struct {
	Init      InitSpec
	Functions []FunctionSpec
	// Shape records which SDK declaration shape was recognized
	Shape Shape
}

// Shape identifies an accepted SDK declaration encoding.
type Shape int

const (
	// ShapeTuple is Sdk<[InitArgs], State, {Fns}>
	ShapeTuple Shape = iota + 1
	// ShapeInitFunction is Sdk<(init params) => State, {Fns}>
	ShapeInitFunction
)

func (s Shape) String() string {
	switch s {
	case ShapeTuple:
		return "tuple"
	case ShapeInitFunction:
		return "init-function"
	}
	return "unknown"
}
