package dts

// Node is the interface implemented by all AST nodes.
type Node interface {
	Pos() Position
	node()
}

// ---------------------------------------------------------------------------
// Type nodes
// ---------------------------------------------------------------------------

// Type is the interface for type-grammar nodes.
type Type interface {
	Node
	typeNode()
}

// KeywordType is a built-in type keyword: string, number, boolean, void,
// undefined, null, any, unknown, never, object, bigint, symbol, this.
type KeywordType struct {
	At   Position
	Name string
}

// LiteralKind classifies a LiteralType.
type LiteralKind int

const (
	LiteralString LiteralKind = iota
	LiteralNumber
	LiteralBigInt
	LiteralBoolean
	LiteralTemplate
)

// LiteralType is a literal type such as "a", 42, -1, 10n, true or `x${string}`.
type LiteralType struct {
	At    Position
	Kind  LiteralKind
	Value string
}

// TypeRef is a reference to a named type, possibly qualified and generic.
type TypeRef struct {
	At     Position
	Name   string // dotted name, e.g. "Sdk" or "runtime.DartMap"
	Module string // set for import("module").Name references
	Args   []Type
}

// ArrayType is T[].
type ArrayType struct {
	At   Position
	Elem Type
}

// TupleElement is one member of a tuple type.
type TupleElement struct {
	Name     string // empty for positional members
	Optional bool
	Rest     bool
	Type     Type
}

// TupleType is [A, b: B, c?: C, ...D[]].
type TupleType struct {
	At       Position
	Elements []TupleElement
}

// ObjectType is a type literal { ... }.
type ObjectType struct {
	At      Position
	Members []Member
}

// MappedType is { [K in C]: V }.
type MappedType struct {
	At         Position
	Key        string
	Constraint Type
	NameType   Type // "as" clause
	Value      Type
}

// UnionType is A | B.
type UnionType struct {
	At    Position
	Types []Type
}

// IntersectionType is A & B.
type IntersectionType struct {
	At    Position
	Types []Type
}

// Param is a function or signature parameter.
type Param struct {
	Name     string // empty for binding patterns
	Optional bool
	Rest     bool
	Type     Type // nil when undeclared
}

// TypeParam is a generic type parameter.
type TypeParam struct {
	Name       string
	Constraint Type
	Default    Type
}

// FunctionType is (a: A) => R, or new (a: A) => R when Constructor is set.
type FunctionType struct {
	At          Position
	TypeParams  []TypeParam
	Params      []Param
	Result      Type
	Constructor bool
}

// ParenType is (T).
type ParenType struct {
	At    Position
	Inner Type
}

// TypeOperator is keyof T, readonly T or unique T.
type TypeOperator struct {
	At       Position
	Operator string
	Type     Type
}

// TypeQuery is typeof x.
type TypeQuery struct {
	At   Position
	Name string
	Args []Type
}

// IndexedAccessType is T[K].
type IndexedAccessType struct {
	At     Position
	Object Type
	Index  Type
}

// ConditionalType is C extends E ? T : F.
type ConditionalType struct {
	At      Position
	Check   Type
	Extends Type
	True    Type
	False   Type
}

// InferType is infer U.
type InferType struct {
	At         Position
	Name       string
	Constraint Type
}

// TypePredicate is x is T or asserts x [is T].
type TypePredicate struct {
	At      Position
	Param   string
	Asserts bool
	Type    Type
}

func (t *KeywordType) Pos() Position       { return t.At }
func (t *LiteralType) Pos() Position       { return t.At }
func (t *TypeRef) Pos() Position           { return t.At }
func (t *ArrayType) Pos() Position         { return t.At }
func (t *TupleType) Pos() Position         { return t.At }
func (t *ObjectType) Pos() Position        { return t.At }
func (t *MappedType) Pos() Position        { return t.At }
func (t *UnionType) Pos() Position         { return t.At }
func (t *IntersectionType) Pos() Position  { return t.At }
func (t *FunctionType) Pos() Position      { return t.At }
func (t *ParenType) Pos() Position         { return t.At }
func (t *TypeOperator) Pos() Position      { return t.At }
func (t *TypeQuery) Pos() Position         { return t.At }
func (t *IndexedAccessType) Pos() Position { return t.At }
func (t *ConditionalType) Pos() Position   { return t.At }
func (t *InferType) Pos() Position         { return t.At }
func (t *TypePredicate) Pos() Position     { return t.At }

func (*KeywordType) node()       {}
func (*LiteralType) node()       {}
func (*TypeRef) node()           {}
func (*ArrayType) node()         {}
func (*TupleType) node()         {}
func (*ObjectType) node()        {}
func (*MappedType) node()        {}
func (*UnionType) node()         {}
func (*IntersectionType) node()  {}
func (*FunctionType) node()      {}
func (*ParenType) node()         {}
func (*TypeOperator) node()      {}
func (*TypeQuery) node()         {}
func (*IndexedAccessType) node() {}
func (*ConditionalType) node()   {}
func (*InferType) node()         {}
func (*TypePredicate) node()     {}

func (*KeywordType) typeNode()       {}
func (*LiteralType) typeNode()       {}
func (*TypeRef) typeNode()           {}
func (*ArrayType) typeNode()         {}
func (*TupleType) typeNode()         {}
func (*ObjectType) typeNode()        {}
func (*MappedType) typeNode()        {}
func (*UnionType) typeNode()         {}
func (*IntersectionType) typeNode()  {}
func (*FunctionType) typeNode()      {}
func (*ParenType) typeNode()         {}
func (*TypeOperator) typeNode()      {}
func (*TypeQuery) typeNode()         {}
func (*IndexedAccessType) typeNode() {}
func (*ConditionalType) typeNode()   {}
func (*InferType) typeNode()         {}
func (*TypePredicate) typeNode()     {}

// ---------------------------------------------------------------------------
// Members of object types and interfaces
// ---------------------------------------------------------------------------

// Member is the interface for object type and interface members.
type Member interface {
	Node
	member()
	// MemberName returns the declared name, or "" for unnamed members.
	MemberName() string
	// DocComment returns the raw JSDoc block attached to the member.
	DocComment() string
}

// PropertySignature is name?: T.
type PropertySignature struct {
	At       Position
	Name     string
	Optional bool
	Readonly bool
	Type     Type // nil when undeclared
	Doc      string
}

// MethodSignature is name<T>(params): R.
type MethodSignature struct {
	At         Position
	Name       string
	Optional   bool
	TypeParams []TypeParam
	Params     []Param
	Result     Type
	Doc        string
}

// CallSignature is (params): R inside an object type.
type CallSignature struct {
	At         Position
	TypeParams []TypeParam
	Params     []Param
	Result     Type
	Construct  bool
	Doc        string
}

// IndexSignature is [key: K]: V.
type IndexSignature struct {
	At      Position
	Key     string
	KeyType Type
	Type    Type
	Doc     string
}

func (m *PropertySignature) Pos() Position { return m.At }
func (m *MethodSignature) Pos() Position   { return m.At }
func (m *CallSignature) Pos() Position     { return m.At }
func (m *IndexSignature) Pos() Position    { return m.At }

func (*PropertySignature) node() {}
func (*MethodSignature) node()   {}
func (*CallSignature) node()     {}
func (*IndexSignature) node()    {}

func (*PropertySignature) member() {}
func (*MethodSignature) member()   {}
func (*CallSignature) member()     {}
func (*IndexSignature) member()    {}

func (m *PropertySignature) MemberName() string { return m.Name }
func (m *MethodSignature) MemberName() string   { return m.Name }
func (m *CallSignature) MemberName() string     { return "" }
func (m *IndexSignature) MemberName() string    { return "" }

func (m *PropertySignature) DocComment() string { return m.Doc }
func (m *MethodSignature) DocComment() string   { return m.Doc }
func (m *CallSignature) DocComment() string     { return m.Doc }
func (m *IndexSignature) DocComment() string    { return m.Doc }

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

// Stmt is the interface for top-level and namespace-level statements.
type Stmt interface {
	Node
	stmt()
}

// Modifiers are the export/declare flags common to declarations.
type Modifiers struct {
	Exported bool
	Default  bool
	Declare  bool
}

// ImportDecl is any import statement; its content is not modeled.
type ImportDecl struct {
	At Position
}

// ExportSpecifier is one entry of export { local as exported }.
type ExportSpecifier struct {
	Local    string
	Exported string
}

// ExportDecl is export { a, b as c } [from "m"].
type ExportDecl struct {
	At         Position
	Specifiers []ExportSpecifier
	From       string
	TypeOnly   bool
}

// ExportAssignment is export default x or export = x.
type ExportAssignment struct {
	At      Position
	Name    string
	Default bool // false for export =
}

// TypeAliasDecl is type Name<T> = T.
type TypeAliasDecl struct {
	At         Position
	Modifiers
	Name       string
	TypeParams []TypeParam
	Type       Type
	Doc        string
}

// VarDecl is one binding of declare const/let/var name: T.
type VarDecl struct {
	At   Position
	Modifiers
	Kind string // const, let or var
	Name string
	Type Type // nil when undeclared
	Doc  string
}

// InterfaceDecl is interface Name<T> extends B { ... }.
type InterfaceDecl struct {
	At         Position
	Modifiers
	Name       string
	TypeParams []TypeParam
	Extends    []Type
	Members    []Member
	Doc        string
}

// FunctionDecl is declare function name<T>(params): R.
type FunctionDecl struct {
	At         Position
	Modifiers
	Name       string
	TypeParams []TypeParam
	Params     []Param
	Result     Type
	Doc        string
}

// NamespaceDecl is namespace A.B { ... }, declare module "m" { ... } or declare global { ... }.
type NamespaceDecl struct {
	At     Position
	Modifiers
	Name   string
	Global bool
	Body   []Stmt
	Doc    string
}

// SkippedDecl is a declaration sdkgen does not model (class, enum, ...).
type SkippedDecl struct {
	At   Position
	Modifiers
	Kind string
	Name string
	Doc  string
}

func (s *ImportDecl) Pos() Position       { return s.At }
func (s *ExportDecl) Pos() Position       { return s.At }
func (s *ExportAssignment) Pos() Position { return s.At }
func (s *TypeAliasDecl) Pos() Position    { return s.At }
func (s *VarDecl) Pos() Position          { return s.At }
func (s *InterfaceDecl) Pos() Position    { return s.At }
func (s *FunctionDecl) Pos() Position     { return s.At }
func (s *NamespaceDecl) Pos() Position    { return s.At }
func (s *SkippedDecl) Pos() Position      { return s.At }

func (*ImportDecl) node()       {}
func (*ExportDecl) node()       {}
func (*ExportAssignment) node() {}
func (*TypeAliasDecl) node()    {}
func (*VarDecl) node()          {}
func (*InterfaceDecl) node()    {}
func (*FunctionDecl) node()     {}
func (*NamespaceDecl) node()    {}
func (*SkippedDecl) node()      {}

func (*ImportDecl) stmt()       {}
func (*ExportDecl) stmt()       {}
func (*ExportAssignment) stmt() {}
func (*TypeAliasDecl) stmt()    {}
func (*VarDecl) stmt()          {}
func (*InterfaceDecl) stmt()    {}
func (*FunctionDecl) stmt()     {}
func (*NamespaceDecl) stmt()    {}
func (*SkippedDecl) stmt()      {}

// SourceFile is a parsed declaration file.
type SourceFile struct {
	Path       string
	Statements []Stmt
}
