package dts

import (
	"fmt"
	"strings"

	"github.com/teranos/sdkgen/errors"
)

// maxReportedErrors caps the parse errors folded into the returned error.
const maxReportedErrors = 10

// Parser is a recursive descent parser for TypeScript declaration files.
//
// It covers the declaration subset bundlers emit: imports/exports, type
// aliases, ambient variables and functions, interfaces and namespaces.
// Classes and enums are recognized and skipped.
type Parser struct {
	path   string
	tokens []Token
	pos    int
	errors []string
}

// NewParser creates a new parser for the given input.
func NewParser(path, input string) *Parser {
	return &Parser{
		path:   path,
		tokens: Tokenize(input),
	}
}

// Parse parses a declaration file. The returned error lists the first parse
// errors with their positions; the partial tree is returned alongside it.
func Parse(path, input string) (*SourceFile, error) {
	p := NewParser(path, input)
	file := p.ParseFile()
	if errs := p.Errors(); len(errs) > 0 {
		if len(errs) > maxReportedErrors {
			errs = append(errs[:maxReportedErrors], fmt.Sprintf("and %d more", len(errs)-maxReportedErrors))
		}
		return file, errors.Newf("parse %s: %s", path, strings.Join(errs, "; "))
	}
	return file, nil
}

func (p *Parser) cur() Token {
	return p.tokens[p.pos]
}

func (p *Parser) peek(n int) Token {
	i := p.pos + n
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}

// next consumes and returns the current token. EOF is never consumed.
func (p *Parser) next() Token {
	tok := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) at(t TokenType) bool {
	return p.cur().Type == t
}

func (p *Parser) atWord(word string) bool {
	return p.cur().Is(word)
}

func (p *Parser) accept(t TokenType) bool {
	if p.at(t) {
		p.next()
		return true
	}
	return false
}

// expect advances if the current token matches, otherwise records an error.
func (p *Parser) expect(t TokenType) bool {
	if p.accept(t) {
		return true
	}
	p.errorf("expected %s, got %s", t, p.cur())
	return false
}

func (p *Parser) expectIdent() string {
	if p.at(TokenIdent) {
		return p.next().Literal
	}
	p.errorf("expected identifier, got %s", p.cur())
	return ""
}

// errorf records a parse error at the current token.
func (p *Parser) errorf(format string, args ...interface{}) {
	msg := fmt.Sprintf("%s: %s", p.cur().Pos, fmt.Sprintf(format, args...))
	p.errors = append(p.errors, msg)
}

// Errors returns accumulated parse errors.
func (p *Parser) Errors() []string {
	return p.errors
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

// ParseFile parses statements until EOF.
func (p *Parser) ParseFile() *SourceFile {
	return &SourceFile{
		Path:       p.path,
		Statements: p.parseStatements(false),
	}
}

func (p *Parser) parseStatements(inBlock bool) []Stmt {
	var stmts []Stmt
	for !p.at(TokenEOF) && !(inBlock && p.at(TokenRBrace)) {
		start := p.pos
		stmts = append(stmts, p.parseStatement()...)
		if p.pos == start {
			p.errorf("unexpected %s", p.cur())
			p.next()
		}
	}
	return stmts
}

func (p *Parser) parseStatement() []Stmt {
	tok := p.cur()

	switch {
	case tok.Type == TokenSemicolon:
		p.next()
		return nil
	case tok.Type == TokenError:
		p.errorf("%s", tok.Literal)
		p.next()
		return nil
	case tok.Is("import") && p.peek(1).Type != TokenLParen:
		p.skipStatement()
		return []Stmt{&ImportDecl{At: tok.Pos}}
	case tok.Is("export"):
		return p.parseExport()
	}

	return p.parseDeclaration(Modifiers{}, tok.Doc)
}

func (p *Parser) parseExport() []Stmt {
	tok := p.next() // export
	at, doc := tok.Pos, tok.Doc

	switch {
	case p.at(TokenLBrace):
		return []Stmt{p.parseExportList(at, false)}
	case p.atWord("type") && p.peek(1).Type == TokenLBrace:
		p.next()
		return []Stmt{p.parseExportList(at, true)}
	case p.at(TokenStar):
		p.skipStatement()
		return []Stmt{&ExportDecl{At: at}}
	case p.at(TokenEquals):
		p.next()
		name := p.parseEntityName()
		p.accept(TokenSemicolon)
		return []Stmt{&ExportAssignment{At: at, Name: name}}
	case p.atWord("as"), p.atWord("import"):
		p.skipStatement()
		return nil
	case p.atWord("default"):
		p.next()
		if p.isDeclarationStart() {
			return p.parseDeclaration(Modifiers{Exported: true, Default: true}, doc)
		}
		if p.at(TokenIdent) {
			following := p.peek(1)
			if following.Type == TokenSemicolon || following.Type == TokenEOF || following.NewlineBefore {
				name := p.next().Literal
				p.accept(TokenSemicolon)
				return []Stmt{&ExportAssignment{At: at, Name: name, Default: true}}
			}
		}
		p.skipStatement()
		return []Stmt{&ExportAssignment{At: at, Default: true}}
	}

	return p.parseDeclaration(Modifiers{Exported: true}, doc)
}

func (p *Parser) parseExportList(at Position, typeOnly bool) *ExportDecl {
	decl := &ExportDecl{At: at, TypeOnly: typeOnly}
	p.expect(TokenLBrace)

	for !p.at(TokenRBrace) && !p.at(TokenEOF) {
		// Inline "type" modifier: export { type A, type B as C }
		if p.atWord("type") && (p.peek(1).Type == TokenIdent || p.peek(1).Type == TokenString) {
			after := p.peek(2)
			if !(p.peek(1).Is("as") && (after.Type == TokenComma || after.Type == TokenRBrace)) {
				p.next()
			}
		}
		local := p.parseModuleExportName()
		exported := local
		if p.atWord("as") {
			p.next()
			exported = p.parseModuleExportName()
		}
		decl.Specifiers = append(decl.Specifiers, ExportSpecifier{Local: local, Exported: exported})
		if !p.accept(TokenComma) {
			break
		}
	}
	p.expect(TokenRBrace)

	if p.atWord("from") {
		p.next()
		if p.at(TokenString) {
			decl.From = p.next().Literal
		}
	}
	p.accept(TokenSemicolon)
	return decl
}

func (p *Parser) parseModuleExportName() string {
	if p.at(TokenIdent) || p.at(TokenString) {
		return p.next().Literal
	}
	p.errorf("expected export name, got %s", p.cur())
	return ""
}

var declarationKeywords = map[string]bool{
	"declare": true, "const": true, "let": true, "var": true, "type": true,
	"interface": true, "function": true, "async": true, "namespace": true,
	"module": true, "global": true, "class": true, "abstract": true, "enum": true,
}

func (p *Parser) isDeclarationStart() bool {
	tok := p.cur()
	if tok.Type != TokenIdent || !declarationKeywords[tok.Literal] {
		return false
	}
	following := p.peek(1)
	switch tok.Literal {
	case "type", "namespace", "module", "interface":
		return following.Type == TokenIdent || following.Type == TokenString
	case "global":
		return following.Type == TokenLBrace
	}
	return true
}

func (p *Parser) parseDeclaration(mods Modifiers, doc string) []Stmt {
	if p.atWord("declare") && p.peek(1).Type == TokenIdent {
		p.next()
		mods.Declare = true
	}
	tok := p.cur()
	following := p.peek(1)

	switch {
	case tok.Is("const") && following.Is("enum"):
		p.next()
		return []Stmt{p.skipDeclaration(mods, doc)}
	case tok.Is("const"), tok.Is("let"), tok.Is("var"):
		return p.parseVariables(mods, doc)
	case tok.Is("type") && following.Type == TokenIdent:
		return []Stmt{p.parseTypeAlias(mods, doc)}
	case tok.Is("interface") && following.Type == TokenIdent:
		return []Stmt{p.parseInterface(mods, doc)}
	case tok.Is("function"), tok.Is("async") && following.Is("function"):
		return []Stmt{p.parseFunctionDecl(mods, doc)}
	case (tok.Is("namespace") || tok.Is("module")) && (following.Type == TokenIdent || following.Type == TokenString):
		return []Stmt{p.parseNamespace(mods, doc)}
	case tok.Is("global") && following.Type == TokenLBrace:
		p.next()
		body := p.parseBlock()
		return []Stmt{&NamespaceDecl{At: tok.Pos, Modifiers: mods, Name: "global", Global: true, Body: body, Doc: doc}}
	case tok.Is("abstract") && following.Is("class"):
		p.next()
		return []Stmt{p.skipDeclaration(mods, doc)}
	case tok.Is("class"), tok.Is("enum"):
		return []Stmt{p.skipDeclaration(mods, doc)}
	}

	p.skipStatement()
	return nil
}

func (p *Parser) parseVariables(mods Modifiers, doc string) []Stmt {
	kind := p.next().Literal
	var decls []Stmt

	for {
		tok := p.cur()
		decl := &VarDecl{At: tok.Pos, Modifiers: mods, Kind: kind, Doc: doc}
		if tok.Type == TokenLBrace || tok.Type == TokenLBracket {
			p.skipBalanced()
		} else {
			decl.Name = p.expectIdent()
		}
		p.accept(TokenBang)
		if p.accept(TokenColon) {
			decl.Type = p.parseType()
		}
		if p.accept(TokenEquals) {
			p.skipInitializer()
		}
		decls = append(decls, decl)
		doc = ""
		if !p.accept(TokenComma) {
			break
		}
	}
	p.accept(TokenSemicolon)
	return decls
}

func (p *Parser) parseTypeAlias(mods Modifiers, doc string) *TypeAliasDecl {
	at := p.next().Pos // type
	decl := &TypeAliasDecl{At: at, Modifiers: mods, Doc: doc}
	decl.Name = p.expectIdent()
	decl.TypeParams = p.parseTypeParams()
	p.expect(TokenEquals)
	decl.Type = p.parseType()
	p.accept(TokenSemicolon)
	return decl
}

func (p *Parser) parseInterface(mods Modifiers, doc string) *InterfaceDecl {
	at := p.next().Pos // interface
	decl := &InterfaceDecl{At: at, Modifiers: mods, Doc: doc}
	decl.Name = p.expectIdent()
	decl.TypeParams = p.parseTypeParams()
	if p.atWord("extends") {
		p.next()
		for {
			decl.Extends = append(decl.Extends, p.parseTypeReference())
			if !p.accept(TokenComma) {
				break
			}
		}
	}
	decl.Members = p.parseObjectMembers()
	return decl
}

func (p *Parser) parseFunctionDecl(mods Modifiers, doc string) *FunctionDecl {
	at := p.cur().Pos
	if p.atWord("async") {
		p.next()
	}
	p.next() // function
	p.accept(TokenStar)

	decl := &FunctionDecl{At: at, Modifiers: mods, Doc: doc}
	if p.at(TokenIdent) {
		decl.Name = p.next().Literal
	}
	decl.TypeParams, decl.Params, decl.Result = p.parseSignature()
	if p.at(TokenLBrace) {
		p.skipBalanced()
	} else {
		p.accept(TokenSemicolon)
	}
	return decl
}

func (p *Parser) parseNamespace(mods Modifiers, doc string) *NamespaceDecl {
	at := p.next().Pos // namespace | module
	decl := &NamespaceDecl{At: at, Modifiers: mods, Doc: doc}

	if p.at(TokenString) {
		decl.Name = p.next().Literal
	} else {
		decl.Name = p.parseEntityName()
	}
	if p.at(TokenLBrace) {
		decl.Body = p.parseBlock()
	} else {
		p.accept(TokenSemicolon)
	}
	return decl
}

func (p *Parser) parseBlock() []Stmt {
	p.expect(TokenLBrace)
	body := p.parseStatements(true)
	p.expect(TokenRBrace)
	return body
}

// skipDeclaration skips a class or enum declaration including its body.
func (p *Parser) skipDeclaration(mods Modifiers, doc string) *SkippedDecl {
	tok := p.next()
	decl := &SkippedDecl{At: tok.Pos, Modifiers: mods, Kind: tok.Literal, Doc: doc}
	if p.at(TokenIdent) && !p.atWord("extends") && !p.atWord("implements") {
		decl.Name = p.next().Literal
	}
	angles := 0
	for !p.at(TokenEOF) && !(angles == 0 && (p.at(TokenLBrace) || p.at(TokenSemicolon))) {
		switch p.cur().Type {
		case TokenLParen, TokenLBracket, TokenLBrace:
			p.skipBalanced()
			continue
		case TokenLAngle:
			angles++
		case TokenRAngle:
			angles--
		}
		p.next()
	}
	if p.at(TokenLBrace) {
		p.skipBalanced()
	} else {
		p.accept(TokenSemicolon)
	}
	return decl
}

// skipStatement consumes tokens up to the end of the current statement:
// a semicolon at depth zero, a closing brace of the enclosing block, or a
// line break at depth zero.
func (p *Parser) skipStatement() {
	depth := 0
	first := true
	for !p.at(TokenEOF) {
		tok := p.cur()
		if depth == 0 && !first && tok.NewlineBefore {
			return
		}
		switch tok.Type {
		case TokenLParen, TokenLBracket, TokenLBrace:
			depth++
		case TokenRParen, TokenRBracket, TokenRBrace:
			if depth == 0 {
				return
			}
			depth--
		case TokenSemicolon:
			if depth == 0 {
				p.next()
				return
			}
		}
		p.next()
		first = false
	}
}

// skipInitializer consumes an initializer expression, stopping before a
// comma, semicolon or closer at depth zero.
func (p *Parser) skipInitializer() {
	depth := 0
	for !p.at(TokenEOF) {
		tok := p.cur()
		switch tok.Type {
		case TokenLParen, TokenLBracket, TokenLBrace:
			depth++
		case TokenRParen, TokenRBracket, TokenRBrace:
			if depth == 0 {
				return
			}
			depth--
		case TokenComma, TokenSemicolon:
			if depth == 0 {
				return
			}
		}
		p.next()
	}
}

// skipBalanced consumes a bracketed group starting at the current opener.
func (p *Parser) skipBalanced() {
	depth := 0
	for !p.at(TokenEOF) {
		switch p.next().Type {
		case TokenLParen, TokenLBracket, TokenLBrace:
			depth++
		case TokenRParen, TokenRBracket, TokenRBrace:
			depth--
		}
		if depth <= 0 {
			return
		}
	}
}

// matchingClose returns the index of the closer matching the opener at index open.
func (p *Parser) matchingClose(open int) int {
	depth := 0
	for i := open; i < len(p.tokens); i++ {
		switch p.tokens[i].Type {
		case TokenLParen, TokenLBracket, TokenLBrace:
			depth++
		case TokenRParen, TokenRBracket, TokenRBrace:
			depth--
			if depth == 0 {
				return i
			}
		case TokenEOF:
			return i
		}
	}
	return len(p.tokens) - 1
}

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// ParseType parses a standalone type expression.
func (p *Parser) ParseType() Type {
	return p.parseType()
}

func (p *Parser) parseType() Type {
	t := p.parseUnionType()
	if p.atWord("extends") {
		at := p.next().Pos
		ext := p.parseUnionType()
		p.expect(TokenQuestion)
		whenTrue := p.parseType()
		p.expect(TokenColon)
		whenFalse := p.parseType()
		return &ConditionalType{At: at, Check: t, Extends: ext, True: whenTrue, False: whenFalse}
	}
	return t
}

func (p *Parser) parseUnionType() Type {
	at := p.cur().Pos
	p.accept(TokenPipe)
	first := p.parseIntersectionType()
	if !p.at(TokenPipe) {
		return first
	}
	types := []Type{first}
	for p.accept(TokenPipe) {
		types = append(types, p.parseIntersectionType())
	}
	return &UnionType{At: at, Types: types}
}

func (p *Parser) parseIntersectionType() Type {
	at := p.cur().Pos
	p.accept(TokenAmp)
	first := p.parseTypeOperator()
	if !p.at(TokenAmp) {
		return first
	}
	types := []Type{first}
	for p.accept(TokenAmp) {
		types = append(types, p.parseTypeOperator())
	}
	return &IntersectionType{At: at, Types: types}
}

// isTypeTerminator reports tokens that cannot start a type.
func isTypeTerminator(t TokenType) bool {
	switch t {
	case TokenComma, TokenRParen, TokenRBracket, TokenRAngle, TokenRBrace, TokenSemicolon,
		TokenPipe, TokenAmp, TokenEquals, TokenQuestion, TokenColon, TokenArrow, TokenEOF:
		return true
	}
	return false
}

func (p *Parser) parseTypeOperator() Type {
	tok := p.cur()
	if tok.Type == TokenIdent && !isTypeTerminator(p.peek(1).Type) && p.peek(1).Type != TokenDot {
		switch tok.Literal {
		case "keyof", "unique", "readonly":
			p.next()
			return &TypeOperator{At: tok.Pos, Operator: tok.Literal, Type: p.parseTypeOperator()}
		case "infer":
			p.next()
			return &InferType{At: tok.Pos, Name: p.expectIdent()}
		}
	}
	return p.parsePostfixType()
}

func (p *Parser) parsePostfixType() Type {
	t := p.parsePrimaryType()
	for p.at(TokenLBracket) && !p.cur().NewlineBefore {
		at := p.next().Pos
		if p.accept(TokenRBracket) {
			t = &ArrayType{At: at, Elem: t}
			continue
		}
		index := p.parseType()
		p.expect(TokenRBracket)
		t = &IndexedAccessType{At: at, Object: t, Index: index}
	}
	return t
}

var typeKeywords = map[string]bool{
	"string": true, "number": true, "boolean": true, "void": true, "undefined": true,
	"null": true, "any": true, "unknown": true, "never": true, "object": true,
	"bigint": true, "symbol": true, "this": true,
}

func (p *Parser) parsePrimaryType() Type {
	tok := p.cur()

	switch tok.Type {
	case TokenLParen:
		if p.isFunctionTypeStart() {
			return p.parseFunctionType()
		}
		p.next()
		inner := p.parseType()
		p.expect(TokenRParen)
		return &ParenType{At: tok.Pos, Inner: inner}
	case TokenLAngle:
		return p.parseFunctionType()
	case TokenLBrace:
		if p.isMappedTypeStart() {
			return p.parseMappedType()
		}
		return &ObjectType{At: tok.Pos, Members: p.parseObjectMembers()}
	case TokenLBracket:
		return p.parseTupleType()
	case TokenString:
		p.next()
		return &LiteralType{At: tok.Pos, Kind: LiteralString, Value: tok.Literal}
	case TokenTemplate:
		p.next()
		return &LiteralType{At: tok.Pos, Kind: LiteralTemplate, Value: tok.Literal}
	case TokenNumber:
		p.next()
		return &LiteralType{At: tok.Pos, Kind: LiteralNumber, Value: tok.Literal}
	case TokenBigInt:
		p.next()
		return &LiteralType{At: tok.Pos, Kind: LiteralBigInt, Value: tok.Literal}
	case TokenMinus:
		p.next()
		num := p.cur()
		switch num.Type {
		case TokenNumber:
			p.next()
			return &LiteralType{At: tok.Pos, Kind: LiteralNumber, Value: "-" + num.Literal}
		case TokenBigInt:
			p.next()
			return &LiteralType{At: tok.Pos, Kind: LiteralBigInt, Value: "-" + num.Literal}
		}
		p.errorf("expected numeric literal after '-', got %s", num)
		return &KeywordType{At: tok.Pos, Name: "any"}
	case TokenIdent:
		return p.parseIdentType()
	case TokenError:
		p.errorf("%s", tok.Literal)
		p.next()
		return &KeywordType{At: tok.Pos, Name: "any"}
	}

	p.errorf("expected type, got %s", tok)
	if !isTypeTerminator(tok.Type) {
		p.next()
	}
	return &KeywordType{At: tok.Pos, Name: "any"}
}

func (p *Parser) parseIdentType() Type {
	tok := p.cur()
	following := p.peek(1)

	switch tok.Literal {
	case "new":
		return p.parseFunctionType()
	case "abstract":
		if following.Is("new") {
			p.next()
			return p.parseFunctionType()
		}
	case "typeof":
		if following.Type == TokenIdent {
			p.next()
			q := &TypeQuery{At: tok.Pos, Name: p.parseEntityName()}
			if p.at(TokenLAngle) && !p.cur().NewlineBefore {
				q.Args = p.parseTypeArgs()
			}
			return q
		}
	case "import":
		if following.Type == TokenLParen {
			return p.parseImportType()
		}
	case "true", "false":
		p.next()
		return &LiteralType{At: tok.Pos, Kind: LiteralBoolean, Value: tok.Literal}
	case "asserts":
		if following.Type == TokenIdent && !following.NewlineBefore && !following.Is("is") {
			p.next()
			pred := &TypePredicate{At: tok.Pos, Param: p.next().Literal, Asserts: true}
			if p.atWord("is") {
				p.next()
				pred.Type = p.parseType()
			}
			return pred
		}
	}

	if following.Is("is") && !following.NewlineBefore {
		p.next()
		p.next()
		return &TypePredicate{At: tok.Pos, Param: tok.Literal, Type: p.parseType()}
	}

	if typeKeywords[tok.Literal] && following.Type != TokenDot {
		p.next()
		return &KeywordType{At: tok.Pos, Name: tok.Literal}
	}

	return p.parseTypeReference()
}

func (p *Parser) parseImportType() Type {
	at := p.next().Pos // import
	p.expect(TokenLParen)
	module := ""
	if p.at(TokenString) {
		module = p.next().Literal
	} else {
		p.errorf("expected module specifier, got %s", p.cur())
	}
	p.expect(TokenRParen)

	ref := &TypeRef{At: at, Module: module}
	if p.accept(TokenDot) {
		ref.Name = p.parseEntityName()
	}
	if p.at(TokenLAngle) && !p.cur().NewlineBefore {
		ref.Args = p.parseTypeArgs()
	}
	return ref
}

func (p *Parser) parseTypeReference() *TypeRef {
	at := p.cur().Pos
	ref := &TypeRef{At: at, Name: p.parseEntityName()}
	if p.at(TokenLAngle) && !p.cur().NewlineBefore {
		ref.Args = p.parseTypeArgs()
	}
	return ref
}

// parseEntityName parses a dotted name such as A.B.C.
func (p *Parser) parseEntityName() string {
	var sb strings.Builder
	sb.WriteString(p.expectIdent())
	for p.at(TokenDot) && p.peek(1).Type == TokenIdent {
		p.next()
		sb.WriteByte('.')
		sb.WriteString(p.next().Literal)
	}
	return sb.String()
}

func (p *Parser) parseTypeArgs() []Type {
	p.expect(TokenLAngle)
	var args []Type
	for !p.at(TokenRAngle) && !p.at(TokenEOF) {
		args = append(args, p.parseType())
		if !p.accept(TokenComma) {
			break
		}
	}
	p.expect(TokenRAngle)
	return args
}

func (p *Parser) parseTypeParams() []TypeParam {
	if !p.at(TokenLAngle) {
		return nil
	}
	p.next()

	var params []TypeParam
	for !p.at(TokenRAngle) && !p.at(TokenEOF) {
		for (p.atWord("const") || p.atWord("in") || p.atWord("out")) && p.peek(1).Type == TokenIdent {
			p.next()
		}
		tp := TypeParam{Name: p.expectIdent()}
		if p.atWord("extends") {
			p.next()
			tp.Constraint = p.parseType()
		}
		if p.accept(TokenEquals) {
			tp.Default = p.parseType()
		}
		params = append(params, tp)
		if !p.accept(TokenComma) {
			break
		}
	}
	p.expect(TokenRAngle)
	return params
}

// isFunctionTypeStart reports whether the parenthesized group at the current
// position is a parameter list, i.e. is followed by =>.
func (p *Parser) isFunctionTypeStart() bool {
	end := p.matchingClose(p.pos)
	return end+1 < len(p.tokens) && p.tokens[end+1].Type == TokenArrow
}

func (p *Parser) parseFunctionType() Type {
	fn := &FunctionType{At: p.cur().Pos}
	if p.atWord("new") {
		p.next()
		fn.Constructor = true
	}
	fn.TypeParams = p.parseTypeParams()
	fn.Params = p.parseParams()
	p.expect(TokenArrow)
	fn.Result = p.parseType()
	return fn
}

var paramModifiers = map[string]bool{
	"public": true, "private": true, "protected": true, "readonly": true, "override": true,
}

func (p *Parser) parseParams() []Param {
	p.expect(TokenLParen)

	var params []Param
	for !p.at(TokenRParen) && !p.at(TokenEOF) {
		for p.at(TokenIdent) && paramModifiers[p.cur().Literal] &&
			(p.peek(1).Type == TokenIdent || p.peek(1).Type == TokenLBrace || p.peek(1).Type == TokenLBracket) {
			p.next()
		}

		var param Param
		if p.accept(TokenEllipsis) {
			param.Rest = true
		}
		switch p.cur().Type {
		case TokenLBrace, TokenLBracket:
			p.skipBalanced()
		case TokenIdent:
			param.Name = p.next().Literal
		default:
			p.errorf("expected parameter name, got %s", p.cur())
			p.skipInitializer()
		}
		if p.accept(TokenQuestion) {
			param.Optional = true
		}
		if p.accept(TokenColon) {
			param.Type = p.parseType()
		}
		if p.accept(TokenEquals) {
			param.Optional = true
			p.skipInitializer()
		}
		params = append(params, param)
		if !p.accept(TokenComma) {
			break
		}
	}
	p.expect(TokenRParen)
	return params
}

func (p *Parser) parseSignature() ([]TypeParam, []Param, Type) {
	typeParams := p.parseTypeParams()
	params := p.parseParams()
	var result Type
	if p.accept(TokenColon) {
		result = p.parseType()
	}
	return typeParams, params, result
}

func (p *Parser) parseTupleType() Type {
	at := p.next().Pos // [
	tuple := &TupleType{At: at}

	for !p.at(TokenRBracket) && !p.at(TokenEOF) {
		var el TupleElement
		if p.accept(TokenEllipsis) {
			el.Rest = true
		}
		following := p.peek(1)
		if p.at(TokenIdent) && (following.Type == TokenColon ||
			(following.Type == TokenQuestion && p.peek(2).Type == TokenColon)) {
			el.Name = p.next().Literal
			if p.accept(TokenQuestion) {
				el.Optional = true
			}
			p.expect(TokenColon)
		}
		el.Type = p.parseType()
		if p.accept(TokenQuestion) {
			el.Optional = true
		}
		tuple.Elements = append(tuple.Elements, el)
		if !p.accept(TokenComma) {
			break
		}
	}
	p.expect(TokenRBracket)
	return tuple
}

func (p *Parser) isMappedTypeStart() bool {
	i := 1
	if t := p.peek(i).Type; t == TokenPlus || t == TokenMinus {
		i++
	}
	if p.peek(i).Is("readonly") {
		i++
	}
	return p.peek(i).Type == TokenLBracket && p.peek(i+1).Type == TokenIdent && p.peek(i+2).Is("in")
}

func (p *Parser) parseMappedType() Type {
	at := p.next().Pos // {
	if !p.accept(TokenPlus) {
		p.accept(TokenMinus)
	}
	if p.atWord("readonly") {
		p.next()
	}
	p.expect(TokenLBracket)

	mapped := &MappedType{At: at, Key: p.expectIdent()}
	p.next() // in
	mapped.Constraint = p.parseType()
	if p.atWord("as") {
		p.next()
		mapped.NameType = p.parseType()
	}
	p.expect(TokenRBracket)

	if !p.accept(TokenPlus) {
		p.accept(TokenMinus)
	}
	p.accept(TokenQuestion)
	if p.accept(TokenColon) {
		mapped.Value = p.parseType()
	}
	if !p.accept(TokenSemicolon) {
		p.accept(TokenComma)
	}
	p.expect(TokenRBrace)
	return mapped
}

// ---------------------------------------------------------------------------
// Object members
// ---------------------------------------------------------------------------

func (p *Parser) parseObjectMembers() []Member {
	p.expect(TokenLBrace)

	var members []Member
	for !p.at(TokenRBrace) && !p.at(TokenEOF) {
		start := p.pos
		if m := p.parseMember(); m != nil {
			members = append(members, m)
		}
		for p.accept(TokenSemicolon) || p.accept(TokenComma) {
		}
		if p.pos == start {
			p.errorf("unexpected %s in type members", p.cur())
			p.next()
		}
	}
	p.expect(TokenRBrace)
	return members
}

var memberModifiers = map[string]bool{
	"readonly": true, "public": true, "private": true, "protected": true, "static": true,
	"abstract": true, "declare": true, "override": true, "accessor": true,
}

func isPropertyNameStart(tok Token) bool {
	switch tok.Type {
	case TokenIdent, TokenString, TokenNumber, TokenLBracket, TokenHash:
		return true
	}
	return false
}

func (p *Parser) parseMember() Member {
	tok := p.cur()
	at, doc := tok.Pos, tok.Doc

	if p.at(TokenLParen) || p.at(TokenLAngle) {
		tps, params, result := p.parseSignature()
		return &CallSignature{At: at, TypeParams: tps, Params: params, Result: result, Doc: doc}
	}
	if p.atWord("new") && (p.peek(1).Type == TokenLParen || p.peek(1).Type == TokenLAngle) {
		p.next()
		tps, params, result := p.parseSignature()
		return &CallSignature{At: at, TypeParams: tps, Params: params, Result: result, Construct: true, Doc: doc}
	}

	readonly := false
	for p.at(TokenIdent) && memberModifiers[p.cur().Literal] && isPropertyNameStart(p.peek(1)) {
		if p.atWord("readonly") {
			readonly = true
		}
		p.next()
	}

	if (p.atWord("get") || p.atWord("set")) && isPropertyNameStart(p.peek(1)) {
		getter := p.next().Is("get")
		name := p.parsePropertyName()
		_, params, result := p.parseSignature()
		prop := &PropertySignature{At: at, Name: name, Readonly: getter, Doc: doc, Type: result}
		if !getter && len(params) > 0 {
			prop.Type = params[0].Type
		}
		return prop
	}

	if p.at(TokenLBracket) && p.peek(1).Type == TokenIdent && p.peek(2).Type == TokenColon {
		p.next()
		sig := &IndexSignature{At: at, Key: p.next().Literal, Doc: doc}
		p.next() // :
		sig.KeyType = p.parseType()
		p.expect(TokenRBracket)
		if p.expect(TokenColon) {
			sig.Type = p.parseType()
		}
		return sig
	}

	name := p.parsePropertyName()
	optional := p.accept(TokenQuestion)
	p.accept(TokenBang)

	if p.at(TokenLParen) || p.at(TokenLAngle) {
		tps, params, result := p.parseSignature()
		return &MethodSignature{At: at, Name: name, Optional: optional, TypeParams: tps, Params: params, Result: result, Doc: doc}
	}

	prop := &PropertySignature{At: at, Name: name, Optional: optional, Readonly: readonly, Doc: doc}
	if p.accept(TokenColon) {
		prop.Type = p.parseType()
	}
	if p.accept(TokenEquals) {
		p.skipInitializer()
	}
	return prop
}

func (p *Parser) parsePropertyName() string {
	tok := p.cur()
	switch tok.Type {
	case TokenIdent, TokenString, TokenNumber:
		p.next()
		return tok.Literal
	case TokenHash:
		p.next()
		return "#" + p.expectIdent()
	case TokenLBracket:
		end := p.matchingClose(p.pos)
		var sb strings.Builder
		for i := p.pos; i <= end; i++ {
			sb.WriteString(p.tokens[i].Literal)
		}
		p.pos = end
		p.next()
		return sb.String()
	}
	p.errorf("expected property name, got %s", tok)
	return ""
}
