package dts

import (
	"strconv"
	"strings"
)

// TypeString renders a type node back to declaration syntax in a
// normalized single-line form.
func TypeString(t Type) string {
	var sb strings.Builder
	writeType(&sb, t)
	return sb.String()
}

func writeTypes(sb *strings.Builder, types []Type, sep string) {
	for i, t := range types {
		if i > 0 {
			sb.WriteString(sep)
		}
		writeType(sb, t)
	}
}

func writeParams(sb *strings.Builder, params []Param) {
	sb.WriteByte('(')
	for i, param := range params {
		if i > 0 {
			sb.WriteString(", ")
		}
		if param.Rest {
			sb.WriteString("...")
		}
		if param.Name == "" {
			sb.WriteString("_")
		} else {
			sb.WriteString(param.Name)
		}
		if param.Optional {
			sb.WriteByte('?')
		}
		if param.Type != nil {
			sb.WriteString(": ")
			writeType(sb, param.Type)
		}
	}
	sb.WriteByte(')')
}

func writeType(sb *strings.Builder, t Type) {
	switch n := t.(type) {
	case nil:
		sb.WriteString("any")
	case *KeywordType:
		sb.WriteString(n.Name)
	case *LiteralType:
		if n.Kind == LiteralString {
			sb.WriteString(strconv.Quote(n.Value))
		} else {
			sb.WriteString(n.Value)
		}
	case *TypeRef:
		if n.Module != "" {
			sb.WriteString("import(" + strconv.Quote(n.Module) + ")")
			if n.Name != "" {
				sb.WriteByte('.')
			}
		}
		sb.WriteString(n.Name)
		if len(n.Args) > 0 {
			sb.WriteByte('<')
			writeTypes(sb, n.Args, ", ")
			sb.WriteByte('>')
		}
	case *ArrayType:
		writeType(sb, n.Elem)
		sb.WriteString("[]")
	case *TupleType:
		sb.WriteByte('[')
		for i, el := range n.Elements {
			if i > 0 {
				sb.WriteString(", ")
			}
			if el.Rest {
				sb.WriteString("...")
			}
			if el.Name != "" {
				sb.WriteString(el.Name)
				if el.Optional {
					sb.WriteByte('?')
				}
				sb.WriteString(": ")
				writeType(sb, el.Type)
			} else {
				writeType(sb, el.Type)
				if el.Optional {
					sb.WriteByte('?')
				}
			}
		}
		sb.WriteByte(']')
	case *ObjectType:
		sb.WriteByte('{')
		for i, m := range n.Members {
			if i > 0 {
				sb.WriteByte(';')
			}
			sb.WriteByte(' ')
			writeMember(sb, m)
		}
		if len(n.Members) > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte('}')
	case *MappedType:
		sb.WriteString("{ [" + n.Key + " in ")
		writeType(sb, n.Constraint)
		if n.NameType != nil {
			sb.WriteString(" as ")
			writeType(sb, n.NameType)
		}
		sb.WriteString("]: ")
		writeType(sb, n.Value)
		sb.WriteString(" }")
	case *UnionType:
		writeTypes(sb, n.Types, " | ")
	case *IntersectionType:
		writeTypes(sb, n.Types, " & ")
	case *FunctionType:
		if n.Constructor {
			sb.WriteString("new ")
		}
		writeParams(sb, n.Params)
		sb.WriteString(" => ")
		writeType(sb, n.Result)
	case *ParenType:
		sb.WriteByte('(')
		writeType(sb, n.Inner)
		sb.WriteByte(')')
	case *TypeOperator:
		sb.WriteString(n.Operator + " ")
		writeType(sb, n.Type)
	case *TypeQuery:
		sb.WriteString("typeof " + n.Name)
	case *IndexedAccessType:
		writeType(sb, n.Object)
		sb.WriteByte('[')
		writeType(sb, n.Index)
		sb.WriteByte(']')
	case *ConditionalType:
		writeType(sb, n.Check)
		sb.WriteString(" extends ")
		writeType(sb, n.Extends)
		sb.WriteString(" ? ")
		writeType(sb, n.True)
		sb.WriteString(" : ")
		writeType(sb, n.False)
	case *InferType:
		sb.WriteString("infer " + n.Name)
	case *TypePredicate:
		if n.Asserts {
			sb.WriteString("asserts ")
		}
		sb.WriteString(n.Param)
		if n.Type != nil {
			sb.WriteString(" is ")
			writeType(sb, n.Type)
		}
	}
}

func writeMember(sb *strings.Builder, m Member) {
	switch n := m.(type) {
	case *PropertySignature:
		if n.Readonly {
			sb.WriteString("readonly ")
		}
		sb.WriteString(n.Name)
		if n.Optional {
			sb.WriteByte('?')
		}
		sb.WriteString(": ")
		writeType(sb, n.Type)
	case *MethodSignature:
		sb.WriteString(n.Name)
		if n.Optional {
			sb.WriteByte('?')
		}
		writeParams(sb, n.Params)
		sb.WriteString(": ")
		writeType(sb, n.Result)
	case *CallSignature:
		if n.Construct {
			sb.WriteString("new ")
		}
		writeParams(sb, n.Params)
		sb.WriteString(": ")
		writeType(sb, n.Result)
	case *IndexSignature:
		sb.WriteString("[" + n.Key + ": ")
		writeType(sb, n.KeyType)
		sb.WriteString("]: ")
		writeType(sb, n.Type)
	}
}
