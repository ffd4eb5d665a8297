package dts

// Inspect traverses the tree rooted at node in depth-first order, calling f
// for each node. If f returns false, the children of that node are skipped.
func Inspect(node Node, f func(Node) bool) {
	if node == nil || !f(node) {
		return
	}

	inspectType := func(t Type) {
		if t != nil {
			Inspect(t, f)
		}
	}
	inspectParams := func(tps []TypeParam, params []Param, result Type) {
		for _, tp := range tps {
			inspectType(tp.Constraint)
			inspectType(tp.Default)
		}
		for _, param := range params {
			inspectType(param.Type)
		}
		inspectType(result)
	}

	switch n := node.(type) {
	case *TypeRef:
		for _, a := range n.Args {
			inspectType(a)
		}
	case *ArrayType:
		inspectType(n.Elem)
	case *TupleType:
		for _, el := range n.Elements {
			inspectType(el.Type)
		}
	case *ObjectType:
		for _, m := range n.Members {
			Inspect(m, f)
		}
	case *MappedType:
		inspectType(n.Constraint)
		inspectType(n.NameType)
		inspectType(n.Value)
	case *UnionType:
		for _, t := range n.Types {
			inspectType(t)
		}
	case *IntersectionType:
		for _, t := range n.Types {
			inspectType(t)
		}
	case *FunctionType:
		inspectParams(n.TypeParams, n.Params, n.Result)
	case *ParenType:
		inspectType(n.Inner)
	case *TypeOperator:
		inspectType(n.Type)
	case *TypeQuery:
		for _, a := range n.Args {
			inspectType(a)
		}
	case *IndexedAccessType:
		inspectType(n.Object)
		inspectType(n.Index)
	case *ConditionalType:
		inspectType(n.Check)
		inspectType(n.Extends)
		inspectType(n.True)
		inspectType(n.False)
	case *InferType:
		inspectType(n.Constraint)
	case *TypePredicate:
		inspectType(n.Type)

	case *PropertySignature:
		inspectType(n.Type)
	case *MethodSignature:
		inspectParams(n.TypeParams, n.Params, n.Result)
	case *CallSignature:
		inspectParams(n.TypeParams, n.Params, n.Result)
	case *IndexSignature:
		inspectType(n.KeyType)
		inspectType(n.Type)

	case *TypeAliasDecl:
		inspectParams(n.TypeParams, nil, n.Type)
	case *VarDecl:
		inspectType(n.Type)
	case *InterfaceDecl:
		inspectParams(n.TypeParams, nil, nil)
		for _, e := range n.Extends {
			inspectType(e)
		}
		for _, m := range n.Members {
			Inspect(m, f)
		}
	case *FunctionDecl:
		inspectParams(n.TypeParams, n.Params, n.Result)
	case *NamespaceDecl:
		for _, s := range n.Body {
			Inspect(s, f)
		}
	}
}

// InspectFile calls Inspect for every top-level statement of file.
func InspectFile(file *SourceFile, f func(Node) bool) {
	for _, s := range file.Statements {
		Inspect(s, f)
	}
}
