package sdkgen

import (
	"github.com/teranos/sdkgen/dts"
)

// Checker is a per-file semantic view of the declarations. It resolves
// types through their computed union membership: aliases and nested unions
// are flattened before the narrowing policy applies, so
// type U = "a" | "b"; U | "c" resolves to String and true | false to Boolean.
type Checker struct {
	aliases AliasTable
}

// NewChecker builds the semantic model for file.
func NewChecker(file *dts.SourceFile) *Checker {
	return &Checker{aliases: BuildAliasTable(file)}
}

// Aliases returns the alias table the checker resolves against.
func (c *Checker) Aliases() AliasTable {
	return c.aliases
}

// Resolve implements TypeResolver.
func (c *Checker) Resolve(t dts.Type) TypeCategory {
	r := newResolver(c.aliases, true)
	return r.resolve(t, r.root)
}
