package sdkgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/sdkgen/dts"
)

func mustChecker(t *testing.T, src string) *Checker {
	t.Helper()
	file, err := dts.Parse("checker.d.ts", src)
	require.NoError(t, err)
	return NewChecker(file)
}

func TestCheckerFlattensUnionMembership(t *testing.T) {
	checker := mustChecker(t, resolverAliases+`
type Extended = Language | "de";
type Flags = true | false;
type Nested = (Opt<"x"> | "y") | null;
type Loop = Loop | "a";
`)

	tests := []struct {
		src       string
		semantic  TypeCategory
		syntactic TypeCategory
	}{
		{"Extended", String, Dynamic},
		{"Language | 'de' | undefined", String, Dynamic},
		{"Flags", Boolean, Dynamic},
		{"Nested", String, Dynamic},
		{"Loop", Dynamic, Dynamic},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			typ := mustType(t, tt.src)
			got := checker.Resolve(typ)
			assert.True(t, tt.semantic.Equal(got), "semantic %s = %s", tt.src, got)

			got = Resolve(typ, checker.Aliases())
			assert.True(t, tt.syntactic.Equal(got), "syntactic %s = %s", tt.src, got)
		})
	}
}

// Both resolution paths agree on the documented properties.
func TestCheckerAgreesWithSyntacticResolver(t *testing.T) {
	checker := mustChecker(t, resolverAliases)

	for _, src := range []string{
		"string", "number | undefined", "MyString", "Recursive", "Self", "PingA",
		"Language", "MaybeLanguage", "'a' | 'b'", "'a' | 1", "string[][]",
		"Array<Array<number>>", "DartMap", "runtime.DartSet", "Uint8Array",
		"Opt<boolean>", "Pair<string>", "api.v1.Ref", "Grid", "Mixed",
		"Promise<void>", "100n", "void", "Tree", "Rows", "Tree | undefined",
	} {
		t.Run(src, func(t *testing.T) {
			typ := mustType(t, src)
			semantic := checker.Resolve(typ)
			syntactic := Resolve(typ, checker.Aliases())
			assert.True(t, semantic.Equal(syntactic), "%s: semantic %s, syntactic %s", src, semantic, syntactic)
		})
	}
}

// Self-references behind a list wrapper end in Dynamic on both paths.
func TestCheckerRecursiveListAliases(t *testing.T) {
	checker := mustChecker(t, resolverAliases)

	for _, src := range []string{"Tree", "Rows", "Tree[]", "Tree | undefined"} {
		t.Run(src, func(t *testing.T) {
			typ := mustType(t, src)
			want := Resolve(typ, checker.Aliases())
			got := checker.Resolve(typ)
			assert.True(t, want.Equal(got), "semantic %s, syntactic %s", got, want)
		})
	}
	assert.True(t, ListOf(Dynamic).Equal(checker.Resolve(mustType(t, "Tree"))))
	assert.True(t, ListOf(Dynamic).Equal(checker.Resolve(mustType(t, "Rows"))))
}
