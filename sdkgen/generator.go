package sdkgen

// Meta carries the per-file values a generated unit embeds besides the
// extraction result.
type Meta struct {
	// ClassName is the generated class and the module registration name
	ClassName string
	// Version is the package version constant
	Version string
	// Source is the bundled module source, embedded verbatim
	Source string
	// SourceFile is the input path shown in the header, if stamping
	SourceFile string
	// Stamp holds provenance lines for the header; empty disables stamping
	Stamp []string
}

// Generator defines the interface for host-language binding generators.
// Generation is total: every ExtractionResult yields a valid unit.
type Generator interface {
	// GenerateFile creates a complete binding unit
	GenerateFile(result *ExtractionResult, meta Meta) string

	// FileSuffix returns the suffix appended to the input's base name,
	// e.g. "_source.dart"
	FileSuffix() string

	// Language returns the language name (e.g., "dart")
	Language() string
}
