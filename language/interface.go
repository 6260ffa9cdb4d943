package language

// Type selects which ExecParam variant Language.Get returns for a given
// language name.
type Type string

// Variants. TypeDiagnostics is the instrumented compile/run variant the
// diagnostics driver recompiles with; a Language that has none for a
// given name reports it through Language.Supports.
const (
	TypeCompile     Type = "compile"
	TypeExec        Type = "exec"
	TypeDiagnostics Type = "diagnostics"
)

// Language defines the way to compile and run a submission's source,
// and which languages have an instrumented diagnostics variant.
type Language interface {
	// Get returns the ExecParam for a specific language and Type.
	Get(name string, t Type) ExecParam
	// Supports reports whether name has a variant of Type t.
	Supports(name string, t Type) bool
}

// ExecParam defines specs to compile / run program
type ExecParam struct {
	SourceFileName    string
	Args              []string
	CompiledFileNames []string

	// limits
	TimeLimit   uint64
	MemoryLimit uint64
	ProcLimit   uint64
	OutputLimit uint64
}
