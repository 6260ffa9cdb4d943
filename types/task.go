package types

import "github.com/hotwords123/judge-v3/file"

// RunTask.Type values. The core treats Type as opaque routing
// information (§4.H); these names are the ones the judger
// specializations (§4.G) actually emit.
const (
	TaskCompile           = "compile"
	TaskStandard          = "standard"
	TaskAnswerSubmission  = "answer_submission"
	TaskInteractive       = "interactive"
)

// Submission is what a caller hands to the judger constructor: source
// code, target language and resource limits. The test data and priority
// are supplied alongside it, not embedded in it (§2 data flow).
type Submission struct {
	Language    string
	Code        file.File
	ExtraFiles  []file.File
	TimeLimit   uint64 // ms, per-case default
	MemoryLimit uint64 // KiB, per-case default
}

// RunTask is the opaque payload forwarded to the runner transport. The
// core only ever constructs and forwards this value; it never interprets
// the fields beyond what's needed to route the task (§4.H, §6).
type RunTask struct {
	Type string

	// Priority is the RPC priority passed through to the runner pool
	// (higher runs sooner on a runner that supports priority
	// scheduling); transports that don't are free to ignore it.
	Priority int

	// Compile task fields.
	CompileLanguage string
	CompileCode     string
	CompileExtra    []file.File
	Instrumented    bool // true selects the diagnostics-enabled language variant

	// Exec task fields.
	TestDataName       string
	InputFile          *string
	AnswerFile         *string
	TimeLimit          uint64 // ms
	MemoryLimit        uint64 // KiB
	FileIOInput        *string
	FileIOOutput       *string
	UserExecutableName string
	SPJExecutableName  string
	SPJLanguage        string
	InteractorName     string
	InteractorLanguage string

	// AnswerSubmissionContent carries the submitted answer text directly
	// for TaskAnswerSubmission, which has no compiled user executable to
	// name.
	AnswerSubmissionContent string
}

// RunTaskStatus is the outcome of one runner RPC.
type RunTaskStatus int

// Statuses for RunTaskResult.
const (
	RunTaskSucceeded RunTaskStatus = iota + 1
	RunTaskFailed
)

// RunTaskResult is what the runner transport hands back for a RunTask.
type RunTaskResult struct {
	Status RunTaskStatus

	Compile *CompilationResult
	Exec    *TestcaseDetails

	// Error carries the transport/runner failure reason when Status is
	// RunTaskFailed and neither Compile nor Exec could be produced.
	Error string
}
