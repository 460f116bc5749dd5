package artifact

import (
	"strconv"
	"time"
)

// Status is the terminal state of an explored path.
type Status string

const (
	// StatusSuccess indicates the path terminated without a recognized failure.
	StatusSuccess Status = "success"

	// StatusError indicates a failure-suffix file exists for the path.
	StatusError Status = "error"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// MessageKind tags a LogMessage.
type MessageKind string

const (
	// MessageError is a "KLEE: ERROR:" line.
	MessageError MessageKind = "error"

	// MessageNote is a "KLEE: NOTE:" line.
	MessageNote MessageKind = "note"
)

// ErrorKind is the classified category of a failure.
type ErrorKind string

const (
	KindMemoryError  ErrorKind = "memory_error"
	KindExternalCall ErrorKind = "external_call"
	KindAbort        ErrorKind = "abort"
	KindAssertion    ErrorKind = "assertion"
	KindUnknown      ErrorKind = "unknown"
)

// String returns the string representation of the kind.
func (k ErrorKind) String() string {
	return string(k)
}

// IsValid returns true if k is one of the known kinds.
func (k ErrorKind) IsValid() bool {
	switch k {
	case KindMemoryError, KindExternalCall, KindAbort, KindAssertion, KindUnknown:
		return true
	default:
		return false
	}
}

// RunInfo holds the summary fields of the info file. Values are int64 for
// pure digit sequences and string otherwise.
type RunInfo map[string]any

// Int returns the integer value stored under key.
func (r RunInfo) Int(key string) (int64, bool) {
	v, ok := r[key].(int64)
	return v, ok
}

// String returns the value stored under key formatted as a string.
func (r RunInfo) String(key string) (string, bool) {
	switch v := r[key].(type) {
	case string:
		return v, true
	case int64:
		return strconv.FormatInt(v, 10), true
	default:
		return "", false
	}
}

// LogMessage is one tagged line of messages.txt.
type LogMessage struct {
	Kind       MessageKind `json:"type"`
	Text       string      `json:"message"`
	ObservedAt time.Time   `json:"timestamp"`
}

// SymbolicVar describes one symbolic input declared in a .kquery file.
type SymbolicVar struct {
	Kind      string `json:"type"`
	SizeBytes int    `json:"size"`
}

// TestCase is one explored path, identified by its .ktest file stem.
type TestCase struct {
	ID     string `json:"id"`
	Status Status `json:"status"`

	// ErrorKind is the failure suffix that flipped the status, e.g. "out_of_bound".
	ErrorKind string `json:"error_type,omitempty"`

	// ErrorSubkind is filled in by the linker from the linked FailureRecord.
	ErrorSubkind string `json:"error_subtype,omitempty"`

	StackTrace   []string               `json:"stack_trace,omitempty"`
	SymbolicVars map[string]SymbolicVar `json:"symbolic_vars,omitempty"`
}

// FailureRecord is one *.err artifact.
type FailureRecord struct {
	// ErrorKind and ErrorSubkind are set by the linker's classifier.
	ErrorKind    ErrorKind `json:"type"`
	ErrorSubkind string    `json:"subtype"`

	// SourceLocation is the artifact file name, unique within a run.
	SourceLocation string   `json:"location"`
	StackTrace     []string `json:"stack_trace,omitempty"`
	TestCaseID     string   `json:"test_case_id"`

	// Suffix is the middle part of the file name ("out_of_bound" for
	// test000001.out_of_bound.err). Empty for test000001.err.
	Suffix string `json:"suffix,omitempty"`

	// Message, File and Line come from the artifact's header lines when present.
	Message string `json:"message,omitempty"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`

	// Body is the raw artifact text used for classification.
	Body string `json:"-"`
}

// Skipped records an artifact excluded from the results.
type Skipped struct {
	Artifact string `json:"artifact"`
	Reason   string `json:"reason"`
}

// Run is everything parsed from one run directory.
type Run struct {
	Dir       string          `json:"dir"`
	ParsedAt  time.Time       `json:"parsed_at"`
	Info      RunInfo         `json:"info"`
	Messages  []LogMessage    `json:"messages"`
	TestCases []TestCase      `json:"test_cases"`
	Failures  []FailureRecord `json:"memory_errors"`
	Skipped   []Skipped       `json:"skipped,omitempty"`
}

// TotalTests returns the number of parsed test cases.
func (r *Run) TotalTests() int {
	return len(r.TestCases)
}

// TotalErrors returns the number of parsed failure records.
func (r *Run) TotalErrors() int {
	return len(r.Failures)
}
