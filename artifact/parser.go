package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zero-day-ai/kleegraph/kgerr"
)

// File names and extensions of the run directory layout.
const (
	InfoFile     = "info"
	MessagesFile = "messages.txt"

	testPrefix     = "test"
	testExtension  = ".ktest"
	queryExtension = ".kquery"
	errExtension   = ".err"
)

// FailureSuffixes are the failure artifacts that flip a TestCase to
// StatusError, in priority order. The first existing one wins.
var FailureSuffixes = []string{"read_only", "out_of_bound", "external", "abort", "assert"}

// DefaultWorkers is the parse pool size when WithWorkers is not given.
const DefaultWorkers = 4

// Option configures Parse.
type Option func(*options)

type options struct {
	workers int
	logger  *slog.Logger
	now     func() time.Time
}

// WithWorkers bounds the number of artifacts parsed concurrently.
// Values below 1 select DefaultWorkers.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithLogger sets the logger used for skipped-artifact notes.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithClock overrides the clock used for LogMessage timestamps and Run.ParsedAt.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// Parse reads the run directory dir.
//
// It fails only when dir does not exist or is not a directory; the error is
// a *kgerr.Error of KindDirectoryNotFound. Unreadable artifacts are recorded
// in Run.Skipped. The context cancels outstanding workers.
func Parse(ctx context.Context, dir string, opts ...Option) (*Run, error) {
	o := options{
		workers: DefaultWorkers,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 1 {
		o.workers = DefaultWorkers
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, kgerr.New("artifact.Parse", kgerr.KindDirectoryNotFound, err).
			WithContext(map[string]any{"dir": dir})
	}
	if !info.IsDir() {
		return nil, kgerr.New("artifact.Parse", kgerr.KindDirectoryNotFound,
			fmt.Errorf("%s is not a directory", dir))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, kgerr.New("artifact.Parse", kgerr.KindDirectoryNotFound, err).
			WithContext(map[string]any{"dir": dir})
	}

	p := &parser{dir: dir, logger: o.logger.With("dir", dir)}
	now := o.now()
	run := &Run{
		Dir:       dir,
		ParsedAt:  now,
		Info:      RunInfo{},
		Messages:  []LogMessage{},
		TestCases: []TestCase{},
		Failures:  []FailureRecord{},
	}

	if content, ok := p.readOptional(InfoFile); ok {
		run.Info = parseInfo(content)
	}
	if content, ok := p.readOptional(MessagesFile); ok {
		run.Messages = parseMessages(content, now)
	}

	var tests, failures []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, testPrefix) {
			continue
		}
		switch {
		case strings.HasSuffix(name, testExtension):
			tests = append(tests, name)
		case strings.HasSuffix(name, errExtension):
			failures = append(failures, name)
		}
	}
	p.logger.Info("discovered artifacts", "test_cases", len(tests), "failure_artifacts", len(failures))

	testResults := make([]*TestCase, len(tests))
	failureResults := make([]*FailureRecord, len(failures))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i, name := range tests {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tc, err := p.parseTestCase(name)
			if err != nil {
				p.skip(name, err)
				return nil
			}
			testResults[i] = tc
			return nil
		})
	}
	for i, name := range failures {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := p.parseFailure(name)
			if err != nil {
				p.skip(name, err)
				return nil
			}
			failureResults[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("artifact parse cancelled: %w", err)
	}

	for _, tc := range testResults {
		if tc != nil {
			run.TestCases = append(run.TestCases, *tc)
		}
	}
	for _, rec := range failureResults {
		if rec != nil {
			run.Failures = append(run.Failures, *rec)
		}
	}
	sort.SliceStable(run.TestCases, func(i, j int) bool {
		return run.TestCases[i].ID < run.TestCases[j].ID
	})
	sort.SliceStable(run.Failures, func(i, j int) bool {
		return run.Failures[i].SourceLocation < run.Failures[j].SourceLocation
	})
	run.Skipped = p.skippedSorted()

	p.logger.Info("parsed run",
		"total_tests", run.TotalTests(),
		"total_errors", run.TotalErrors(),
		"messages", len(run.Messages),
		"skipped", len(run.Skipped),
	)
	return run, nil
}

// parser holds per-call state shared by the workers.
type parser struct {
	dir    string
	logger *slog.Logger

	skipped syncSlice[Skipped]
}

func (p *parser) path(name string) string {
	return filepath.Join(p.dir, name)
}

// readOptional reads a file that may legitimately be absent. Absence reports
// ok=false without a note; any other failure is recorded as skipped.
func (p *parser) readOptional(name string) (string, bool) {
	data, err := os.ReadFile(p.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false
		}
		p.skip(name, err)
		return "", false
	}
	return string(data), true
}

func (p *parser) exists(name string) bool {
	_, err := os.Stat(p.path(name))
	return err == nil
}

func (p *parser) skip(name string, cause error) {
	err := kgerr.New("artifact.Parse", kgerr.KindArtifactParseSkipped, cause).
		WithContext(map[string]any{"artifact": name})
	p.logger.Warn("skipping artifact", "artifact", name, "error", err)
	p.skipped.append(Skipped{Artifact: name, Reason: cause.Error()})
}

func (p *parser) skippedSorted() []Skipped {
	out := p.skipped.snapshot()
	sort.Slice(out, func(i, j int) bool {
		return out[i].Artifact < out[j].Artifact
	})
	return out
}

func (p *parser) parseTestCase(name string) (*TestCase, error) {
	info, err := os.Stat(p.path(name))
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", name)
	}

	id := strings.TrimSuffix(name, testExtension)
	tc := &TestCase{
		ID:           id,
		Status:       StatusSuccess,
		SymbolicVars: map[string]SymbolicVar{},
	}

	for _, suffix := range FailureSuffixes {
		errName := id + "." + suffix + errExtension
		if !p.exists(errName) {
			continue
		}
		data, err := os.ReadFile(p.path(errName))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", errName, err)
		}
		tc.Status = StatusError
		tc.ErrorKind = suffix
		tc.StackTrace = parseStackTrace(string(data))
		break
	}

	queryName := id + queryExtension
	if p.exists(queryName) {
		data, err := os.ReadFile(p.path(queryName))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", queryName, err)
		}
		tc.SymbolicVars = parseSymbolicVars(string(data))
	}

	return tc, nil
}

func (p *parser) parseFailure(name string) (*FailureRecord, error) {
	data, err := os.ReadFile(p.path(name))
	if err != nil {
		return nil, err
	}
	content := string(data)

	testID, suffix := splitFailureName(name)
	h := parseHeader(content)
	return &FailureRecord{
		SourceLocation: name,
		StackTrace:     parseStackTrace(content),
		TestCaseID:     testID,
		Suffix:         suffix,
		Message:        h.message,
		File:           h.file,
		Line:           h.line,
		Body:           content,
	}, nil
}

// splitFailureName splits "test000001.out_of_bound.err" into
// ("test000001", "out_of_bound").
func splitFailureName(name string) (testID, suffix string) {
	stem := strings.TrimSuffix(name, errExtension)
	testID, suffix, _ = strings.Cut(stem, ".")
	return testID, suffix
}
