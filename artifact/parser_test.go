package artifact

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zero-day-ai/kleegraph/kgerr"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// writeRun creates a run directory holding the given files.
func writeRun(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func errArtifact(message string, frames ...string) string {
	content := "Error: " + message + "\nFile: prog.c\nLine: 12\nassembly.ll line: 40\nStack:\n"
	for _, f := range frames {
		content += "\t" + f + "\n"
	}
	return content + "\nInfo:\n\taddress: 0x1234\n"
}

func TestParse_SingleOutOfBound(t *testing.T) {
	dir := writeRun(t, map[string]string{
		"test1.ktest":            "KTEST",
		"test1.out_of_bound.err": errArtifact("memory error: out of bound pointer", "#1 in vulnerable_set(...)"),
	})

	run, err := Parse(context.Background(), dir, WithClock(fixedClock))
	require.NoError(t, err)

	assert.Equal(t, 1, run.TotalTests())
	assert.Equal(t, 1, run.TotalErrors())
	assert.Empty(t, run.Skipped)

	tc := run.TestCases[0]
	assert.Equal(t, "test1", tc.ID)
	assert.Equal(t, StatusError, tc.Status)
	assert.Equal(t, "out_of_bound", tc.ErrorKind)
	assert.Equal(t, []string{"#1 in vulnerable_set(...)"}, tc.StackTrace)

	rec := run.Failures[0]
	assert.Equal(t, "test1", rec.TestCaseID)
	assert.Equal(t, "test1.out_of_bound.err", rec.SourceLocation)
	assert.Equal(t, "out_of_bound", rec.Suffix)
	assert.Equal(t, "memory error: out of bound pointer", rec.Message)
	assert.Equal(t, "prog.c", rec.File)
	assert.Equal(t, 12, rec.Line)
	assert.Equal(t, []string{"#1 in vulnerable_set(...)"}, rec.StackTrace)
	assert.Contains(t, rec.Body, "out of bound pointer")
	assert.Empty(t, rec.ErrorKind, "classification is the linker's job")
}

func TestParse_EmptyDirectory(t *testing.T) {
	run, err := Parse(context.Background(), t.TempDir(), WithClock(fixedClock))
	require.NoError(t, err)

	assert.Equal(t, 0, run.TotalTests())
	assert.Equal(t, 0, run.TotalErrors())
	assert.NotNil(t, run.TestCases)
	assert.NotNil(t, run.Failures)
	assert.NotNil(t, run.Messages)
	assert.Empty(t, run.Info)
	assert.Equal(t, fixedNow, run.ParsedAt)
}

func TestParse_DirectoryNotFound(t *testing.T) {
	_, err := Parse(context.Background(), filepath.Join(t.TempDir(), "klee-out-404"))
	require.Error(t, err)
	assert.True(t, kgerr.IsKind(err, kgerr.KindDirectoryNotFound))

	file := filepath.Join(t.TempDir(), "info")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err = Parse(context.Background(), file)
	assert.True(t, kgerr.IsKind(err, kgerr.KindDirectoryNotFound))
}

func TestParse_SuffixPriority(t *testing.T) {
	dir := writeRun(t, map[string]string{
		"test000001.ktest":         "",
		"test000001.abort.err":     errArtifact("abort failure", "#1 in abort_path()"),
		"test000001.read_only.err": errArtifact("memory error: object read only", "#1 in write_const()"),
	})

	run, err := Parse(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, run.TestCases, 1)
	assert.Equal(t, "read_only", run.TestCases[0].ErrorKind, "read_only precedes abort")
	assert.Equal(t, []string{"#1 in write_const()"}, run.TestCases[0].StackTrace)

	require.Len(t, run.Failures, 2, "every .err file is a failure record")
	assert.Equal(t, "test000001.abort.err", run.Failures[0].SourceLocation)
	assert.Equal(t, "test000001.read_only.err", run.Failures[1].SourceLocation)
}

func TestParse_UnrecognizedSuffixKeepsSuccess(t *testing.T) {
	dir := writeRun(t, map[string]string{
		"test000002.ktest":   "",
		"test000002.ptr.err": errArtifact("memory error: invalid pointer: free", "#1 in release()"),
	})

	run, err := Parse(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, run.TestCases[0].Status)
	require.Len(t, run.Failures, 1)
	assert.Equal(t, "test000002", run.Failures[0].TestCaseID)
}

func TestParse_InfoMessagesAndQueries(t *testing.T) {
	dir := writeRun(t, map[string]string{
		InfoFile:           "PID: 77\nKLEE: done: total instructions = 900\n",
		MessagesFile:       "KLEE: NOTE: using klee-uclibc\nKLEE: ERROR: prog.c:3: external call with symbolic argument: printf\n",
		"test000001.ktest": "",
		"test000001.kquery": "array input[8] : w32 -> w8 = symbolic\n" +
			"array n[4] : w32 -> w8 = symbolic\n",
		"test000002.ktest": "",
	})

	run, err := Parse(context.Background(), dir, WithClock(fixedClock))
	require.NoError(t, err)

	pid, _ := run.Info.Int("PID")
	assert.Equal(t, int64(77), pid)
	total, _ := run.Info.Int("total instructions")
	assert.Equal(t, int64(900), total)

	require.Len(t, run.Messages, 2)
	assert.Equal(t, MessageNote, run.Messages[0].Kind)
	assert.Equal(t, MessageError, run.Messages[1].Kind)
	assert.Equal(t, fixedNow, run.Messages[1].ObservedAt)

	require.Len(t, run.TestCases, 2)
	assert.Equal(t, map[string]SymbolicVar{
		"input": {Kind: "array", SizeBytes: 8},
		"n":     {Kind: "array", SizeBytes: 4},
	}, run.TestCases[0].SymbolicVars)
	assert.Empty(t, run.TestCases[1].SymbolicVars)
	assert.Equal(t, StatusSuccess, run.TestCases[1].Status)
}

func TestParse_MalformedArtifactsAreSkipped(t *testing.T) {
	dir := writeRun(t, map[string]string{
		"test000001.ktest": "",
		"test000003.ktest": "",
	})
	require.NoError(t, os.Mkdir(filepath.Join(dir, "test000002.ktest"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "test000003.abort.err"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, InfoFile), 0o755))

	run, err := Parse(context.Background(), dir)
	require.NoError(t, err)

	ids := make([]string, 0, len(run.TestCases))
	for _, tc := range run.TestCases {
		ids = append(ids, tc.ID)
	}
	assert.Equal(t, []string{"test000001"}, ids)
	assert.Empty(t, run.Failures)

	skipped := make([]string, 0, len(run.Skipped))
	for _, s := range run.Skipped {
		skipped = append(skipped, s.Artifact)
		assert.NotEmpty(t, s.Reason)
	}
	assert.Equal(t, []string{InfoFile, "test000002.ktest", "test000003.abort.err", "test000003.ktest"}, skipped)
}

func TestParse_IgnoresUnrelatedFiles(t *testing.T) {
	dir := writeRun(t, map[string]string{
		"assembly.ll":      "",
		"run.istats":       "",
		"warnings.txt":     "",
		"prog.err":         "Stack:\n#1 in main()\n",
		"test000001.ktest": "",
	})

	run, err := Parse(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 1, run.TotalTests())
	assert.Equal(t, 0, run.TotalErrors())
}

func TestParse_DeterministicAcrossWorkerCounts(t *testing.T) {
	files := map[string]string{}
	for _, id := range []string{"test000003", "test000001", "test000010", "test000002", "test000007"} {
		files[id+".ktest"] = ""
		files[id+".kquery"] = "array input[4] : w32 -> w8 = symbolic\n"
		files[id+".external.err"] = errArtifact("external call with symbolic argument: printf", "#1 in "+id+"_fn()")
	}
	dir := writeRun(t, files)

	serial, err := Parse(context.Background(), dir, WithWorkers(1), WithClock(fixedClock))
	require.NoError(t, err)
	parallel, err := Parse(context.Background(), dir, WithWorkers(8), WithClock(fixedClock))
	require.NoError(t, err)

	assert.Equal(t, serial, parallel)
	assert.Equal(t, "test000001", serial.TestCases[0].ID)
	assert.Equal(t, "test000010", serial.TestCases[4].ID)
}

func TestParse_ContextCancelled(t *testing.T) {
	dir := writeRun(t, map[string]string{"test000001.ktest": ""})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Parse(ctx, dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
