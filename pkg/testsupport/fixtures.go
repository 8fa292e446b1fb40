// Package testsupport holds fixtures shared by the templating test suites.
package testsupport

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-templating/pkg/templating"
)

// EscapingOutput is the markup every engine must produce for the escaping
// scenario rendered at "/".
const EscapingOutput = `<div><p>url.abs: /</p><p>&lt;strong&gt;unsafe&lt;/strong&gt;</p><p><strong>safe</strong></p></div>`

// EscapingArgs returns the arguments for the escaping scenario: one value
// the template must escape and one it marks safe.
func EscapingArgs() templating.Args {
	return templating.Args{
		"unsafe": "<strong>unsafe</strong>",
		"safe":   "<strong>safe</strong>",
	}
}

// NewRequest builds a GET request for target without a renderer attached.
func NewRequest(t *testing.T, target string) *templating.Request {
	t.Helper()
	return templating.NewRequest(httptest.NewRequest(http.MethodGet, target, nil))
}

// Call records one Render invocation.
type Call struct {
	Name string
	Args templating.Args
}

// RecordingRenderer records calls and answers with Output and Err.
type RecordingRenderer struct {
	Output string
	Err    error

	mu    sync.Mutex
	calls []Call
}

// Render records the call.
func (r *RecordingRenderer) Render(name string, args templating.Args) (string, error) {
	r.mu.Lock()
	r.calls = append(r.calls, Call{Name: name, Args: args})
	r.mu.Unlock()
	return r.Output, r.Err
}

// Calls returns a copy of the recorded calls.
func (r *RecordingRenderer) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// LastCall fails the test when nothing was recorded.
func (r *RecordingRenderer) LastCall(t *testing.T) Call {
	t.Helper()
	calls := r.Calls()
	if len(calls) == 0 {
		t.Fatalf("expected renderer to be called")
	}
	return calls[len(calls)-1]
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}
