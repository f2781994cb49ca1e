package runner

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

// fakeCompiler copies the "source" (a shell script) to the -o path, or fails
// like a compiler when the source contains SYNTAX_ERROR.
const fakeCompiler = `#!/bin/sh
out=""
src=""
while [ $# -gt 0 ]; do
  case "$1" in
    -o) out="$2"; shift 2 ;;
    -std=*) shift ;;
    *) src="$1"; shift ;;
  esac
done
if grep -q SYNTAX_ERROR "$src"; then
  echo "main.cpp:1:1: error: expected ';' before '}' token" >&2
  exit 1
fi
cp "$src" "$out"
chmod +x "$out"
`

func newFakeRunner(t *testing.T, timeout time.Duration) *ExecRunner {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake compiler needs a POSIX shell")
	}
	dir := t.TempDir()
	cc := filepath.Join(dir, "fakecc")
	require.NoError(t, os.WriteFile(cc, []byte(fakeCompiler), 0o755))
	return NewExecRunner(Options{Compiler: cc, Timeout: timeout, WorkDir: filepath.Join(dir, "work")})
}

func TestDefaults(t *testing.T) {
	r := NewExecRunner(Options{})
	assert.Equal(t, "g++", r.opts.Compiler)
	assert.Equal(t, "c++20", r.opts.Std)
	assert.Equal(t, 5*time.Second, r.opts.Timeout)
	assert.NotEmpty(t, r.opts.WorkDir)
}

func TestRun(t *testing.T) {
	r := newFakeRunner(t, 2*time.Second)

	tests := []struct {
		name     string
		code     string
		success  bool
		output   string
		errorMsg string
		exitCode int
	}{
		{
			name:    "success",
			code:    "#!/bin/sh\necho hello\n",
			success: true,
			output:  "hello\n",
		},
		{
			name:     "stderr is captured",
			code:     "#!/bin/sh\necho oops >&2\nexit 3\n",
			output:   "oops\n",
			errorMsg: "Program exited with code 3",
			exitCode: 3,
		},
		{
			name:     "compile error",
			code:     "SYNTAX_ERROR\n",
			errorMsg: "main.cpp:1:1: error: expected ';' before '}' token\n",
			exitCode: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := r.Run(context.Background(), tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.success, res.Success)
			assert.Equal(t, tt.output, res.Output)
			assert.Equal(t, tt.errorMsg, res.Error)
			assert.Equal(t, tt.exitCode, res.ExitCode)
			assert.Positive(t, res.Duration)
		})
	}
}

func TestRunTimeout(t *testing.T) {
	r := newFakeRunner(t, 200*time.Millisecond)

	res, err := r.Run(context.Background(), "#!/bin/sh\nexec sleep 10\n")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, TimeoutExitCode, res.ExitCode)
	assert.Equal(t, "Program execution timeout (0.2 seconds)", res.Error)
	assert.Less(t, res.Duration, 5*time.Second)
}

func TestRunCleansUp(t *testing.T) {
	r := newFakeRunner(t, time.Second)
	_, err := r.Run(context.Background(), "#!/bin/sh\ntrue\n")
	require.NoError(t, err)

	entries, err := os.ReadDir(r.opts.WorkDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMissingCompiler(t *testing.T) {
	r := NewExecRunner(Options{Compiler: "codeflow-no-such-compiler", WorkDir: t.TempDir()})
	_, err := r.Run(context.Background(), "int main() {}")
	require.Error(t, err)
	assert.ErrorIs(t, err, exec.ErrNotFound)
}

func TestCancelledContext(t *testing.T) {
	r := newFakeRunner(t, 5*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)

	_, err := r.Run(ctx, "#!/bin/sh\nexec sleep 10\n")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRealCompiler(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping compiler test in short mode")
	}
	if _, err := exec.LookPath("g++"); err != nil {
		t.Skip("g++ not installed")
	}
	r := NewExecRunner(Options{WorkDir: t.TempDir(), Timeout: 10 * time.Second})
	res, err := r.Run(context.Background(), "#include <iostream>\nint main() { std::cout << 6 * 7; }\n")
	require.NoError(t, err)
	assert.True(t, res.Success, res.Error)
	assert.Equal(t, "42", res.Output)
}

func TestRunnerInterface(t *testing.T) {
	var _ Runner = NewExecRunner(Options{})
}
