//go:build linux && amd64

package exec

import (
	"bytes"
	"io"
	"os"
	"testing"

	"golang.org/x/sys/unix"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minic-lang/minic/internal/codegen"
	"github.com/minic-lang/minic/internal/interp"
	"github.com/minic-lang/minic/internal/lang"
)

// captureStdout redirects the process's real fd 1 to a pipe for the
// duration of fn, since the emitted code writes via a raw write(1, ...)
// syscall rather than through Go's os.Stdout value.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)

	savedFd, err := unix.Dup(1)
	require.NoError(t, err)
	require.NoError(t, unix.Dup2(int(w.Fd()), 1))

	fn()

	require.NoError(t, w.Close())
	require.NoError(t, unix.Dup2(savedFd, 1))
	require.NoError(t, unix.Close(savedFd))

	var buf bytes.Buffer
	_, err = io.Copy(&buf, r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	return buf.String()
}

func compileAndRun(t *testing.T, src string) string {
	t.Helper()
	prog, err := lang.ParseProgram([]byte(src))
	require.NoError(t, err)
	mod, err := codegen.Generate(prog, codegen.DefaultCodeCapacity, codegen.DefaultMaxData)
	require.NoError(t, err)
	x := New(mod)
	defer x.Close()

	return captureStdout(t, func() {
		require.NoError(t, x.Run())
	})
}

func TestExecutorRunsConcreteEndToEndScenarios(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"arithmetic", `void main(){ int x = 3+4*5; cout << x; }`, "23 "},
		{"while-loop", `void main(){ int i=0; while(i<3){ cout << i; i++; } }`, "0 1 2 "},
		{"negative-with-endl", `void main(){ int n = -7; cout << n << endl; }`, "-7 \n"},
		{"if-else", `void main(){ if (2<1) cout<<1; else cout<<2; }`, "2 "},
		{"for-sum", `void main(){ int s=0; for(int i=1; i<=4; i++) s += i; cout << s; }`, "10 "},
		{"repeat", `void main(){ repeat(3){ cout << 9; } cout << endl; }`, "9 9 9 \n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, compileAndRun(t, c.src))
		})
	}
}

// TestBisimulationAgainstInterpreter checks the headline property: the
// compiled-and-executed output and the tree-walking oracle must agree byte
// for byte.
func TestBisimulationAgainstInterpreter(t *testing.T) {
	srcs := []string{
		`void main(){ int x = 3+4*5; cout << x; }`,
		`void main(){ int i=0; while(i<3){ cout << i; i++; } }`,
		`void main(){ int n = -7; cout << n << endl; }`,
		`void main(){ if (2<1) cout<<1; else cout<<2; }`,
		`void main(){ int s=0; for(int i=1; i<=4; i++) s += i; cout << s; }`,
		`void main(){ repeat(3){ cout << 9; } cout << endl; }`,
		`void main(){ int b = 2; int e = 5; cout << b ** e; }`,
		`void main(){ cout << (7/-3) << (7%-3) << (-7/3) << (-7%3); }`,
	}
	for _, src := range srcs {
		compiled := compileAndRun(t, src)

		prog, err := lang.ParseProgram([]byte(src))
		require.NoError(t, err)
		var buf bytes.Buffer
		require.NoError(t, interp.Run(prog, &buf))

		assert.Equal(t, buf.String(), compiled, "bisimulation mismatch for %q", src)
	}
}

func TestExecutorRunTwiceReturnsErrAlreadyExecuted(t *testing.T) {
	prog, err := lang.ParseProgram([]byte(`void main(){ cout << 1; }`))
	require.NoError(t, err)
	mod, err := codegen.Generate(prog, codegen.DefaultCodeCapacity, codegen.DefaultMaxData)
	require.NoError(t, err)
	x := New(mod)
	defer x.Close()

	captureStdout(t, func() {
		require.NoError(t, x.Run())
	})
	err = x.Run()
	assert.ErrorIs(t, err, ErrAlreadyExecuted)
}

func TestExecutorCloseIsIdempotent(t *testing.T) {
	prog, err := lang.ParseProgram([]byte(`void main(){ cout << 1; }`))
	require.NoError(t, err)
	mod, err := codegen.Generate(prog, codegen.DefaultCodeCapacity, codegen.DefaultMaxData)
	require.NoError(t, err)
	x := New(mod)
	captureStdout(t, func() {
		require.NoError(t, x.Run())
	})
	require.NoError(t, x.Close())
	require.NoError(t, x.Close())
}
