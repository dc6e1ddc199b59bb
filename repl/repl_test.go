package repl_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stowkv/stowkv/coll"
	"github.com/stowkv/stowkv/flags"
	"github.com/stowkv/stowkv/repl"
	"github.com/stowkv/stowkv/store"
	"github.com/stowkv/stowkv/testutil"
)

func TestRun(t *testing.T) {
	script := `
item set greeting hello
item get greeting
list push l a b c
list len l
list pop l
deque pushb d B
deque pushf d A
deque popb d
map set m k1 v1
map get m k1
map has m k2
set add s x y
set has s x
slots add sl foo
slots get sl 0 0
slots del sl 0 0
heap push h 1234 4321 2143
heap max h
heap pop h
bogus
exit
item del greeting
`
	want := `hello
3
c
B
v1
false
true
slot 0 gen 0
foo
foo
4321
4321
repl: unknown command: bogus
`

	ses := repl.NewSession(store.NewMemStore(), flags.Default())
	var buf bytes.Buffer
	repl.Run(ses, strings.NewReader(script), &buf)
	if buf.String() != want {
		t.Errorf("Run() gave unexpected output:\n%s",
			testutil.LineDiff(want, buf.String()))
	}

	// Commands after exit must not have run.
	var out bytes.Buffer
	err := ses.Eval(&out, "item get greeting")
	if err != nil {
		t.Fatalf("Eval(item get greeting) failed with %s", err)
	}
	if strings.TrimSpace(out.String()) != "hello" {
		t.Errorf("Eval(item get greeting) got %q want %q", out.String(), "hello")
	}
}

func TestEvalShow(t *testing.T) {
	ses := repl.NewSession(store.NewMemStore(), flags.Default())
	var buf bytes.Buffer

	for _, line := range []string{
		"list push l alpha beta",
		"map set m color blue",
		"set add s member",
		"slots add sl payload",
	} {
		err := ses.Eval(&buf, line)
		if err != nil {
			t.Fatalf("Eval(%s) failed with %s", line, err)
		}
	}

	cases := []struct {
		line string
		want []string
	}{
		{line: "list show l", want: []string{"alpha", "beta"}},
		{line: "map show m", want: []string{"color", "blue"}},
		{line: "set show s", want: []string{"member"}},
		{line: "slots show sl", want: []string{"payload"}},
	}
	for _, c := range cases {
		buf.Reset()
		err := ses.Eval(&buf, c.line)
		if err != nil {
			t.Fatalf("Eval(%s) failed with %s", c.line, err)
		}
		for _, w := range c.want {
			if !strings.Contains(buf.String(), w) {
				t.Errorf("Eval(%s) output missing %q:\n%s", c.line, w, buf.String())
			}
		}
	}
}

func TestEvalFlags(t *testing.T) {
	flgs := flags.Default()
	flgs[flags.MapIteration] = false
	ses := repl.NewSession(store.NewMemStore(), flgs)
	var buf bytes.Buffer

	err := ses.Eval(&buf, "flags")
	if err != nil {
		t.Fatalf("Eval(flags) failed with %s", err)
	}
	out := buf.String()
	for _, w := range []string{"binary_codec", "map_iteration", "true", "false"} {
		if !strings.Contains(out, w) {
			t.Errorf("Eval(flags) output missing %q:\n%s", w, out)
		}
	}

	err = ses.Eval(&buf, "flags extra")
	if err == nil {
		t.Error("Eval(flags extra) did not fail")
	}
}

func TestEvalErrors(t *testing.T) {
	ses := repl.NewSession(store.NewMemStore(), flags.Default())
	var buf bytes.Buffer

	cases := []string{
		"item",
		"item get",
		"item frob x",
		"list push l",
		"map set m k",
		"slots get sl zero 0",
		"heap pop h",
		"nonsense",
	}
	for _, line := range cases {
		err := ses.Eval(&buf, line)
		if err == nil {
			t.Errorf("Eval(%s) did not fail", line)
		}
	}

	err := ses.Eval(&buf, "heap pop h")
	if err != coll.ErrEmpty {
		t.Errorf("Eval(heap pop h) got %v want %v", err, coll.ErrEmpty)
	}
}

func TestNoIterationFlags(t *testing.T) {
	flgs := flags.Default()
	flgs[flags.MapIteration] = false
	ses := repl.NewSession(store.NewMemStore(), flgs)
	var buf bytes.Buffer

	err := ses.Eval(&buf, "map set m k v")
	if err != nil {
		t.Fatalf("Eval(map set) failed with %s", err)
	}
	err = ses.Eval(&buf, "map get m k")
	if err != nil {
		t.Fatalf("Eval(map get) failed with %s", err)
	}
	if strings.TrimSpace(buf.String()) != "v" {
		t.Errorf("Eval(map get) got %q want %q", buf.String(), "v")
	}

	err = ses.Eval(&buf, "map len m")
	if err != coll.ErrUnsupported {
		t.Errorf("Eval(map len) got %v want %v", err, coll.ErrUnsupported)
	}
	err = ses.Eval(&buf, "map show m")
	if err != coll.ErrUnsupported {
		t.Errorf("Eval(map show) got %v want %v", err, coll.ErrUnsupported)
	}
	err = ses.Eval(&buf, "set show s")
	if err != coll.ErrUnsupported {
		t.Errorf("Eval(set show) got %v want %v", err, coll.ErrUnsupported)
	}
}
