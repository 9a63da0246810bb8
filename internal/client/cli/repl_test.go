package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"
)

type fakeExec struct {
	loggedIn bool
	ledger   bool

	calls []string
	args  [][]string
}

func (f *fakeExec) record(name string, args []string) error {
	f.calls = append(f.calls, name)
	f.args = append(f.args, args)
	return nil
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) hasLedger() bool  { return f.ledger }
func (f *fakeExec) Login(ctx context.Context) error {
	f.loggedIn = true
	return f.record("login", nil)
}
func (f *fakeExec) Open(ctx context.Context, args []string) error {
	f.ledger = true
	return f.record("open", args)
}
func (f *fakeExec) Documents(ctx context.Context) error { return f.record("docs", nil) }
func (f *fakeExec) Clients(ctx context.Context) error   { return f.record("clients", nil) }
func (f *fakeExec) List(ctx context.Context) error      { return f.record("list", nil) }
func (f *fakeExec) Add(ctx context.Context) error       { return f.record("add", nil) }
func (f *fakeExec) Edit(ctx context.Context, args []string) error {
	return f.record("edit", args)
}
func (f *fakeExec) Return(ctx context.Context, args []string) error {
	return f.record("return", args)
}
func (f *fakeExec) Delete(ctx context.Context, args []string) error {
	return f.record("del", args)
}
func (f *fakeExec) Duplicate(ctx context.Context, args []string) error {
	return f.record("dup", args)
}
func (f *fakeExec) Select(ctx context.Context, args []string) error {
	return f.record("sel", args)
}
func (f *fakeExec) Deselect(ctx context.Context, args []string) error {
	return f.record("unsel", args)
}
func (f *fakeExec) Queue(ctx context.Context, args []string) error {
	return f.record("queue", args)
}
func (f *fakeExec) Unqueue(ctx context.Context, args []string) error {
	return f.record("unqueue", args)
}
func (f *fakeExec) Sign(ctx context.Context, args []string) error {
	return f.record("sign", args)
}
func (f *fakeExec) Unsign(ctx context.Context, args []string) error {
	return f.record("unsign", args)
}
func (f *fakeExec) Pending(ctx context.Context, args []string) error {
	return f.record("pending", args)
}
func (f *fakeExec) Finalize(ctx context.Context, args []string) error {
	return f.record("finalize", args)
}
func (f *fakeExec) Exports(ctx context.Context, args []string) error {
	return f.record("exports", args)
}
func (f *fakeExec) Fetch(ctx context.Context, args []string) error {
	return f.record("fetch", args)
}

func muteOutput(t *testing.T) {
	t.Helper()
	orig := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = orig })
}

func TestRunREPL_DispatchOrder(t *testing.T) {
	muteOutput(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"login",
		"open acme 2024-03",
		"list",
		"add",
		"sign 0 transfer",
		"queue courier 2024-03-07",
		"finalize courier",
		"foobar",
		"exit",
	}, "\n"))

	exec := &fakeExec{}
	sc := bufio.NewScanner(input)

	runREPL(context.Background(), exec, func() string { return "status" }, sc)

	want := []string{"login", "open", "list", "add", "sign", "queue", "finalize"}
	if len(exec.calls) != len(want) {
		t.Fatalf("calls mismatch: got %v, want %v", exec.calls, want)
	}
	for i, c := range exec.calls {
		if c != want[i] {
			t.Fatalf("call %d: got %q, want %q", i, c, want[i])
		}
	}
}

func TestRunREPL_ArgumentsReachHandlers(t *testing.T) {
	muteOutput(t)

	input := strings.NewReader("open acme 2024-03\nsign 2 return\nquit\n")
	exec := &fakeExec{loggedIn: true}
	sc := bufio.NewScanner(input)

	runREPL(context.Background(), exec, func() string { return "" }, sc)

	if len(exec.args) != 2 {
		t.Fatalf("unexpected args: %v", exec.args)
	}
	if got := strings.Join(exec.args[0], " "); got != "acme 2024-03" {
		t.Fatalf("open args: %q", got)
	}
	if got := strings.Join(exec.args[1], " "); got != "2 return" {
		t.Fatalf("sign args: %q", got)
	}
}

func TestRunREPL_ExitsOnEOF(t *testing.T) {
	muteOutput(t)

	input := strings.NewReader("l\n")
	exec := &fakeExec{loggedIn: true, ledger: true}
	sc := bufio.NewScanner(input)

	runREPL(context.Background(), exec, func() string { return "" }, sc)

	if len(exec.calls) != 1 || exec.calls[0] != "list" {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
}
