package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	loggedIn bool

	calls []string
	args  map[string][]string
}

func newFakeExec(loggedIn bool) *fakeExec {
	return &fakeExec{loggedIn: loggedIn, args: map[string][]string{}}
}

func (f *fakeExec) record(name string, args []string) error {
	f.calls = append(f.calls, name)
	f.args[name] = args
	return nil
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }

func (f *fakeExec) Register(ctx context.Context) error { return f.record("register", nil) }
func (f *fakeExec) Login(ctx context.Context) error {
	f.loggedIn = true
	return f.record("login", nil)
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.loggedIn = false
	return f.record("logout", nil)
}
func (f *fakeExec) Profile(ctx context.Context) error { return f.record("profile", nil) }

func (f *fakeExec) List(ctx context.Context, args []string) error { return f.record("list", args) }
func (f *fakeExec) More(ctx context.Context) error                { return f.record("more", nil) }
func (f *fakeExec) Refresh(ctx context.Context) error             { return f.record("refresh", nil) }
func (f *fakeExec) AddBook(ctx context.Context, args []string) error {
	return f.record("add", args)
}
func (f *fakeExec) RemoveBook(ctx context.Context, args []string) error {
	return f.record("remove", args)
}
func (f *fakeExec) LibraryStats(ctx context.Context) error { return f.record("stats", nil) }

func (f *fakeExec) Download(ctx context.Context, args []string) error {
	return f.record("download", args)
}
func (f *fakeExec) Renew(ctx context.Context, args []string) error { return f.record("renew", args) }
func (f *fakeExec) RemoveOffline(ctx context.Context, args []string) error {
	return f.record("removeoffline", args)
}
func (f *fakeExec) Licenses(ctx context.Context) error { return f.record("licenses", nil) }

func (f *fakeExec) Search(ctx context.Context, args []string) error {
	return f.record("search", args)
}
func (f *fakeExec) Browse(ctx context.Context) error { return f.record("browse", nil) }
func (f *fakeExec) Read(ctx context.Context, args []string) error {
	return f.record("read", args)
}

func (f *fakeExec) Comments(ctx context.Context, args []string) error {
	return f.record("comments", args)
}
func (f *fakeExec) Replies(ctx context.Context, args []string) error {
	return f.record("replies", args)
}
func (f *fakeExec) Comment(ctx context.Context, args []string) error {
	return f.record("comment", args)
}
func (f *fakeExec) Rate(ctx context.Context, args []string) error   { return f.record("rate", args) }
func (f *fakeExec) Unrate(ctx context.Context, args []string) error { return f.record("unrate", args) }
func (f *fakeExec) Ratings(ctx context.Context, args []string) error {
	return f.record("ratings", args)
}

func (f *fakeExec) NewBook(ctx context.Context) error { return f.record("newbook", nil) }
func (f *fakeExec) NewChapter(ctx context.Context, args []string) error {
	return f.record("newchapter", args)
}
func (f *fakeExec) PublishBook(ctx context.Context, args []string) error {
	return f.record("publish", args)
}

func silencePrintln(t *testing.T) {
	t.Helper()
	orig := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = orig })
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	silencePrintln(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"login",
		"help",
		"list reading title",
		"more",
		"download book-42",
		"licenses",
		"search dark tower",
		"comments book-42",
		"rate book-42 5",
		"bogus",
		"exit",
	}, "\n"))

	exec := newFakeExec(false)
	runREPL(context.Background(), exec, func() string { return "status" }, bufio.NewScanner(input))

	require.Equal(t, []string{"login", "list", "more", "download", "licenses", "search", "comments", "rate"}, exec.calls)
	require.Equal(t, []string{"reading", "title"}, exec.args["list"])
	require.Equal(t, []string{"book-42"}, exec.args["download"])
	require.Equal(t, []string{"dark", "tower"}, exec.args["search"])
	require.Equal(t, []string{"book-42", "5"}, exec.args["rate"])
}

func TestRunREPL_EmptyLinesAndEOF(t *testing.T) {
	silencePrintln(t)

	input := strings.NewReader("\n\n   \nstats\n")
	exec := newFakeExec(true)
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(input))

	require.Equal(t, []string{"stats"}, exec.calls)
}

func TestRunREPL_QuitAlias(t *testing.T) {
	silencePrintln(t)

	input := strings.NewReader("quit\nlist\n")
	exec := newFakeExec(true)
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(input))

	require.Empty(t, exec.calls)
}
