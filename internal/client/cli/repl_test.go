package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool

	calls []string
	args  []string
}

func (f *fakeExec) record(name string) error {
	f.calls = append(f.calls, name)
	return nil
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Register(ctx context.Context) error {
	return f.record("register")
}
func (f *fakeExec) Login(ctx context.Context) error {
	f.loggedIn = true
	return f.record("login")
}
func (f *fakeExec) OAuth(ctx context.Context, provider string) error {
	f.args = append(f.args, provider)
	f.loggedIn = true
	return f.record("oauth")
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}
func (f *fakeExec) Refresh(ctx context.Context) error     { return f.record("refresh") }
func (f *fakeExec) WhoAmI(ctx context.Context) error      { return f.record("whoami") }
func (f *fakeExec) Profile(ctx context.Context) error     { return f.record("profile") }
func (f *fakeExec) EditProfile(ctx context.Context) error { return f.record("editprofile") }
func (f *fakeExec) Water(ctx context.Context, amount string) error {
	f.args = append(f.args, amount)
	return f.record("water")
}
func (f *fakeExec) Today(ctx context.Context) error     { return f.record("today") }
func (f *fakeExec) Meds(ctx context.Context) error      { return f.record("meds") }
func (f *fakeExec) AddMed(ctx context.Context) error    { return f.record("addmed") }
func (f *fakeExec) Dashboard(ctx context.Context) error { return f.record("dashboard") }

func captureOutput(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		parts := make([]string, len(a))
		for i, v := range a {
			parts[i] = strings.TrimSpace(toString(v))
		}
		lines = append(lines, strings.Join(parts, " "))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	out := captureOutput(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"today",
		"login",
		"help",
		"water 250",
		"water",
		"today",
		"meds",
		"addmed",
		"profile",
		"editprofile",
		"dashboard",
		"whoami",
		"refresh",
		"foobar",
		"logout",
		"exit",
		"dashboard",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, bufio.NewReader(input))

	assert.Equal(t, []string{
		"login", "water", "water", "today", "meds", "addmed", "profile",
		"editprofile", "dashboard", "whoami", "refresh", "logout",
	}, exec.calls)
	assert.Equal(t, []string{"250", ""}, exec.args)

	assert.Contains(t, *out, guestHelp)
	assert.Contains(t, *out, memberHelp)
	assert.Contains(t, *out, "Please login first")
	assert.Contains(t, *out, "Unknown command: foobar")
	assert.Contains(t, *out, "Bye!")
}

func TestRunREPL_OAuthProviderAndQuit(t *testing.T) {
	captureOutput(t)

	exec := &fakeExec{}
	input := strings.NewReader("oauth github\noauth\nquit\nwhoami\n")
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(input))

	assert.Equal(t, []string{"oauth", "oauth"}, exec.calls)
	assert.Equal(t, []string{"github", ""}, exec.args)
}

func TestRunREPL_EOF(t *testing.T) {
	captureOutput(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("\n   \n")))
	assert.Empty(t, exec.calls)
}
