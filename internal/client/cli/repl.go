package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	OAuth(ctx context.Context, provider string) error
	Logout(ctx context.Context) error
	Refresh(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Profile(ctx context.Context) error
	EditProfile(ctx context.Context) error
	Water(ctx context.Context, amount string) error
	Today(ctx context.Context) error
	Meds(ctx context.Context) error
	AddMed(ctx context.Context) error
	Dashboard(ctx context.Context) error
}

const (
	guestHelp  = "Available commands: register, login, oauth [provider], exit"
	memberHelp = "Available commands: whoami, profile, editprofile, water [ml], today, meds, addmed, dashboard, refresh, logout, exit"
)

// runREPL reads commands from in until EOF or "exit"/"quit" and
// dispatches them to a. The prompt shows statusFn(). Handlers prompt on the
// same reader, so in must not be wrapped in another buffer.
//
//	Signed out:
//	  help, register, login, oauth [provider], exit | quit
//
//	Signed in:
//	  help, whoami, profile, editprofile, water [ml], today, meds, addmed,
//	  dashboard, refresh, logout, exit | quit
//
// Commands that need a session are refused while signed out. Handler errors
// are ignored here; handlers report failures to the user themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, in *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("hk %s> ", statusFn()))
		line, err := in.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(memberHelp)
			} else {
				printlnFn(guestHelp)
			}
			continue

		case "register":
			_ = a.Register(ctx)
			continue

		case "login":
			_ = a.Login(ctx)
			continue

		case "oauth":
			_ = a.OAuth(ctx, firstArg(args))
			continue

		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		run, ok := memberCommands[cmd]
		if !ok {
			printlnFn("Unknown command:", cmd)
			continue
		}
		if !a.isLoggedIn() {
			printlnFn("Please login first")
			continue
		}
		_ = run(ctx, a, args)
	}
}

var memberCommands = map[string]func(context.Context, execIface, []string) error{
	"logout":      func(ctx context.Context, a execIface, _ []string) error { return a.Logout(ctx) },
	"refresh":     func(ctx context.Context, a execIface, _ []string) error { return a.Refresh(ctx) },
	"whoami":      func(ctx context.Context, a execIface, _ []string) error { return a.WhoAmI(ctx) },
	"profile":     func(ctx context.Context, a execIface, _ []string) error { return a.Profile(ctx) },
	"editprofile": func(ctx context.Context, a execIface, _ []string) error { return a.EditProfile(ctx) },
	"water":       func(ctx context.Context, a execIface, args []string) error { return a.Water(ctx, firstArg(args)) },
	"today":       func(ctx context.Context, a execIface, _ []string) error { return a.Today(ctx) },
	"meds":        func(ctx context.Context, a execIface, _ []string) error { return a.Meds(ctx) },
	"addmed":      func(ctx context.Context, a execIface, _ []string) error { return a.AddMed(ctx) },
	"dashboard":   func(ctx context.Context, a execIface, _ []string) error { return a.Dashboard(ctx) },
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
