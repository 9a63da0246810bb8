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
	hasLedger() bool
	Login(ctx context.Context) error
	Open(ctx context.Context, args []string) error
	Documents(ctx context.Context) error
	Clients(ctx context.Context) error
	List(ctx context.Context) error
	Add(ctx context.Context) error
	Edit(ctx context.Context, args []string) error
	Return(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Duplicate(ctx context.Context, args []string) error
	Select(ctx context.Context, args []string) error
	Deselect(ctx context.Context, args []string) error
	Queue(ctx context.Context, args []string) error
	Unqueue(ctx context.Context, args []string) error
	Sign(ctx context.Context, args []string) error
	Unsign(ctx context.Context, args []string) error
	Pending(ctx context.Context, args []string) error
	Finalize(ctx context.Context, args []string) error
	Exports(ctx context.Context, args []string) error
	Fetch(ctx context.Context, args []string) error
}

// runREPL starts a read-eval-print loop for the Protokol CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Any errors returned by command handlers are ignored here; handlers log
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("protokol %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			switch {
			case !a.isLoggedIn():
				printlnFn("Available commands: login, exit")
			case !a.hasLedger():
				printlnFn("Available commands: open <client> <month>, docs, clients, exports, fetch, exit")
			default:
				printlnFn("Available commands: (l)ist, add, edit, return, del, dup, sel, unsel, queue, unqueue, sign, unsign, pending, finalize, docs, clients, exports, fetch, open, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "open":
			_ = a.Open(ctx, args)

		case "docs":
			_ = a.Documents(ctx)

		case "clients":
			_ = a.Clients(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "add":
			_ = a.Add(ctx)

		case "edit":
			_ = a.Edit(ctx, args)

		case "return":
			_ = a.Return(ctx, args)

		case "del":
			_ = a.Delete(ctx, args)

		case "dup":
			_ = a.Duplicate(ctx, args)

		case "sel":
			_ = a.Select(ctx, args)

		case "unsel":
			_ = a.Deselect(ctx, args)

		case "queue":
			_ = a.Queue(ctx, args)

		case "unqueue":
			_ = a.Unqueue(ctx, args)

		case "sign":
			_ = a.Sign(ctx, args)

		case "unsign":
			_ = a.Unsign(ctx, args)

		case "pending":
			_ = a.Pending(ctx, args)

		case "finalize":
			_ = a.Finalize(ctx, args)

		case "exports":
			_ = a.Exports(ctx, args)

		case "fetch":
			_ = a.Fetch(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
