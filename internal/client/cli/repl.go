package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL drives.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context, args []string) error

	Add(ctx context.Context, args []string) error
	Feed(ctx context.Context, args []string) error
	Space(ctx context.Context, args []string) error
	Spaces(ctx context.Context) error
	Trash(ctx context.Context) error
	Delete(ctx context.Context, args []string) error
	Restore(ctx context.Context, args []string) error
	Purge(ctx context.Context, args []string) error
	EmptyBin(ctx context.Context) error
	Review(ctx context.Context) error
	Keep(ctx context.Context) error
	Skip(ctx context.Context) error
	Move(ctx context.Context, args []string) error
	Title(ctx context.Context, args []string) error
	Tag(ctx context.Context, args []string) error
	Reload(ctx context.Context) error

	Lock(ctx context.Context, args []string) error
	Unlock(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: register, login, exit"
	helpLoggedIn  = "Available commands: add <url>, feed [query], space <name>|clear, spaces, trash, " +
		"delete <id>, restore <id>, purge <id>, emptybin, review, keep, skip, move <id> <space>, " +
		"title <id> <text>, tag <id> [tags...], lock on|off, unlock, reload, logout [forget], exit"
)

// runREPL starts a simple read–eval–print loop for the mymind CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command and the rest as its arguments, and dispatches to methods on 'a'.
// Unknown commands are reported back to the user. The loop exits on scanner
// EOF or when the user types "exit" or "quit".
//
// A command error is printed and the loop carries on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("mm %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}

		case "register":
			err = a.Register(ctx)
		case "login":
			err = a.Login(ctx)
		case "logout":
			err = a.Logout(ctx, args)

		case "add":
			err = a.Add(ctx, args)
		case "feed", "f":
			err = a.Feed(ctx, args)
		case "space":
			err = a.Space(ctx, args)
		case "spaces":
			err = a.Spaces(ctx)
		case "trash", "bin":
			err = a.Trash(ctx)
		case "delete", "rm":
			err = a.Delete(ctx, args)
		case "restore":
			err = a.Restore(ctx, args)
		case "purge":
			err = a.Purge(ctx, args)
		case "emptybin":
			err = a.EmptyBin(ctx)
		case "review":
			err = a.Review(ctx)
		case "keep":
			err = a.Keep(ctx)
		case "skip":
			err = a.Skip(ctx)
		case "move", "mv":
			err = a.Move(ctx, args)
		case "title":
			err = a.Title(ctx, args)
		case "tag":
			err = a.Tag(ctx, args)
		case "reload", "sync":
			err = a.Reload(ctx)

		case "lock":
			err = a.Lock(ctx, args)
		case "unlock":
			err = a.Unlock(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn(renderAlert(err.Error()))
		}
	}
}
