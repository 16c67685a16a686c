package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
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
	Logout(ctx context.Context) error
	Profile(ctx context.Context) error

	List(ctx context.Context, args []string) error
	More(ctx context.Context) error
	Refresh(ctx context.Context) error
	AddBook(ctx context.Context, args []string) error
	RemoveBook(ctx context.Context, args []string) error
	LibraryStats(ctx context.Context) error

	Download(ctx context.Context, args []string) error
	Renew(ctx context.Context, args []string) error
	RemoveOffline(ctx context.Context, args []string) error
	Licenses(ctx context.Context) error

	Search(ctx context.Context, args []string) error
	Browse(ctx context.Context) error
	Read(ctx context.Context, args []string) error

	Comments(ctx context.Context, args []string) error
	Replies(ctx context.Context, args []string) error
	Comment(ctx context.Context, args []string) error
	Rate(ctx context.Context, args []string) error
	Unrate(ctx context.Context, args []string) error
	Ratings(ctx context.Context, args []string) error

	NewBook(ctx context.Context) error
	NewChapter(ctx context.Context, args []string) error
	PublishBook(ctx context.Context, args []string) error
}

// runREPL starts a read-eval-print loop for the Librefy CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Any errors returned by command handlers are ignored here; handlers print
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		fmt.Printf("librefy %s> ", statusFn())
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
			if a.isLoggedIn() {
				printlnFn("Library:   (l)ist [all|reading|completed|want_to_read|offline] [recent|title|author|progress], more, refresh, add <bookID>, remove <bookID>, stats")
				printlnFn("Offline:   download <bookID>, renew <bookID>, removeoffline <bookID>, licenses")
				printlnFn("Discover:  browse, search <query>, read <bookID> <chapter>")
				printlnFn("Community: comments <bookID>, replies <commentID>, comment <bookID> [parentID], rate <bookID> <1-5>, unrate <bookID>, ratings <bookID>")
				printlnFn("Writing:   newbook, newchapter <bookID>, publish <bookID>")
				printlnFn("Account:   profile, logout, exit")
			} else {
				printlnFn("Available commands: register, login, browse, search <query>, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "profile":
			_ = a.Profile(ctx)

		case "l", "list":
			_ = a.List(ctx, args)

		case "more":
			_ = a.More(ctx)

		case "refresh":
			_ = a.Refresh(ctx)

		case "add":
			_ = a.AddBook(ctx, args)

		case "remove":
			_ = a.RemoveBook(ctx, args)

		case "stats":
			_ = a.LibraryStats(ctx)

		case "download":
			_ = a.Download(ctx, args)

		case "renew":
			_ = a.Renew(ctx, args)

		case "removeoffline":
			_ = a.RemoveOffline(ctx, args)

		case "licenses":
			_ = a.Licenses(ctx)

		case "search":
			_ = a.Search(ctx, args)

		case "browse":
			_ = a.Browse(ctx)

		case "read":
			_ = a.Read(ctx, args)

		case "comments":
			_ = a.Comments(ctx, args)

		case "replies":
			_ = a.Replies(ctx, args)

		case "comment":
			_ = a.Comment(ctx, args)

		case "rate":
			_ = a.Rate(ctx, args)

		case "unrate":
			_ = a.Unrate(ctx, args)

		case "ratings":
			_ = a.Ratings(ctx, args)

		case "newbook":
			_ = a.NewBook(ctx)

		case "newchapter":
			_ = a.NewChapter(ctx, args)

		case "publish":
			_ = a.PublishBook(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func (a *App) getStatus() string {
	s := ""
	if a.user != nil {
		s = a.user.Username + " "
	}
	if a.Mode != "" {
		s = s + string(a.Mode)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to Librefy CLI (type 'help' for commands)")

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
