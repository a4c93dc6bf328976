package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/go-wordwrap"
)

func (a *App) getStatus() string {
	s := ""
	if sess := a.holder.Current(); sess != nil {
		s = sess.User.Name
		if s == "" {
			s = sess.User.Email
		}
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

func (a *App) Root(ctx context.Context) {
	fmt.Println("Welcome to the Vaultify CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("vault %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			a.Help()
		case "login":
			a.Login(ctx)
		case "logout":
			a.Logout()
		case "whoami":
			a.WhoAmI()
		case "list":
			a.List(ctx, strings.Join(args, " "))
		case "search":
			a.Search(ctx, strings.Join(args, " "))
		case "open":
			a.Open(ctx, strings.Join(args, " "))
		case "cat":
			a.Cat(ctx, strings.Join(args, " "))
		case "logs":
			a.Logs(ctx)
		case "upload":
			a.Upload(args)
		case "staged":
			a.Staged()
		case "type":
			a.SetType(strings.Join(args, " "))
		case "rm":
			a.Unstage(strings.Join(args, " "))
		case "start":
			a.StartUploads(ctx)
		case "watch":
			a.Watch(ctx, strings.Join(args, " "))
		case "exit", "quit":
			fmt.Println("Bye!")
			return
		default:
			fmt.Printf("Unknown command %q, type 'help'\n", cmd)
		}
	}
}

var helpText = map[string]string{
	"login":         "Sign in with your Google account. Only authorized family members get a session; everyone else is turned away.",
	"logout":        "Sign out and forget the stored session.",
	"whoami":        "Show the signed-in family member.",
	"list [cat]":    "List vault documents, optionally only those declared under the given category.",
	"search <text>": "List vault documents whose name contains the text.",
	"open <name>":   "Open a document's Drive preview in the browser.",
	"cat <name>":    "Print a text document's content inline.",
	"logs":          "Show the family activity log, newest first.",
	"upload <paths>": "Stage local files for upload and pick a document type for each. " +
		"Nothing is sent until 'start'.",
	"staged":      "Show the staged files with their status and progress.",
	"type <name>": "Pick a document type for a staged file.",
	"rm <name>":   "Unstage a file that has not started uploading.",
	"start":       "Upload every staged file. Every file needs a document type first.",
	"watch <dir>": "Stage files as they appear in a directory, until Enter is pressed.",
	"exit":        "Leave the shell.",
}

var helpOrder = []string{
	"login", "logout", "whoami", "list [cat]", "search <text>", "open <name>",
	"cat <name>", "logs", "upload <paths>", "staged", "type <name>", "rm <name>",
	"start", "watch <dir>", "exit",
}

func (a *App) Help() {
	fmt.Println("Commands:")
	for _, name := range helpOrder {
		wrapped := wordwrap.WrapString(helpText[name], 60)
		lines := strings.Split(wrapped, "\n")
		fmt.Printf("  %-16s %s\n", name, lines[0])
		for _, line := range lines[1:] {
			fmt.Printf("  %-16s %s\n", "", line)
		}
	}
}
