package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/auradrive/auradrive/internal/client/admin"
	"github.com/auradrive/auradrive/internal/client/api"
	"github.com/auradrive/auradrive/internal/client/assistant"
	"github.com/auradrive/auradrive/internal/client/browser"
	"github.com/auradrive/auradrive/internal/client/clipboard"
	"github.com/auradrive/auradrive/internal/client/preview"
	"github.com/auradrive/auradrive/internal/client/session"
	"github.com/auradrive/auradrive/internal/client/ui"
	"github.com/auradrive/auradrive/internal/config"
	"github.com/auradrive/auradrive/internal/models"
	"go.uber.org/zap"
)

var (
	version   string
	buildDate string
)

// consoleNavigator prints route changes; the shell has no real router.
type consoleNavigator struct{}

func (consoleNavigator) NavigateTo(route string) {
	fmt.Println("->", route)
}

// app bundles the shell's controllers.
type app struct {
	api       *api.Client
	session   *session.Store
	clip      *clipboard.Store
	browser   *browser.Browser
	preview   *preview.Panel
	assistant *assistant.Panel
	admin     *admin.Panel
	notifier  ui.Notifier
	prompter  ui.Prompter
}

// repl runs the interactive shell loop.
func (a *app) repl(ctx context.Context) {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("auradrive> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "help":
			printHelp()
		case "whoami":
			if user := a.session.Current(); user != nil {
				fmt.Printf("%s (%s)\n", user.Email, user.Role)
			} else {
				fmt.Println("not logged in")
			}
		case "login":
			if len(args) < 2 {
				fmt.Println("Usage: login <email>")
				continue
			}
			a.login(ctx, args[1])
		case "register":
			if len(args) < 2 {
				fmt.Println("Usage: register <email> [matrick-number]")
				continue
			}
			matrick := ""
			if len(args) > 2 {
				matrick = args[2]
			}
			a.register(ctx, args[1], matrick)
		case "logout":
			a.session.Logout(ctx)
		case "passwd":
			a.resetPassword(ctx)
		case "exit":
			fmt.Println("Bye")
			return
		default:
			if a.session.Current() == nil {
				fmt.Println("Please log in first.")
				continue
			}
			a.dispatch(ctx, args)
		}
	}
}

// dispatch handles the commands that require an identity.
func (a *app) dispatch(ctx context.Context, args []string) {
	switch args[0] {
	case "scope":
		if len(args) < 2 {
			fmt.Println("Usage: scope <personal|community|staff_only>")
			return
		}
		consoleNavigator{}.NavigateTo(session.RouteDrive(args[1]))
		a.browser.NavigateTo(ctx, models.Scope(args[1]), "")
		a.printListing()
	case "ls":
		a.browser.Load(ctx)
		a.printListing()
	case "cd":
		if len(args) < 2 {
			fmt.Println("Usage: cd <folder-id|..>")
			return
		}
		if args[1] == ".." {
			a.browser.Up(ctx)
		} else {
			a.browser.Open(ctx, args[1])
		}
		a.printListing()
	case "pwd":
		fmt.Println(a.browser.Path())
	case "open":
		if len(args) < 2 {
			fmt.Println("Usage: open <id>")
			return
		}
		a.browser.Open(ctx, args[1])
	case "close":
		a.preview.Close()
	case "sel":
		if len(args) < 2 {
			fmt.Println("Usage: sel <id>")
			return
		}
		a.browser.Click(args[1])
	case "toggle":
		if len(args) < 2 {
			fmt.Println("Usage: toggle <id>")
			return
		}
		a.browser.ToggleClick(args[1])
	case "clear":
		a.browser.ClearSelection()
	case "upload":
		if len(args) < 2 {
			fmt.Println("Usage: upload <path> [path...]")
			return
		}
		a.upload(ctx, args[1:])
	case "mkdir":
		a.browser.CreateFolder(ctx)
	case "rename":
		a.browser.Rename(ctx)
	case "rm":
		a.browser.Delete(ctx)
	case "download":
		a.browser.Download(ctx)
	case "copy":
		a.browser.Copy()
	case "cut":
		a.browser.Cut()
	case "paste":
		a.browser.Paste(ctx)
	case "ai":
		if len(args) < 2 {
			fmt.Println("Usage: ai <prompt>")
			return
		}
		a.chat(ctx, strings.Join(args[1:], " "))
	case "admin":
		a.adminCommand(ctx, args[1:])
	default:
		fmt.Println("Unknown command. Type 'help' for a list of commands.")
	}
}

func (a *app) login(ctx context.Context, email string) {
	password, ok := a.prompter.Prompt("Password", "")
	if !ok {
		return
	}
	user, message, err := a.api.Login(ctx, email, password)
	if err != nil {
		a.notifier.Error(loginError(err))
		return
	}
	if message != "" {
		a.notifier.Success(message)
	}
	a.session.Login(user)
	a.browser.NavigateTo(ctx, models.ScopePersonal, "")
}

// loginError prefers the backend's own message over a generic one.
func loginError(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "Request failed."
}

func (a *app) register(ctx context.Context, email, matrick string) {
	password, ok := a.prompter.Prompt("Password", "")
	if !ok {
		return
	}
	if len(password) < admin.MinPasswordLength {
		a.notifier.Error(fmt.Sprintf("Password must be at least %d characters long.", admin.MinPasswordLength))
		return
	}
	message, err := a.api.Register(ctx, email, password, matrick)
	if err != nil {
		a.notifier.Error(loginError(err))
		return
	}
	if message == "" {
		message = "Account created."
	}
	a.notifier.Success(message)
}

func (a *app) resetPassword(ctx context.Context) {
	if a.session.Current() == nil {
		fmt.Println("Please log in first.")
		return
	}
	current, ok := a.prompter.Prompt("Current password", "")
	if !ok {
		return
	}
	next, ok := a.prompter.Prompt("New password", "")
	if !ok {
		return
	}
	if len(next) < admin.MinPasswordLength {
		a.notifier.Error(fmt.Sprintf("Password must be at least %d characters long.", admin.MinPasswordLength))
		return
	}
	confirm, ok := a.prompter.Prompt("Repeat new password", "")
	if !ok || confirm != next {
		a.notifier.Error("Passwords do not match.")
		return
	}
	message, err := a.api.ResetPassword(ctx, current, next)
	if err != nil {
		a.notifier.Error(loginError(err))
		return
	}
	if message == "" {
		message = "Password updated."
	}
	a.notifier.Success(message)
}

func (a *app) upload(ctx context.Context, paths []string) {
	var files []browser.UploadFile
	var handles []*os.File
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			a.notifier.Error(fmt.Sprintf("Cannot read '%s'.", path))
			continue
		}
		handles = append(handles, f)
		files = append(files, browser.UploadFile{Name: filepath.Base(path), Content: f})
	}
	a.browser.Upload(ctx, files)
	for _, f := range handles {
		f.Close()
	}
}

func (a *app) chat(ctx context.Context, prompt string) {
	if !a.assistant.Send(ctx, prompt) {
		return
	}
	transcript := a.assistant.Transcript()
	last := transcript[len(transcript)-1]
	fmt.Printf("%s: %s\n", last.Author, last.Text)
}

// adminCommand gates the admin panel: a non-admin identity is bounced back to
// the dashboard without a single backend request.
func (a *app) adminCommand(ctx context.Context, args []string) {
	if redirect, ok := a.session.Authorize(session.RouteAdmin); !ok {
		a.notifier.Error("You do not have permission to access the admin panel.")
		if redirect != "" {
			consoleNavigator{}.NavigateTo(redirect)
		}
		return
	}
	if len(args) == 0 {
		fmt.Println("Usage: admin <users|logs|view|rm|passwd> [id]")
		return
	}
	switch args[0] {
	case "users":
		if err := a.admin.Load(ctx); err != nil {
			return
		}
		for _, u := range a.admin.Users() {
			fmt.Printf("%-12s %-30s %s\n", u.ID, u.Email, u.Role)
		}
	case "logs":
		if err := a.admin.Load(ctx); err != nil {
			return
		}
		for _, l := range a.admin.Logs() {
			fmt.Printf("%s %-20s %-16s %s\n", l.Timestamp, l.UserEmail, l.Action, l.Details)
		}
	case "view":
		if len(args) < 2 {
			fmt.Println("Usage: admin view <user-id>")
			return
		}
		a.browser.ViewUser(ctx, args[1])
		a.printListing()
	case "rm":
		if len(args) < 2 {
			fmt.Println("Usage: admin rm <user-id>")
			return
		}
		a.admin.DeleteUser(ctx, args[1])
	case "passwd":
		if len(args) < 2 {
			fmt.Println("Usage: admin passwd <user-id>")
			return
		}
		a.admin.ResetPassword(ctx, args[1])
	default:
		fmt.Println("Usage: admin <users|logs|view|rm|passwd> [id]")
	}
}

func (a *app) printListing() {
	fmt.Println(a.browser.Path())
	for _, e := range a.browser.Entries() {
		if e.IsFolder() {
			fmt.Printf("%-12s %-10s %s/\n", e.ID, e.Type, e.Filename)
			continue
		}
		fmt.Printf("%-12s %-10s %s (%d bytes, %s)\n", e.ID, e.Type, e.Filename, e.Filesize, e.Filetype)
	}
}

func printHelp() {
	fmt.Println(`Available commands:
  login <email>              log in
  register <email> [matrick] create an account (matrick number for students)
  logout                     log out
  passwd                     change your password
  whoami                     show the current identity
  scope <name>               switch drive scope (personal|community|staff_only)
  ls | cd <id|..> | pwd      browse folders
  open <id> | close          preview a file / close the preview
  sel | toggle | clear       manage the selection
  upload <path>...           upload files into the current folder
  mkdir | rename | rm        create folder, rename or delete the selection
  download                   download the selected file
  copy | cut | paste         clipboard operations
  ai <prompt>                ask the drive assistant
  admin <subcommand>         admin panel (users, logs, view, rm, passwd)
  exit`)
}

func newLogger(level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if lvl, err := zap.ParseAtomicLevel(level); err == nil {
		cfg.Level = lvl
	}
	logger, err := cfg.Build()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	return logger
}

func main() {
	showVer := flag.Bool("version", false, "show build version and date")
	opts := config.Parse()

	if *showVer {
		fmt.Printf("AuraDrive Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	logger := newLogger(opts.LogLevel)
	defer logger.Sync()

	client, err := api.New(opts.BaseURL, logger)
	if err != nil {
		log.Fatal(err)
	}

	notifier := ui.Console{}
	prompter := ui.NewStdinPrompter()
	nav := consoleNavigator{}

	sess := session.New(client, nav, logger)
	clip := clipboard.New()
	br := browser.New(client, clip, notifier, prompter, logger, models.ScopePersonal)
	pv := preview.NewPanel(client, logger)
	br.OnPreview = func(entry models.Entry) {
		content := pv.Open(context.Background(), entry)
		fmt.Printf("preview: %s [%s]\n", content.Filename, content.Kind)
		if content.Kind == preview.KindText {
			fmt.Println(content.Text)
		}
		if content.DownloadURL != "" {
			fmt.Println("download:", content.DownloadURL)
		}
	}

	as := assistant.NewPanel(client, logger)
	as.ContextFunc = func() api.ChatContext {
		return api.ChatContext{
			Scope:    string(br.Scope()),
			ParentID: br.ParentID(),
			Path:     br.Path(),
		}
	}
	as.OnRefresh = func() { br.Load(context.Background()) }

	ad := admin.NewPanel(client, notifier, prompter, logger)
	ad.Actor = sess.Current

	a := &app{
		api:       client,
		session:   sess,
		clip:      clip,
		browser:   br,
		preview:   pv,
		assistant: as,
		admin:     ad,
		notifier:  notifier,
		prompter:  prompter,
	}

	ctx := context.Background()
	a.session.Resolve(ctx)
	if user := a.session.Current(); user != nil {
		fmt.Printf("Welcome back, %s\n", user.Email)
		a.browser.NavigateTo(ctx, models.ScopePersonal, "")
	}
	a.repl(ctx)
}
