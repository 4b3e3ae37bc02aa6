// Package main implements the committee command line client. It talks to the
// committee backend over its REST API and keeps the login session sealed on
// disk between runs.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/committeehq/committee-client/internal/api"
	"github.com/committeehq/committee-client/internal/cli"
	"github.com/committeehq/committee-client/internal/committee"
	"github.com/committeehq/committee-client/internal/config"
	"github.com/committeehq/committee-client/internal/session"
	"github.com/committeehq/committee-client/pkg/logger"
)

const version = "1.0.0"

const usageText = `committee - committee management client

Usage:
  committee [flags] <command> [command flags]

Commands:
  signup       Create a new account
  login        Log in with phone number and password
  logout       Log out and clear the saved session
  committees   List committees
  analysis     Show committee analysis
  members      List members of a committee
  draws        List draws of a committee
  paid         Show per-user payment status for a draw
  pay          Record a payment for a member in a draw
  amount       Edit a draw amount (debounced interactive mode without --amount)
  timer        Run a draw countdown
  lottery      Run the winner lottery for a draw
  completion   Generate shell completion script
  version      Show version information
  help         Show this help

Flags:
  --config     Configuration file path (default ~/.committee/config.yaml)
  --log-level  Log level: debug, info, warn, error
  --version    Show version information
`

// app bundles everything a command needs.
type app struct {
	cfg   *config.Config
	log   *logger.Logger
	store *session.Store
	svc   *committee.Service
}

func main() {
	configPath := flag.String("config", "", "Configuration file path")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usageText) }
	flag.Parse()

	if *showVersion {
		fmt.Printf("committee %s\n", version)
		return
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}
	command, rest := args[0], args[1:]

	switch command {
	case "help":
		flag.Usage()
		return
	case "version":
		fmt.Printf("committee %s\n", version)
		return
	case "completion":
		if err := runCompletion(rest); err != nil {
			cli.Error(err.Error())
			os.Exit(1)
		}
		return
	}

	a, err := newApp(*configPath, *logLevel)
	if err != nil {
		cli.Error(err.Error())
		os.Exit(1)
	}

	if err := dispatch(a, command, rest); err != nil {
		if msg, ok := exitMessage(err); ok {
			cli.Error(msg)
		}
		os.Exit(1)
	}
}

// exitMessage returns the single line to print for a failed command. Session
// expiry prints nothing here: the logout hook already told the user, and a
// second line for the same event would be noise.
func exitMessage(err error) (string, bool) {
	if api.IsSessionExpired(err) {
		return "", false
	}
	return err.Error(), true
}

func dispatch(a *app, command string, args []string) error {
	switch command {
	case "signup":
		return runSignup(a, args)
	case "login":
		return runLogin(a, args)
	case "logout":
		return runLogout(a, args)
	case "committees":
		return runCommittees(a, args)
	case "analysis":
		return runAnalysis(a, args)
	case "members":
		return runMembers(a, args)
	case "draws":
		return runDraws(a, args)
	case "paid":
		return runPaid(a, args)
	case "pay":
		return runPay(a, args)
	case "amount":
		return runAmount(a, args)
	case "timer":
		return runTimer(a, args)
	case "lottery":
		return runLottery(a, args)
	default:
		return fmt.Errorf("unknown command %q, run 'committee help'", command)
	}
}

// newApp wires config, logging, session store and the API client together.
// The expiry handler is bound at construction so every 401/403 clears the
// session before the command sees the error.
func newApp(configPath, logLevel string) (*app, error) {
	// A .env next to the binary is a dev convenience; absence is fine.
	_ = godotenv.Load()

	if configPath == "" {
		configPath = config.DefaultPath()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	log := logger.New("committee", logger.Config{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
	})

	if err := os.MkdirAll(cfg.Storage.Dir, 0o700); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}

	store := session.NewStore(cfg.Storage.Dir, func() {
		cli.Warning("Your session has expired. Please log in again.")
	}, log.With("component", "session"))
	store.Load()

	client, err := api.New(api.Config{
		BaseURL:          cfg.API.BaseURL,
		Token:            store.Token,
		OnSessionExpired: store.HandleExpiry,
		Timeout:          cfg.API.Timeout(),
		Logger:           log.With("component", "api"),
	})
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:   cfg,
		log:   log,
		store: store,
		svc:   committee.NewService(client, log.With("component", "committee")),
	}, nil
}

// requireAuth fails fast when no session is stored. The server would reject
// the request anyway, this just gives a clearer message.
func (a *app) requireAuth() error {
	if !a.store.IsAuthenticated() {
		return fmt.Errorf("not logged in, run 'committee login' first")
	}
	return nil
}

func runCompletion(args []string) error {
	fs := flag.NewFlagSet("completion", flag.ContinueOnError)
	install := fs.Bool("install", false, "Install the completion script")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: committee completion [--install] bash|zsh|fish")
	}
	shell := fs.Arg(0)
	if *install {
		return cli.InstallCompletion(shell)
	}
	return cli.GenerateCompletion(shell)
}
