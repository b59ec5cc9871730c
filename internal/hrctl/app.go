package hrctl

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v2"

	"github.com/dmitrymomot/hrpayroll/pkg/apiclient"
	"github.com/dmitrymomot/hrpayroll/pkg/authstore"
	"github.com/dmitrymomot/hrpayroll/pkg/logger"
	"github.com/dmitrymomot/hrpayroll/pkg/router"
	"github.com/dmitrymomot/hrpayroll/pkg/tokenstore"
)

const envKey = "hrctl.env"

// Build information, set via ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
)

// env is what every command works with, built once in Before.
type env struct {
	store  *authstore.Store
	router *router.Router
	tokens *tokenstore.File
	log    *slog.Logger
	output string
}

func envFrom(c *cli.Context) *env {
	e, _ := c.App.Metadata[envKey].(*env)
	return e
}

// App builds the hrctl application. Errors are returned from Run rather than
// terminating the process.
func App() *cli.App {
	return &cli.App{
		Name:    "hrctl",
		Usage:   "HR Payroll command line client",
		Version: fmt.Sprintf("%s (commit: %s)", Version, Commit),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			loginCommand(),
			logoutCommand(),
			whoamiCommand(),
			profileCommand(),
			passwordCommand(),
			navCommand(),
			routesCommand(),
		},
		Before:         setup,
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "config file with defaults for the flags below (default: user config dir)",
			EnvVars: []string{"HRCTL_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "api",
			Usage:   "API base URL",
			EnvVars: []string{"API_BASE_URL"},
			Value:   "http://localhost:8000/api",
		},
		&cli.StringFlag{
			Name:    "token-file",
			Usage:   "where the bearer token is kept (default: user config dir)",
			EnvVars: []string{"HRCTL_TOKEN_FILE"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format: table, json, yaml",
			Value:   FormatTable,
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Usage:   "API request timeout",
			EnvVars: []string{"API_TIMEOUT"},
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "log API calls to stderr",
		},
	}
}

func setup(c *cli.Context) error {
	cfgPath := c.String("config")
	if cfgPath == "" {
		// Without a resolvable config dir there is simply no config file.
		cfgPath, _ = DefaultConfigPath()
	}
	s, err := loadSettings(cfgPath)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	output := stringOr(c, "output", s.Output)
	switch output {
	case FormatTable, FormatJSON, FormatYAML:
	default:
		return cli.Exit(fmt.Sprintf("unknown output format %q", output), 2)
	}

	level := slog.LevelWarn
	if c.Bool("verbose") {
		level = slog.LevelDebug
	}
	log := logger.New(
		logger.WithOutput(c.App.ErrWriter),
		logger.WithFormat(logger.FormatText),
		logger.WithLevel(level),
		logger.WithAttr(logger.Component("hrctl")),
	)

	path := stringOr(c, "token-file", s.TokenFile)
	if path == "" {
		if path, err = tokenstore.DefaultFilePath("hrctl"); err != nil {
			return cli.Exit(fmt.Sprintf("cannot locate token file: %v", err), 1)
		}
	}
	tokens := tokenstore.NewFile(path)

	clientOpts := []apiclient.Option{apiclient.WithLogger(log)}
	if d := durationOr(c, "timeout", s.Timeout); d > 0 {
		clientOpts = append(clientOpts, apiclient.WithTimeout(d))
	}
	api := apiclient.New(stringOr(c, "api", s.API), clientOpts...)

	store, err := authstore.New(c.Context, api, tokens, authstore.WithLogger(log))
	if err != nil {
		return cli.Exit(fmt.Sprintf("cannot read token file %s: %v", path, err), 1)
	}

	rt, err := router.New(router.DefaultRoutes(), router.WithLogger(log))
	if err != nil {
		return err
	}

	store.Init(c.Context)

	c.App.Metadata[envKey] = &env{
		store:  store,
		router: rt,
		tokens: tokens,
		log:    log,
		output: output,
	}
	return nil
}

func (e *env) print(c *cli.Context, v any) error {
	return render(c.App.Writer, e.output, v)
}

// actionError turns a failed session action into an exit error carrying the
// store's message.
func (e *env) actionError(err error) error {
	msg := e.store.LastError()
	if msg == "" {
		msg = err.Error()
	}
	code := 1
	if errors.Is(err, apiclient.ErrTransport) {
		code = 3
	}
	return cli.Exit(msg, code)
}

// requireSession fails commands that need a signed-in user.
func (e *env) requireSession() error {
	if !e.store.IsAuthenticated() {
		return cli.Exit("not logged in, run: hrctl login", 4)
	}
	return nil
}
