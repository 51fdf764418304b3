// Package cli exposes every operation of the service catalogs as a cobra
// command, plus the batch and operations commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gurre/awscmdlet/aws"
	"github.com/gurre/awscmdlet/blob"
	"github.com/gurre/awscmdlet/config"
	"github.com/gurre/awscmdlet/confirm"
	"github.com/gurre/awscmdlet/journal"
	"github.com/gurre/awscmdlet/logging"
	"github.com/gurre/awscmdlet/operation"
	"github.com/gurre/awscmdlet/preflight"
	"github.com/gurre/awscmdlet/services/amplifyuibuilder"
	"github.com/gurre/awscmdlet/services/medicalimaging"
	"github.com/gurre/s3streamer"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// journalFlushTimeout bounds the final journal write after a command.
const journalFlushTimeout = 30 * time.Second

// Connector creates the SDK clients for a loaded configuration.
type Connector func(ctx context.Context, cfg *config.Config) (*aws.Clients, error)

// App holds the state of one process: configuration, logger and the lazily
// created clients shared by every command.
type App struct {
	v      *viper.Viper
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	connect     Connector
	newStreamer func(*aws.Clients) s3streamer.Streamer

	cfg      *config.Config
	log      *logrus.Logger
	clients  *aws.Clients
	journal  *journal.DynamoDBJournal
	services []service
}

type service struct {
	name     string
	short    string
	commands []operation.Command
}

type Option func(*App)

// WithIO replaces stdin, stdout and stderr.
func WithIO(in io.Reader, out, errOut io.Writer) Option {
	return func(a *App) {
		a.in, a.out, a.errOut = in, out, errOut
	}
}

// WithConnector replaces the SDK client factory.
func WithConnector(c Connector) Option {
	return func(a *App) { a.connect = c }
}

// WithStreamer replaces the streamer used for s3:// batch input.
func WithStreamer(fn func(*aws.Clients) s3streamer.Streamer) Option {
	return func(a *App) { a.newStreamer = fn }
}

func New(opts ...Option) *App {
	a := &App{
		v:       viper.New(),
		in:      os.Stdin,
		out:     os.Stdout,
		errOut:  os.Stderr,
		connect: connect,
		newStreamer: func(c *aws.Clients) s3streamer.Streamer {
			return s3streamer.NewS3Streamer(c.RawS3)
		},
		log: logging.Discard(),
	}
	for _, opt := range opts {
		opt(a)
	}
	config.SetDefaults(a.v)

	a.services = []service{
		{
			name:  amplifyuibuilder.Service,
			short: "AWS Amplify UI Builder forms, themes, components and codegen jobs",
			commands: amplifyuibuilder.Commands(func(ctx context.Context) (aws.AmplifyUIBuilderClient, error) {
				c, err := a.awsClients(ctx)
				if err != nil {
					return nil, err
				}
				return c.AmplifyUIBuilder, nil
			}),
		},
		{
			name:  medicalimaging.Service,
			short: "AWS HealthImaging data stores, image sets and DICOM import jobs",
			commands: medicalimaging.Commands(func(ctx context.Context) (aws.MedicalImagingClient, error) {
				c, err := a.awsClients(ctx)
				if err != nil {
					return nil, err
				}
				return c.MedicalImaging, nil
			}),
		},
	}
	return a
}

// Execute runs the command line args.
func (a *App) Execute(ctx context.Context, args []string) error {
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	err := root.ExecuteContext(ctx)
	if a.journal != nil {
		flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), journalFlushTimeout)
		defer cancel()
		if ferr := a.journal.Flush(flushCtx); ferr != nil {
			a.log.WithError(ferr).Error("failed to write invocation journal")
		}
	}
	return err
}

func (a *App) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "awscmdlet",
		Short:         "Run AWS Amplify UI Builder and HealthImaging operations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (default ./awscmdlet.yaml or $HOME/.config/awscmdlet/awscmdlet.yaml)")
	pf.String("region", "", "AWS region")
	pf.String("profile", "", "shared config profile")
	pf.String("endpoint-url", "", "override every service endpoint")
	pf.StringP("output", "o", "json", "output format: json, yaml or text")
	pf.String("log-level", "warning", "log level")
	pf.String("log-format", "text", "log format: text or json")
	pf.Bool("strict", false, "fail when a required parameter is missing")
	pf.Int("max-attempts", 0, "maximum SDK attempts per call (0 keeps the SDK default)")
	pf.String("audit-table", "", "DynamoDB table recording mutating invocations")
	pf.Bool("preflight", false, "simulate IAM permissions before each call")
	a.bind(pf.Lookup("config"), config.KeyConfigFile)
	a.bind(pf.Lookup("region"), config.KeyRegion)
	a.bind(pf.Lookup("profile"), config.KeyProfile)
	a.bind(pf.Lookup("endpoint-url"), config.KeyEndpointURL)
	a.bind(pf.Lookup("output"), config.KeyOutput)
	a.bind(pf.Lookup("log-level"), config.KeyLogLevel)
	a.bind(pf.Lookup("log-format"), config.KeyLogFormat)
	a.bind(pf.Lookup("strict"), config.KeyStrict)
	a.bind(pf.Lookup("max-attempts"), config.KeyMaxAttempts)
	a.bind(pf.Lookup("audit-table"), config.KeyAuditTable)
	a.bind(pf.Lookup("preflight"), config.KeyPreflight)

	for _, s := range a.services {
		root.AddCommand(a.serviceCommand(s))
	}
	root.AddCommand(a.operationsCommand())
	root.AddCommand(a.batchCommand())
	return root
}

func (a *App) setup() error {
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	log, err := logging.New(a.errOut, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	a.cfg, a.log = cfg, log
	return nil
}

// awsClients connects on first use, so commands that fail validation never
// resolve credentials.
func (a *App) awsClients(ctx context.Context) (*aws.Clients, error) {
	if a.clients != nil {
		return a.clients, nil
	}
	if a.cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	c, err := a.connect(ctx, a.cfg)
	if err != nil {
		return nil, err
	}
	a.clients = c
	return c, nil
}

// env assembles the collaborators of an invocation from the configuration.
func (a *App) env(ctx context.Context) (operation.Env, error) {
	env := operation.Env{
		Gate:   confirm.NewGate(a.prompter()),
		Log:    a.log,
		Strict: a.cfg.Strict,
		Blobs:  blob.NewResolver(&lazyS3{app: a}),
	}

	if a.cfg.Preflight {
		c, err := a.awsClients(ctx)
		if err != nil {
			return env, err
		}
		env.Preflight = preflight.NewChecker(c.STS, c.IAM)
	}

	if a.cfg.AuditTable != "" {
		if a.journal == nil {
			c, err := a.awsClients(ctx)
			if err != nil {
				return env, err
			}
			a.journal = journal.NewDynamoDBJournal(c.DynamoDB, a.cfg.AuditTable, a.log)
		}
		env.Journal = a.journal
	}
	return env, nil
}

func (a *App) prompter() confirm.Prompter {
	if f, ok := a.in.(*os.File); ok {
		return confirm.NewTerminalPrompter(f, a.errOut)
	}
	return confirm.NewLinePrompter(a.in, a.errOut)
}

func connect(ctx context.Context, cfg *config.Config) (*aws.Clients, error) {
	awsCfg, err := aws.LoadConfig(ctx, aws.Settings{
		Region:      cfg.Region,
		Profile:     cfg.Profile,
		EndpointURL: cfg.EndpointURL,
		AccessKeyID: cfg.AccessKeyID,
		SecretKey:   cfg.SecretAccessKey,
		MaxAttempts: cfg.MaxAttempts,
	})
	if err != nil {
		return nil, err
	}
	return aws.NewClients(awsCfg, cfg.EndpointURL), nil
}
