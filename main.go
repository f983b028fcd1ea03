package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/customeros/mailtriage/config"
	"github.com/customeros/mailtriage/interfaces"
	"github.com/customeros/mailtriage/internal/logger"
	"github.com/customeros/mailtriage/internal/models"
	"github.com/customeros/mailtriage/internal/utils"
	"github.com/customeros/mailtriage/server"
	"github.com/customeros/mailtriage/services"
	"github.com/customeros/mailtriage/services/mail"
	"github.com/customeros/mailtriage/services/runner"
)

const AppSource = "mailtriage-cli"

func main() {
	app := &cli.App{
		Name:  "mailtriage",
		Usage: "rule based email triage",
		Commands: []*cli.Command{
			triageCommand(),
			serveCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("mailtriage: %v", err)
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the triage API server",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
			log.Println("MailTriage starting up...")

			srv, err := server.NewServer(cfg)
			if err != nil {
				return errors.Wrap(err, "server setup failed")
			}
			if err := srv.Run(); err != nil {
				return errors.Wrap(err, "server startup failed")
			}

			log.Println("Shutdown complete")
			return nil
		},
	}
}

func triageCommand() *cli.Command {
	return &cli.Command{
		Name:  "triage",
		Usage: "Triage a directory of .eml files or a JSON file of messages and print the report",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Usage: "directory of .eml files"},
			&cli.StringFlag{Name: "json", Usage: "JSON file of message records, - for stdin"},
			&cli.StringFlag{Name: "policy", Usage: "policy YAML file, overrides POLICY_FILE"},
			&cli.StringSliceFlag{Name: "scopes", Usage: "granted mail scopes, overrides MAIL_SCOPES"},
			&cli.BoolFlag{Name: "only-urgent", Usage: "only process messages at or above the priority threshold"},
			&cli.BoolFlag{Name: "no-drafts", Usage: "do not draft replies"},
			&cli.BoolFlag{Name: "force-reply", Usage: "draft replies even when none is required"},
			&cli.BoolFlag{Name: "no-follow-ups", Usage: "do not schedule follow-ups"},
			&cli.BoolFlag{Name: "no-approval", Usage: "do not require approval for drafts"},
			&cli.BoolFlag{Name: "latest-only", Usage: "keep only the newest message per thread"},
			&cli.StringFlag{Name: "sender", Usage: "only process messages from this sender"},
			&cli.BoolFlag{Name: "records", Usage: "print the full decision records instead of the report"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log pipeline progress to stdout"},
		},
		Action: runTriage,
	}
}

func runTriage(c *cli.Context) error {
	if (c.String("dir") == "") == (c.String("json") == "") {
		return errors.New("exactly one of --dir or --json is required")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if c.IsSet("policy") {
		cfg.PolicyConfig.PolicyFile = c.String("policy")
	}
	if c.IsSet("scopes") {
		cfg.CapabilitiesConfig.Scopes = c.StringSlice("scopes")
	}
	// one-off runs neither dedupe nor publish
	cfg.RedisConfig.Addr = ""
	cfg.RabbitMQConfig.URL = ""
	cfg.CronConfig.SourceDir = ""
	cfg.IMAPConfig.Server = ""

	appLogger := logger.NewNopLogger()
	if c.Bool("verbose") {
		l := logger.NewAppLogger(cfg.Logger)
		l.InitLogger()
		defer l.Sync()
		appLogger = l
	}

	svcs, err := services.InitServices(cfg, appLogger)
	if err != nil {
		return err
	}
	defer svcs.Close()

	var source interfaces.MailSource
	if dir := c.String("dir"); dir != "" {
		source = mail.NewEMLSource(appLogger.With("source", "eml"), dir, svcs.Screener)
	} else {
		source = mail.NewJSONSource(appLogger.With("source", "json"), c.String("json"))
	}

	ctx := utils.WithCustomContext(context.Background(), &utils.CustomContext{AppSource: AppSource})
	opts := runOptions(c)

	if c.Bool("records") {
		messages, err := source.FetchMessages(ctx, svcs.Policy.MaxEmails)
		if err != nil {
			return err
		}
		return printJSON(svcs.Engine(svcs.Capabilities).ProcessBatch(ctx, messages, opts))
	}

	report, err := runner.NewTriageRunner(appLogger.With("service", "runner"), runner.Config{
		Policy:     svcs.Policy,
		Workers:    cfg.AppConfig.Workers,
		Stages:     svcs.Stages,
		Reports:    svcs.Reports,
		Source:     source,
		DraftStore: svcs.DraftStore,
	}).RunSource(ctx, svcs.Capabilities, opts)
	if err != nil {
		return err
	}
	return printJSON(report)
}

func runOptions(c *cli.Context) models.RunOptions {
	opts := models.DefaultRunOptions()
	opts.OnlyUrgent = c.Bool("only-urgent")
	opts.DraftReplies = !c.Bool("no-drafts")
	opts.ForceReply = c.Bool("force-reply")
	opts.IncludeFollowUps = !c.Bool("no-follow-ups")
	opts.RequireApproval = !c.Bool("no-approval")
	opts.LatestOnly = c.Bool("latest-only")
	opts.SenderFilter = c.String("sender")
	return opts
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.InitConfig()
	if err != nil {
		return nil, errors.Wrap(err, "config initialization failed")
	}
	if cfg == nil {
		return nil, errors.New("config is empty")
	}
	return cfg, nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode output")
	}
	fmt.Println(string(out))
	return nil
}
