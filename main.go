package main

import (
	"context"
	"corp-bot/api"
	"corp-bot/bot"
	"corp-bot/config"
	"corp-bot/handlers"
	"corp-bot/model"
	"corp-bot/query"
	"corp-bot/subscription"
	"corp-bot/tasks"
	"corp-bot/tasks/activity"
	"corp-bot/utils/database"
	"corp-bot/whitelist"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

var configFile string

// components are the pieces shared by the bot and the one-shot commands.
type components struct {
	cfg       *model.Config
	memberDB  *sqlx.DB
	stateDB   *sqlx.DB
	members   *database.MemberStore
	roster    *api.RosterClient
	esi       *api.ESIClient
	killboard *api.KillboardClient
	paster    tasks.Paster
	whitelist *whitelist.Store
	auditor   *activity.Auditor
}

func setup(ctx context.Context) (*components, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	memberDB, err := database.InitMemberDB(cfg.MemberDBPath)
	if err != nil {
		return nil, fmt.Errorf("error opening member database: %w", err)
	}
	stateDB, err := database.InitStateDB(cfg.StateDBPath)
	if err != nil {
		memberDB.Close()
		return nil, fmt.Errorf("error opening state database: %w", err)
	}

	client := api.NewClient(cfg.HTTP.Timeout, cfg.HTTP.Retries)
	c := &components{
		cfg:       cfg,
		memberDB:  memberDB,
		stateDB:   stateDB,
		members:   database.NewMemberStore(memberDB),
		roster:    api.NewRosterClient(client, cfg.URLRoot, cfg.APISecret),
		esi:       api.NewESIClient(client, cfg.Endpoints.ESI),
		killboard: api.NewKillboardClient(client, cfg.Endpoints.Killboard, cfg.Killboard.UserAgent),
		paster:    tasks.NewPaster(api.NewPasteClient(client, cfg.Pastebin.URL, cfg.Pastebin.Key)),
	}
	c.whitelist = whitelist.NewStore(whitelist.NewSQLRepository(stateDB), c.members, cfg.ActivityTimeDays)
	seeded, err := c.whitelist.Seed(ctx, cfg.ActivityWhitelist)
	if err != nil {
		c.Close()
		return nil, err
	}
	if seeded > 0 {
		log.Printf("Seeded activity whitelist with %d entries from config", seeded)
	}
	c.auditor = activity.NewAuditor(c.members, c.esi, c.killboard, c.whitelist, cfg.Corporation.ID, cfg.ActivityTimeDays)
	return c, nil
}

func (c *components) Close() {
	if err := c.stateDB.Close(); err != nil {
		log.Printf("Error closing state database: %v", err)
	}
	if err := c.memberDB.Close(); err != nil {
		log.Printf("Error closing member database: %v", err)
	}
}

func registerJobs(b *bot.Bot, c *components) error {
	cfg := c.cfg
	jobs := []struct {
		name      string
		interval  time.Duration
		channelID string
		run       bot.JobFunc
	}{
		{"apps", cfg.Intervals.Apps, cfg.Channels.Recruitment, tasks.CheckApps(c.roster)},
		{"sync", cfg.Intervals.Sync, cfg.Channels.Recruitment, tasks.SyncRoster(c.roster)},
		{"killboard", cfg.Intervals.Killboard, cfg.Channels.Activity, tasks.CheckActivity(c.auditor, c.paster)},
	}
	for _, j := range jobs {
		if j.interval <= 0 {
			log.Printf("Job %s is disabled", j.name)
			continue
		}
		if err := b.Scheduler.Register(j.name, j.interval, j.channelID, j.run); err != nil {
			return err
		}
	}
	return nil
}

func runBot(cmd *cobra.Command, args []string) error {
	c, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer c.Close()

	b, err := bot.New(c.cfg)
	if err != nil {
		return fmt.Errorf("error creating bot: %w", err)
	}
	defer b.Close()

	b.Services = bot.Services{
		Roster:        c.roster,
		Whitelist:     c.whitelist,
		Subscriptions: subscription.NewManager(b.Session, c.cfg.GuildID, c.cfg.SubscribableRoles),
		Query:         query.NewService(c.members, c.esi, c.killboard, c.cfg.Corporation),
	}
	if err := registerJobs(b, c); err != nil {
		return err
	}
	handlers.Register(b)

	return b.Run()
}

// runOnce returns a command that runs a job once and prints its output.
func runOnce(job func(c *components) bot.JobFunc, emptyMessage string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Close()

		result := job(c)(cmd.Context())
		for _, message := range tasks.Describe(result, emptyMessage) {
			fmt.Fprintln(cmd.OutOrStdout(), message)
		}
		if result.Warning != "" {
			fmt.Fprintln(cmd.ErrOrStderr(), "Warning: "+result.Warning)
		}
		if result.Kind == model.ResultFailed {
			return result.Err
		}
		return nil
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "corp-bot",
		Short:         "Corporation recruitment and activity bot",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runBot,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to the config file")

	root.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Connect to discord and run the scheduler (default)",
			RunE:  runBot,
		},
		&cobra.Command{
			Use:   "sync",
			Short: "Sync the roster once and print the result",
			RunE: runOnce(func(c *components) bot.JobFunc {
				return tasks.SyncRoster(c.roster)
			}, "No changes to the roster."),
		},
		&cobra.Command{
			Use:   "apps",
			Short: "Check for new applications once and print them",
			RunE: runOnce(func(c *components) bot.JobFunc {
				return tasks.CheckApps(c.roster)
			}, "No new applications."),
		},
		&cobra.Command{
			Use:   "audit",
			Short: "Run one activity audit cycle and print the report",
			Long:  "Run one activity audit cycle and print the report. This counts as a cycle for the whitelist.",
			RunE: runOnce(func(c *components) bot.JobFunc {
				return tasks.CheckActivity(c.auditor, c.paster)
			}, "Nothing to report."),
		},
	)
	return root
}

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
