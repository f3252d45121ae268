package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"worklens/internal/bootstrap"
	classifydto "worklens/internal/modules/classify/dto"
	trackingout "worklens/internal/modules/tracking/port/out"
	"worklens/internal/platform/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dataDir, profile string

	root := &cobra.Command{
		Use:           "worklens",
		Short:         "Activity capture and productivity scoring engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dataDir, "data-dir", defaultDataDir(), "worklens data directory")
	root.PersistentFlags().StringVar(&profile, "profile", "", "override profile: production|debug")

	root.AddCommand(newRunCmd(&dataDir, &profile))
	root.AddCommand(newLogCmd(&dataDir, &profile))
	root.AddCommand(newRulesCmd(&dataDir, &profile))
	root.AddCommand(newClassifyCmd(&dataDir, &profile))
	root.AddCommand(newProviderCmd(&dataDir, &profile))
	return root
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".worklens"
	}
	return filepath.Join(home, ".worklens")
}

func loadConfig(dataDir, profile string) (config.Config, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return config.Config{}, fmt.Errorf("create data dir: %w", err)
	}
	cfg, err := config.Load(dataDir)
	if err != nil {
		return config.Config{}, err
	}
	if strings.TrimSpace(profile) != "" {
		return cfg.WithProfile(config.Profile(profile))
	}
	return cfg, nil
}

func newRunCmd(dataDir, profile *string) *cobra.Command {
	var projectID, taskID string
	var headless bool

	run := &cobra.Command{
		Use:   "run --project <id> --task <id>",
		Short: "Track a session in the foreground",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(projectID) == "" || strings.TrimSpace(taskID) == "" {
				return fmt.Errorf("--project and --task are required")
			}
			cfg, err := loadConfig(*dataDir, *profile)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			level := hclog.Info
			if headless {
				level = hclog.Debug
			}
			logger := hclog.New(&hclog.LoggerOptions{Name: "worklens", Level: level})
			runtime, err := bootstrap.NewRuntime(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer runtime.Close()

			if err := runtime.TrackingCLI.Start(ctx, projectID, taskID); err != nil {
				return err
			}
			if headless {
				return runHeadless(ctx, cmd, runtime)
			}
			return bootstrap.RunWatch(runtime)
		},
	}
	run.Flags().StringVar(&projectID, "project", "", "project id for the session")
	run.Flags().StringVar(&taskID, "task", "", "task id for the session")
	run.Flags().BoolVar(&headless, "headless", false, "run without the terminal UI, printing events")
	return run
}

// runHeadless streams tracker events as log lines until interrupted.
// Idle decisions cannot be answered here; they stay pending for the
// watch UI.
func runHeadless(ctx context.Context, cmd *cobra.Command, runtime *bootstrap.Runtime) error {
	events, cancel := runtime.Events.Subscribe()
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			switch event.Kind {
			case trackingout.EventRecordCommitted:
				r := event.Record
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s app=%s score=%d band=%s switches=%d\n",
					r.Timestamp.Local().Format("15:04:05"), r.App, r.CompositeScore, r.Classification, r.ContextSwitches)
			case trackingout.EventIdlePrompt:
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "idle detected (%s); decision pending, resolve in the watch UI\n",
					event.IdleDuration.Truncate(time.Second))
			case trackingout.EventMediaAttached:
				r := event.Record
				photo := 0
				if r.Photo != nil {
					photo = 1
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "media attached to %s screenshots=%d photo=%d\n",
					r.ID, len(r.Screenshots), photo)
			case trackingout.EventSessionStopped:
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "session stopped")
				return nil
			}
		}
	}
}

func newLogCmd(dataDir, profile *string) *cobra.Command {
	var limit int
	log := &cobra.Command{
		Use:   "log",
		Short: "Show recent committed observations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*dataDir, *profile)
			if err != nil {
				return err
			}
			app, err := bootstrap.New(cfg)
			if err != nil {
				return err
			}
			defer app.Close()
			records, err := app.TrackingCLI.History(context.Background(), limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no observations")
				return nil
			}
			for _, r := range records {
				idle := ""
				if r.Idle {
					idle = " idle"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s/%s\t%s\t%d\t%s\tswitches=%d ss=%d%s\n",
					r.Timestamp.Local().Format("2006-01-02 15:04"), r.ProjectID, r.TaskID,
					r.App, r.Score, r.Band, r.Switches, r.Screenshots, idle)
			}
			return nil
		},
	}
	log.Flags().IntVar(&limit, "limit", 50, "max records to show")
	return log
}

func newRulesCmd(dataDir, profile *string) *cobra.Command {
	rules := &cobra.Command{Use: "rules", Short: "Manage classification rules"}

	var target, pattern, titlePattern, pathPattern, category string
	var regex, secondaryRegex bool
	var weight float64
	add := &cobra.Command{
		Use:   "add --target app|url --pattern <p> --category <c>",
		Short: "Add a user classification rule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(pattern) == "" || strings.TrimSpace(category) == "" {
				return fmt.Errorf("--pattern and --category are required")
			}
			cfg, err := loadConfig(*dataDir, *profile)
			if err != nil {
				return err
			}
			app, err := bootstrap.New(cfg)
			if err != nil {
				return err
			}
			defer app.Close()
			input := classifydto.AddRuleInput{
				Target:         target,
				Pattern:        pattern,
				Regex:          regex,
				TitlePattern:   titlePattern,
				PathPattern:    pathPattern,
				SecondaryRegex: secondaryRegex,
				Category:       category,
			}
			if cmd.Flags().Changed("weight") {
				input.Weight = &weight
			}
			out, err := app.ClassifyCLI.AddRule(context.Background(), input)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "rule added: %s %s -> %s (weight %.2f)\n",
				out.Target, out.Pattern, out.Category, out.Weight)
			return nil
		},
	}
	add.Flags().StringVar(&target, "target", "app", "rule target: app|url")
	add.Flags().StringVar(&pattern, "pattern", "", "process name, domain, or regex")
	add.Flags().BoolVar(&regex, "regex", false, "treat pattern as a regular expression")
	add.Flags().StringVar(&titlePattern, "title-pattern", "", "window title pattern (app rules)")
	add.Flags().StringVar(&pathPattern, "path-pattern", "", "url path pattern (url rules)")
	add.Flags().BoolVar(&secondaryRegex, "secondary-regex", false, "treat the title/path pattern as a regular expression")
	add.Flags().StringVar(&category, "category", "", "category: productive|neutral|unproductive")
	add.Flags().Float64Var(&weight, "weight", 0, "weight override in [0,1]")
	rules.AddCommand(add)

	rules.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List active classification rules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*dataDir, *profile)
			if err != nil {
				return err
			}
			app, err := bootstrap.New(cfg)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.ClassifyCLI.ListRules(context.Background())
			if err != nil {
				return err
			}
			for _, rule := range out {
				secondary := ""
				if rule.Secondary != "" {
					secondary = " + " + rule.Secondary
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s%s\t%s\t%.2f\t%s\n",
					rule.Target, rule.Pattern, secondary, rule.Category, rule.Weight, rule.Source)
			}
			return nil
		},
	})
	return rules
}

func newClassifyCmd(dataDir, profile *string) *cobra.Command {
	classify := &cobra.Command{Use: "classify", Short: "One-shot classification checks"}

	var title string
	appCmd := &cobra.Command{
		Use:   "app <process>",
		Short: "Classify an application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*dataDir, *profile)
			if err != nil {
				return err
			}
			app, err := bootstrap.New(cfg)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.ClassifyCLI.ClassifyApp(context.Background(), args[0], title)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "category=%s weight=%.2f match=%s confidence=%.2f\n",
				out.Category, out.Weight, out.MatchType, out.Confidence)
			return nil
		},
	}
	appCmd.Flags().StringVar(&title, "title", "", "window title for secondary matching")
	classify.AddCommand(appCmd)

	classify.AddCommand(&cobra.Command{
		Use:   "url <url>",
		Short: "Classify a URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*dataDir, *profile)
			if err != nil {
				return err
			}
			app, err := bootstrap.New(cfg)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.ClassifyCLI.ClassifyURL(context.Background(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "domain=%s path=%s category=%s weight=%.2f match=%s confidence=%.2f\n",
				out.Domain, out.Path, out.Category, out.Weight, out.MatchType, out.Confidence)
			return nil
		},
	})
	return classify
}

func newProviderCmd(dataDir, profile *string) *cobra.Command {
	provider := &cobra.Command{Use: "provider", Short: "Telemetry provider operations"}
	provider.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Handshake with the configured provider binary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*dataDir, *profile)
			if err != nil {
				return err
			}
			logger := hclog.New(&hclog.LoggerOptions{Name: "worklens", Level: hclog.Warn})
			info, err := bootstrap.ProviderCheck(context.Background(), cfg, logger)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "provider=%s version=%s capabilities=%s\n",
				info.Name, info.Version, strings.Join(info.Capabilities, ","))
			return nil
		},
	})
	return provider
}
