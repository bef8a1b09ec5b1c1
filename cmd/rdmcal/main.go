package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v2"

	"rdmcal/internal/calendar"
	"rdmcal/internal/config"
	"rdmcal/internal/events"
	"rdmcal/internal/filter"
	"rdmcal/internal/ics"
	appLog "rdmcal/internal/log"
	"rdmcal/internal/metrics"
	"rdmcal/internal/model"
	"rdmcal/internal/records"
	"rdmcal/internal/view"
	"rdmcal/internal/web"
)

const version = "0.1.0"

func main() {
	// Load .env first, but don't error if it doesn't exist.
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		appLog.Error("rdmcal failed", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	var conf *config.Config

	return &cli.App{
		Name:    "rdmcal",
		Usage:   "Browse, filter and export the conference calendar",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "rdmcal.yaml", Usage: "Path to config file", EnvVars: []string{"RDMCAL_CONFIG"}},
			&cli.StringFlag{Name: "data", Usage: "Directory of event YAML files (overrides config)"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error (overrides config)"},
		},
		Before: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if c.IsSet("data") {
				cfg.DataDir = c.String("data")
			}
			if c.IsSet("log-level") {
				cfg.LogLevel = c.String("log-level")
			}
			appLog.SetLevel(appLog.ParseLevel(cfg.LogLevel))
			appLog.Debug("effective config",
				"data_dir", cfg.DataDir,
				"listen", cfg.Listen,
				"timezone", cfg.Timezone,
				"week_start", cfg.WeekStart,
				"refresh", cfg.RefreshCron,
			)
			conf = cfg
			return nil
		},
		Commands: []*cli.Command{
			exportCommand(&conf),
			gridCommand(&conf),
			tagsCommand(&conf),
			serveCommand(&conf),
		},
	}
}

// loadConfig writes a default config file on first run only for `serve` or
// an explicit --config; other commands read it if present.
func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.String("config")
	if c.IsSet("config") || c.Args().First() == "serve" {
		return config.Load(path)
	}
	return config.Read(path)
}

var tagsFlag = &cli.StringFlag{
	Name:  "tags",
	Usage: "Comma-separated active tags; omit for all, pass an empty value for none",
}

func exportCommand(conf **config.Config) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write the visible events as an iCalendar file",
		Flags: []cli.Flag{
			tagsFlag,
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output path, - for stdout (default from config)"},
			&cli.StringFlag{Name: "previous", Usage: "Earlier export to compare UIDs against"},
		},
		Action: func(c *cli.Context) error {
			cfg := *conf
			cat, err := loadCatalog(cfg.DataDir)
			if err != nil {
				return err
			}
			f := filterFromFlag(c, cat.Tags)

			body, err := ics.Export(cat.Events, f.Predicate(), ics.ExportOptions{})
			if errors.Is(err, ics.ErrNoEvents) {
				return cli.Exit(ics.NoEventsMessage, 2)
			}
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}

			if prev := c.String("previous"); prev != "" {
				if err := reportDiff(prev, body); err != nil {
					return err
				}
			}

			out := cfg.Output
			if c.IsSet("output") {
				out = c.String("output")
			}
			if out == "-" {
				_, err := os.Stdout.Write(body)
				return err
			}
			if err := config.WriteFileAtomic(out, body, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			appLog.Info("calendar written", "path", out, "bytes", len(body))
			return nil
		},
	}
}

func reportDiff(prevPath string, body []byte) error {
	prev, err := os.ReadFile(prevPath)
	if err != nil {
		return fmt.Errorf("read previous export: %w", err)
	}
	d, err := ics.CompareExports(prev, body)
	if err != nil {
		return fmt.Errorf("compare exports: %w", err)
	}
	appLog.Info("export compared with previous",
		"previous", prevPath,
		"kept", len(d.Kept),
		"added", len(d.Added),
		"removed", len(d.Removed),
	)
	for _, uid := range d.Added {
		appLog.Debug("uid added", "uid", uid)
	}
	for _, uid := range d.Removed {
		appLog.Debug("uid removed", "uid", uid)
	}
	return nil
}

func gridCommand(conf **config.Config) *cli.Command {
	return &cli.Command{
		Name:  "grid",
		Usage: "Print a month grid with the events of each day",
		Flags: []cli.Flag{
			tagsFlag,
			&cli.StringFlag{Name: "month", Usage: "Month to show as YYYY-MM (default: current month)"},
			&cli.BoolFlag{Name: "detail", Usage: "List the events of every populated day"},
		},
		Action: func(c *cli.Context) error {
			cfg := *conf
			cat, err := loadCatalog(cfg.DataDir)
			if err != nil {
				return err
			}

			today := model.DateOf(time.Now().In(cfg.Location()))
			st := view.New(cat, today)
			st.Filter = filterFromFlag(c, cat.Tags)
			if m := c.String("month"); m != "" {
				d, err := model.ParseDate(m + "-01")
				if err != nil {
					return fmt.Errorf("invalid --month %q: want YYYY-MM", m)
				}
				st = st.Update(view.GoTo{Year: d.Year, Month: d.Month})
			}

			g := st.Grid(cat.Events, calendar.ProjectOptions{
				WeekStart: cfg.FirstWeekday(),
				Today:     today,
			})
			return renderGrid(c.App.Writer, g, c.Bool("detail"))
		},
	}
}

func tagsCommand(conf **config.Config) *cli.Command {
	return &cli.Command{
		Name:  "tags",
		Usage: "List the tag vocabulary with marker hues and event counts",
		Flags: []cli.Flag{tagsFlag},
		Action: func(c *cli.Context) error {
			cat, err := loadCatalog((*conf).DataDir)
			if err != nil {
				return err
			}
			return renderTags(c.App.Writer, filterFromFlag(c, cat.Tags), cat.Events)
		},
	}
}

func serveCommand(conf **config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the calendar API and reload event files on a schedule",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "listen", Usage: "HTTP listen address (overrides config)"},
		},
		Action: func(c *cli.Context) error {
			cfg := *conf
			if c.IsSet("listen") {
				cfg.Listen = c.String("listen")
			}

			cat, err := loadCatalog(cfg.DataDir)
			if err != nil {
				return err
			}
			srv := web.NewServer(cfg, cat)

			// Root context with cancellation on SIGINT/SIGTERM.
			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			sched := cron.New()
			if _, err := sched.AddFunc(cfg.RefreshCron, func() {
				fresh, err := loadCatalog(cfg.DataDir)
				if err != nil {
					appLog.Error("scheduled reload failed; keeping previous catalog", err, "data_dir", cfg.DataDir)
					return
				}
				srv.SetCatalog(fresh)
			}); err != nil {
				return fmt.Errorf("schedule reload %q: %w", cfg.RefreshCron, err)
			}
			sched.Start()
			defer func() {
				<-sched.Stop().Done()
			}()

			appLog.Info("rdmcal serving", "version", version, "events", len(cat.Events), "refresh", cfg.RefreshCron)
			err = srv.ListenAndServe(ctx)
			appLog.Info("rdmcal exiting")
			return err
		},
	}
}

// loadCatalog reads and normalizes the data directory. Bad files and records
// are logged and skipped; only an unreadable directory is an error.
func loadCatalog(dir string) (events.Catalog, error) {
	recs, fileErrs, err := records.LoadDir(dir)
	if err != nil {
		return events.Catalog{}, err
	}
	cat, recErrs := events.Normalize(recs)
	metrics.CatalogLoaded(len(cat.Events), len(cat.Tags), len(fileErrs)+len(recErrs))
	return cat, nil
}

func filterFromFlag(c *cli.Context, vocabulary []string) *filter.State {
	if !c.IsSet("tags") {
		return filter.New(vocabulary)
	}
	selected := make([]string, 0)
	for _, t := range strings.Split(c.String("tags"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			selected = append(selected, t)
		}
	}
	return filter.FromQuery(vocabulary, selected)
}
