package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"vtechcal/internal/config"
	"vtechcal/internal/convert"
	appLog "vtechcal/internal/log"
	"vtechcal/internal/web"
)

// Version is set via -ldflags at build time.
var Version = "dev"

func main() {
	app := &cli.App{
		Name:    "vtechcal",
		Usage:   "Convert extracted Vilnius Tech timetable text to an ICS calendar",
		Version: Version,
		Commands: []*cli.Command{
			convertCmd(),
			serveCmd(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func convertCmd() *cli.Command {
	return &cli.Command{
		Name:  "convert",
		Usage: "Convert a text file of extracted timetable content to an ICS file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Required: true, Usage: "Input text file"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output ICS file (default: <input>_schedule.ics)"},
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "Path to config file"},
			&cli.BoolFlag{Name: "verbose", Usage: "Enable debug logging"},
		},
		Action: func(c *cli.Context) error {
			if c.Bool("verbose") {
				appLog.SetLevel(appLog.LevelDebug)
			}

			cfg, err := loadConfig(c.String("config"))
			if err != nil {
				return err
			}

			input := c.String("input")
			data, err := os.ReadFile(input)
			if err != nil {
				return err
			}

			ics, err := convert.Convert(string(data), cfg)
			if err != nil {
				return err
			}

			output := c.String("output")
			if output == "" {
				output = defaultOutputPath(input)
			}
			if err := os.WriteFile(output, []byte(ics), 0o644); err != nil {
				return err
			}

			fmt.Printf("Calendar saved as: %s\n", output)
			return nil
		},
	}
}

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the convert API over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "Path to config file"},
			&cli.StringFlag{Name: "listen", Aliases: []string{"l"}, Usage: "HTTP listen address (overrides config if set)"},
			&cli.BoolFlag{Name: "verbose", Usage: "Enable debug logging"},
		},
		Action: func(c *cli.Context) error {
			if c.Bool("verbose") {
				appLog.SetLevel(appLog.LevelDebug)
			}

			cfg, err := loadConfig(c.String("config"))
			if err != nil {
				return err
			}
			if l := c.String("listen"); l != "" {
				cfg.Listen = l
			}

			appLog.Info("vtechcal starting",
				"version", Version,
				"listen", cfg.Listen,
				"timezone", cfg.Timezone,
				"calendar_name", cfg.CalendarName,
			)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := &http.Server{
				Addr:    cfg.Listen,
				Handler: web.NewServer(cfg).Handler(),
			}

			go func() {
				<-ctx.Done()
				appLog.Info("signal received, shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			appLog.Info("starting HTTP server", "listen", "http://"+cfg.Listen)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}

			appLog.Info("vtechcal exiting")
			return nil
		},
	}
}

// loadConfig returns the in-memory defaults when no path is given; a given
// path goes through config.Load (which creates the file on first run).
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.DefaultConfig(), nil
	}
	return config.Load(path)
}

func defaultOutputPath(input string) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + "_schedule.ics"
}
