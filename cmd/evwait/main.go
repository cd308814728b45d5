package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v2"
)

func main() {
	app := newApp(os.Stdout)
	// exit coders terminate the process on their own, usage errors do not
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "evwait"
	app.Usage = "wait for events and assert on them"
	app.Writer = out
	app.Commands = []*cli.Command{
		{
			Name:   "fs",
			Usage:  "wait for file system events on a directory",
			Action: waitFS,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "dir",
					Required: true,
					Usage:    "directory to watch",
				},
				&cli.StringFlag{
					Name:  "op",
					Value: "create",
					Usage: "operation to wait for (create, write, remove, rename, chmod)",
				},
				&cli.IntFlag{
					Name:  "count",
					Value: 1,
					Usage: "number of events to wait for, 0 asserts nothing happens",
				},
				&cli.StringFlag{
					Name:  "match",
					Usage: "regexp the path of the last awaited event must match",
				},
			},
		},
		{
			Name:   "ws",
			Usage:  "wait for frames on a websocket endpoint",
			Action: waitWS,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "url",
					Required: true,
					Usage:    "websocket endpoint writing {\"channel\", \"args\"} frames",
				},
				&cli.StringFlag{
					Name:     "channel",
					Required: true,
				},
				&cli.IntFlag{
					Name:  "count",
					Value: 1,
				},
			},
		},
		{
			Name:   "verbs",
			Usage:  "list the assertion verbs",
			Action: listVerbs,
		},
	}
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Usage:   "JSON or YAML configuration file",
			EnvVars: []string{"EVASSERT_CONFIG"},
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "time to wait for the events (overrides the configuration)",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "log level (overrides the configuration)",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "text or json (overrides the configuration)",
		},
		&cli.StringFlag{
			Name:  "metrics-addr",
			Usage: "address serving prometheus metrics on /metrics",
		},
	}
	return app
}

func errorf(m string, args ...interface{}) error {
	return cli.Exit(fmt.Sprintf(m, args...), 1)
}

func printElapsed(c *cli.Context, n int, channel string, started time.Time) {
	fmt.Fprintf(c.App.Writer, "saw %d event(s) on '%s' after %v\n", n, channel, time.Since(started).Round(time.Millisecond))
}
