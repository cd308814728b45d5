package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/capatazlib/go-evassert/fswatch"
	"github.com/capatazlib/go-evassert/internal/ev"
	"github.com/capatazlib/go-evassert/internal/verb"
	"github.com/capatazlib/go-evassert/wsemitter"
)

func waitFS(c *cli.Context) error {
	op := c.String("op")
	if err := fswatch.ValidOp(op); err != nil {
		return errorf("invalid --op %q: %s", op, err)
	}
	count := c.Int("count")
	match := c.String("match")
	if count < 0 {
		return errorf("invalid --count %d", count)
	}
	if match != "" && count == 0 {
		return errorf("--match needs a --count greater than zero")
	}

	rt, err := newRuntime(c)
	if err != nil {
		return err
	}
	defer rt.close()

	w, err := fswatch.New(fswatch.WithLogger(rt.logger))
	if err != nil {
		return errorf("failed to start watcher: %s", err)
	}
	defer w.Close()

	if err := w.Add(c.String("dir")); err != nil {
		return errorf("failed to watch %s: %s", c.String("dir"), err)
	}

	started := time.Now()
	if match != "" {
		err = rt.acq.AssertNth(c.Context, w, op, count, ev.ExpectValues("to match", match))
		if err != nil {
			return explain(err)
		}
		printElapsed(c, count, op, started)
		return nil
	}

	rs, err := rt.acq.Acquire(c.Context, w, op, count)
	if err != nil {
		return explain(err)
	}
	printElapsed(c, rs.Len(), op, started)
	fmt.Fprint(c.App.Writer, rs.String())
	return nil
}

func waitWS(c *cli.Context) error {
	count := c.Int("count")
	if count < 0 {
		return errorf("invalid --count %d", count)
	}

	rt, err := newRuntime(c)
	if err != nil {
		return err
	}
	defer rt.close()

	client, err := wsemitter.Dial(c.Context, c.String("url"), wsemitter.WithClientLogger(rt.logger))
	if err != nil {
		return errorf("failed to connect to %s: %s", c.String("url"), err)
	}
	defer client.Close()

	channel := c.String("channel")
	started := time.Now()
	rs, err := rt.acq.Acquire(c.Context, client, channel, count)
	if err != nil {
		return explain(err)
	}
	printElapsed(c, rs.Len(), channel, started)
	fmt.Fprint(c.App.Writer, rs.String())
	return nil
}

func listVerbs(c *cli.Context) error {
	for _, name := range verb.New().Verbs() {
		fmt.Fprintln(c.App.Writer, name)
	}
	return nil
}
