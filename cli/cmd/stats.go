package cmd

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/calder-io/sift/archive"
	"github.com/calder-io/sift/cli/render"
	"github.com/calder-io/sift/cli/tui"
)

// StatsCommand returns the stats command.
// Stats renders the metrics snapshot recorded for an archived session.
func StatsCommand() *cli.Command {
	return &cli.Command{
		Name:      "stats",
		Usage:     "Show session processing metrics",
		ArgsUsage: "<session-id>",
		Flags:     append([]cli.Flag{TUIFlag}, StorageFlags()...),
		Action:    statsAction,
	}
}

func statsAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("session-id required", 1)
	}
	sessionID := c.Args().First()

	store, err := requireStore(c.Context, c)
	if err != nil {
		return err
	}

	session, err := archive.ReadSession(c.Context, store, sessionID)
	if err != nil {
		return fmt.Errorf("cannot read session %s: %w", sessionID, err)
	}
	if !session.HasMetrics {
		return cli.Exit(fmt.Sprintf("session %s has no recorded metrics", sessionID), 1)
	}

	if c.Bool("tui") {
		return tui.RunStats(session.Metrics)
	}

	render.Stats(os.Stdout, session.Metrics)
	return nil
}
