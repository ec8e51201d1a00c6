package cmd

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/calder-io/sift/archive"
	"github.com/calder-io/sift/cli/render"
	"github.com/calder-io/sift/cli/tui"
)

// InspectCommand returns the inspect command.
// Inspect renders a deep view of one archived session.
func InspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Inspect an archived session",
		ArgsUsage: "<session-id>",
		Flags:     append([]cli.Flag{TUIFlag}, StorageFlags()...),
		Action:    inspectAction,
	}
}

func inspectAction(c *cli.Context) error {
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

	if c.Bool("tui") {
		return tui.RunInspect(session)
	}

	render.Session(os.Stdout, session)
	return nil
}
