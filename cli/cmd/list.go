package cmd

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/calder-io/sift/archive"
	"github.com/calder-io/sift/cli/render"
)

// ListCommand returns the list command.
func ListCommand() *cli.Command {
	return &cli.Command{
		Name:   "list",
		Usage:  "List archived sessions",
		Flags:  StorageFlags(),
		Action: listAction,
	}
}

func listAction(c *cli.Context) error {
	store, err := requireStore(c.Context, c)
	if err != nil {
		return err
	}

	ids, err := archive.ListSessions(c.Context, store)
	if err != nil {
		return err
	}

	render.SessionList(os.Stdout, ids)
	return nil
}
