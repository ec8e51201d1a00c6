// Package cmd provides CLI commands for the sift binary.
package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/calder-io/sift/archive"
	"github.com/calder-io/sift/cli/config"
)

// ConfigFlag points at an optional sift.yaml config file.
// Flag values always win over config file values.
var ConfigFlag = &cli.StringFlag{
	Name:    "config",
	Aliases: []string{"c"},
	Usage:   "Path to sift.yaml config file",
}

// TUIFlag enables Bubble Tea interactive mode.
// Only valid for select read-only commands (inspect, stats).
var TUIFlag = &cli.BoolFlag{
	Name:  "tui",
	Usage: "Enable interactive TUI mode (inspect, stats only)",
}

// StorageFlags returns the shared archive storage flags.
// Every command that touches the archive (extract, inspect, list, stats)
// carries the same set.
func StorageFlags() []cli.Flag {
	return []cli.Flag{
		ConfigFlag,
		&cli.StringFlag{
			Name:  "storage-backend",
			Usage: "Archive backend: dir or s3",
		},
		&cli.StringFlag{
			Name:  "storage-path",
			Usage: "Archive path (dir: directory, s3: bucket/prefix)",
		},
		&cli.StringFlag{
			Name:  "s3-region",
			Usage: "AWS region for S3 backend (optional, uses default chain)",
		},
		&cli.StringFlag{
			Name:  "s3-endpoint",
			Usage: "Custom S3 endpoint (MinIO, LocalStack)",
		},
		&cli.BoolFlag{
			Name:  "s3-path-style",
			Usage: "Use path-style S3 addressing (required for most custom endpoints)",
		},
	}
}

// storageChoice holds resolved archive storage configuration.
type storageChoice struct {
	backend     string // "dir" or "s3"
	path        string // dir: directory, s3: bucket/prefix
	region      string
	endpoint    string
	s3PathStyle bool
}

// loadConfig loads the config file named by --config, or returns an empty
// config when the flag is unset.
func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.String("config")
	if path == "" {
		return &config.Config{}, nil
	}
	return config.Load(path)
}

// resolveStorage merges storage flags over config file defaults.
func resolveStorage(c *cli.Context, cfg *config.Config) storageChoice {
	choice := storageChoice{
		backend:     cfg.Storage.Backend,
		path:        cfg.Storage.Path,
		region:      cfg.Storage.Region,
		endpoint:    cfg.Storage.Endpoint,
		s3PathStyle: cfg.Storage.S3PathStyle,
	}
	if v := c.String("storage-backend"); v != "" {
		choice.backend = v
	}
	if v := c.String("storage-path"); v != "" {
		choice.path = v
	}
	if v := c.String("s3-region"); v != "" {
		choice.region = v
	}
	if v := c.String("s3-endpoint"); v != "" {
		choice.endpoint = v
	}
	if c.IsSet("s3-path-style") {
		choice.s3PathStyle = c.Bool("s3-path-style")
	}
	if choice.backend == "" {
		choice.backend = "dir"
	}
	return choice
}

// buildStore creates an archive store from a resolved storage choice.
// Returns nil without error when no path is configured: archiving is
// opt-in and extraction still works without it.
func buildStore(ctx context.Context, choice storageChoice) (archive.Store, error) {
	if choice.path == "" {
		return nil, nil
	}

	switch choice.backend {
	case "dir", "":
		store, err := archive.NewDirStore(choice.path)
		if err != nil {
			return nil, err
		}
		return store, nil

	case "s3":
		bucket, prefix := archive.ParseS3Path(choice.path)
		s3cfg := archive.S3Config{
			Bucket:       bucket,
			Prefix:       prefix,
			Region:       choice.region,
			Endpoint:     choice.endpoint,
			UsePathStyle: choice.s3PathStyle,
		}
		store, err := archive.NewS3Store(ctx, s3cfg)
		if err != nil {
			return nil, err
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unknown storage-backend: %s (must be dir or s3)", choice.backend)
	}
}

// requireStore builds a store and errors when none is configured.
// Read-only commands cannot operate without an archive location.
func requireStore(ctx context.Context, c *cli.Context) (archive.Store, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	store, err := buildStore(ctx, resolveStorage(c, cfg))
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, fmt.Errorf("no archive configured: set --storage-path or storage.path in sift.yaml")
	}
	return store, nil
}
