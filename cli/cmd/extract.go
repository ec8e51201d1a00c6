package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/calder-io/sift/adapter"
	redisadapter "github.com/calder-io/sift/adapter/redis"
	"github.com/calder-io/sift/adapter/webhook"
	"github.com/calder-io/sift/archive"
	"github.com/calder-io/sift/artifact"
	"github.com/calder-io/sift/cli/config"
	"github.com/calder-io/sift/cli/render"
	"github.com/calder-io/sift/log"
	"github.com/calder-io/sift/metrics"
	"github.com/calder-io/sift/runtime"
	"github.com/calder-io/sift/types"
)

// Exit codes for extract.
const (
	exitSuccess   = 0
	exitTransport = 1
)

// ExtractCommand returns the extract command.
// This is the only command that consumes a stream.
func ExtractCommand() *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "input",
			Aliases: []string{"i"},
			Usage:   "Stream input file (use - for stdin)",
			Value:   "-",
		},
		&cli.StringFlag{
			Name:  "session-id",
			Usage: "Session ID (generated when omitted)",
		},
		&cli.StringFlag{
			Name:  "mode",
			Usage: "Processing mode: artifact or plain",
		},
		&cli.BoolFlag{
			Name:  "plain",
			Usage: "Shorthand for --mode plain",
		},
		&cli.BoolFlag{
			Name:  "pin-panel",
			Usage: "Keep the artifact panel visible even while empty",
		},
		&cli.BoolFlag{
			Name:  "quiet",
			Usage: "Suppress transcript and artifact output",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Enable debug logging to stderr",
		},
		// Adapter flags
		&cli.StringFlag{
			Name:  "adapter",
			Usage: "Completion adapter: webhook or redis",
		},
		&cli.StringFlag{
			Name:  "adapter-url",
			Usage: "Adapter target URL (webhook: http(s) endpoint, redis: redis:// URL)",
		},
		&cli.StringFlag{
			Name:  "adapter-channel",
			Usage: "Redis pub/sub channel (redis adapter only)",
		},
	}
	flags = append(flags, StorageFlags()...)

	return &cli.Command{
		Name:   "extract",
		Usage:  "Process a chat stream and extract code artifacts",
		Flags:  flags,
		Action: extractAction,
	}
}

// adapterChoice holds resolved completion adapter configuration.
type adapterChoice struct {
	kind    string // "webhook" or "redis"
	url     string
	channel string
	headers map[string]string
	timeout time.Duration
	retries *int
}

func extractAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("config: %v", err), exitTransport)
	}

	mode, err := resolveMode(c, cfg)
	if err != nil {
		return cli.Exit(err.Error(), exitTransport)
	}

	sessionID := c.String("session-id")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	meta := types.SessionMeta{
		SessionID: sessionID,
		Mode:      mode,
		StartedAt: time.Now().UTC(),
	}

	input, closeInput, err := openInput(c.String("input"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("input: %v", err), exitTransport)
	}
	defer closeInput()

	logger := log.Nop()
	if c.Bool("verbose") {
		logger = log.NewLogger(meta)
	}
	collector := metrics.NewCollector(meta.SessionID, string(meta.Mode))

	store := artifact.NewStore()
	store.SetPinned(c.Bool("pin-panel"))

	processor := runtime.NewProcessor(meta, input, store, logger, collector)

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		cancel()
	}()

	result, runErr := processor.Run(ctx)
	duration := time.Since(meta.StartedAt)

	if !c.Bool("quiet") {
		render.Result(os.Stdout, result)
	}

	// Archive and notify even for failed sessions; partial transcripts
	// are still worth keeping.
	archiveStore, storeErr := buildStore(ctx, resolveStorage(c, cfg))
	if storeErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: archive unavailable: %v\n", storeErr)
	} else if archiveStore != nil {
		if err := archive.WriteSession(context.WithoutCancel(ctx), archiveStore, result, collector.Snapshot()); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: archive write failed: %v\n", err)
		}
	}

	if err := publishCompletion(context.WithoutCancel(ctx), resolveAdapter(c, cfg), result, duration); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: completion publish failed: %v\n", err)
	}

	if runErr != nil {
		return cli.Exit(fmt.Sprintf("stream failed: %v", runErr), exitTransport)
	}
	return cli.Exit("", exitSuccess)
}

// resolveMode merges the --plain and --mode flags over the config file
// default.
func resolveMode(c *cli.Context, cfg *config.Config) (types.Mode, error) {
	name := cfg.Mode
	if v := c.String("mode"); v != "" {
		name = v
	}
	if c.Bool("plain") {
		name = string(types.ModePlain)
	}
	switch name {
	case "", string(types.ModeArtifact):
		return types.ModeArtifact, nil
	case string(types.ModePlain):
		return types.ModePlain, nil
	default:
		return "", fmt.Errorf("invalid mode: %s (must be artifact or plain)", name)
	}
}

// openInput opens the stream source. "-" selects stdin.
func openInput(path string) (io.Reader, func(), error) {
	if path == "-" || path == "" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

// resolveAdapter merges adapter flags over config file defaults.
func resolveAdapter(c *cli.Context, cfg *config.Config) adapterChoice {
	choice := adapterChoice{
		kind:    cfg.Adapter.Type,
		url:     cfg.Adapter.URL,
		channel: cfg.Adapter.Channel,
		headers: cfg.Adapter.Headers,
		timeout: cfg.Adapter.Timeout.Duration,
		retries: cfg.Adapter.Retries,
	}
	if v := c.String("adapter"); v != "" {
		choice.kind = v
	}
	if v := c.String("adapter-url"); v != "" {
		choice.url = v
	}
	if v := c.String("adapter-channel"); v != "" {
		choice.channel = v
	}
	return choice
}

// publishCompletion builds the configured adapter and publishes the
// session completion event. A nil adapter kind is a no-op.
func publishCompletion(ctx context.Context, choice adapterChoice, result *runtime.SessionResult, duration time.Duration) error {
	if choice.kind == "" {
		return nil
	}

	a, err := buildAdapter(choice)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	event := &adapter.SessionCompletedEvent{
		EventType:       adapter.EventTypeSessionCompleted,
		SessionID:       result.Meta.SessionID,
		Mode:            string(result.Meta.Mode),
		Outcome:         string(result.Outcome),
		ArtifactCount:   len(result.Artifacts),
		TranscriptBytes: int64(len(result.Transcript)),
		DurationMs:      duration.Milliseconds(),
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
	}
	return a.Publish(ctx, event)
}

func buildAdapter(choice adapterChoice) (adapter.Adapter, error) {
	switch choice.kind {
	case "webhook":
		cfg := webhook.Config{
			URL:     choice.url,
			Headers: choice.headers,
			Timeout: choice.timeout,
			Retries: webhook.DefaultRetries,
		}
		if choice.retries != nil {
			cfg.Retries = *choice.retries
		}
		return webhook.New(cfg)

	case "redis":
		cfg := redisadapter.Config{
			URL:     choice.url,
			Channel: choice.channel,
			Timeout: choice.timeout,
			Retries: redisadapter.DefaultRetries,
		}
		if choice.retries != nil {
			cfg.Retries = *choice.retries
		}
		return redisadapter.New(cfg)

	default:
		return nil, fmt.Errorf("unknown adapter: %s (must be webhook or redis)", choice.kind)
	}
}
