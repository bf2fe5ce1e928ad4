package command

import (
	"context"
	"os"
	"strings"
	"time"

	gcmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-errors"
	"gopkg.in/yaml.v3"
)

// BatchLoader loads render messages from a source.
type BatchLoader func(ctx context.Context) ([]RenderDocument, error)

// BatchCommand wires CLI/Cron execution for batch rendering.
type BatchCommand struct {
	handler    *RenderDocumentHandler
	loader     BatchLoader
	cliConfig  gcmd.CLIConfig
	cronConfig gcmd.HandlerConfig
	limits     BatchLimits
	sleep      func(time.Duration)
}

// BatchOption customizes batch commands.
type BatchOption func(*BatchCommand)

// BatchLimits bounds batch throughput.
type BatchLimits struct {
	MaxDocuments int
	MinInterval  time.Duration
}

// WithBatchCLIConfig overrides CLI configuration.
func WithBatchCLIConfig(cfg gcmd.CLIConfig) BatchOption {
	return func(cmd *BatchCommand) {
		cmd.cliConfig = cfg
	}
}

// WithBatchCronConfig overrides cron configuration.
func WithBatchCronConfig(cfg gcmd.HandlerConfig) BatchOption {
	return func(cmd *BatchCommand) {
		cmd.cronConfig = cfg
	}
}

// WithBatchLimits overrides batch limits.
func WithBatchLimits(limits BatchLimits) BatchOption {
	return func(cmd *BatchCommand) {
		cmd.limits = limits
	}
}

// NewBatchRenderCommand creates a CLI/Cron command that renders every
// document returned by loader.
func NewBatchRenderCommand(handler *RenderDocumentHandler, loader BatchLoader, opts ...BatchOption) *BatchCommand {
	cmd := &BatchCommand{
		handler: handler,
		loader:  loader,
		cliConfig: gcmd.CLIConfig{
			Path:        []string{"pdf-batch"},
			Description: "Render a batch of PDF documents",
			Group:       "pdf",
		},
		cronConfig: gcmd.HandlerConfig{Expression: "0 * * * *"},
		sleep:      time.Sleep,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cmd)
		}
	}
	return cmd
}

// CronHandler renders the loaded batch.
func (c *BatchCommand) CronHandler() func() error {
	return func() error {
		_, err := c.Run(context.Background(), "")
		return err
	}
}

// CronOptions returns cron configuration.
func (c *BatchCommand) CronOptions() gcmd.HandlerConfig {
	if c == nil {
		return gcmd.HandlerConfig{}
	}
	return c.cronConfig
}

// CLIHandler exposes the CLI handler.
func (c *BatchCommand) CLIHandler() any {
	return &batchCLI{cmd: c}
}

// CLIOptions returns CLI configuration.
func (c *BatchCommand) CLIOptions() gcmd.CLIConfig {
	if c == nil {
		return gcmd.CLIConfig{}
	}
	return c.cliConfig
}

// Run renders the batch read from the YAML file at from, or from the loader
// when from is empty, and returns how many documents were rendered.
func (c *BatchCommand) Run(ctx context.Context, from string) (int, error) {
	if c == nil {
		return 0, errors.New("batch command is nil", errors.CategoryInternal).
			WithTextCode("BATCH_CMD_NIL")
	}
	if c.handler == nil {
		return 0, errors.New("render handler is required", errors.CategoryValidation).
			WithTextCode("HANDLER_REQUIRED")
	}

	docs, err := c.loadDocuments(ctx, from)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, msg := range docs {
		if c.limits.MaxDocuments > 0 && count >= c.limits.MaxDocuments {
			break
		}
		msg.Result = nil
		if err := c.handler.Execute(ctx, msg); err != nil {
			return count, err
		}
		count++
		if c.limits.MinInterval > 0 && c.sleep != nil {
			c.sleep(c.limits.MinInterval)
		}
	}
	return count, nil
}

func (c *BatchCommand) loadDocuments(ctx context.Context, from string) ([]RenderDocument, error) {
	if strings.TrimSpace(from) != "" {
		return LoadBatchFile(from)
	}
	if c.loader == nil {
		return nil, errors.New("batch loader not configured", errors.CategoryValidation).
			WithTextCode("LOADER_REQUIRED")
	}
	return c.loader(ctx)
}

type batchCLI struct {
	cmd  *BatchCommand
	From string `kong:"name='from',help='Path to a YAML list of render messages'"`
}

func (c *batchCLI) Run() error {
	if c == nil || c.cmd == nil {
		return errors.New("batch command is required", errors.CategoryInternal).
			WithTextCode("BATCH_CMD_NIL")
	}
	_, err := c.cmd.Run(context.Background(), c.From)
	return err
}

// LoadBatchFile reads a YAML (or JSON) list of render messages.
func LoadBatchFile(path string) ([]RenderDocument, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryExternal, "read batch file failed").
			WithTextCode("BATCH_FILE_READ")
	}

	var docs []RenderDocument
	if err := yaml.Unmarshal(content, &docs); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "batch file invalid").
			WithTextCode("BATCH_FILE_INVALID")
	}
	return docs, nil
}
