package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/lmittmann/tint"

	"roomie/internal/logging"
	"roomie/internal/model"
	"roomie/internal/randx"
	"roomie/internal/service"
)

const appName = "roomie-extract"
const appDesc = "Runs the listing extractor and the chat reply selector offline, without the simulated latency. Text comes from the arguments or, when none are given, from stdin."

type cli struct {
	Seed      uint64 `env:"RANDOM_SEED" help:"${env} - Seed for reply selection, 0 seeds from the clock" default:"0"`
	Catalogue string `env:"CHAT_CATEGORIES_PATH" help:"${env} - YAML reply catalogue replacing the built-in one"`
	Compact   bool   `help:"Print JSON on a single line"`
	LogLevel  string `env:"LOG_LEVEL" help:"${env} - Log level written to stderr" default:"warn" enum:"debug,info,warn,error"`

	Listing listingCmd `cmd:"" help:"Extract listing fields from a free-text description"`
	Chat    chatCmd    `cmd:"" help:"Pick a canned reply for a chat message"`
}

type listingCmd struct {
	Text []string `arg:"" optional:"" help:"Listing description"`
}

type chatCmd struct {
	Text []string `arg:"" optional:"" help:"Chat message"`
}

type chatOutput struct {
	Response  string `json:"response"`
	Category  string `json:"category,omitempty"`
	FollowUp  bool   `json:"followUp"`
	Timestamp string `json:"timestamp"`
}

// env is what the subcommands need besides their own flags
type env struct {
	cli    *cli
	in     io.Reader
	out    io.Writer
	logger *slog.Logger
}

func (c *listingCmd) Run(e *env) error {
	text, err := e.input(c.Text)
	if err != nil {
		return err
	}

	extractor := service.NewListingExtractor(service.NoDelay{}, 0, nil, e.logger)
	draft, err := extractor.Extract(context.Background(), text)
	if err != nil {
		return err
	}
	return e.print(model.ParseListingResponse{Success: true, Listing: draft})
}

func (c *chatCmd) Run(e *env) error {
	text, err := e.input(c.Text)
	if err != nil {
		return err
	}

	catalogue, err := service.LoadCatalogue(e.cli.Catalogue)
	if err != nil {
		return err
	}
	selector, err := service.NewResponseSelector(catalogue, randx.NewSeeded(e.cli.Seed), service.NoDelay{},
		service.WithDelayRange(0, 0),
		service.WithSelectorLogger(e.logger),
	)
	if err != nil {
		return err
	}

	reply, err := selector.Reply(context.Background(), text, nil)
	if err != nil {
		return err
	}
	return e.print(chatOutput{
		Response:  reply.Text,
		Category:  reply.Category,
		FollowUp:  reply.FollowUp,
		Timestamp: model.FormatTimestamp(reply.Timestamp),
	})
}

func (e *env) input(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	raw, err := io.ReadAll(e.in)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

func (e *env) print(v any) error {
	enc := json.NewEncoder(e.out)
	if !e.cli.Compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var c cli
	parser, err := kong.New(&c,
		kong.Name(appName),
		kong.Description(appDesc),
		kong.Writers(stdout, stderr),
	)
	if err != nil {
		return err
	}

	ctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	logger := slog.New(tint.NewHandler(stderr, &tint.Options{
		Level:   logging.ParseLevel(c.LogLevel),
		NoColor: true,
	}))

	return ctx.Run(&env{cli: &c, in: stdin, out: stdout, logger: logger})
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(1)
	}
}
