// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

// Command vertexai-trace calls Gemini or Vertex AI through the instrumented
// proxies and exports the resulting spans and metrics as configured by the
// OTEL_* environment variables.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/5war00p/openllmetry/internal/version"
)

type (
	// cmd corresponds to the top-level `vertexai-trace` command.
	cmd struct {
		// Version is the sub-command to show the version.
		Version  struct{}    `cmd:"" help:"Show version."`
		Generate cmdGenerate `cmd:"" help:"Generate content for a prompt."`
		Stream   cmdStream   `cmd:"" help:"Stream generated content for a prompt."`
		Predict  cmdPredict  `cmd:"" help:"Predict text with a text generation model."`
		Chat     cmdChat     `cmd:"" help:"Send messages in order to a new chat session."`
	}
	// clientFlags are the flags shared by the commands that call a model.
	clientFlags struct {
		Debug           bool     `help:"Enable debug logging emitted to stderr."`
		Model           string   `help:"Model to call." default:"gemini-2.0-flash" env:"VERTEXAI_TRACE_MODEL"`
		APIKey          string   `name:"api-key" help:"Gemini API key. Defaults to GOOGLE_API_KEY."`
		Project         string   `help:"Google Cloud project. Selects the Vertex AI backend."`
		Location        string   `help:"Google Cloud location of the Vertex AI backend." default:"us-central1"`
		CredentialsFile string   `name:"credentials-file" help:"Service account key file for Vertex AI. Defaults to application default credentials." type:"existingfile"`
		BaseURL         string   `name:"base-url" help:"Override the API endpoint."`
		Temperature     *float32 `help:"Sampling temperature."`
		TopP            *float32 `name:"top-p" help:"Nucleus sampling probability."`
		MaxOutputTokens int32    `name:"max-output-tokens" help:"Maximum number of tokens to generate."`
		NoContent       bool     `name:"no-content" help:"Do not record prompts and completions on spans."`
		MetricsAddr     string   `name:"metrics-addr" help:"Serve Prometheus metrics on this address while running, e.g. :9464. Profiles are served too with --debug."`
	}
	// cmdGenerate corresponds to `vertexai-trace generate` command.
	cmdGenerate struct {
		clientFlags `embed:""`
		Prompt      []string `arg:"" help:"Prompt text. Each argument is a separate part."`
	}
	// cmdStream corresponds to `vertexai-trace stream` command.
	cmdStream struct {
		clientFlags `embed:""`
		Prompt      []string `arg:"" help:"Prompt text. Each argument is a separate part."`
	}
	// cmdPredict corresponds to `vertexai-trace predict` command.
	cmdPredict struct {
		clientFlags `embed:""`
		Prompt      string `arg:"" help:"Prompt text."`
		Async       bool   `help:"Await the prediction as a future."`
		Stream      bool   `help:"Stream the prediction."`
	}
	// cmdChat corresponds to `vertexai-trace chat` command.
	cmdChat struct {
		clientFlags `embed:""`
		Messages    []string `arg:"" name:"message" help:"Messages to send in order."`
		Stream      bool     `help:"Stream the replies."`
	}
)

// Validate is called by Kong after parsing to validate the client flags.
func (c *clientFlags) Validate() error {
	if c.Project != "" && c.APIKey != "" {
		return errors.New("--project and --api-key are mutually exclusive")
	}
	if c.CredentialsFile != "" && c.Project == "" {
		return errors.New("--credentials-file requires --project")
	}
	return nil
}

type runFn func(context.Context, callCommand, io.Writer, io.Writer) error

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	doMain(ctx, os.Stdout, os.Stderr, os.Args[1:], os.Exit, run)
}

// doMain is the main entry point for the CLI. It parses the command line arguments and executes the appropriate command.
//
//   - stdout is the writer to use for standard output. Mainly for testing.
//   - stderr is the writer to use for standard error. Mainly for testing.
//   - `args` are the command line arguments without the program name.
//   - exitFn is the function to call to exit the program during the parsing of the command line arguments. Mainly for testing.
//   - rf is the function to call to run a model command. Mainly for testing.
func doMain(ctx context.Context, stdout, stderr io.Writer, args []string, exitFn func(int), rf runFn) {
	var c cmd
	parser, err := kong.New(&c,
		kong.Name("vertexai-trace"),
		kong.Description("Traces Gemini and Vertex AI calls with OpenTelemetry."),
		kong.Writers(stdout, stderr),
		kong.Exit(exitFn),
	)
	if err != nil {
		log.Fatalf("Error creating parser: %v", err)
	}
	parsed, err := parser.Parse(args)
	parser.FatalIfErrorf(err)

	var command callCommand
	switch parsed.Command() {
	case "version":
		_, _ = fmt.Fprintf(stdout, "vertexai-trace: %s\n", version.Parse())
		return
	case "generate <prompt>":
		command = &c.Generate
	case "stream <prompt>":
		command = &c.Stream
	case "predict <prompt>":
		command = &c.Predict
	case "chat <message>":
		command = &c.Chat
	default:
		panic("unreachable")
	}
	if err = rf(ctx, command, stdout, stderr); err != nil {
		log.Fatalf("Error running %s: %v", parsed.Command(), err)
	}
}
