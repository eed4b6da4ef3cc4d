// Command ask answers one guest message through the same pipeline as the API
// server and prints the reply.
//
//	ask -property LEONINA71 -lang en "what's the wifi?"
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/wolfman30/guest-assistant/cmd/mainconfig"
	"github.com/wolfman30/guest-assistant/internal/app/bootstrap"
	"github.com/wolfman30/guest-assistant/internal/assistant"
	appconfig "github.com/wolfman30/guest-assistant/internal/config"
	"github.com/wolfman30/guest-assistant/pkg/logging"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found, using environment variables")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "ask:", err)
		if errors.Is(err, assistant.ErrUnknownProperty) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("ask", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	propertyID := fs.String("property", "", "property id (default from DEFAULT_PROPERTY_ID)")
	lang := fs.String("lang", "", "language of the guest, e.g. en or it-IT")
	asJSON := fs.Bool("json", false, "print the full response as JSON")
	noPolish := fs.Bool("no-polish", false, "skip the LLM rewrite even when a provider is configured")
	if err := fs.Parse(args); err != nil {
		return err
	}
	message := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if message == "" {
		return errors.New("usage: ask [-property ID] [-lang CODE] [-json] [-no-polish] message")
	}

	cfg := appconfig.Load()
	if *noPolish {
		cfg.PolishProvider = "none"
	}
	// Keep stdout clean for the answer.
	logger := logging.NewWithOptions(logging.Options{Level: "error", Output: os.Stderr})
	if strings.EqualFold(cfg.LogLevel, "debug") {
		logger = logging.NewWithOptions(logging.Options{Level: "debug", Format: "text", Output: os.Stderr})
	}

	svc, cleanup, err := bootstrap.BuildAssistant(ctx, cfg, mainconfig.Loader(cfg), nil, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	resp, err := svc.Answer(ctx, assistant.Request{
		Message:    message,
		PropertyID: *propertyID,
		Language:   *lang,
	})
	if err != nil {
		return err
	}

	if *asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	intent := resp.Intent
	if !resp.Matched {
		intent = "(none)"
	}
	fmt.Fprintln(out, resp.Text)
	fmt.Fprintf(out, "\nintent: %s  property: %s  language: %s  polish: %s\n",
		intent, resp.PropertyID, resp.Language, resp.PolishOutcome)
	return nil
}
