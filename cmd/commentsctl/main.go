package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pribylovaa/gamerfeeds/internal/client"
	"github.com/pribylovaa/gamerfeeds/internal/models"
)

var (
	apiURL     string
	token      string
	natsURL    string
	timeout    time.Duration
	jsonOutput bool

	api *client.Client
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

var rootCmd = &cobra.Command{
	Use:           "commentsctl <command>",
	Short:         "CLI client for the gamerfeeds comments service",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := client.New(apiURL, token, timeout)
		if err != nil {
			return err
		}
		api = c
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", envOr("GAMERFEEDS_API_URL", "http://localhost:8000"), "comments API base URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("GAMERFEEDS_TOKEN"), "bearer token for write commands")
	rootCmd.PersistentFlags().StringVar(&natsURL, "nats", os.Getenv("GAMERFEEDS_NATS_URL"), "NATS URL for watch")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "HTTP request timeout")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	rootCmd.AddCommand(threadCmd)
	rootCmd.AddCommand(postCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(watchCmd)
}

// parseTarget разбирает "game:10".
func parseTarget(s string) (models.Target, error) {
	kind, rawID, ok := strings.Cut(s, ":")
	if !ok {
		return models.Target{}, fmt.Errorf("target must look like <type>:<id>, got %q", s)
	}

	ct, err := models.ParseContentType(kind)
	if err != nil {
		return models.Target{}, err
	}

	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		return models.Target{}, fmt.Errorf("invalid content id %q", rawID)
	}

	return models.Target{Type: ct, ID: id}, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid comment id %q", s)
	}
	return id, nil
}

// printForest печатает лес деревом или JSON (--json).
func printForest(w io.Writer, f models.Forest) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(f)
	}
	return client.Render(w, f)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
