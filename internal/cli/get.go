package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/provisor-io/provisor/internal/mcp"
	"github.com/provisor-io/provisor/internal/resource"
)

var (
	getParams []string
	getOutput string
)

var getCmd = &cobra.Command{
	Use:   "get <resource>",
	Short: "Resolve a resource and print its content",
	Long: `Resolve a configured resource once and print the content to stdout.

This is the same resolution path the MCP server uses, so it is the
quickest way to verify a resource declaration.

Examples:
  # Fetch a plain resource
  provisor get manual

  # Fetch a parameterized resource
  provisor get sampledata -p client=acme

  # Write binary content to a file
  provisor get manual -o manual.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func init() {
	getCmd.Flags().StringArrayVarP(&getParams, "param", "p", nil, "resource parameter as key=value (repeatable)")
	getCmd.Flags().StringVarP(&getOutput, "output", "o", "", "write content to a file instead of stdout")
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	name := args[0]

	params, err := parseParams(getParams)
	if err != nil {
		return err
	}

	quiet := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	providers, err := mcp.NewProviders(cfg, serveFuncs(), quiet)
	if err != nil {
		return fmt.Errorf("failed to build resource providers: %w", err)
	}

	d, ok := providers.Registry.Lookup(name)
	if !ok {
		return &resource.NotFoundError{Name: name}
	}

	var provider resource.Provider
	switch d.Access {
	case resource.AccessServer:
		provider = providers.Server
	default:
		provider = providers.Public
	}

	content, err := provider.Get(cmd.Context(), name, params)
	if err != nil {
		return err
	}

	if getOutput != "" {
		if err := os.WriteFile(getOutput, content.Data, 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		printSuccess(fmt.Sprintf("Wrote %d bytes to %s", len(content.Data), getOutput))
		return nil
	}

	if _, err := os.Stdout.Write(content.Data); err != nil {
		return err
	}
	return nil
}

// parseParams parses repeated key=value flags into a parameter map.
func parseParams(pairs []string) (map[string]string, error) {
	params := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected key=value", pair)
		}
		params[key] = value
	}
	return params, nil
}
