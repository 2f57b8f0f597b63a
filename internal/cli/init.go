package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/provisor-io/provisor/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter configuration file",
	Long: `Create a provisor.yaml in the current directory with a commented
example resource set.

The generated file declares one public HTTP resource and one server-side
function resource, ready to adapt.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}

const initConfigFile = "provisor.yaml"

// scaffoldConfig mirrors the config wire shape with a human-friendly
// timeout string (yaml renders time.Duration as raw nanoseconds).
type scaffoldConfig struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description,omitempty"`
	Log         config.LogConfig `yaml:"log"`
	HTTP        struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"http"`
	Params config.ParamsConfig `yaml:"params"`
}

// exampleConfig is the scaffolded starter configuration.
func exampleConfig() *scaffoldConfig {
	cfg := &scaffoldConfig{
		Name:        "my-provider",
		Description: "Example Provisor resource provider",
		Log:         config.LogConfig{Level: "info", Format: "text"},
	}
	cfg.HTTP.Timeout = config.DefaultTimeout.String()
	cfg.Params.Resources = []config.ResourceConfig{
		{
			Name:        "sampledata",
			Description: "Sample CSV data for a client",
			Type:        "csv",
			Access:      "public",
			URI:         "https://example.com/sampledata/{client}/",
			ResourceParameters: []config.ParameterConfig{
				{
					Name:          "client",
					Description:   "Client identifier",
					AllowedValues: []string{"acme", "bigrock"},
				},
			},
		},
		{
			Name:        "sample_parameterized_resource",
			Description: "Server-side greeting for a client",
			Type:        "txt",
			Access:      "mcp_server",
			URI:         "file://sampledata/{client}/",
			Function:    "sample_parameterized_resource",
			ResourceParameters: []config.ParameterConfig{
				{
					Name:          "client",
					Description:   "Client identifier",
					AllowedValues: "string",
				},
			},
		},
	}
	return cfg
}

func runInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(initConfigFile); err == nil && !initForce {
		printWarning("Config file already exists: " + initConfigFile)
		printInfo("Use --force to overwrite")
		return nil
	}

	data, err := yaml.Marshal(exampleConfig())
	if err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}

	header := []byte("# Provisor resource provider configuration.\n# Run 'provisor validate' after editing, 'provisor serve' to start.\n")
	if err := os.WriteFile(initConfigFile, append(header, data...), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	printSuccess("Created " + initConfigFile)
	fmt.Println()
	printTitle("Next Steps")
	fmt.Println()
	fmt.Println("  1. Edit the resource declarations to point at your data")
	fmt.Println("  2. Check the file with 'provisor validate'")
	fmt.Println("  3. Register the provider with your MCP client:")
	fmt.Println()
	printSubtle("     provisor serve")
	fmt.Println()
	return nil
}
