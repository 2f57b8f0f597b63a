package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/provisor-io/provisor/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Long: `Validate the configuration file and report every error and warning.

The whole file is checked in one pass, so a broken config is reported
completely instead of one finding at a time.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	loaded, loader, err := loadConfig()
	if err != nil {
		return err
	}

	source := loader.ConfigFileUsed()
	if source == "" {
		source = "defaults (no config file found)"
	}
	printInfo("Validating " + source)
	fmt.Println()

	v := config.Validate(loaded)
	if v == nil {
		printSuccess(fmt.Sprintf("Configuration is valid (%d resources)", len(loaded.Params.Resources)))
		return nil
	}

	for _, e := range v.Errors {
		printError(e)
	}
	for _, w := range v.Warnings {
		printWarning(w)
	}
	fmt.Println()

	if v.HasErrors() {
		return fmt.Errorf("%d error(s), %d warning(s)", len(v.Errors), len(v.Warnings))
	}

	printSuccess(fmt.Sprintf("Configuration is valid with %d warning(s)", len(v.Warnings)))
	return nil
}
