package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/provisor-io/provisor/internal/resource"
)

var resourcesCmd = &cobra.Command{
	Use:   "resources",
	Short: "List the configured resources",
	Long: `List every resource declared in the configuration.

Shows each resource's access class, content type, and parameters.

Examples:
  # Human-readable listing
  provisor resources

  # Machine-readable listing
  provisor resources --json`,
	RunE: runResources,
}

func init() {
	rootCmd.AddCommand(resourcesCmd)
}

// ResourceOutput is the JSON shape of a single listed resource.
type ResourceOutput struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Type        string            `json:"type"`
	Access      string            `json:"access"`
	URI         string            `json:"uri"`
	Function    string            `json:"function,omitempty"`
	Parameters  []ParameterOutput `json:"parameters,omitempty"`
}

// ParameterOutput is the JSON shape of a listed resource parameter.
type ParameterOutput struct {
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	AllowedValues []string `json:"allowed_values,omitempty"`
}

func runResources(cmd *cobra.Command, args []string) error {
	registry, err := resource.NewRegistry(cfg)
	if err != nil {
		return err
	}

	descriptors := registry.Descriptors()

	if outputJSON {
		out := make([]ResourceOutput, 0, len(descriptors))
		for _, d := range descriptors {
			out = append(out, resourceOutput(d))
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if len(descriptors) == 0 {
		printWarning("No resources configured")
		return nil
	}

	printTitle(fmt.Sprintf("Resources (%d)", len(descriptors)))
	fmt.Println()

	for _, d := range descriptors {
		fmt.Printf("  %s  %s\n", styles.Bold.Render(d.Name), styles.Subtle.Render(fmt.Sprintf("[%s, %s]", d.Access, d.Type)))
		if d.Description != "" {
			fmt.Printf("    %s\n", d.Description)
		}
		if d.Access == resource.AccessServer {
			fmt.Printf("    %s\n", styles.Subtle.Render("function: "+d.Function))
		} else {
			fmt.Printf("    %s\n", styles.Subtle.Render(d.URI))
		}
		for _, p := range d.Parameters {
			fmt.Printf("    %s\n", styles.Info.Render("• "+p.Name+" "+allowedValuesLabel(p)))
		}
		fmt.Println()
	}

	return nil
}

func resourceOutput(d resource.Descriptor) ResourceOutput {
	out := ResourceOutput{
		Name:        d.Name,
		Description: d.Description,
		Type:        string(d.Type),
		Access:      string(d.Access),
		URI:         d.URI,
		Function:    d.Function,
	}
	for _, p := range d.Parameters {
		out.Parameters = append(out.Parameters, ParameterOutput{
			Name:          p.Name,
			Description:   p.Description,
			AllowedValues: p.AllowedValues.Values(),
		})
	}
	return out
}

func allowedValuesLabel(p resource.Parameter) string {
	if p.AllowedValues.Any() {
		return "(any string)"
	}
	return "(" + strings.Join(p.AllowedValues.Values(), ", ") + ")"
}
