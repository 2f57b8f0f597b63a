package resource

import (
	"context"
	"fmt"
	"strings"
)

// BuiltinFuncs returns the sample server-side functions shipped with
// Provisor. Hosts typically merge these with their own FuncMap.
func BuiltinFuncs() FuncMap {
	return FuncMap{
		"sample_parameterized_resource": sampleParameterizedResource,
	}
}

// sampleParameterizedResource returns different text depending on the
// "client" parameter. It exists to demonstrate parameterized server-side
// resources end to end.
func sampleParameterizedResource(_ context.Context, params map[string]string) (string, error) {
	client := strings.ToLower(params["client"])

	switch client {
	case "acme":
		return "This is the roadrunner client", nil
	case "bigrock":
		return "We make tools to smash birds", nil
	default:
		return fmt.Sprintf("Unknown client: %s. Available clients: acme, bigrock", client), nil
	}
}
