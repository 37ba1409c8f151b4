package paramstore

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// EnvGetter resolves parameters from environment variables. The variable name
// is derived from the parameter path, e.g. /optivise/open-ai-token is read
// from OPTIVISE_OPEN_AI_TOKEN. The value is returned as is, so it must hold
// what SSM would: the provider token is JSON, e.g.
//
//	OPTIVISE_OPEN_AI_TOKEN='{"token":"sk-..."}'
type EnvGetter struct {
	// Lookup defaults to os.LookupEnv.
	Lookup func(key string) (string, bool)
}

func (g EnvGetter) GetParameter(_ context.Context, name string) (string, error) {
	key := EnvKey(name)
	if key == "" {
		return "", fmt.Errorf("paramstore: name is required")
	}
	lookup := g.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	v, ok := lookup(key)
	if !ok || v == "" {
		return "", fmt.Errorf("paramstore: environment variable %s is not set", key)
	}
	return v, nil
}

// EnvKey maps a parameter path to its environment variable name.
func EnvKey(name string) string {
	name = strings.Trim(strings.TrimSpace(name), "/")
	return strings.ToUpper(strings.NewReplacer("/", "_", "-", "_", ".", "_").Replace(name))
}
