package ai

import "context"

// Provider is one external text-generation service. A provider handles its
// own credential rotation internally; an error from Generate means the whole
// provider is exhausted and should enter cooldown at the router level.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}
