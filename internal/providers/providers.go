// Package providers builds the upstream collaborators from configuration.
// Each collaborator kind has its own registry of variants, one per upstream
// model family; the variant is chosen once at startup.
package providers

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"edugate/internal/core"
	"edugate/internal/llmclient"
)

// Kind identifies a collaborator role.
type Kind string

// Collaborator kinds
const (
	KindText        Kind = "text"
	KindSpeech      Kind = "speech"
	KindRecognition Kind = "recognition"
	KindImage       Kind = "image"
)

// Config holds the resolved configuration of one collaborator.
type Config struct {
	Type    string
	APIKey  string
	BaseURL string
	Model   string

	// Voice is the upstream voice name for variants that do not use the
	// per-language voice table (e.g. "alloy").
	Voice string
	// Size is the generated image size, e.g. "1024x1024".
	Size string
	// Encoding is the recorded audio encoding hint for recognition, e.g. "WEBM_OPUS".
	Encoding string
	// MaxTokens bounds generated text length.
	MaxTokens int
}

// Options carries construction dependencies shared by every variant.
type Options struct {
	HTTPClient     *http.Client
	Observer       llmclient.Observer
	MaxRetries     int
	CircuitBreaker *llmclient.CircuitBreakerConfig
}

// ClientConfig returns the llmclient configuration for a variant.
func (o Options) ClientConfig(kind Kind, providerName, baseURL, model string) llmclient.Config {
	cfg := llmclient.DefaultConfig(providerName, baseURL)
	cfg.Kind = string(kind)
	cfg.Model = model
	cfg.MaxRetries = o.MaxRetries
	if o.CircuitBreaker != nil {
		cfg.CircuitBreaker = o.CircuitBreaker
	}
	return cfg
}

// NewClient builds an llmclient for a variant with the shared HTTP client and observer.
func (o Options) NewClient(cfg llmclient.Config, headers llmclient.HeaderSetter) *llmclient.Client {
	var c *llmclient.Client
	if o.HTTPClient != nil {
		c = llmclient.NewWithHTTPClient(o.HTTPClient, cfg, headers)
	} else {
		c = llmclient.New(cfg, headers)
	}
	if o.Observer != nil {
		c.SetObserver(o.Observer)
	}
	return c
}

// Builder creates one collaborator variant.
type Builder[T any] func(cfg Config, opts Options) (T, error)

// Registration provides factory registration for one collaborator variant.
type Registration[T any] struct {
	Type string
	New  Builder[T]
}

// Registry holds the variants of one collaborator kind.
type Registry[T any] struct {
	kind     Kind
	builders map[string]Builder[T]
}

// NewRegistry creates an empty registry for kind.
func NewRegistry[T any](kind Kind) *Registry[T] {
	return &Registry[T]{kind: kind, builders: make(map[string]Builder[T])}
}

// Add registers a variant.
func (r *Registry[T]) Add(reg Registration[T]) {
	r.builders[reg.Type] = reg.New
}

// Create instantiates the variant named by cfg.Type.
func (r *Registry[T]) Create(cfg Config, opts Options) (T, error) {
	builder, ok := r.builders[cfg.Type]
	if !ok {
		var zero T
		return zero, fmt.Errorf("unknown %s provider type: %s (registered: %s)",
			r.kind, cfg.Type, strings.Join(r.ListRegistered(), ", "))
	}
	return builder(cfg, opts)
}

// ListRegistered returns the registered variant types in sorted order.
func (r *Registry[T]) ListRegistered() []string {
	types := make([]string, 0, len(r.builders))
	for t := range r.builders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Factory holds one registry per collaborator kind.
type Factory struct {
	Text        *Registry[core.TextGenerator]
	Speech      *Registry[core.SpeechSynthesizer]
	Recognition *Registry[core.SpeechRecognizer]
	Image       *Registry[core.ImageGenerator]
}

// NewFactory creates a factory with empty registries.
func NewFactory() *Factory {
	return &Factory{
		Text:        NewRegistry[core.TextGenerator](KindText),
		Speech:      NewRegistry[core.SpeechSynthesizer](KindSpeech),
		Recognition: NewRegistry[core.SpeechRecognizer](KindRecognition),
		Image:       NewRegistry[core.ImageGenerator](KindImage),
	}
}

// InferTextType picks the text variant from a model id when none is configured.
func InferTextType(model string) string {
	m := strings.ToLower(model)
	switch {
	case strings.HasPrefix(m, "claude"):
		return "anthropic"
	case strings.HasPrefix(m, "gemini"), strings.HasPrefix(m, "models/gemini"):
		return "gemini"
	default:
		return "openai"
	}
}
