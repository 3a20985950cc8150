// Persona responder: stateless request/response over the upstream client.
//
// Each call is independent; the responder never reads or writes chat state.
// The caller owns persisting the returned text as a message. Image synthesis
// is best-effort: its failure must never fail the text reply. A randomized
// delay is applied after generation completes so machine-paced replies read
// as human-paced ones; the window is configuration, and the delay is not
// cancellable once generation has returned.
package persona

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Error kinds, kept distinct so callers can map them to different HTTP
// statuses and so that a configuration problem is never mistaken for an
// upstream outage. None of them is retried automatically.
var (
	// ErrNotConfigured means the upstream credential is missing.
	ErrNotConfigured = errors.New("model API key not configured")

	// ErrBadHistory means the conversation window is missing or malformed.
	ErrBadHistory = errors.New("invalid messages format")

	// ErrUpstream wraps transport and API failures from the model provider.
	ErrUpstream = errors.New("failed to generate reply")
)

// Reply is the responder output: generated text plus an optional image URL.
type Reply struct {
	Text     string
	ImageURL *string
}

// Responder generates persona replies through the upstream client.
type Responder struct {
	Client *Client

	// Flavor selects the persona instruction set (FlavorFlirty or
	// FlavorSupport). Explicit deployment configuration.
	Flavor string

	// Generation parameters; fixed per deployment, tuned for short
	// human-sounding replies.
	Model       string
	Temperature float64
	MaxTokens   int

	// Image synthesis; best-effort and optional.
	ImageModel   string
	ImageEnabled bool

	// DelayMin/DelayMax bound the randomized post-generation delay.
	// DelayMax <= 0 disables it.
	DelayMin time.Duration
	DelayMax time.Duration

	// sleep is a test seam; defaults to time.Sleep.
	sleep func(time.Duration)
}

// NewResponder builds a Responder with the production generation parameters.
func NewResponder(client *Client, flavor string) *Responder {
	return &Responder{
		Client:      client,
		Flavor:      flavor,
		Model:       "gpt-4o-mini",
		Temperature: 0.85,
		MaxTokens:   300,
		ImageModel:  "dall-e-3",
		DelayMin:    1500 * time.Millisecond,
		DelayMax:    4 * time.Second,
	}
}

// Reply validates the history, prepends exactly one system instruction
// chosen by the language selector, generates text (and best-effort one
// image), applies the human-pacing delay, and returns the result.
func (r *Responder) Reply(ctx context.Context, history []Turn, language string) (*Reply, error) {
	tr := otel.Tracer("persona/Responder")
	ctx, span := tr.Start(ctx, "Reply",
		trace.WithAttributes(
			attribute.String("persona.flavor", r.Flavor),
			attribute.Int("history.len", len(history)),
		),
	)
	defer span.End()

	if r.Client == nil || strings.TrimSpace(r.Client.APIKey) == "" {
		return nil, ErrNotConfigured
	}
	if len(history) == 0 {
		return nil, ErrBadHistory
	}
	for _, t := range history {
		switch t.Role {
		case "user", "assistant", "system":
		default:
			return nil, ErrBadHistory
		}
	}

	locale := normalizeLocale(language)

	messages := make([]Turn, 0, len(history)+1)
	messages = append(messages, Turn{Role: "system", Content: systemPrompt(r.Flavor, locale)})
	messages = append(messages, history...)

	text, err := r.Client.ChatCompletion(ctx, r.Model, messages, r.Temperature, r.MaxTokens)
	if err != nil {
		return nil, errors.Join(ErrUpstream, err)
	}
	if strings.TrimSpace(text) == "" {
		text = fallbackReply
	}

	reply := &Reply{Text: text}
	if r.ImageEnabled {
		reply.ImageURL = r.generateImage(ctx, locale, history)
	}

	r.delay()
	return reply, nil
}

// generateImage synthesizes an image from the newest user turn. Failures
// are logged and swallowed: the text reply ships regardless.
func (r *Responder) generateImage(ctx context.Context, locale string, history []Turn) *string {
	lastUser := ""
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == "user" {
			lastUser = history[i].Content
			break
		}
	}
	url, err := r.Client.GenerateImage(ctx, r.ImageModel, imagePrompt(locale, lastUser))
	if err != nil {
		log.Warn().Err(err).Msg("image generation failed, replying without image")
		return nil
	}
	return &url
}

// delay sleeps for a uniformly random duration in [DelayMin, DelayMax).
// Unconditional once generation has returned; disabled when DelayMax <= 0.
func (r *Responder) delay() {
	if r.DelayMax <= 0 {
		return
	}
	min, max := r.DelayMin, r.DelayMax
	if min < 0 {
		min = 0
	}
	if max < min {
		max = min
	}
	d := min
	if max > min {
		d += time.Duration(rand.Int63n(int64(max - min)))
	}
	sleep := r.sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	sleep(d)
}
