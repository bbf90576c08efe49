// Package orchestrator runs one conversational turn: it classifies the
// user's intent, assembles a prompt from recent history and session state,
// calls the text provider and records both sides of the exchange.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/voxbridge/voxbridge/pkg/core"
	"github.com/voxbridge/voxbridge/pkg/gateway/session"
)

// Interaction is a normalized input turn. The boundary layer produces it;
// the orchestrator never re-parses raw transport payloads.
type Interaction struct {
	SessionID      string    `json:"session_id"`
	InputType      string    `json:"input_type"`
	RawInputRef    string    `json:"raw_input_ref,omitempty"`
	NormalizedText string    `json:"normalized_text"`
	Language       string    `json:"language,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// NewTextInteraction normalizes raw text input into an Interaction.
func NewTextInteraction(sessionID, text, language string) Interaction {
	return Interaction{
		SessionID:      sessionID,
		InputType:      "text",
		NormalizedText: strings.TrimSpace(text),
		Language:       language,
		Timestamp:      time.Now().UTC(),
	}
}

// Intent is the coarse classification of a user turn.
type Intent string

const (
	IntentHelp      Intent = "help"
	IntentExit      Intent = "exit"
	IntentQuestion  Intent = "question"
	IntentStatement Intent = "statement"
)

// Number of trailing history messages included in the prompt.
const promptWindow = 5

// Minimum word count before a turn establishes a topic, and how much of
// the text the topic keeps.
const (
	topicMinWords  = 4
	topicMaxLength = 30
)

// Result is the outcome of one processed turn.
type Result struct {
	SessionID string `json:"session_id"`
	Intent    Intent `json:"intent"`
	Response  string `json:"response"`
	Topic     string `json:"topic,omitempty"`
}

// Orchestrator coordinates the session store and a text provider.
type Orchestrator struct {
	store    *session.Store
	provider core.TextProvider
	logger   *slog.Logger
}

// New builds an orchestrator. A nil logger falls back to slog.Default.
func New(store *session.Store, provider core.TextProvider, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{store: store, provider: provider, logger: logger}
}

// Process handles one user turn, creating the session if it does not
// exist yet. On provider failure the user message is preserved and the
// error is returned as-is.
func (o *Orchestrator) Process(ctx context.Context, in Interaction) (*Result, error) {
	sessionID := in.SessionID
	text := in.NormalizedText
	if strings.TrimSpace(text) == "" {
		return nil, core.NewInvalidRequestError("text must not be empty")
	}

	o.store.Ensure(sessionID)

	intent := ClassifyIntent(text)
	language := in.Language
	if language == "" {
		language = session.DefaultLanguage
	}
	if err := o.store.SetState(sessionID, session.StateLanguage, language); err != nil {
		return nil, err
	}
	if err := o.store.AppendMessage(sessionID, session.RoleUser, text); err != nil {
		return nil, err
	}

	prompt, err := o.buildPrompt(sessionID)
	if err != nil {
		return nil, err
	}

	o.logger.Debug("processing turn",
		"session_id", sessionID,
		"intent", string(intent),
		"provider", o.provider.Name(),
	)

	reply, err := o.provider.Generate(ctx, prompt)
	if err != nil {
		o.logger.Error("provider generate failed",
			"session_id", sessionID,
			"provider", o.provider.Name(),
			"error", err,
		)
		return nil, err
	}

	if err := o.store.SetState(sessionID, session.StateLastResponse, reply); err != nil {
		return nil, err
	}
	topic := InferTopic(text)
	if topic != "" {
		if err := o.store.SetState(sessionID, session.StateCurrentTopic, topic); err != nil {
			return nil, err
		}
	}
	if err := o.store.AppendMessage(sessionID, session.RoleAssistant, reply); err != nil {
		return nil, err
	}

	return &Result{SessionID: sessionID, Intent: intent, Response: reply, Topic: topic}, nil
}

var (
	helpKeywords     = []string{"help", "what can you do", "support"}
	exitKeywords     = []string{"stop", "cancel", "bye", "exit"}
	questionPrefixes = []string{"who", "what", "where", "when", "why", "how"}
)

// ClassifyIntent buckets user text by simple keyword and shape heuristics.
func ClassifyIntent(text string) Intent {
	lower := strings.ToLower(text)
	for _, w := range helpKeywords {
		if strings.Contains(lower, w) {
			return IntentHelp
		}
	}
	for _, w := range exitKeywords {
		if strings.Contains(lower, w) {
			return IntentExit
		}
	}
	if strings.Contains(lower, "?") {
		return IntentQuestion
	}
	for _, w := range questionPrefixes {
		if strings.HasPrefix(lower, w) {
			return IntentQuestion
		}
	}
	return IntentStatement
}

// InferTopic derives a topic from the user's text. Short utterances do not
// establish a topic; longer ones keep a truncated prefix.
func InferTopic(text string) string {
	if len(strings.Fields(text)) < topicMinWords {
		return ""
	}
	runes := []rune(text)
	if len(runes) > topicMaxLength {
		runes = runes[:topicMaxLength]
	}
	return string(runes) + "..."
}

// buildPrompt assembles the provider prompt: a persona preamble, the last
// few history turns as "Role: content" lines, then an assistant cue.
func (o *Orchestrator) buildPrompt(sessionID string) (string, error) {
	snap, err := o.store.Get(sessionID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	persona := snap.State[session.StatePersona]
	if persona == "" {
		persona = session.DefaultPersona
	}
	fmt.Fprintf(&b, "You are a helpful assistant. Persona: %s. ", persona)
	if topic := snap.State[session.StateCurrentTopic]; topic != "" {
		fmt.Fprintf(&b, "Current topic is %s. ", topic)
	}
	b.WriteString("\n\n")

	msgs := snap.Messages
	if len(msgs) > promptWindow {
		msgs = msgs[len(msgs)-promptWindow:]
	}
	for _, m := range msgs {
		fmt.Fprintf(&b, "%s: %s\n", titleRole(m.Role), m.Content)
	}
	b.WriteString("Assistant:")
	return b.String(), nil
}

func titleRole(r session.Role) string {
	s := string(r)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
