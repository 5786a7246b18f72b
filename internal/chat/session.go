package chat

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"vehicle-damage-analyzer/internal/damage"
	"vehicle-damage-analyzer/internal/model"

	"github.com/rs/zerolog/log"
)

const chatModel = "gemini-3-flash-preview"

const systemInstruction = "You are a helpful AI assistant for a vehicle damage analysis tool. Your name is VDA-Bot. You are friendly, concise, and your goal is to answer user questions about their damage report, repair costs, insurance claims, and next steps. You already have the full damage report context."

// Fixed fallback replies. Conversational failures degrade to these; they are
// never fatal to the session.
const (
	MsgConnectFailed = "Sorry, I'm having trouble connecting right now. Please try again later."
	MsgTurnFailed    = "I'm sorry, I encountered an error. Could you please rephrase your question?"
)

// Send rejection reasons. A rejected send appends nothing to history.
var (
	ErrBlankMessage = errors.New("message is blank")
	ErrNotReady     = errors.New("session is not ready")
	ErrSendInFlight = errors.New("another send is in flight")
)

// Role identifies who produced a conversation turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one entry in the session history. Turns are never mutated or
// deleted once appended.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Session is a stateful conversation with the model, primed with the damage
// report context. It allows at most one in-flight send at a time.
type Session struct {
	starter model.ChatStarter

	mu      sync.Mutex
	channel model.ChatChannel
	ready   bool
	sending bool
	history []Turn
}

// NewSession creates an uninitialized session. Call Start before Send.
func NewSession(starter model.ChatStarter) *Session {
	return &Session{starter: starter}
}

// PrimingMessage builds the context message that seeds the conversation with
// the aggregated assessment, ending with a request to greet the user.
func PrimingMessage(results []damage.AnalysisResult) string {
	var b strings.Builder
	b.WriteString("Here is the vehicle damage assessment summary:\n")
	lines := make([]string, 0, len(results))
	for _, r := range results {
		clauses := make([]string, 0, len(r.Analysis.Damages))
		for _, d := range r.Analysis.Damages {
			clauses = append(clauses, fmt.Sprintf("%s %s on the %s", d.Severity, d.DamageType, d.Location))
		}
		damageList := "None"
		if len(clauses) > 0 {
			damageList = strings.Join(clauses, ", ")
		}
		lines = append(lines, fmt.Sprintf(
			"Image analysis found %d damages with a total estimated cost of INR %s. Damages include: %s.",
			len(r.Analysis.Damages),
			strconv.FormatFloat(r.Analysis.TotalEstimatedCostINR, 'f', -1, 64),
			damageList,
		))
	}
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\nPlease greet the user and let them know you are ready to help with any questions about their report.")
	return b.String()
}

// Start opens the chat channel and sends the priming message. The model's
// reply becomes the greeting and the session transitions to Ready. On failure
// the fixed connection apology is recorded instead and the session stays
// unusable; Start may be called again.
func (s *Session) Start(ctx context.Context, results []damage.AnalysisResult) (string, error) {
	channel, err := s.starter.StartChat(ctx, chatModel, systemInstruction)
	if err == nil {
		var greeting string
		greeting, err = channel.Send(ctx, PrimingMessage(results))
		if err == nil {
			s.mu.Lock()
			s.channel = channel
			s.ready = true
			s.history = append(s.history, Turn{Role: RoleModel, Text: greeting})
			s.mu.Unlock()
			return greeting, nil
		}
	}

	log.Error().Err(err).Msg("chat session initialization failed")
	s.mu.Lock()
	s.history = append(s.history, Turn{Role: RoleModel, Text: MsgConnectFailed})
	s.mu.Unlock()
	return "", err
}

// Ready reports whether the session accepts sends.
func (s *Session) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// Send delivers one user turn and returns the model's reply. Blank input, an
// unready session, or an in-flight send are rejected without touching
// history. The user turn is appended before the call; a failing call appends
// the fixed apology reply instead of failing the session.
func (s *Session) Send(ctx context.Context, userText string) (string, error) {
	if strings.TrimSpace(userText) == "" {
		return "", ErrBlankMessage
	}

	s.mu.Lock()
	if !s.ready {
		s.mu.Unlock()
		return "", ErrNotReady
	}
	if s.sending {
		s.mu.Unlock()
		return "", ErrSendInFlight
	}
	s.sending = true
	s.history = append(s.history, Turn{Role: RoleUser, Text: userText})
	channel := s.channel
	s.mu.Unlock()

	reply, err := channel.Send(ctx, userText)
	if err != nil {
		log.Warn().Err(err).Msg("chat send failed, degrading to fallback reply")
		reply = MsgTurnFailed
	}

	s.mu.Lock()
	s.sending = false
	s.history = append(s.history, Turn{Role: RoleModel, Text: reply})
	s.mu.Unlock()

	return reply, nil
}

// History returns a copy of the conversation so far, in order.
func (s *Session) History() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.history))
	copy(out, s.history)
	return out
}
