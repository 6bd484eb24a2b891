// Package types holds the WebSocket envelopes exchanged with a client session.
package types

import (
	apitypes "curio/curio/types"
	"encoding/json"
	"time"
)

// Command types sent by the client.
const (
	CmdSignUp      = "sign_up"
	CmdSignIn      = "sign_in"
	CmdSignOut     = "sign_out"
	CmdAsk         = "ask"
	CmdLoadHistory = "load_history"
	CmdSuggestions = "suggestions"
	CmdShowScreen  = "show_screen"

	CmdGetAuthState   = "get_auth_state"
	CmdResetPassword  = "reset_password"
	CmdUpdatePassword = "update_password"
)

// Event types pushed to the client.
const (
	EvtScreen         = "screen"
	EvtMessage        = "message"
	EvtMessageRemoved = "message_removed"
	EvtNotice         = "notice"
	EvtSuggestions    = "suggestions"
	EvtResult         = "result"
)

type Command struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// RawEvent is Event as decoded by a client.
type RawEvent struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type ScreenEvent struct {
	Screen  string `json:"screen"`
	Visible bool   `json:"visible"`
}

type MessageEvent struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    string    `json:"sender"`
	Pending   bool      `json:"pending,omitempty"`
	Error     bool      `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type MessageRemovedEvent struct {
	ID string `json:"id"`
}

type NoticeEvent struct {
	Kind      string    `json:"kind"`
	Text      string    `json:"text"`
	ExpiresAt time.Time `json:"expires_at"`
}

type SuggestionsEvent struct {
	Items []string `json:"items"`
}

// ResultEvent answers one command; ID echoes Command.ID.
type ResultEvent struct {
	ID      string `json:"id,omitempty"`
	Command string `json:"command"`
	apitypes.Result
}

type ShowScreenPayload struct {
	Screen string `json:"screen"`
}

// Emitter receives the events produced by the session components.
type Emitter interface {
	Emit(Event)
}

type EmitterFunc func(Event)

func (f EmitterFunc) Emit(e Event) { f(e) }
