// Package panel holds the ordered transcript of one client's conversation.
package panel

import (
	"bytes"
	"context"
	"curio/curio/sources/psql/models"
	wstypes "curio/curio/utils/types"
	"html/template"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

type Message struct {
	ID        string
	Text      string
	Sender    string
	Pending   bool
	Error     bool
	Timestamp time.Time

	// pinned messages survive a history reload
	pinned bool
}

// Handle identifies an added message so it can be removed later.
type Handle struct {
	id string
}

func (h Handle) ID() string { return h.id }

// Source supplies the data the panel replays when chat opens.
type Source interface {
	// History returns interaction records oldest first.
	History(ctx context.Context) ([]models.UserQuestion, error)
	Suggestions(ctx context.Context) []string
}

type Panel struct {
	out wstypes.Emitter
	src Source
	now func() time.Time

	mu          sync.Mutex
	messages    []Message
	pendingID   string
	suggestions []string
}

func New(out wstypes.Emitter, src Source) *Panel {
	return &Panel{out: out, src: src, now: time.Now}
}

// AddMessage appends a message. A temporary message is the pending placeholder;
// adding one replaces any placeholder still shown.
func (p *Panel) AddMessage(text, sender string, temporary bool) Handle {
	p.mu.Lock()
	defer p.mu.Unlock()
	if temporary && p.pendingID != "" {
		p.removeLocked(p.pendingID)
	}
	m := Message{ID: uuid.NewString(), Text: text, Sender: sender, Pending: temporary, Timestamp: p.now()}
	p.appendLocked(m)
	if temporary {
		p.pendingID = m.ID
	}
	return Handle{id: m.ID}
}

// AddQuestion appends a user message that belongs to a request still in
// flight. It is kept across history reloads until Resolve is called for it.
func (p *Panel) AddQuestion(text string) Handle {
	p.mu.Lock()
	defer p.mu.Unlock()
	m := Message{ID: uuid.NewString(), Text: text, Sender: SenderUser, Timestamp: p.now(), pinned: true}
	p.appendLocked(m)
	return Handle{id: m.ID}
}

// Resolve settles an in-flight question in one step: the placeholder goes away,
// the answer (or the failure text) is appended and the question is unpinned.
func (p *Panel) Resolve(question, placeholder Handle, text string, failed bool) Handle {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.removeLocked(placeholder.id)
	if i := p.indexLocked(question.id); i >= 0 {
		p.messages[i].pinned = false
	}
	m := Message{ID: uuid.NewString(), Text: text, Sender: SenderAssistant, Error: failed, Timestamp: p.now()}
	p.appendLocked(m)
	return Handle{id: m.ID}
}

// AddError appends an assistant message flagged as a failure.
func (p *Panel) AddError(text string) Handle {
	p.mu.Lock()
	defer p.mu.Unlock()
	m := Message{ID: uuid.NewString(), Text: text, Sender: SenderAssistant, Error: true, Timestamp: p.now()}
	p.appendLocked(m)
	return Handle{id: m.ID}
}

// Remove deletes the message behind h and reports whether it was still shown.
func (p *Panel) Remove(h Handle) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.removeLocked(h.id)
}

func (p *Panel) appendLocked(m Message) {
	p.messages = append(p.messages, m)
	p.out.Emit(wstypes.Event{
		Type: wstypes.EvtMessage,
		Payload: wstypes.MessageEvent{
			ID:        m.ID,
			Text:      m.Text,
			Sender:    m.Sender,
			Pending:   m.Pending,
			Error:     m.Error,
			Timestamp: m.Timestamp,
		},
	})
}

func (p *Panel) removeLocked(id string) bool {
	if id == "" {
		return false
	}
	i := p.indexLocked(id)
	if i < 0 {
		return false
	}
	p.messages = slices.Delete(p.messages, i, i+1)
	if p.pendingID == id {
		p.pendingID = ""
	}
	p.out.Emit(wstypes.Event{Type: wstypes.EvtMessageRemoved, Payload: wstypes.MessageRemovedEvent{ID: id}})
	return true
}

func (p *Panel) indexLocked(id string) int {
	return slices.IndexFunc(p.messages, func(m Message) bool { return m.ID == id })
}

// LoadHistory clears the transcript and replays stored interactions in the order
// the source returns them: each question followed by its responses. Questions
// still in flight and the pending placeholder are moved after the replay.
func (p *Panel) LoadHistory(ctx context.Context) error {
	if p.src == nil {
		return nil
	}
	history, err := p.src.History(ctx)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	var live []Message
	for _, m := range p.messages {
		if m.pinned || m.Pending {
			live = append(live, m)
		}
	}
	pending := p.pendingID
	for len(p.messages) > 0 {
		p.removeLocked(p.messages[0].ID)
	}
	for _, q := range history {
		p.appendLocked(Message{ID: uuid.NewString(), Text: q.Question, Sender: SenderUser, Timestamp: q.CreatedAt})
		for _, r := range q.Responses {
			p.appendLocked(Message{ID: uuid.NewString(), Text: r.Response, Sender: SenderAssistant, Timestamp: r.CreatedAt})
		}
	}
	for _, m := range live {
		p.appendLocked(m)
	}
	p.pendingID = pending
	return nil
}

// LoadSuggestions refreshes and publishes the suggested prompts.
func (p *Panel) LoadSuggestions(ctx context.Context) []string {
	var items []string
	if p.src != nil {
		items = p.src.Suggestions(ctx)
	}
	p.mu.Lock()
	p.suggestions = items
	p.mu.Unlock()
	p.out.Emit(wstypes.Event{Type: wstypes.EvtSuggestions, Payload: wstypes.SuggestionsEvent{Items: items}})
	return items
}

// Init runs when chat opens. Suggestions load even when history fails.
func (p *Panel) Init(ctx context.Context) error {
	err := p.LoadHistory(ctx)
	p.LoadSuggestions(ctx)
	return err
}

func (p *Panel) Suggestions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.suggestions)
}

func (p *Panel) Messages() []Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.messages)
}

func (p *Panel) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.messages)
}

// Reset empties the panel, e.g. on sign out.
func (p *Panel) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for len(p.messages) > 0 {
		p.removeLocked(p.messages[0].ID)
	}
	p.suggestions = nil
}

var transcript = template.Must(template.New("transcript").Parse(
	`<div class="chat-messages">` +
		`{{range .Messages}}<div class="message {{.Sender}}-message{{if .Pending}} pending{{end}}{{if .Error}} error{{end}}" data-id="{{.ID}}">` +
		`<div class="message-content">{{.Text}}</div>` +
		`<div class="message-time">{{.Timestamp.Format "15:04"}}</div>` +
		`</div>{{end}}</div>` +
		`{{if .Suggestions}}<ul class="suggestions">{{range .Suggestions}}<li class="suggestion">{{.}}</li>{{end}}</ul>{{end}}`,
))

// Render returns the transcript as escaped HTML.
func (p *Panel) Render() (string, error) {
	p.mu.Lock()
	data := struct {
		Messages    []Message
		Suggestions []string
	}{slices.Clone(p.messages), slices.Clone(p.suggestions)}
	p.mu.Unlock()

	var buf bytes.Buffer
	if err := transcript.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
