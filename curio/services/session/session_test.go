package session

import (
	"context"
	"curio/curio/config"
	"curio/curio/middlewares"
	"curio/curio/services/ai"
	"curio/curio/services/auth"
	"curio/curio/services/llm"
	"curio/curio/services/panel"
	"curio/curio/services/screen"
	"curio/curio/sources/psql/dao"
	"curio/curio/sources/psql/psqltest"
	wstypes "curio/curio/utils/types"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type stubGenerator struct {
	calls atomic.Int32
}

func (g *stubGenerator) Chat(ctx context.Context, req llm.ChatRequest) (llm.Response, error) {
	g.calls.Add(1)
	return llm.Response{req.Providers: {Status: "success", GeneratedText: "A luz é energia."}}, nil
}

type collector struct {
	mu     sync.Mutex
	events []wstypes.Event
}

func (c *collector) run(s *Session) {
	for {
		select {
		case e := <-s.Events():
			c.mu.Lock()
			c.events = append(c.events, e)
			c.mu.Unlock()
		case <-s.Done():
			return
		}
	}
}

func (c *collector) waitFor(t *testing.T, what string, match func(wstypes.Event) bool) wstypes.Event {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		for _, e := range c.events {
			if match(e) {
				c.mu.Unlock()
				return e
			}
		}
		c.mu.Unlock()
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
	return wstypes.Event{}
}

func resultFor(command string) func(wstypes.Event) bool {
	return func(e wstypes.Event) bool {
		r, ok := e.Payload.(wstypes.ResultEvent)
		return ok && e.Type == wstypes.EvtResult && r.Command == command
	}
}

func screenShown(name string) func(wstypes.Event) bool {
	return func(e wstypes.Event) bool {
		ev, ok := e.Payload.(wstypes.ScreenEvent)
		return ok && ev.Screen == name && ev.Visible
	}
}

// blockingGenerator holds every answer until release is closed.
type blockingGenerator struct {
	release chan struct{}
}

func (g *blockingGenerator) Chat(ctx context.Context, req llm.ChatRequest) (llm.Response, error) {
	select {
	case <-g.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return llm.Response{req.Providers: {Status: "success", GeneratedText: "Resposta."}}, nil
}

func newTestSession(t *testing.T) (*Session, *collector, *stubGenerator) {
	t.Helper()
	gen := &stubGenerator{}
	s, c := newTestSessionWith(t, gen, func(*Deps) {})
	return s, c, gen
}

func newTestSessionWith(t *testing.T, gen ai.Generator, tweak func(*Deps)) (*Session, *collector) {
	t.Helper()
	db := psqltest.NewTestDB(t)
	cfg := config.Config{
		JWTSecret:        "test-secret",
		SessionTTL:       time.Hour,
		PrimaryProvider:  "openai",
		FallbackProvider: "google",
		TextProviders:    []string{"openai", "google"},
	}
	topics := config.DefaultTopics()
	deps := Deps{
		Backend: auth.NewLocalBackend(cfg, dao.NewUserDAO(db), dao.NewSessionDAO(db)),
		AI:      ai.NewOrchestrator(cfg, topics, gen, dao.NewInteractionDAO(db)),
		Topics:  topics,
	}
	tweak(&deps)
	s := New(context.Background(), deps)
	c := &collector{}
	go c.run(s)
	t.Cleanup(s.Close)
	return s, c
}

func signUp(t *testing.T, s *Session, c *collector, email string) {
	t.Helper()
	s.Handle(command("signup", wstypes.CmdSignUp, map[string]string{"email": email, "password": "segredo"}))
	if res := c.waitFor(t, "sign_up result", resultFor(wstypes.CmdSignUp)).Payload.(wstypes.ResultEvent); !res.Success {
		t.Fatalf("sign up failed: %+v", res)
	}
}

func transcript(s *Session) string {
	var parts []string
	for _, m := range s.Panel().Messages() {
		entry := m.Sender + ":" + m.Text
		if m.Pending {
			entry += "(pending)"
		}
		parts = append(parts, entry)
	}
	return strings.Join(parts, " ")
}

func command(id, typ string, payload any) wstypes.Command {
	raw, _ := json.Marshal(payload)
	return wstypes.Command{ID: id, Type: typ, Payload: raw}
}

func TestSignUpSignsInAndOpensChat(t *testing.T) {
	s, c, _ := newTestSession(t)
	c.waitFor(t, "auth screen", screenShown(screen.Auth))

	s.Handle(command("1", wstypes.CmdSignUp, map[string]string{"email": "ana@example.com", "password": "segredo"}))

	res := c.waitFor(t, "sign_up result", resultFor(wstypes.CmdSignUp)).Payload.(wstypes.ResultEvent)
	if !res.Success || res.ID != "1" {
		t.Fatalf("unexpected result %+v", res)
	}
	c.waitFor(t, "chat screen", screenShown(screen.Chat))
	c.waitFor(t, "welcome notice", func(e wstypes.Event) bool {
		n, ok := e.Payload.(wstypes.NoticeEvent)
		return ok && n.Text == msgSignedUp
	})
	c.waitFor(t, "suggestions", func(e wstypes.Event) bool { return e.Type == wstypes.EvtSuggestions })
	if !s.State().SignedIn() {
		t.Error("expected signed-in state")
	}
}

func TestAskRendersAnswerAndDropsPlaceholder(t *testing.T) {
	s, c, gen := newTestSession(t)
	s.Handle(command("1", wstypes.CmdSignUp, map[string]string{"email": "leo@example.com", "password": "segredo"}))
	c.waitFor(t, "sign_up result", resultFor(wstypes.CmdSignUp))
	// chat initialization replays history; let it finish before asking
	c.waitFor(t, "suggestions", func(e wstypes.Event) bool { return e.Type == wstypes.EvtSuggestions })

	s.Handle(command("2", wstypes.CmdAsk, map[string]string{"question": "Explique a luz"}))
	res := c.waitFor(t, "ask result", resultFor(wstypes.CmdAsk)).Payload.(wstypes.ResultEvent)
	if !res.Success || res.Data != "A luz é energia." || res.Provider != "openai" {
		t.Fatalf("unexpected result %+v", res)
	}
	if gen.calls.Load() != 1 {
		t.Errorf("expected one generation call, got %d", gen.calls.Load())
	}

	msgs := s.Panel().Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected question and answer, got %+v", msgs)
	}
	if msgs[0].Sender != panel.SenderUser || msgs[1].Sender != panel.SenderAssistant || msgs[1].Pending {
		t.Errorf("unexpected transcript %+v", msgs)
	}

	s.Handle(command("3", wstypes.CmdLoadHistory, nil))
	hist := c.waitFor(t, "history result", resultFor(wstypes.CmdLoadHistory)).Payload.(wstypes.ResultEvent)
	if !hist.Success || hist.Data != 2 {
		t.Errorf("expected 2 replayed messages, got %+v", hist)
	}
}

func TestOffTopicAskIsRejectedInline(t *testing.T) {
	s, c, gen := newTestSession(t)
	signUp(t, s, c, "caio@example.com")
	c.waitFor(t, "suggestions", func(e wstypes.Event) bool { return e.Type == wstypes.EvtSuggestions })

	s.Handle(command("1", wstypes.CmdAsk, map[string]string{"question": "Qual seu time de futebol favorito?"}))
	res := c.waitFor(t, "ask result", resultFor(wstypes.CmdAsk)).Payload.(wstypes.ResultEvent)
	if res.Success || res.Error != config.DefaultTopics().Messages.OffTopic || res.Suggestion != "" {
		t.Fatalf("unexpected result %+v", res)
	}
	if gen.calls.Load() != 0 {
		t.Errorf("expected no API call, got %d", gen.calls.Load())
	}
	msgs := s.Panel().Messages()
	if len(msgs) != 2 || !msgs[1].Error {
		t.Errorf("expected question plus inline error, got %+v", msgs)
	}
}

func TestAskRequiresSignIn(t *testing.T) {
	s, c, gen := newTestSession(t)

	for i := 0; i < 3; i++ {
		s.Handle(command(strconv.Itoa(i), wstypes.CmdAsk, map[string]string{"question": "Explique a luz"}))
	}
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		n := 0
		for _, e := range c.events {
			if r, ok := e.Payload.(wstypes.ResultEvent); ok && r.Command == wstypes.CmdAsk {
				if r.Success || r.Error != auth.ErrNotSignedIn.Error() {
					t.Errorf("unexpected result %+v", r)
				}
				n++
			}
		}
		c.mu.Unlock()
		if n == 3 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if gen.calls.Load() != 0 {
		t.Errorf("signed out asks must not reach the provider, got %d calls", gen.calls.Load())
	}
	if s.Panel().Count() != 0 {
		t.Errorf("expected empty transcript, got %q", transcript(s))
	}
}

func TestAskIsRateLimitedPerUser(t *testing.T) {
	gen := &stubGenerator{}
	s, c := newTestSessionWith(t, gen, func(d *Deps) { d.Limiter = middlewares.NewRateLimiter(1) })
	signUp(t, s, c, "rita@example.com")
	c.waitFor(t, "suggestions", func(e wstypes.Event) bool { return e.Type == wstypes.EvtSuggestions })

	s.Handle(command("1", wstypes.CmdAsk, map[string]string{"question": "Explique a luz"}))
	c.waitFor(t, "first ask", func(e wstypes.Event) bool {
		r, ok := e.Payload.(wstypes.ResultEvent)
		return ok && r.ID == "1" && r.Success
	})
	s.Handle(command("2", wstypes.CmdAsk, map[string]string{"question": "Explique o som"}))
	res := c.waitFor(t, "second ask", func(e wstypes.Event) bool {
		r, ok := e.Payload.(wstypes.ResultEvent)
		return ok && r.ID == "2"
	}).Payload.(wstypes.ResultEvent)
	if res.Success || res.Error != ErrRateLimited.Error() {
		t.Errorf("expected rate limit rejection, got %+v", res)
	}
	if gen.calls.Load() != 1 {
		t.Errorf("expected one provider call, got %d", gen.calls.Load())
	}
}

func TestAskDuringChatOpeningKeepsQuestion(t *testing.T) {
	gen := &blockingGenerator{release: make(chan struct{})}
	s, c := newTestSessionWith(t, gen, func(d *Deps) { d.ScreenDelay = 100 * time.Millisecond })
	signUp(t, s, c, "lia@example.com")

	// the chat screen is still in its transition delay
	s.Handle(command("1", wstypes.CmdAsk, map[string]string{"question": "Explique a luz"}))
	c.waitFor(t, "suggestions", func(e wstypes.Event) bool { return e.Type == wstypes.EvtSuggestions })

	if got, want := transcript(s), "user:Explique a luz assistant:...(pending)"; got != want {
		t.Fatalf("after chat opened: expected %q, got %q", want, got)
	}
	close(gen.release)
	c.waitFor(t, "ask result", resultFor(wstypes.CmdAsk))
	if got, want := transcript(s), "user:Explique a luz assistant:Resposta."; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestAuthStateAndPasswordCommands(t *testing.T) {
	s, c, _ := newTestSession(t)

	s.Handle(command("1", wstypes.CmdUpdatePassword, map[string]string{"password": "novasenha"}))
	if res := c.waitFor(t, "update while signed out", resultFor(wstypes.CmdUpdatePassword)).Payload.(wstypes.ResultEvent); res.Success || res.Error != auth.ErrNotSignedIn.Error() {
		t.Fatalf("unexpected result %+v", res)
	}

	signUp(t, s, c, "davi@example.com")
	s.Handle(command("2", wstypes.CmdGetAuthState, nil))
	state := c.waitFor(t, "auth state", resultFor(wstypes.CmdGetAuthState)).Payload.(wstypes.ResultEvent)
	if sess, ok := state.Data.(*auth.Session); !state.Success || !ok || sess.User.Email != "davi@example.com" {
		t.Fatalf("unexpected auth state %+v", state)
	}

	s.Handle(command("3", wstypes.CmdResetPassword, map[string]string{"email": "davi@example.com"}))
	if res := c.waitFor(t, "reset", resultFor(wstypes.CmdResetPassword)).Payload.(wstypes.ResultEvent); !res.Success {
		t.Errorf("reset failed: %+v", res)
	}
	c.waitFor(t, "reset notice", func(e wstypes.Event) bool {
		n, ok := e.Payload.(wstypes.NoticeEvent)
		return ok && n.Text == msgResetSent
	})

	s.Handle(command("4", wstypes.CmdUpdatePassword, map[string]string{"password": "novasenha"}))
	c.waitFor(t, "update", func(e wstypes.Event) bool {
		r, ok := e.Payload.(wstypes.ResultEvent)
		return ok && r.ID == "4" && r.Success
	})
	s.Handle(command("5", wstypes.CmdSignIn, map[string]string{"email": "davi@example.com", "password": "novasenha"}))
	c.waitFor(t, "sign in with new password", func(e wstypes.Event) bool {
		r, ok := e.Payload.(wstypes.ResultEvent)
		return ok && r.ID == "5" && r.Success
	})
}

func TestSignOutReturnsToAuth(t *testing.T) {
	s, c, _ := newTestSession(t)
	s.Handle(command("1", wstypes.CmdSignUp, map[string]string{"email": "bia@example.com", "password": "segredo"}))
	c.waitFor(t, "chat screen", screenShown(screen.Chat))

	s.Handle(command("2", wstypes.CmdSignOut, nil))
	if res := c.waitFor(t, "sign_out result", resultFor(wstypes.CmdSignOut)).Payload.(wstypes.ResultEvent); !res.Success {
		t.Fatalf("sign out failed: %+v", res)
	}
	deadline := time.Now().Add(3 * time.Second)
	for s.Router().Current() != screen.Auth && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if s.Router().Current() != screen.Auth {
		t.Errorf("expected auth screen, got %q", s.Router().Current())
	}
	if s.Panel().Count() != 0 || s.State().SignedIn() {
		t.Error("expected empty panel and signed-out state")
	}
}

func TestBadCommands(t *testing.T) {
	s, c, _ := newTestSession(t)

	s.Handle(wstypes.Command{ID: "x", Type: "dance"})
	if res := c.waitFor(t, "unknown result", resultFor("dance")).Payload.(wstypes.ResultEvent); res.Success {
		t.Error("unknown command must fail")
	}
	s.Handle(wstypes.Command{ID: "y", Type: wstypes.CmdSignIn})
	if res := c.waitFor(t, "sign_in result", resultFor(wstypes.CmdSignIn)).Payload.(wstypes.ResultEvent); res.Success || res.Error != "missing payload" {
		t.Errorf("unexpected result %+v", res)
	}
	s.Handle(command("z", wstypes.CmdShowScreen, map[string]string{"screen": "settings"}))
	if res := c.waitFor(t, "show_screen result", resultFor(wstypes.CmdShowScreen)).Payload.(wstypes.ResultEvent); res.Success {
		t.Error("unknown screen must fail")
	}
}
