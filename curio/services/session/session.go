// Package session is the application state of one connected client.
package session

import (
	"context"
	"curio/curio/config"
	"curio/curio/services/ai"
	"curio/curio/services/auth"
	"curio/curio/services/authstate"
	"curio/curio/services/feedback"
	"curio/curio/services/panel"
	"curio/curio/services/screen"
	"curio/curio/sources/psql/models"
	"curio/curio/types"
	"curio/curio/utils/logging"
	wstypes "curio/curio/utils/types"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	historyLimit = 50
	outboxSize   = 64

	msgSignedIn        = "Login realizado com sucesso!"
	msgSignedUp        = "Conta criada e login realizado com sucesso!"
	msgAutoLoginFail   = "Conta criada, mas houve um erro no login automático. Tente fazer login manualmente."
	msgSignedOut       = "Você saiu da sua conta."
	msgResetSent       = "Se o email estiver cadastrado, enviaremos as instruções de redefinição."
	msgPasswordUpdated = "Senha atualizada com sucesso!"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrRateLimited    = errors.New("muitas perguntas em pouco tempo, tente novamente em instantes")
)

// Limiter is the per-user budget shared with the HTTP ask route.
type Limiter interface {
	Allow(key string) bool
}

// Asker is the part of the orchestrator a session drives.
type Asker interface {
	Ask(ctx context.Context, userID int, question, provider string) (*ai.Answer, error)
	History(ctx context.Context, userID, limit int) ([]models.UserQuestion, error)
	Suggestions(ctx context.Context, userID int) []string
}

type Deps struct {
	Backend     auth.Backend
	AI          Asker
	Topics      *config.Topics
	ScreenDelay time.Duration
	Limiter     Limiter
}

type Session struct {
	ctx    context.Context
	cancel context.CancelFunc
	out    chan wstypes.Event

	ai      Asker
	topics  *config.Topics
	limiter Limiter

	subject  *authstate.Subject
	notifier *feedback.Notifier
	gateway  *auth.Gateway
	panel    *panel.Panel
	router   *screen.Router

	asks      sync.WaitGroup
	closeOnce sync.Once
}

// New builds the component graph and attaches the screen router to the auth state.
// The session lives until Close or until ctx ends.
func New(ctx context.Context, deps Deps) *Session {
	ctx, cancel := context.WithCancel(ctx)
	topics := deps.Topics
	if topics == nil {
		topics = config.DefaultTopics()
	}
	s := &Session{
		ctx:     ctx,
		cancel:  cancel,
		out:     make(chan wstypes.Event, outboxSize),
		ai:      deps.AI,
		topics:  topics,
		limiter: deps.Limiter,
		subject: authstate.NewSubject(),
	}
	s.notifier = feedback.NewNotifier(s)
	s.gateway = auth.NewGateway(deps.Backend, s.subject, s.notifier)
	s.panel = panel.New(s, historySource{s})
	s.router = screen.NewRouter(s, deps.ScreenDelay, s.panel.Init, s.notifier)
	s.router.Attach(s.subject)
	return s
}

// Emit queues an event for the writer; events are dropped once the session is closed.
func (s *Session) Emit(e wstypes.Event) {
	select {
	case s.out <- e:
	case <-s.ctx.Done():
	}
}

// Events is drained by the connection's single writer goroutine.
func (s *Session) Events() <-chan wstypes.Event {
	return s.out
}

func (s *Session) Done() <-chan struct{} {
	return s.ctx.Done()
}

func (s *Session) Panel() *panel.Panel {
	return s.panel
}

func (s *Session) Router() *screen.Router {
	return s.router
}

func (s *Session) State() authstate.State {
	return s.subject.Current()
}

// Restore signs the session in with a token issued over HTTP.
func (s *Session) Restore(token string) types.Result {
	return s.gateway.Restore(s.ctx, token)
}

// Close stops the router, waits for in-flight asks and releases the session.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		s.router.Close()
		s.asks.Wait()
	})
}

// Handle runs one client command. Asks complete asynchronously; their result
// event may arrive after results of later commands.
func (s *Session) Handle(cmd wstypes.Command) {
	switch cmd.Type {
	case wstypes.CmdSignUp:
		var req types.SignUpRequest
		if !s.decode(cmd, &req) {
			return
		}
		res := s.gateway.SignUp(s.ctx, req.Email, req.Password, auth.Meta{FullName: req.FullName})
		if res.Success {
			if login := s.gateway.SignIn(s.ctx, req.Email, req.Password); login.Success {
				s.notifier.Info(msgSignedUp)
				res = login
			} else {
				s.notifier.Error(msgAutoLoginFail)
			}
		}
		s.reply(cmd, res)

	case wstypes.CmdSignIn:
		var req types.SignInRequest
		if !s.decode(cmd, &req) {
			return
		}
		res := s.gateway.SignIn(s.ctx, req.Email, req.Password)
		if res.Success {
			s.notifier.Info(msgSignedIn)
		}
		s.reply(cmd, res)

	case wstypes.CmdSignOut:
		res := s.gateway.SignOut(s.ctx)
		if res.Success {
			s.panel.Reset()
			s.notifier.Info(msgSignedOut)
		}
		s.reply(cmd, res)

	case wstypes.CmdAsk:
		var req types.AskRequest
		if !s.decode(cmd, &req) {
			return
		}
		s.ask(cmd, req)

	case wstypes.CmdGetAuthState:
		s.reply(cmd, s.gateway.GetAuthState(s.ctx))

	case wstypes.CmdResetPassword:
		var req types.ResetPasswordRequest
		if !s.decode(cmd, &req) {
			return
		}
		res := s.gateway.ResetPassword(s.ctx, req.Email)
		if res.Success {
			s.notifier.Info(msgResetSent)
		}
		s.reply(cmd, res)

	case wstypes.CmdUpdatePassword:
		var req types.UpdatePasswordRequest
		if !s.decode(cmd, &req) {
			return
		}
		res := s.gateway.UpdatePassword(s.ctx, req.Password)
		if res.Success {
			s.notifier.Info(msgPasswordUpdated)
		}
		s.reply(cmd, res)

	case wstypes.CmdLoadHistory:
		if err := s.panel.LoadHistory(s.ctx); err != nil {
			s.notifier.Error(err.Error())
			s.reply(cmd, types.Fail(err))
			return
		}
		s.reply(cmd, types.OK(s.panel.Count()))

	case wstypes.CmdSuggestions:
		s.reply(cmd, types.OK(s.panel.LoadSuggestions(s.ctx)))

	case wstypes.CmdShowScreen:
		var req wstypes.ShowScreenPayload
		if !s.decode(cmd, &req) {
			return
		}
		if req.Screen != screen.Auth && req.Screen != screen.Chat {
			s.reply(cmd, types.Fail(fmt.Errorf("unknown screen %q", req.Screen)))
			return
		}
		if err := s.router.ShowScreen(s.ctx, req.Screen); err != nil {
			s.reply(cmd, types.Fail(err))
			return
		}
		s.reply(cmd, types.OK(req.Screen))

	default:
		s.reply(cmd, types.Fail(fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Type)))
	}
}

func (s *Session) ask(cmd wstypes.Command, req types.AskRequest) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		s.reply(cmd, types.Fail(errors.New("question is empty")))
		return
	}
	userID := s.subject.Current().UserID
	if userID == 0 {
		s.notifier.Error(auth.ErrNotSignedIn.Error())
		s.reply(cmd, types.Fail(auth.ErrNotSignedIn))
		return
	}
	if s.limiter != nil && !s.limiter.Allow("user:"+strconv.Itoa(userID)) {
		s.notifier.Error(ErrRateLimited.Error())
		s.reply(cmd, types.Fail(ErrRateLimited))
		return
	}
	q := s.panel.AddQuestion(question)
	placeholder := s.panel.AddMessage(s.topics.Messages.Thinking, panel.SenderAssistant, true)

	s.asks.Add(1)
	go func() {
		defer s.asks.Done()
		ans, err := s.ai.Ask(s.ctx, userID, question, req.Provider)
		if err != nil {
			logging.AppLogger.Info("ask failed", zap.Int("user_id", userID), zap.Error(err))
			s.panel.Resolve(q, placeholder, err.Error(), true)
			res := types.Fail(err)
			if !errors.Is(err, ai.ErrOffTopic) {
				res.Suggestion = s.topics.Messages.RetryHint
			}
			s.reply(cmd, res)
			return
		}
		s.panel.Resolve(q, placeholder, ans.Text, false)
		s.reply(cmd, types.Result{Success: true, Data: ans.Text, Provider: ans.Provider})
	}()
}

func (s *Session) decode(cmd wstypes.Command, v any) bool {
	if len(cmd.Payload) == 0 {
		s.reply(cmd, types.Fail(errors.New("missing payload")))
		return false
	}
	if err := json.Unmarshal(cmd.Payload, v); err != nil {
		s.reply(cmd, types.Fail(fmt.Errorf("invalid payload: %w", err)))
		return false
	}
	return true
}

func (s *Session) reply(cmd wstypes.Command, res types.Result) {
	s.Emit(wstypes.Event{
		Type:    wstypes.EvtResult,
		Payload: wstypes.ResultEvent{ID: cmd.ID, Command: cmd.Type, Result: res},
	})
}

// historySource feeds the panel from the signed-in user's records.
type historySource struct{ s *Session }

func (h historySource) History(ctx context.Context) ([]models.UserQuestion, error) {
	uid := h.s.subject.Current().UserID
	if uid == 0 {
		return nil, nil
	}
	return h.s.ai.History(ctx, uid, historyLimit)
}

func (h historySource) Suggestions(ctx context.Context) []string {
	return h.s.ai.Suggestions(ctx, h.s.subject.Current().UserID)
}
