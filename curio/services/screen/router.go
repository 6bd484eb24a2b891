// Package screen switches a client between the auth and chat views.
package screen

import (
	"context"
	"curio/curio/services/authstate"
	"curio/curio/utils/logging"
	wstypes "curio/curio/utils/types"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	Auth = "auth"
	Chat = "chat"
)

// EnterChatFunc initializes the conversation panel when chat becomes visible.
type EnterChatFunc func(ctx context.Context) error

type Notifier interface {
	Error(text string)
}

type Subscribable interface {
	Subscribe(fn func(authstate.State)) func()
}

type Router struct {
	out       wstypes.Emitter
	delay     time.Duration
	enterChat EnterChatFunc
	notifier  Notifier

	// transition serializes ShowScreen calls.
	transition sync.Mutex

	mu          sync.Mutex
	current     string
	pending     []string
	unsubscribe func()
	attached    bool
	closed      bool
	wake        chan struct{}
	done        chan struct{}
	loopDone    chan struct{}
	ctx         context.Context
	cancel      context.CancelFunc
}

func NewRouter(out wstypes.Emitter, delay time.Duration, enterChat EnterChatFunc, notifier Notifier) *Router {
	ctx, cancel := context.WithCancel(context.Background())
	return &Router{
		out:       out,
		delay:     delay,
		enterChat: enterChat,
		notifier:  notifier,
		wake:      make(chan struct{}, 1),
		done:      make(chan struct{}),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Current returns the visible screen, or "" during a transition.
func (r *Router) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// ShowScreen hides the visible screen, waits the transition delay and reveals target.
// Showing the screen that is already visible does nothing.
func (r *Router) ShowScreen(ctx context.Context, target string) error {
	r.transition.Lock()
	defer r.transition.Unlock()

	r.mu.Lock()
	prev := r.current
	if prev == target {
		r.mu.Unlock()
		return nil
	}
	r.current = ""
	r.mu.Unlock()

	if prev != "" {
		r.emit(prev, false)
	}
	if r.delay > 0 {
		t := time.NewTimer(r.delay)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		}
	}

	r.mu.Lock()
	r.current = target
	r.mu.Unlock()
	r.emit(target, true)

	if target == Chat && r.enterChat != nil {
		if err := r.enterChat(ctx); err != nil {
			logging.ErrorLogger.Error("chat initialization failed", zap.Error(err))
			if r.notifier != nil {
				r.notifier.Error(err.Error())
			}
		}
	}
	return nil
}

func (r *Router) emit(screen string, visible bool) {
	r.out.Emit(wstypes.Event{
		Type:    wstypes.EvtScreen,
		Payload: wstypes.ScreenEvent{Screen: screen, Visible: visible},
	})
}

// Attach follows subject: a session shows chat, no session shows auth.
// Transitions run in order on a background goroutine. The returned func unsubscribes.
func (r *Router) Attach(subject Subscribable) func() {
	r.mu.Lock()
	if r.closed || r.attached {
		r.mu.Unlock()
		return func() {}
	}
	r.attached = true
	r.loopDone = make(chan struct{})
	r.mu.Unlock()

	go r.loop()

	unsubscribe := subject.Subscribe(func(st authstate.State) {
		target := Auth
		if st.SignedIn() {
			target = Chat
		}
		r.enqueue(target)
	})

	r.mu.Lock()
	r.unsubscribe = unsubscribe
	r.mu.Unlock()
	return r.detach
}

func (r *Router) detach() {
	r.mu.Lock()
	unsubscribe := r.unsubscribe
	r.unsubscribe = nil
	r.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

func (r *Router) enqueue(target string) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.pending = append(r.pending, target)
	r.mu.Unlock()

	select {
	case r.wake <- struct{}{}:
	default:
	}
}

func (r *Router) loop() {
	defer close(r.loopDone)
	for {
		select {
		case <-r.done:
			return
		case <-r.wake:
		}
		for {
			r.mu.Lock()
			if len(r.pending) == 0 || r.closed {
				r.mu.Unlock()
				break
			}
			target := r.pending[0]
			r.pending = r.pending[1:]
			r.mu.Unlock()

			if err := r.ShowScreen(r.ctx, target); err != nil {
				return
			}
		}
	}
}

// Close detaches from the subject and stops pending transitions.
func (r *Router) Close() {
	r.detach()

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.pending = nil
	loopDone := r.loopDone
	r.mu.Unlock()

	r.cancel()
	close(r.done)
	if loopDone != nil {
		<-loopDone
	}
}
