// Package feedback shows transient status and error banners to a client.
package feedback

import (
	"curio/curio/utils/logging"
	wstypes "curio/curio/utils/types"
	"time"

	"go.uber.org/zap"
)

const (
	KindInfo  = "info"
	KindError = "error"

	// Lifetime is how long a banner stays visible.
	Lifetime = 3 * time.Second
)

type Notifier struct {
	out wstypes.Emitter
	now func() time.Time
}

func NewNotifier(out wstypes.Emitter) *Notifier {
	return &Notifier{out: out, now: time.Now}
}

func (n *Notifier) Info(text string) {
	logging.AppLogger.Info("notice", zap.String("text", text))
	n.emit(KindInfo, text)
}

func (n *Notifier) Error(text string) {
	logging.ErrorLogger.Error("notice", zap.String("text", text))
	n.emit(KindError, text)
}

func (n *Notifier) emit(kind, text string) {
	n.out.Emit(wstypes.Event{
		Type: wstypes.EvtNotice,
		Payload: wstypes.NoticeEvent{
			Kind:      kind,
			Text:      text,
			ExpiresAt: n.now().Add(Lifetime),
		},
	})
}
