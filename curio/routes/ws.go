package routes

import (
	"context"
	"curio/curio/middlewares"
	"curio/curio/services/session"
	"curio/curio/utils/logging"
	wstypes "curio/curio/utils/types"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"
)

const wsWriteTimeout = 10 * time.Second

// WSHandler serves one client session per connection. A token may be passed as
// ?token= or bearer header to resume a session opened over HTTP. Browser
// origins other than the server's own must match originPatterns.
func WSHandler(deps session.Deps, originPatterns []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: originPatterns})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusInternalError, "internal error")

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		s := session.New(ctx, deps)
		defer s.Close()

		token := r.URL.Query().Get("token")
		if token == "" {
			token, _ = middlewares.BearerToken(r)
		}
		if token != "" {
			s.Restore(token)
		}

		// single writer
		go func() {
			for {
				select {
				case e := <-s.Events():
					wctx, wcancel := context.WithTimeout(ctx, wsWriteTimeout)
					err := wsjson.Write(wctx, conn, e)
					wcancel()
					if err != nil {
						cancel()
						return
					}
				case <-s.Done():
					return
				}
			}
		}()

		for {
			var cmd wstypes.Command
			if err := wsjson.Read(ctx, conn, &cmd); err != nil {
				status := websocket.CloseStatus(err)
				if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && !errors.Is(err, context.Canceled) {
					logging.AppLogger.Info("websocket read ended", zap.Error(err))
				}
				break
			}
			s.Handle(cmd)
		}
		s.Close()
		conn.Close(websocket.StatusNormalClosure, "")
	}
}
