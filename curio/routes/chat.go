package routes

import (
	"curio/curio/controllers"
	"curio/curio/middlewares"
	"curio/curio/services/ai"
	"curio/curio/types"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func ChatRoutes(ctrl *controllers.ChatController, verifier middlewares.TokenVerifier, limiter *middlewares.RateLimiter) chi.Router {
	r := chi.NewRouter()
	r.Group(func(gr chi.Router) {
		gr.Use(middlewares.AuthMiddleware(verifier))

		// POST /chat/ask : one question, answered with {success, data, provider}
		gr.With(limiter.Middleware).Post("/ask", func(w http.ResponseWriter, r *http.Request) {
			userID, err := currentUser(r)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, types.Fail(err))
				return
			}
			var req types.AskRequest
			if err := decode(r, &req); err != nil {
				writeJSON(w, http.StatusBadRequest, types.Fail(err))
				return
			}
			ans, err := ctrl.Ask(r.Context(), userID, req.Question, req.Provider)
			if err != nil {
				res := types.Fail(err)
				if !errors.Is(err, ai.ErrOffTopic) && !errors.Is(err, controllers.ErrEmptyQuestion) {
					res.Suggestion = ctrl.RetryHint()
				}
				writeJSON(w, statusFor(err), res)
				return
			}
			writeJSON(w, http.StatusOK, types.Result{Success: true, Data: ans.Text, Provider: ans.Provider})
		})

		gr.Get("/history", handleJSON(func(r *http.Request) (any, int, error) {
			userID, err := currentUser(r)
			if err != nil {
				return nil, http.StatusUnauthorized, err
			}
			limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
			history, err := ctrl.History(r.Context(), userID, limit)
			if err != nil {
				return nil, statusFor(err), err
			}
			return history, http.StatusOK, nil
		}))

		gr.Get("/suggestions", handleJSON(func(r *http.Request) (any, int, error) {
			userID, err := currentUser(r)
			if err != nil {
				return nil, http.StatusUnauthorized, err
			}
			return ctrl.Suggestions(r.Context(), userID), http.StatusOK, nil
		}))
	})
	return r
}
