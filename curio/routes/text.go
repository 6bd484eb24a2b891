package routes

import (
	"curio/curio/controllers"
	"curio/curio/middlewares"
	"curio/curio/services/llm"
	"curio/curio/types"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func TextRoutes(ctrl *controllers.TextController, verifier middlewares.TokenVerifier) chi.Router {
	r := chi.NewRouter()
	r.Use(middlewares.AuthMiddleware(verifier))

	analyze := func(run func(r *http.Request, req types.TextRequest) (llm.Response, error)) http.HandlerFunc {
		return handleJSON(func(r *http.Request) (any, int, error) {
			var req types.TextRequest
			if err := decode(r, &req); err != nil {
				return nil, http.StatusBadRequest, err
			}
			resp, err := run(r, req)
			if err != nil {
				return nil, statusFor(err), err
			}
			return resp, http.StatusOK, nil
		})
	}

	r.Post("/sentiment", analyze(func(r *http.Request, req types.TextRequest) (llm.Response, error) {
		return ctrl.Sentiment(r.Context(), req.Text, req.Provider)
	}))
	r.Post("/summarize", analyze(func(r *http.Request, req types.TextRequest) (llm.Response, error) {
		return ctrl.Summarize(r.Context(), req.Text, req.Provider)
	}))
	return r
}
