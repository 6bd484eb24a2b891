package routes

import (
	"curio/curio/controllers"
	"curio/curio/middlewares"
	"curio/curio/types"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func AuthRoutes(ctrl *controllers.AuthController, verifier middlewares.TokenVerifier) chi.Router {
	r := chi.NewRouter()

	r.Post("/signup", handleJSON(func(r *http.Request) (any, int, error) {
		var req types.SignUpRequest
		if err := decode(r, &req); err != nil {
			return nil, http.StatusBadRequest, err
		}
		s, err := ctrl.SignUp(r.Context(), req.Email, req.Password, req.FullName)
		if err != nil {
			return nil, statusFor(err), err
		}
		return s, http.StatusCreated, nil
	}))

	r.Post("/login", handleJSON(func(r *http.Request) (any, int, error) {
		var req types.SignInRequest
		if err := decode(r, &req); err != nil {
			return nil, http.StatusBadRequest, err
		}
		s, err := ctrl.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			return nil, statusFor(err), err
		}
		return s, http.StatusOK, nil
	}))

	r.Post("/password/reset", handleJSON(func(r *http.Request) (any, int, error) {
		var req types.ResetPasswordRequest
		if err := decode(r, &req); err != nil {
			return nil, http.StatusBadRequest, err
		}
		if err := ctrl.ResetPassword(r.Context(), req.Email); err != nil {
			return nil, statusFor(err), err
		}
		return types.OK(nil), http.StatusAccepted, nil
	}))

	// reset tokens are not sessions, so this route checks the token itself
	r.Put("/password", handleJSON(func(r *http.Request) (any, int, error) {
		token, ok := middlewares.BearerToken(r)
		if !ok {
			return nil, http.StatusUnauthorized, errUnauthorized
		}
		var req types.UpdatePasswordRequest
		if err := decode(r, &req); err != nil {
			return nil, http.StatusBadRequest, err
		}
		if err := ctrl.UpdatePassword(r.Context(), token, req.Password); err != nil {
			return nil, statusFor(err), err
		}
		return types.OK(nil), http.StatusOK, nil
	}))

	r.Group(func(gr chi.Router) {
		gr.Use(middlewares.AuthMiddleware(verifier))

		gr.Post("/logout", handleJSON(func(r *http.Request) (any, int, error) {
			if err := ctrl.Logout(r.Context(), middlewares.Token(r.Context())); err != nil {
				return nil, statusFor(err), err
			}
			return types.OK(nil), http.StatusOK, nil
		}))

		gr.Get("/session", handleJSON(func(r *http.Request) (any, int, error) {
			user, err := ctrl.Session(r.Context(), middlewares.Token(r.Context()))
			if err != nil {
				return nil, statusFor(err), err
			}
			return user, http.StatusOK, nil
		}))
	})
	return r
}
