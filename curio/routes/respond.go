package routes

import (
	"curio/curio/controllers"
	"curio/curio/middlewares"
	"curio/curio/services/ai"
	"curio/curio/services/auth"
	"curio/curio/services/llm"
	"curio/curio/types"
	"curio/curio/utils/logging"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

var errUnauthorized = errors.New("unauthorized")

// generic wrapper to reduce boilerplate; every reply is a types.Result
func handleJSON(handler func(r *http.Request) (any, int, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, status, err := handler(r)
		if err != nil {
			if status >= http.StatusInternalServerError {
				logging.ErrorLogger.Error("request failed",
					zap.String("path", r.URL.Path),
					zap.Int("status", status),
					zap.Error(err),
				)
			}
			writeJSON(w, status, types.Fail(err))
			return
		}
		if result, ok := res.(types.Result); ok {
			writeJSON(w, status, result)
			return
		}
		writeJSON(w, status, types.OK(res))
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ai.ErrOffTopic):
		return http.StatusUnprocessableEntity
	case errors.Is(err, llm.ErrProvider):
		return http.StatusBadGateway
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrSessionRevoked),
		errors.Is(err, auth.ErrNotSignedIn):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrEmailTaken),
		errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, controllers.ErrEmptyQuestion),
		errors.Is(err, controllers.ErrEmptyText):
		return http.StatusBadRequest
	case errors.Is(err, controllers.ErrUserNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func currentUser(r *http.Request) (int, error) {
	id, ok := middlewares.UserID(r.Context())
	if !ok {
		return 0, errUnauthorized
	}
	return id, nil
}
