package routes

import (
	"curio/curio/controllers"
	"curio/curio/middlewares"
	"curio/curio/types"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

const maxAvatarBytes = 5 << 20

var errNotAnImage = errors.New("avatar must be an image")

func UserRoutes(ctrl *controllers.UserController, verifier middlewares.TokenVerifier) chi.Router {
	r := chi.NewRouter()
	r.Use(middlewares.AuthMiddleware(verifier))

	r.Get("/me", handleJSON(func(r *http.Request) (any, int, error) {
		id, err := currentUser(r)
		if err != nil {
			return nil, http.StatusUnauthorized, err
		}
		user, err := ctrl.GetUser(r.Context(), id)
		if err != nil {
			return nil, statusFor(err), err
		}
		return user, http.StatusOK, nil
	}))

	r.Put("/me", handleJSON(func(r *http.Request) (any, int, error) {
		id, err := currentUser(r)
		if err != nil {
			return nil, http.StatusUnauthorized, err
		}
		var req types.UpdateProfileRequest
		if err := decode(r, &req); err != nil {
			return nil, http.StatusBadRequest, err
		}
		user, err := ctrl.UpdateUser(r.Context(), id, req.FullName, req.AvatarURL)
		if err != nil {
			return nil, statusFor(err), err
		}
		return user, http.StatusOK, nil
	}))

	// POST /users/me/avatar : multipart field "avatar"
	r.Post("/me/avatar", handleJSON(func(r *http.Request) (any, int, error) {
		id, err := currentUser(r)
		if err != nil {
			return nil, http.StatusUnauthorized, err
		}
		r.Body = http.MaxBytesReader(nil, r.Body, maxAvatarBytes+1<<10)
		if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
			return nil, http.StatusBadRequest, err
		}
		file, header, err := r.FormFile("avatar")
		if err != nil {
			return nil, http.StatusBadRequest, err
		}
		defer file.Close()
		contentType := header.Header.Get("Content-Type")
		if !strings.HasPrefix(contentType, "image/") {
			return nil, http.StatusBadRequest, errNotAnImage
		}
		user, err := ctrl.UploadAvatar(r.Context(), id, header.Filename, contentType, file, header.Size)
		if err != nil {
			return nil, statusFor(err), err
		}
		return user, http.StatusOK, nil
	}))

	r.Get("/me/interests", handleJSON(func(r *http.Request) (any, int, error) {
		id, err := currentUser(r)
		if err != nil {
			return nil, http.StatusUnauthorized, err
		}
		rows, err := ctrl.GetInterests(r.Context(), id)
		if err != nil {
			return nil, statusFor(err), err
		}
		return rows, http.StatusOK, nil
	}))

	r.Post("/me/interests", handleJSON(func(r *http.Request) (any, int, error) {
		id, err := currentUser(r)
		if err != nil {
			return nil, http.StatusUnauthorized, err
		}
		var req types.InterestsRequest
		if err := decode(r, &req); err != nil {
			return nil, http.StatusBadRequest, err
		}
		rows, err := ctrl.AddInterests(r.Context(), id, req.Interests)
		if err != nil {
			return nil, statusFor(err), err
		}
		return rows, http.StatusCreated, nil
	}))

	r.Get("/me/stats", handleJSON(func(r *http.Request) (any, int, error) {
		id, err := currentUser(r)
		if err != nil {
			return nil, http.StatusUnauthorized, err
		}
		stats, err := ctrl.Stats(r.Context(), id)
		if err != nil {
			return nil, statusFor(err), err
		}
		return stats, http.StatusOK, nil
	}))

	r.Get("/me/similar", handleJSON(func(r *http.Request) (any, int, error) {
		id, err := currentUser(r)
		if err != nil {
			return nil, http.StatusUnauthorized, err
		}
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		users, err := ctrl.Similar(r.Context(), id, limit)
		if err != nil {
			return nil, statusFor(err), err
		}
		return users, http.StatusOK, nil
	}))

	return r
}
