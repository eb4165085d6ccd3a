package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Sternrassler/catalog-client/pkg/client"
	"github.com/Sternrassler/catalog-client/pkg/favorites"
	"github.com/Sternrassler/catalog-client/pkg/ratelimit"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type errorResponse struct {
	Error string `json:"error"`
}

type addFavoriteRequest struct {
	ProductID int `json:"product_id"`
}

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *server) readiness(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("Readiness check failed")
			http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *server) listProducts(w http.ResponseWriter, r *http.Request) {
	items, err := s.catalog.ListAll(r.Context())
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *server) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	item, err := s.catalog.GetByID(r.Context(), id)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *server) stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Stats(r.Context()))
}

func (s *server) clearCache(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.InvalidateAll(r.Context()); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Failed to clear catalog cache")
		writeError(w, http.StatusInternalServerError, "failed to clear cache")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) listFavorites(w http.ResponseWriter, r *http.Request) {
	userID, ok := userParam(w, r)
	if !ok {
		return
	}

	list, err := s.favorites.ListFavorites(r.Context(), userID)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Int64("user_id", userID).Msg("Failed to list favorites")
		writeError(w, http.StatusInternalServerError, "failed to list favorites")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *server) addFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := userParam(w, r)
	if !ok {
		return
	}

	var req addFavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID <= 0 {
		writeError(w, http.StatusBadRequest, "body must be {\"product_id\": <positive integer>}")
		return
	}

	record, err := s.favorites.AddFavorite(r.Context(), userID, req.ProductID)
	switch {
	case errors.Is(err, favorites.ErrProductNotFound):
		writeError(w, http.StatusUnprocessableEntity, "product could not be confirmed")
	case errors.Is(err, favorites.ErrAlreadyFavorite):
		writeError(w, http.StatusConflict, "product already in favorites")
	case err != nil:
		zerolog.Ctx(r.Context()).Error().Err(err).Int64("user_id", userID).Msg("Failed to add favorite")
		writeError(w, http.StatusInternalServerError, "failed to add favorite")
	default:
		writeJSON(w, http.StatusCreated, record)
	}
}

// userParam parses the {user} path parameter, writing 400 on failure.
func userParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "user"), 10, 64)
	if err != nil || userID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return 0, false
	}
	return userID, true
}

// writeFailure maps catalog errors to responses.
func writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	var failure *client.Failure
	switch {
	case errors.As(err, &failure) && failure.Kind == client.KindRateLimitExceeded:
		w.Header().Set("Retry-After", strconv.Itoa(ratelimit.Seconds(failure.RetryAfter)))
		writeError(w, http.StatusServiceUnavailable, "catalog rate limit exceeded")
	case errors.Is(err, client.ErrUpstreamUnavailable):
		writeError(w, http.StatusServiceUnavailable, "catalog unavailable")
	case errors.Is(err, client.ErrContextCancelled):
		writeError(w, http.StatusServiceUnavailable, "request cancelled")
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Catalog request failed")
		writeError(w, http.StatusBadGateway, "invalid catalog response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
