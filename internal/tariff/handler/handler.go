package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"tariffsvc/internal/domain"
	"tariffsvc/internal/tariff"
)

const (
	defaultLimit  = 500
	defaultOffset = 0
)

type TariffService interface {
	GetTariffs(ctx context.Context, base string, limit, offset int) (*tariff.Page, error)
	GetTariffsCached(ctx context.Context, base string, limit, offset int) (*tariff.Page, error)
	GetTariffByID(ctx context.Context, id int64) (*tariff.View, error)
}

type Handler struct {
	service TariffService
}

func NewTariffHandler(service TariffService) *Handler {
	return &Handler{service: service}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, statusCode int, errorMsg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error: errorMsg,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}

// parseListQuery reads base/limit/offset query params. Unparsable
// numbers map onto ErrInvalidArgument; range checks belong to the
// service.
func parseListQuery(r *http.Request) (base string, limit, offset int, err error) {
	q := r.URL.Query()
	base = q.Get("base")

	limit = defaultLimit
	if raw := q.Get("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil {
			return "", 0, 0, domain.ErrInvalidArgument
		}
	}

	offset = defaultOffset
	if raw := q.Get("offset"); raw != "" {
		if offset, err = strconv.Atoi(raw); err != nil {
			return "", 0, 0, domain.ErrInvalidArgument
		}
	}
	return base, limit, offset, nil
}
