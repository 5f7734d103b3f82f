package handler

import (
	"errors"
	"net/http"

	"tariffsvc/internal/domain"

	"github.com/sirupsen/logrus"
)

// GetTariffs serves the direct-read path: every request goes to the
// store, the cache is never consulted.
func (h *Handler) GetTariffs(w http.ResponseWriter, r *http.Request) {
	base, limit, offset, err := parseListQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "limit and offset must be integers")
		return
	}

	page, err := h.service.GetTariffs(r.Context(), base, limit, offset)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		msg := "ups, couldn't list tariffs this time"
		logrus.WithError(err).WithFields(logrus.Fields{"handler": "GetTariffs", "base": base}).Error(msg)
		writeError(w, http.StatusInternalServerError, msg)
		return
	}

	writeJSON(w, page)
}
