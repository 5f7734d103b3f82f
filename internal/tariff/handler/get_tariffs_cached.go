package handler

import (
	"errors"
	"net/http"

	"tariffsvc/internal/domain"

	"github.com/sirupsen/logrus"
)

// GetTariffsCached serves the cache-aside path.
func (h *Handler) GetTariffsCached(w http.ResponseWriter, r *http.Request) {
	base, limit, offset, err := parseListQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "limit and offset must be integers")
		return
	}

	page, err := h.service.GetTariffsCached(r.Context(), base, limit, offset)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		msg := "ups, couldn't list tariffs this time"
		logrus.WithError(err).WithFields(logrus.Fields{"handler": "GetTariffsCached", "base": base}).Error(msg)
		writeError(w, http.StatusInternalServerError, msg)
		return
	}

	writeJSON(w, page)
}
