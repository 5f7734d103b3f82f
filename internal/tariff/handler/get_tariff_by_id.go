package handler

import (
	"errors"
	"net/http"
	"strconv"

	"tariffsvc/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

func (h *Handler) GetTariffByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be an integer")
		return
	}

	view, err := h.service.GetTariffByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrTariffNotFound) {
			writeError(w, http.StatusNotFound, "tariff not found")
			return
		}
		msg := "ups, couldn't get tariff this time"
		logrus.WithError(err).WithFields(logrus.Fields{"handler": "GetTariffByID", "id": id}).Error(msg)
		writeError(w, http.StatusInternalServerError, msg)
		return
	}

	writeJSON(w, view)
}
