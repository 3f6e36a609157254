package httpapi

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/nimafallahian/catalog-sync/internal/domain"
	"github.com/nimafallahian/catalog-sync/internal/ports"
	"github.com/nimafallahian/catalog-sync/internal/service"
)

type errorBody struct {
	Error string `json:"error"`
}

type webhookHandler struct {
	dispatcher ports.EventDispatcher
	config     service.IntegrationConfigFunc
	logger     *slog.Logger
}

func (h *webhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := h.logger.With("request_id", middleware.GetReqID(r.Context()))

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		status := http.StatusBadRequest
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeError(w, r, status, err)
		return
	}

	evt, err := domain.ParseWebhookEvent(raw)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	log = log.With("event", evt.Event)

	cfg, err := h.config()
	if err != nil {
		log.Error("failed to load integration config", "error", err)
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}

	resp, err := h.dispatcher.Dispatch(r.Context(), cfg, evt)
	if err != nil {
		log.Error("webhook dispatch failed", "error", err)
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}

	log.Debug("webhook handled", "status", resp.StatusCode)
	writeResponse(w, resp)
}

func writeResponse(w http.ResponseWriter, resp domain.Response) {
	status := resp.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	if resp.Body != "" {
		if resp.IsJSON() {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
		} else {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		}
	}
	w.WriteHeader(status)
	if resp.Body != "" {
		_, _ = io.WriteString(w, resp.Body)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	render.Status(r, status)
	render.JSON(w, r, errorBody{Error: err.Error()})
}
