// Package issue реализует HTTP-обработчик выпуска QR-сессии старта
// или возврата. Сессия живёт в быстром хранилище с TTL и потребляется
// строго один раз.
package issue

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/askchiwa/chajipoa-core/internal/http/middlewarectx"
	"github.com/askchiwa/chajipoa-core/internal/http/response"
	"github.com/askchiwa/chajipoa-core/internal/lib/sl"
	"github.com/askchiwa/chajipoa-core/internal/models"
)

// Handler обрабатывает запросы на выпуск QR-сессии.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс выпуска QR-сессий.
type Service interface {
	Issue(ctx context.Context, deviceID, stationID int64, userUID string, purpose models.QRPurpose) (*models.QRSession, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP обрабатывает POST-запрос на выпуск QR-сессии.
//
// @Summary Выпустить QR-сессию
// @Tags qr
// @Accept json
// @Produce json
// @Param request body models.IssueQRRequest true "Устройство, станция и назначение"
// @Success 200 {object} response.Response "Выпущенная сессия"
// @Router /qr/issue [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.qr.issue"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := middlewarectx.UserUIDFromContext(r.Context())
	if !ok {
		log.Error("user identification missing")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("user identification missing"))
		return
	}

	var req models.IssueQRRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode request"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		validateErr := err.(validator.ValidationErrors)
		log.Error("invalid request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(validateErr))
		return
	}

	session, err := h.service.Issue(r.Context(), req.DeviceID, req.StationID, userUID, models.QRPurpose(req.Purpose))
	if err != nil {
		log.Error("failed to issue qr session", sl.Err(err))
		render.Status(r, response.StatusForError(err))
		render.JSON(w, r, response.Error("failed to issue qr session"))
		return
	}

	log.Info("qr session issued", slog.String("session_id", session.SessionID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"session": session,
	}))
}
