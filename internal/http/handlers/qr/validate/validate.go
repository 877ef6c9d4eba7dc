// Package validate реализует HTTP-обработчик проверки QR-сессии без
// её потребления. Истёкшая или отсутствующая сессия возвращает 410,
// расхождение устройства или станции — 409.
package validate

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/askchiwa/chajipoa-core/internal/http/response"
	"github.com/askchiwa/chajipoa-core/internal/lib/sl"
	"github.com/askchiwa/chajipoa-core/internal/models"
)

// Handler обрабатывает запросы на проверку QR-сессии.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс проверки QR-сессий.
type Service interface {
	Validate(ctx context.Context, sessionID string, observedDeviceID, observedStationID int64) (*models.QRSession, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP обрабатывает POST-запрос на проверку QR-сессии.
//
// @Summary Проверить QR-сессию
// @Tags qr
// @Accept json
// @Produce json
// @Param request body models.ValidateQRRequest true "Идентификатор сессии"
// @Success 200 {object} response.Response "Действующая сессия"
// @Failure 410 {object} response.ErrorResponse "Сессия истекла или не существует"
// @Router /qr/validate [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.qr.validate"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.ValidateQRRequest
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

	session, err := h.service.Validate(r.Context(), req.SessionID, req.DeviceID, req.StationID)
	if err != nil {
		log.Error("failed to validate qr session", sl.Err(err))
		render.Status(r, response.StatusForError(err))
		render.JSON(w, r, response.Error("failed to validate qr session"))
		return
	}

	log.Info("qr session validated", slog.String("session_id", session.SessionID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"session": session,
	}))
}
