// Package start реализует HTTP-обработчик начала аренды пауэрбанка.
//
// Handler декодирует тело запроса, валидирует его и вызывает машину
// состояний аренды. Конфликты инвентаря (занятое устройство, вторая
// аренда, заблокированный аккаунт) возвращаются со статусом 409.
package start

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

// Handler обрабатывает запросы на начало аренды.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики начала аренды.
type Service interface {
	Start(ctx context.Context, userUID string, req models.StartRentalRequest) (*models.Rental, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP обрабатывает POST-запрос на начало аренды.
//
// @Summary Начать аренду пауэрбанка
// @Tags rentals
// @Accept json
// @Produce json
// @Param request body models.StartRentalRequest true "Код устройства и станция"
// @Success 200 {object} response.Response "Созданная аренда"
// @Failure 409 {object} response.ErrorResponse "Конфликт инвентаря"
// @Router /rentals [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.rental.start"

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

	var req models.StartRentalRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode request"))
		return
	}
	log.Info("request body decoded", slog.Any("request", req))

	if err := h.validate.Struct(req); err != nil {
		validateErr := err.(validator.ValidationErrors)
		log.Error("invalid request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(validateErr))
		return
	}

	rental, err := h.service.Start(r.Context(), userUID, req)
	if err != nil {
		log.Error("failed to start rental", sl.Err(err))
		render.Status(r, response.StatusForError(err))
		render.JSON(w, r, response.Error("failed to start rental"))
		return
	}

	log.Info("rental started", slog.String("rental_code", rental.RentalCode))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"rental": models.NewRentalResponse(rental),
	}))
}
