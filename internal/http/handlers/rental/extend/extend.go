// Package extend реализует HTTP-обработчик продления аренды.
//
// Продление доступно только для активной аренды: просроченная аренда
// возвращает 409, часы вне диапазона [1, 24] — 422.
package extend

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/askchiwa/chajipoa-core/internal/http/middlewarectx"
	"github.com/askchiwa/chajipoa-core/internal/http/response"
	"github.com/askchiwa/chajipoa-core/internal/lib/sl"
	"github.com/askchiwa/chajipoa-core/internal/models"
)

// Handler обрабатывает запросы на продление аренды.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики продления аренды.
type Service interface {
	Extend(ctx context.Context, userUID, rentalCode string, extraHours int) (*models.Rental, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP обрабатывает POST-запрос на продление аренды.
//
// @Summary Продлить аренду
// @Tags rentals
// @Accept json
// @Produce json
// @Param code path string true "Код аренды"
// @Param request body models.ExtendRentalRequest true "Часы продления"
// @Success 200 {object} response.Response "Аренда после продления"
// @Failure 409 {object} response.ErrorResponse "Аренда просрочена или завершена"
// @Router /rentals/{code}/extend [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.rental.extend"

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

	rentalCode := chi.URLParam(r, "code")
	if rentalCode == "" {
		log.Error("missing rental code in url")
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing rental code in url"))
		return
	}

	var req models.ExtendRentalRequest
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

	rental, err := h.service.Extend(r.Context(), userUID, rentalCode, req.ExtraHours)
	if err != nil {
		log.Error("failed to extend rental", sl.Err(err))
		render.Status(r, response.StatusForError(err))
		render.JSON(w, r, response.Error("failed to extend rental"))
		return
	}

	log.Info("rental extended",
		slog.String("rental_code", rental.RentalCode),
		slog.Int("extra_hours", req.ExtraHours))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"rental": models.NewRentalResponse(rental),
	}))
}
