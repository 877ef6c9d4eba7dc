// Package end реализует HTTP-обработчик завершения аренды с возвратом
// устройства на станцию.
package end

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

// Handler обрабатывает запросы на завершение аренды.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики завершения аренды.
type Service interface {
	End(ctx context.Context, userUID, rentalCode string, req models.EndRentalRequest) (*models.Rental, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP обрабатывает POST-запрос на завершение аренды.
//
// @Summary Завершить аренду
// @Tags rentals
// @Accept json
// @Produce json
// @Param code path string true "Код аренды"
// @Param request body models.EndRentalRequest true "Станция возврата"
// @Success 200 {object} response.Response "Завершённая аренда с финальным счётом"
// @Failure 409 {object} response.ErrorResponse "Аренда уже завершена или станция заполнена"
// @Router /rentals/{code}/end [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.rental.end"

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

	var req models.EndRentalRequest
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

	rental, err := h.service.End(r.Context(), userUID, rentalCode, req)
	if err != nil {
		log.Error("failed to end rental", sl.Err(err))
		render.Status(r, response.StatusForError(err))
		render.JSON(w, r, response.Error("failed to end rental"))
		return
	}

	log.Info("rental completed",
		slog.String("rental_code", rental.RentalCode),
		slog.String("total_amount", rental.TotalAmount.StringFixed(2)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"rental": models.NewRentalResponse(rental),
	}))
}
