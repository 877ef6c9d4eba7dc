// Package reportlost реализует HTTP-обработчик отметки устройства
// утерянным. Аренда закрывается, депозит удерживается целиком.
package reportlost

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

// Handler обрабатывает запросы на отметку устройства утерянным.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики утери устройства.
type Service interface {
	ReportLost(ctx context.Context, userUID, rentalCode, notes string) (*models.Rental, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP обрабатывает POST-запрос на отметку устройства утерянным.
//
// @Summary Сообщить об утере устройства
// @Tags rentals
// @Accept json
// @Produce json
// @Param code path string true "Код аренды"
// @Param request body models.ReportLostRequest true "Обстоятельства утери"
// @Success 200 {object} response.Response "Закрытая аренда"
// @Failure 409 {object} response.ErrorResponse "Аренда уже завершена"
// @Router /rentals/{code}/lost [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.rental.reportlost"

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

	var req models.ReportLostRequest
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

	rental, err := h.service.ReportLost(r.Context(), userUID, rentalCode, req.Notes)
	if err != nil {
		log.Error("failed to report lost device", sl.Err(err))
		render.Status(r, response.StatusForError(err))
		render.JSON(w, r, response.Error("failed to report lost device"))
		return
	}

	log.Info("rental closed as lost", slog.String("rental_code", rental.RentalCode))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"rental": models.NewRentalResponse(rental),
	}))
}
