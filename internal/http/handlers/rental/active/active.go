// Package active реализует HTTP-обработчик чтения текущей аренды
// пользователя. Просрочка отдаётся как проекция статуса, вместе с
// накопленным счётом и прогнозом штрафа на момент запроса.
package active

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/askchiwa/chajipoa-core/internal/http/middlewarectx"
	"github.com/askchiwa/chajipoa-core/internal/http/response"
	"github.com/askchiwa/chajipoa-core/internal/lib/sl"
	"github.com/askchiwa/chajipoa-core/internal/models"
	rentalservice "github.com/askchiwa/chajipoa-core/internal/services/rental"
)

// Handler обрабатывает запросы на чтение активной аренды.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения активной аренды.
type Service interface {
	Active(ctx context.Context, userUID string) (*rentalservice.ActiveRentalView, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP обрабатывает GET-запрос на чтение активной аренды.
//
// @Summary Получить активную аренду
// @Tags rentals
// @Produce json
// @Success 200 {object} response.Response "Аренда с накопленным счётом"
// @Failure 404 {object} response.ErrorResponse "Активной аренды нет"
// @Router /rentals/active [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.rental.active"

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

	view, err := h.service.Active(r.Context(), userUID)
	if err != nil {
		log.Error("failed to read active rental", sl.Err(err))
		render.Status(r, response.StatusForError(err))
		render.JSON(w, r, response.Error("no active rental found"))
		return
	}

	rentalResp := models.NewRentalResponse(view.Rental)
	rentalResp.Status = string(view.EffectiveStatus)

	log.Info("active rental read", slog.String("rental_code", view.Rental.RentalCode))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"rental":             rentalResp,
		"accrued_base":       view.AccruedCharge.Base.StringFixed(2),
		"accrued_tax":        view.AccruedCharge.Tax.StringFixed(2),
		"accrued_total":      view.AccruedCharge.Total.StringFixed(2),
		"projected_late_fee": view.ProjectedLateFee.StringFixed(2),
	}))
}
