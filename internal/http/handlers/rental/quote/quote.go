// Package quote реализует HTTP-обработчик расчёта стоимости аренды
// на заданное количество часов. Расчёт чистый, без обращения к базе.
package quote

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/askchiwa/chajipoa-core/internal/http/response"
	"github.com/askchiwa/chajipoa-core/internal/lib/sl"
	"github.com/askchiwa/chajipoa-core/internal/pricing"
)

// Handler обрабатывает запросы на расчёт стоимости.
type Handler struct {
	log      *slog.Logger
	service  Service
	currency string
}

// Service описывает интерфейс расчёта стоимости окна использования.
type Service interface {
	QuotePrice(elapsed time.Duration) pricing.Charge
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service, currency string) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		currency: currency,
	}
}

// ServeHTTP обрабатывает GET-запрос с параметром hours.
//
// @Summary Рассчитать стоимость аренды
// @Tags rentals
// @Produce json
// @Param hours query number true "Длительность в часах"
// @Success 200 {object} response.Response "Разбивка стоимости"
// @Failure 400 {object} response.ErrorResponse "Некорректная длительность"
// @Router /quote [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.rental.quote"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	hours, err := strconv.ParseFloat(r.URL.Query().Get("hours"), 64)
	if err != nil {
		log.Error("failed to decode hours from query", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode hours from query"))
		return
	}
	if hours <= 0 || hours > 24 {
		log.Error("hours out of range", slog.Float64("hours", hours))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("hours must be within (0, 24]"))
		return
	}

	charge := h.service.QuotePrice(time.Duration(hours * float64(time.Hour)))

	log.Info("quote calculated", slog.Float64("hours", hours))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"hours":    hours,
		"base":     charge.Base.StringFixed(2),
		"tax":      charge.Tax.StringFixed(2),
		"total":    charge.Total.StringFixed(2),
		"currency": h.currency,
	}))
}
