// Package metrics определяет счётчики Prometheus для жизненного цикла аренды.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RentalsStarted количество успешно начатых аренд.
	RentalsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chajipoa_rentals_started_total",
		Help: "Number of successfully started rentals.",
	})
	// RentalsExtended количество продлений.
	RentalsExtended = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chajipoa_rentals_extended_total",
		Help: "Number of rental extensions.",
	})
	// RentalsCompleted количество завершённых аренд.
	RentalsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chajipoa_rentals_completed_total",
		Help: "Number of completed rentals.",
	})
	// RentalsLost количество аренд, завершившихся утерей устройства.
	RentalsLost = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chajipoa_rentals_lost_total",
		Help: "Number of rentals ended as lost device.",
	})
	// Conflicts количество отклонённых переходов (двойное бронирование и пр.).
	Conflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chajipoa_rental_conflicts_total",
		Help: "Number of lifecycle transitions rejected with a conflict.",
	})
)
