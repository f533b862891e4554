package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	reservationCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "smokyloft",
			Name:      "reservation_created_total",
			Help:      "Count of reservations persisted by the booking store.",
		},
	)

	reservationCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "smokyloft",
			Name:      "reservation_cancelled_total",
			Help:      "Count of reservations cancelled by guests.",
		},
	)

	wizardConfirm = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "smokyloft",
			Name:      "wizard_confirm_total",
			Help:      "Count of wizard confirmation attempts by result.",
		},
		[]string{"result"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(reservationCreated, reservationCancelled, wizardConfirm)
	})
}

func IncReservationCreated() {
	reservationCreated.Inc()
}

func IncReservationCancelled() {
	reservationCancelled.Inc()
}

func IncWizardConfirm(result string) {
	wizardConfirm.WithLabelValues(result).Inc()
}
