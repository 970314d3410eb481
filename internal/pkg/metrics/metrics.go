package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	accessVerdicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devtogether_access_verdicts_total",
			Help: "Access policy verdicts by kind and reason.",
		},
		[]string{"kind", "reason"},
	)

	notificationResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devtogether_notification_resolutions_total",
			Help: "Notifications resolved to a navigation target, by type and destination path kind.",
		},
		[]string{"type", "external"},
	)

	notificationsPurged = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "devtogether_notifications_purged_total",
		Help: "Read notifications deleted by the retention worker.",
	})
)

// Init registers the collectors in the default registry. Call once from main.
func Init() {
	prometheus.MustRegister(accessVerdicts, notificationResolutions, notificationsPurged)
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func ObserveVerdict(kind, reason string) {
	accessVerdicts.WithLabelValues(kind, reason).Inc()
}

func ObserveResolution(notificationType string, external bool) {
	label := "false"
	if external {
		label = "true"
	}
	notificationResolutions.WithLabelValues(notificationType, label).Inc()
}

func ObservePurged(n int64) {
	notificationsPurged.Add(float64(n))
}
