package metrics

import (
	"birthdaybook/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels shared by the auth counters.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

var (
	// HTTPRequestCounter conta o total de requisições HTTP.
	HTTPRequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "birthdaybook_http_requests_total",
			Help: "Total number of HTTP requests processed.",
		},
		[]string{"method", "path", "status_code"},
	)

	// HTTPRequestDuration observa a duração das requisições HTTP.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "birthdaybook_http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// LoginAttempts counts login form submissions that passed validation, by result.
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "birthdaybook_login_attempts_total",
			Help: "Login attempts by result.",
		},
		[]string{"result"},
	)

	// Registrations counts created accounts.
	Registrations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "birthdaybook_registrations_total",
		Help: "Accounts created through the registration form.",
	})

	// ResetEmails counts password reset emails handed to the notifier, by result.
	ResetEmails = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "birthdaybook_password_reset_emails_total",
			Help: "Password reset emails by send result.",
		},
		[]string{"result"},
	)

	// AppInfo expõe informações sobre a aplicação.
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "birthdaybook_app_info",
			Help: "Information about the birthdaybook application.",
		},
		[]string{"version"},
	)
)

func init() {
	version := config.Cfg.AppVersion
	if version == "" {
		version = "unknown"
	}
	AppInfo.With(prometheus.Labels{"version": version}).Set(1)
}
