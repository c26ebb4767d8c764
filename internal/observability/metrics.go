package observability

import (
	"errors"
	"strings"

	"freleefty/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by command.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "freleefty_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// PublishTotal counts publish attempts by outcome code.
	PublishTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "freleefty_publish_total",
		Help: "Publish attempts by result",
	}, []string{"result"})

	// UploadsTotal counts attachment uploads by outcome code.
	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "freleefty_uploads_total",
		Help: "Attachment uploads by result",
	}, []string{"result"})

	// PostCommitFailures counts filesystem side effects that failed after
	// their database transaction committed.
	PostCommitFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "freleefty_fs_post_commit_failures_total",
		Help: "Filesystem operations that failed after the database commit",
	}, []string{"op"})

	// PendingMovesReconciled counts pending file moves processed by the reconciler.
	PendingMovesReconciled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "freleefty_pending_moves_reconciled_total",
		Help: "Pending file moves processed by the reconciler",
	}, []string{"result"})

	// WebhookDeliveries counts webhook POSTs by outcome.
	WebhookDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "freleefty_webhook_deliveries_total",
		Help: "Webhook deliveries by result",
	}, []string{"result"})
)

// ResultLabel maps an operation error to a low-cardinality metric label.
func ResultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return strings.ToLower(appErr.Code)
	}
	return "error"
}
