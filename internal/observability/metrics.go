package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SessionsIssued counts issued session tokens by persistence.
	SessionsIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "talkshalk_sessions_issued_total",
		Help: "Total number of session tokens issued",
	}, []string{"persistent"})

	// AuthFailures counts rejected credentials and sessions by reason.
	AuthFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "talkshalk_auth_failures_total",
		Help: "Total number of failed authentication attempts",
	}, []string{"reason"})

	// LikeToggles counts like toggles by resulting state.
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "talkshalk_like_toggles_total",
		Help: "Total number of like toggles",
	}, []string{"result"})

	// ContentMutations counts creates and deletes on posts and comments.
	ContentMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "talkshalk_content_mutations_total",
		Help: "Total number of content mutations by entity and operation",
	}, []string{"entity", "operation"})

	// RedisErrors counts Redis errors by command.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "talkshalk_redis_errors_total",
		Help: "Total number of Redis errors by operation",
	}, []string{"operation"})
)

// RecordSessionIssued increments the issued-session counter.
func RecordSessionIssued(persistent bool) {
	SessionsIssued.WithLabelValues(strconv.FormatBool(persistent)).Inc()
}

// RecordLikeToggle increments the like toggle counter for the resulting state.
func RecordLikeToggle(liked bool) {
	result := "unliked"
	if liked {
		result = "liked"
	}
	LikeToggles.WithLabelValues(result).Inc()
}

// RecordMutation increments the content mutation counter.
func RecordMutation(entity, operation string) {
	ContentMutations.WithLabelValues(entity, operation).Inc()
}
