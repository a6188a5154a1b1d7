package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(transcodePollsTotal) }

var transcodePollsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "transcode_polls_total",
		Help: "Remote transcode status polls, labeled by observed status.",
	},
	[]string{"status"}, // 'submitted', 'progressing', 'complete', 'error', 'canceled', 'poll_error'
)

func IncTranscodePoll(status string) {
	transcodePollsTotal.WithLabelValues(norm(status)).Inc()
}
