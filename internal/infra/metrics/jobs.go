package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(videoJobsProcessedTotal) }

var videoJobsProcessedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "video_jobs_processed_total",
		Help: "Total number of video generation jobs processed, labeled by status.",
	},
	[]string{"status"}, // 'completed', 'failed'
)

func IncJob(status string) {
	videoJobsProcessedTotal.WithLabelValues(norm(status)).Inc()
}
