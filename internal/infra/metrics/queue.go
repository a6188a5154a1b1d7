package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		queueMessagesConsumedTotal,
		queueMessagesRequeuedTotal,
		queueMessagesPoisonTotal,
	)
}

var (
	queueMessagesConsumedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_messages_consumed_total",
			Help: "Messages successfully consumed and handled, per queue.",
		},
		[]string{"queue"},
	)

	queueMessagesRequeuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_messages_requeued_total",
			Help: "Messages returned to the queue after a handler failure, per queue.",
		},
		[]string{"queue"},
	)

	queueMessagesPoisonTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_messages_poison_total",
			Help: "Messages discarded as undecodable or of unknown type, per queue.",
		},
		[]string{"queue"},
	)
)

func IncQueueConsumed(queue string) {
	queueMessagesConsumedTotal.WithLabelValues(norm(queue)).Inc()
}

func IncQueueRequeued(queue string) {
	queueMessagesRequeuedTotal.WithLabelValues(norm(queue)).Inc()
}

func IncQueuePoison(queue string) {
	queueMessagesPoisonTotal.WithLabelValues(norm(queue)).Inc()
}
