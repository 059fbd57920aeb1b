package nanopipe

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus collectors, registered with the default registry.  Every
// series is labelled with the protocol name of the socket.
var (
	pipesActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "nanopipe",
			Name:      "pipes_active",
			Help:      "Number of pipes currently attached to sockets",
		},
		[]string{"protocol"},
	)

	messagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nanopipe",
			Name:      "messages_sent_total",
			Help:      "Message parts accepted by a pipe on send",
		},
		[]string{"protocol"},
	)

	messagesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nanopipe",
			Name:      "messages_received_total",
			Help:      "Message parts handed to the application",
		},
		[]string{"protocol"},
	)

	messagesDiscarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nanopipe",
			Name:      "messages_discarded_total",
			Help:      "Queued message parts dropped when their pipe was terminated",
		},
		[]string{"protocol"},
	)

	wouldBlock = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nanopipe",
			Name:      "would_block_total",
			Help:      "Send and receive calls that returned ErrWouldBlock",
		},
		[]string{"protocol", "op"},
	)
)

// sockMetrics holds the series of one socket.
type sockMetrics struct {
	pipes      prometheus.Gauge
	sent       prometheus.Counter
	received   prometheus.Counter
	discarded  prometheus.Counter
	sendBlocks prometheus.Counter
	recvBlocks prometheus.Counter
}

func newSockMetrics(proto string) sockMetrics {
	return sockMetrics{
		pipes:      pipesActive.WithLabelValues(proto),
		sent:       messagesSent.WithLabelValues(proto),
		received:   messagesReceived.WithLabelValues(proto),
		discarded:  messagesDiscarded.WithLabelValues(proto),
		sendBlocks: wouldBlock.WithLabelValues(proto, "send"),
		recvBlocks: wouldBlock.WithLabelValues(proto, "recv"),
	}
}
