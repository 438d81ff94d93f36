package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	IndexerRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "polyindex",
		Name:      "indexer_runs_total",
		Help:      "Indexer runs by indexer name.",
	}, []string{"indexer"})

	IndexedRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "polyindex",
		Name:      "indexed_rows_total",
		Help:      "Rows kept by index functions, by indexer name.",
	}, []string{"indexer"})

	PiecesIndexed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "polyindex",
		Name:      "pieces_indexed_total",
		Help:      "Pieces run through an analyzer chain.",
	})

	PieceFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "polyindex",
		Name:      "piece_failures_total",
		Help:      "Pieces that could not be imported or analysed.",
	})

	Requests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "polyindex",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route and status code.",
	}, []string{"route", "code"})
)
