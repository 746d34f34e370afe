package detector

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var commentScannedCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "swatter_comments_scanned",
	Help: "Number of new comments run through the fast-path checks",
})

var deepCheckCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "swatter_deep_checks",
	Help: "Number of full user evaluations performed",
})

var verdictCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "swatter_verdicts",
	Help: "Number of conclusive verdicts by outcome",
}, []string{"verdict"})

var recheckQueuedCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "swatter_rechecks_queued",
	Help: "Number of users queued for a delayed recheck",
})

var actionCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "swatter_actions_taken",
	Help: "Number of enforcement actions taken",
}, []string{"action"})
