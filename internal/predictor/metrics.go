package predictor

import "github.com/prometheus/client_golang/prometheus"

var predictionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "croprec",
		Subsystem: "predictor",
		Name:      "predictions_total",
		Help:      "Predictions by model and result (ok, an error code, or error)",
	},
	[]string{"model", "result"},
)

func init() {
	prometheus.MustRegister(predictionsTotal)
}

func observePrediction(model string, err error) {
	result := "ok"
	if err != nil {
		result = ErrorCode(err)
		if result == "" {
			result = "error"
		}
	}
	// unvalidated names would explode label cardinality
	if !ValidModelName(model) {
		model = "invalid"
	}
	predictionsTotal.WithLabelValues(model, result).Inc()
}
