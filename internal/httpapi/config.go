package httpapi

import "time"

// maxBodyBytes bounds prediction request bodies. Defaults to 1 MiB.
var maxBodyBytes int64 = 1 << 20

// SetMaxBodyBytes configures the maximum request body size; n <= 0 restores the default.
func SetMaxBodyBytes(n int64) {
	if n <= 0 {
		maxBodyBytes = 1 << 20
		return
	}
	maxBodyBytes = n
}

// predictTimeout bounds a single prediction. Zero means no timeout beyond
// server/connection timeouts.
var predictTimeout time.Duration

// SetPredictTimeout sets the prediction timeout (0 disables).
func SetPredictTimeout(d time.Duration) {
	if d < 0 {
		d = 0
	}
	predictTimeout = d
}

// CORS is on by default since the web client is served from another origin.
var (
	corsEnabled        = true
	corsAllowedOrigins = []string{"*"}
	corsAllowedMethods = []string{"GET", "POST", "OPTIONS"}
	corsAllowedHeaders = []string{"Accept", "Content-Type", "X-Log-Level", "X-Request-Id"}
)

// SetCORSOptions configures CORS behavior for the HTTP server. Empty lists
// keep the current values.
func SetCORSOptions(enabled bool, origins, methods, headers []string) {
	corsEnabled = enabled
	if len(origins) > 0 {
		corsAllowedOrigins = append([]string(nil), origins...)
	}
	if len(methods) > 0 {
		corsAllowedMethods = append([]string(nil), methods...)
	}
	if len(headers) > 0 {
		corsAllowedHeaders = append([]string(nil), headers...)
	}
}
