package types

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Catalog state: loading until a models directory was read, then ready.
	// example: ready
	State string `json:"state" example:"ready"`
	// Absolute models directory.
	// example: /srv/croprec/models
	ModelsDir string `json:"models_dir,omitempty" example:"/srv/croprec/models"`
	// Registered model names.
	// example: ["s1_DT","s1_RF"]
	Models []string `json:"models"`
	// Bundles currently held in memory.
	Loaded []LoadedModel `json:"loaded"`
	// Maximum bundles kept in memory (negative disables caching).
	// example: 16
	MaxLoaded int `json:"max_loaded" example:"16"`
	// Total bundle loads from disk.
	// example: 3
	LoadsTotal uint64 `json:"loads_total" example:"3"`
	// Total bundles evicted from memory.
	// example: 0
	EvictionsTotal uint64 `json:"evictions_total" example:"0"`
	// Last catalog reload (unix seconds).
	// example: 1700000000
	ReloadedUnix int64 `json:"reloaded_unix,omitempty" example:"1700000000"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}

// LoadedModel describes a bundle held in memory.
type LoadedModel struct {
	// example: s1_RF
	Name string `json:"name" example:"s1_RF"`
	// Bundle id assigned at training time.
	// example: 7d4f0b9e-2a7c-4c3e-9d59-0f4c1f1d2a11
	ID string `json:"id" example:"7d4f0b9e-2a7c-4c3e-9d59-0f4c1f1d2a11"`
	// example: random_forest
	Kind string `json:"kind" example:"random_forest"`
	// Last time the bundle served a request (unix seconds).
	LastUsed int64 `json:"last_used_unix"`
	// Training time (unix seconds).
	CreatedAt int64 `json:"created_unix"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error code or message.
	// example: bad_model_features
	Error string `json:"error" example:"bad_model_features"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// PredictionResponse is returned by POST /predict/{modelName}.
type PredictionResponse struct {
	// Predicted crop.
	// example: rice
	Prediction string `json:"prediction" example:"rice"`
}

// DatasetsResponse is returned by GET /datasets.
type DatasetsResponse struct {
	// example: ["AtharvaIngle_CR","RaulSingh_CR"]
	Datasets []string `json:"datasets"`
}

// HealthResponse is returned by GET /.
type HealthResponse struct {
	// example: ok
	Status string `json:"status" example:"ok"`
}
