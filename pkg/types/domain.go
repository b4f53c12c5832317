package types

// FeatureSet is one entry of GET /models: the ordered features of a set and
// the model keys trained on it.
type FeatureSet struct {
	// example: ["N","P","K","temperature","humidity","ph","rainfall"]
	Features []string `json:"features"`
	// example: ["DT","RF"]
	Models []string `json:"models"`
}
