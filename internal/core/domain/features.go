package domain

// FeatureRecord holds the numeric audio features of a single track, keyed by
// the upstream field name ("danceability", "energy", ...).
type FeatureRecord map[string]float64

// Embedding is the fixed-order vector used as the similarity search key.
type Embedding []float64

// FeatureNames is the feature space of the recommendation index. The order
// is part of the index contract and must not change.
var FeatureNames = []string{
	"danceability",
	"energy",
	"key",
	"loudness",
	"mode",
	"speechiness",
	"acousticness",
	"instrumentalness",
	"liveness",
	"valence",
}

// ExtractEmbedding reads every name from the record in order.
// Extra keys in the record are ignored; a missing key returns MissingFeatureError.
func ExtractEmbedding(record FeatureRecord, names []string) (Embedding, error) {
	embedding := make(Embedding, 0, len(names))
	for _, name := range names {
		value, ok := record[name]
		if !ok {
			return nil, &MissingFeatureError{Feature: name}
		}
		embedding = append(embedding, value)
	}
	return embedding, nil
}
