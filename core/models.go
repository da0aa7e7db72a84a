package core

import "time"

// Quantization identifies the vector quantization mode of a vector set.
// The values match the quant-type strings returned by VINFO.
type Quantization string

const (
	// QuantF32 stores vectors as full-precision 32 bit floats.
	QuantF32 Quantization = "f32"
	// QuantQ8 stores vectors with 8 bit integer quantization (the server default).
	QuantQ8 Quantization = "int8"
	// QuantBin stores vectors as binary quantized bits.
	QuantBin Quantization = "bin"
)

// ConnectionProfile is a saved server connection. Profiles are persisted
// locally so the console can offer recently used servers on startup.
type ConnectionProfile struct {
	Alias         string    // Display name chosen by the user
	URL           string    // Connection URI, e.g. "redis://localhost:6379/0"
	CreatedAt     time.Time // When the profile was first saved
	LastConnected time.Time // Last successful connection, zero if never
}

// CollectionInfo is the metadata of a single vector set, assembled from
// the VINFO reply map.
type CollectionInfo struct {
	Name       string
	Size       int64        // Number of elements
	Dim        int          // Vector dimensionality after any projection
	QuantType  Quantization // Storage quantization mode
	MaxLevel   int          // Top layer of the proximity graph
	UID        int64        // Vector set identity assigned by the server
	MaxNodeUID int64        // Highest node identity in the graph
}

// SimilarityMatch is one row of a similarity query result.
type SimilarityMatch struct {
	Element string
	Score   float64 // Present only when scores were requested, else 0
}

// NeighborLayers holds the per-layer neighbor lists of a single element,
// as returned by VLINKS. Index 0 is the bottom layer.
type NeighborLayers [][]string
