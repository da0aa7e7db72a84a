package importer

import "errors"

var (
	// ErrClientRequired indicates no vector set client was provided.
	ErrClientRequired = errors.New("vset client is required")

	// ErrEmbedderRequired indicates no embedder was provided.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrNoVectorSource indicates a record carries neither text nor a
	// vector.
	ErrNoVectorSource = errors.New("record needs either text or a vector")
)
