package app

import (
	"example.com/eventplanner/internal/ingest"
	"example.com/eventplanner/internal/query"
)

// Store is written by ingestion runs and read by the query service.
type Store interface {
	ingest.Writer
	query.Store
}
