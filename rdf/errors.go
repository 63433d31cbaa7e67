package rdf

import "fmt"

// QueryError reports that the graph store rejected or failed to execute
// a pattern query. The store's message is carried verbatim; callers
// surface it and never retry.
type QueryError struct {
	Status  int
	Message string
}

func (e *QueryError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("graph store query failed (%d): %s", e.Status, e.Message)
	}
	return "graph store query failed: " + e.Message
}
