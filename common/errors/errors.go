package errors

import "errors"

var (
	ErrUnsupportedType       = errors.New("unsupported data type")
	ErrUnsupportedExpr       = errors.New("unsupported expression")
	ErrIncompatibleIntervals = errors.New("intervals are not comparable")
	ErrStatisticsMismatch    = errors.New("statistics do not align with schema")
	ErrEmptyInterval         = errors.New("interval is empty")
	ErrFileNotExist          = errors.New("file not exist")
	ErrNoEndpoint            = errors.New("endpoint not set")
	ErrInvalidUri            = errors.New("invalid uri")
	// ErrEmptyGraph signals an internal inconsistency: the expression a graph
	// was built from cannot be located among the graph's own nodes. It is a
	// defect in graph construction, not bad caller input.
	ErrEmptyGraph = errors.New("interval graph has no nodes")
)
