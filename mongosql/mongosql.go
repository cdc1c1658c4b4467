package mongosql

import (
	"fmt"

	"github.com/10gen/mongosql-air/internal/air"
	"github.com/10gen/mongosql-air/internal/desugarer"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

const version = "0.1.0-alpha"

// Version returns the version of the desugaring library.
func Version() string {
	return version
}

// DesugarArgs contains the pipeline to desugar and the passes to run on it.
type DesugarArgs struct {
	// Pipeline is the BSON form of an AIR pipeline, rooted at its last stage.
	Pipeline bsoncore.Document
	// Passes names the desugarer passes to run, in order. When empty, every
	// registered pass runs.
	Passes []string
}

// Desugaring is the result of a successful call to Desugar.
type Desugaring struct {
	Pipeline bsoncore.Document
}

// InternalError is returned when the input could not be interpreted, as
// opposed to a failure of one of the passes.
type InternalError struct {
	err error
}

// NewInternalError wraps err in an InternalError.
func NewInternalError(err error) *InternalError {
	return &InternalError{err: err}
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error: %v", e.err)
}

func (e *InternalError) Unwrap() error {
	return e.err
}

// Desugar runs the requested desugarer passes over args.Pipeline and returns
// the rewritten pipeline.
func Desugar(args DesugarArgs) (*Desugaring, error) {
	passes := desugarer.DefaultPasses()
	if len(args.Passes) > 0 {
		var err error
		passes, err = desugarer.PassesByName(args.Passes)
		if err != nil {
			return nil, err
		}
	}

	pipeline, err := air.ParseStage(args.Pipeline)
	if err != nil {
		return nil, NewInternalError(fmt.Errorf("failed to parse AIR pipeline: %w", err))
	}

	desugared, err := desugarer.RunPasses(pipeline, passes...)
	if err != nil {
		return nil, err
	}

	return &Desugaring{Pipeline: air.DeparseStage(desugared)}, nil
}
