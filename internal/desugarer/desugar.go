package desugarer

import (
	"github.com/10gen/mongosql-air/internal/air"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

// Desugar parses the BSON form of an AIR pipeline, applies passes in order,
// and returns the BSON form of the result. This function does not modify
// the input; it returns a new pipeline.
func Desugar(pipelineDoc bsoncore.Document, passes ...Pass) (bsoncore.Document, error) {
	pipeline, err := air.ParseStage(pipelineDoc)
	if err != nil {
		return nil, err
	}

	desugared, err := RunPasses(pipeline, passes...)
	if err != nil {
		return nil, err
	}

	return air.DeparseStage(desugared), nil
}

// RunPasses applies passes to pipeline in order. The first error stops the
// sequence and is returned wrapped in ErrPassFailed.
func RunPasses(pipeline air.Stage, passes ...Pass) (air.Stage, error) {
	if pipeline == nil {
		return nil, ErrNilPipeline.New()
	}

	for _, pass := range passes {
		log := logrus.WithField("pass", pass.Name())
		log.Debug("applying desugarer pass")

		out, err := pass.Apply(pipeline)
		if err != nil {
			log.WithError(err).Debug("desugarer pass failed")
			return nil, ErrPassFailed.Wrap(err, pass.Name())
		}
		pipeline = out
	}

	return pipeline, nil
}
