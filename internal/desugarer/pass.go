package desugarer

import (
	"github.com/10gen/mongosql-air/internal/air"
	errors "gopkg.in/src-d/go-errors.v1"
)

var (
	// ErrPassFailed wraps an error returned by a desugarer pass.
	ErrPassFailed = errors.NewKind("desugarer pass %s failed")

	// ErrUnknownPass is returned when a pass is requested by a name that is
	// not registered.
	ErrUnknownPass = errors.NewKind("unknown desugarer pass %q")

	// ErrNilPipeline is returned when there is no pipeline to desugar.
	ErrNilPipeline = errors.NewKind("cannot desugar a nil pipeline")
)

// Pass rewrites an AIR pipeline. Every desugarer implements Pass so that
// they can be sequenced uniformly. Apply must not modify its input.
type Pass interface {
	Name() string
	Apply(pipeline air.Stage) (air.Stage, error)
}

// registeredPasses lists every pass in the order RunPasses should apply
// them by default.
var registeredPasses = []Pass{
	OrExpressionsPass{},
}

// DefaultPasses returns all registered passes in their default order.
func DefaultPasses() []Pass {
	passes := make([]Pass, len(registeredPasses))
	copy(passes, registeredPasses)
	return passes
}

// PassByName returns the registered pass called name.
func PassByName(name string) (Pass, error) {
	for _, p := range registeredPasses {
		if p.Name() == name {
			return p, nil
		}
	}
	return nil, ErrUnknownPass.New(name)
}

// PassesByName resolves names in order.
func PassesByName(names []string) ([]Pass, error) {
	passes := make([]Pass, len(names))
	for i, name := range names {
		p, err := PassByName(name)
		if err != nil {
			return nil, err
		}
		passes[i] = p
	}
	return passes, nil
}
