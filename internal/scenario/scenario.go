package scenario

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/san-kum/particles/internal/environment"
	"github.com/san-kum/particles/internal/physics"
)

// ErrUnknown indicates a scenario name that is not in the catalogue.
var ErrUnknown = errors.New("scenario: unknown scenario")

// Scenario is a named generator with the template and time step it was
// tuned for.
type Scenario struct {
	Name        string
	Description string
	TimeStep    float64
	Template    Template
	Generate    Generator
}

var catalogue = map[string]Scenario{
	"ring": {
		Name: "ring", Description: "body orbiting inside a star's Roche limit", TimeStep: 1,
		Template: Template{Count: 300, Color: physics.RGBA(240, 240, 255, 255), Mass: 0.2, Radius: 1.15, Spring: 0.5, Drag: 0.036, Distance: 0.65, VY: 5},
		Generate: Ring,
	},
	"black-hole": {
		Name: "black-hole", Description: "body falling past a dense central mass", TimeStep: 1,
		Template: Template{Count: 300, Color: physics.RGBA(240, 240, 255, 120), Mass: 1, Radius: 5, Spring: 0.25, Drag: 0.036, Distance: 4, VY: 1.5},
		Generate: BlackHole,
	},
	"direct-collision": {
		Name: "direct-collision", Description: "two layered bodies meeting head on", TimeStep: 1,
		Template: Template{Count: 346, Mass: 2.4, Radius: 5, Spring: 0.75, Drag: 0.036, Distance: 4, VX: -1},
		Generate: DirectCollision,
	},
	"penetration-collision": {
		Name: "penetration-collision", Description: "body punching through a dust lattice", TimeStep: 0.1,
		Template: Template{Count: 320, Color: physics.RGBA(255, 0, 0, 128), Mass: 2.4, Radius: 5, Spring: 0.75, Drag: 0.0036, Distance: 4, VX: 6},
		Generate: PenetrationCollision,
	},
	"hit-and-run": {
		Name: "hit-and-run", Description: "grazing impact of two differentiated bodies", TimeStep: 1,
		Template: Template{Count: 520, Mass: 2.4, Radius: 5, Spring: 1.5, Drag: 0.04, Distance: 4, VX: 4.3, Spin: 0.002},
		Generate: HitAndRun,
	},
	"cosmological-sponge": {
		Name: "cosmological-sponge", Description: "expanding matter over a dark matter grid", TimeStep: 0.05,
		Template: Template{Count: 600, Color: physics.RGBA(50, 50, 255, 160), Mass: 1, Radius: 1.15, Spring: 2, Drag: 0.01, Distance: 50},
		Generate: CosmologicalSponge,
	},
	"moon-creating-collision": {
		Name: "moon-creating-collision", Description: "oblique impact that throws off a moon", TimeStep: 0.3,
		Template: Template{Count: 400, Color: physics.RGBA(128, 128, 128, 128), Mass: 2.4, Radius: 5, Spring: 0.6, Drag: 0.04, Distance: 4, VX: -1.8, Spin: 0.03},
		Generate: MoonCreatingCollision,
	},
	"mantle-differentiation": {
		Name: "mantle-differentiation", Description: "mixed densities settling into layers", TimeStep: 0.3,
		Template: Template{Count: 300, Mass: 1, Radius: 5, Spring: 0.75, Drag: 0.036, Distance: 4},
		Generate: MantleDifferentiation,
	},
	"angular-momentum": {
		Name: "angular-momentum", Description: "single spinning body", TimeStep: 1,
		Template: Template{Count: 300, Color: physics.RGBA(255, 255, 255, 50), Mass: 1, Radius: 5, Spring: 0.05, Drag: 0.036, Distance: 5, Spin: 0.01},
		Generate: AngularMomentum,
	},
	"accretion-disk": {
		Name: "accretion-disk", Description: "rotating disk collapsing into bodies", TimeStep: 0.05,
		Template: Template{Count: 300, Color: physics.RGBA(255, 0, 0, 75), Mass: 1, Radius: 1.15, Spring: 2, Drag: 0.1, Distance: 250, Spin: 0.00441},
		Generate: AccretionDisk,
	},
	"protoplanetary-disk": {
		Name: "protoplanetary-disk", Description: "particles on circular orbits around a star", TimeStep: 0.05,
		Template: Template{Count: 300, Color: physics.RGBA(255, 0, 0, 75), Mass: 1, Radius: 1.15, Spring: 2, Drag: 0.1, Distance: 250},
		Generate: ProtoplanetaryDisk,
	},
}

// Lookup returns a copy of the named scenario.
func Lookup(name string) (Scenario, error) {
	s, ok := catalogue[name]
	if !ok {
		return Scenario{}, fmt.Errorf("%w: %s", ErrUnknown, name)
	}
	return s, nil
}

// Names lists the catalogue in name order.
func Names() []string {
	names := make([]string, 0, len(catalogue))
	for name := range catalogue {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build generates the scene with a seeded source.
func (s Scenario) Build(seed int64) []*physics.Particle {
	return s.Generate(s.Template, rand.New(rand.NewSource(seed)))
}

// Target is what Apply needs from a scheduler.
type Target interface {
	Queue(op environment.Operation)
	SetTimeStep(step float64)
	SetElapsed(t float64)
}

// Apply queues the scene on env: the collection is cleared and refilled in
// one operation, and the scenario's time step is installed with the clock
// reset. Generation runs on the loop goroutine.
func Apply(env Target, s Scenario, seed int64) {
	if s.TimeStep > 0 {
		env.SetTimeStep(s.TimeStep)
	}
	env.SetElapsed(0)
	env.Queue(func(c *environment.Collection) {
		c.Replace(s.Build(seed))
	})
}
