// Package physics provides the particle state and pairwise force law.
//
// A [Particle] carries mass, contact radius, inverse spring constant, drag
// and a display colour alongside its position and velocity. One simulation
// tick is a pairwise pass followed by an update pass:
//
//	for i := range ps {
//	    for j := i + 1; j < len(ps); j++ {
//	        ps[i].Interact(ps[j])
//	    }
//	}
//	for _, p := range ps {
//	    p.Update(dt)
//	}
//
// [Particle.Interact] switches between unit inverse-square attraction and a
// damped contact spring depending on whether the centres are within the
// combined radius. Forces are applied with exactly opposite signs, so total
// momentum is conserved up to rounding.
//
// # Diagnostics
//
// [TotalEnergy], [Momentum], [AngularMomentum] and [CenterOfMass] operate
// on a particle slice and are used by the metrics package:
//
//	e0 := physics.TotalEnergy(ps)
package physics
