package physics

import (
	"math"
	"testing"
)

func TestInteract_NewtonThirdLaw(t *testing.T) {
	tests := []struct {
		name string
		a, b *Particle
	}{
		{
			"free flight",
			NewParticle(2, 0.5, 1, 0.1, White, 0, 0, 0.3, 0),
			NewParticle(5, 0.5, 1, 0.1, White, 3, 4, 0, -0.2),
		},
		{
			"contact",
			NewParticle(1.5, 1, 2, 0.3, White, 0, 0, 1, 0),
			NewParticle(0.5, 1, 4, 0.7, White, 0.6, 0.8, -1, 0.5),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.a.Interact(tt.b)
			ax, ay := tt.a.Accel()
			bx, by := tt.b.Accel()

			if ax == 0 && ay == 0 {
				t.Fatal("no force accumulated")
			}
			if d := tt.a.Mass*ax + tt.b.Mass*bx; math.Abs(d) > 1e-12 {
				t.Errorf("x momentum not exchanged: residual %g", d)
			}
			if d := tt.a.Mass*ay + tt.b.Mass*by; math.Abs(d) > 1e-12 {
				t.Errorf("y momentum not exchanged: residual %g", d)
			}
		})
	}
}

func TestInteract_ReturnsDistance(t *testing.T) {
	a := NewParticle(1, 0.1, 1, 0, White, 1, 1, 0, 0)
	b := NewParticle(1, 0.1, 1, 0, White, 4, 5, 0, 0)

	if d := a.Interact(b); math.Abs(d-5) > 1e-12 {
		t.Errorf("Interact() = %v, want 5", d)
	}
}

func TestInteract_GravityAttracts(t *testing.T) {
	a := NewParticle(1, 0.1, 1, 0, White, 0, 0, 0, 0)
	b := NewParticle(3, 0.1, 1, 0, White, 2, 0, 0, 0)
	a.Interact(b)

	ax, _ := a.Accel()
	bx, _ := b.Accel()
	// -1/d^3 * dx * m_other with dx = -2, d = 2
	if math.Abs(ax-0.75) > 1e-12 {
		t.Errorf("a accel = %v, want 0.75", ax)
	}
	if math.Abs(bx+0.25) > 1e-12 {
		t.Errorf("b accel = %v, want -0.25", bx)
	}
}

func TestInteract_ContactRepels(t *testing.T) {
	a := NewParticle(1, 1, 1, 0, White, 0, 0, 0, 0)
	b := NewParticle(1, 1, 1, 0, White, 0.5, 0, 0, 0)
	a.Interact(b)

	ax, _ := a.Accel()
	if ax >= 0 {
		t.Errorf("overlapping particles should push apart, got ax=%v", ax)
	}
}

func TestInteract_ContactDamping(t *testing.T) {
	a := NewParticle(1, 1, 1, 2, White, 0, 0, 0, 0)
	b := NewParticle(1, 1, 1, 2, White, 0, 2, 1, 0)
	a.Interact(b)

	// separation exactly at reach: spring term vanishes, only residual
	// attraction along y and drag along x remain
	ax, ay := a.Accel()
	if math.Abs(ax-4) > 1e-12 {
		t.Errorf("drag accel = %v, want 4", ax)
	}
	if math.Abs(ay-0.25) > 1e-12 {
		t.Errorf("residual attraction = %v, want 0.25", ay)
	}
}

func TestUpdate_SemiImplicitEuler(t *testing.T) {
	a := NewParticle(1, 0.1, 1, 0, White, 0, 0, 1, 0)
	b := NewParticle(1, 0.1, 1, 0, White, 0, 2, 0, 0)
	a.Interact(b)
	_, ay := a.Accel()

	a.Update(0.5)

	wantVY := ay * 0.5
	if math.Abs(a.VY-wantVY) > 1e-12 {
		t.Errorf("VY = %v, want %v", a.VY, wantVY)
	}
	if math.Abs(a.Y-wantVY*0.5) > 1e-12 {
		t.Errorf("Y = %v, want %v", a.Y, wantVY*0.5)
	}
	if math.Abs(a.X-0.5) > 1e-12 {
		t.Errorf("X = %v, want 0.5", a.X)
	}
	if x, y := a.Accel(); x != 0 || y != 0 {
		t.Errorf("accumulator not cleared: (%v, %v)", x, y)
	}
}

func TestCenterOfMass_TwoBodyInvariant(t *testing.T) {
	a := NewParticle(1, 0.1, 1, 0, White, -1, 0, 0, 0.4)
	b := NewParticle(1, 0.1, 1, 0, White, 1, 0, 0, -0.4)
	ps := []*Particle{a, b}

	cx0, cy0 := CenterOfMass(ps)
	for i := 0; i < 1000; i++ {
		a.Interact(b)
		a.Update(0.01)
		b.Update(0.01)
	}
	cx, cy := CenterOfMass(ps)

	if math.Abs(cx-cx0) > 1e-9 || math.Abs(cy-cy0) > 1e-9 {
		t.Errorf("centre of mass moved from (%v, %v) to (%v, %v)", cx0, cy0, cx, cy)
	}
}

func TestThreeBodyReferenceTick(t *testing.T) {
	ps := []*Particle{
		NewParticle(1, 0.1, 1, 0, White, 0, 0, 0, 0),
		NewParticle(1, 0.1, 1, 0, White, 10, 0, 0, 0),
		NewParticle(1, 0.1, 1, 0, White, 0, 10, 0, 0),
	}
	for i := range ps {
		for j := i + 1; j < len(ps); j++ {
			ps[i].Interact(ps[j])
		}
		ps[i].Update(1)
	}

	// pairwise 1/d^2 along unit vectors, d = 10 or 10*sqrt(2)
	diag := 1 / (200 * math.Sqrt(2))
	want := [][2]float64{
		{0.01, 0.01},
		{-0.01 - diag, diag},
		{diag, -0.01 - diag},
	}
	base := [][2]float64{{0, 0}, {10, 0}, {0, 10}}

	for i, p := range ps {
		if math.Abs(p.VX-want[i][0]) > 1e-9 || math.Abs(p.VY-want[i][1]) > 1e-9 {
			t.Errorf("particle %d velocity = (%v, %v), want (%v, %v)", i, p.VX, p.VY, want[i][0], want[i][1])
		}
		if math.Abs(p.X-base[i][0]-want[i][0]) > 1e-9 || math.Abs(p.Y-base[i][1]-want[i][1]) > 1e-9 {
			t.Errorf("particle %d position = (%v, %v)", i, p.X, p.Y)
		}
	}
	for i := range ps {
		for j := i + 1; j < len(ps); j++ {
			if ps[i].InContact(ps[j]) {
				t.Errorf("particles %d and %d came into contact", i, j)
			}
		}
	}
}

func TestColor_RoundTrip(t *testing.T) {
	c := RGBA(0x12, 0x34, 0x56, 0x78)
	if got := ColorFromInt32(c.Int32()); got != c {
		t.Errorf("ColorFromInt32(Int32()) = %08x, want %08x", got, c)
	}
	if c.Hex() != "#123456" {
		t.Errorf("Hex() = %s", c.Hex())
	}
	r, g, b, a := c.Components()
	if r != 0x12 || g != 0x34 || b != 0x56 || a != 0x78 {
		t.Errorf("Components() = %x %x %x %x", r, g, b, a)
	}
	if Black.Int32() >= 0 {
		t.Error("opaque colours should be negative on disk")
	}
}

func TestNewParticle_NoValidation(t *testing.T) {
	p := NewParticle(0, 0, 0, 0, Black, 0, 0, 0, 0)
	if !math.IsInf(p.InvSpring, 1) {
		t.Errorf("InvSpring = %v, want +Inf", p.InvSpring)
	}
}

func TestEnergy_Continuous(t *testing.T) {
	at := func(d float64) float64 {
		return PotentialEnergy([]*Particle{
			NewParticle(2, 0.5, 1, 0, White, 0, 0, 0, 0),
			NewParticle(3, 0.5, 1, 0, White, d, 0, 0, 0),
		})
	}
	inside, outside := at(1-1e-9), at(1+1e-9)
	if math.Abs(inside-outside) > 1e-6 {
		t.Errorf("potential jumps at contact: %v vs %v", inside, outside)
	}
}

func TestMomentum(t *testing.T) {
	ps := []*Particle{
		NewParticle(2, 0, 1, 0, White, 0, 0, 1, 2),
		NewParticle(1, 0, 1, 0, White, 0, 0, -2, 1),
	}
	px, py := Momentum(ps)
	if px != 0 || py != 5 {
		t.Errorf("Momentum() = (%v, %v), want (0, 5)", px, py)
	}
}

func BenchmarkInteract(b *testing.B) {
	p := NewParticle(1, 0.1, 1, 0, White, 0, 0, 0, 0)
	q := NewParticle(1, 0.1, 1, 0, White, 3, 4, 0, 0)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.Interact(q)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    Color
		wantErr bool
	}{
		{"#ff0000", Red, false},
		{"ffc800", Orange, false},
		{"#80ffffff", RGBA(255, 255, 255, 0x80), false},
		{"#fff", 0, true},
		{"#gg0000", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseColor(%q) error = %v", tt.in, err)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseColor(%q) = %#x, want %#x", tt.in, uint32(got), uint32(tt.want))
			}
			if tt.wantErr {
				return
			}
			text, _ := got.MarshalText()
			var back Color
			if err := back.UnmarshalText(text); err != nil || back != got {
				t.Errorf("text round trip %q -> %#x", text, uint32(back))
			}
		})
	}
}
