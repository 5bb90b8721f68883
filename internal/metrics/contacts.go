package metrics

import "github.com/san-kum/particles/internal/environment"

// Contacts is the mean fraction of pairs inside each other's radius.
type Contacts struct {
	name    string
	sum     float64
	samples int
}

func NewContacts() *Contacts {
	return &Contacts{name: "contacts"}
}

func (c *Contacts) Name() string {
	return c.name
}

func (c *Contacts) Observe(f environment.Frame) {
	n := len(f.Particles)
	c.samples++
	if n < 2 {
		return
	}
	touching := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if f.Particles[i].InContact(&f.Particles[j]) {
				touching++
			}
		}
	}
	c.sum += float64(touching) / float64(n*(n-1)/2)
}

func (c *Contacts) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *Contacts) Reset() {
	c.sum = 0
	c.samples = 0
}
