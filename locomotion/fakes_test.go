package locomotion

import "github.com/jakecoffman/cp"

type fakeBody struct {
	pos          cp.Vector
	vel          cp.Vector
	mass         float64
	gravityScale float64
	impulses     []cp.Vector
}

func newFakeBody(x, y float64) *fakeBody {
	return &fakeBody{pos: cp.Vector{X: x, Y: y}, mass: 1, gravityScale: 1}
}

func (b *fakeBody) Position() cp.Vector     { return b.pos }
func (b *fakeBody) Velocity() cp.Vector     { return b.vel }
func (b *fakeBody) SetVelocity(v cp.Vector) { b.vel = v }
func (b *fakeBody) GravityScale() float64   { return b.gravityScale }
func (b *fakeBody) Mass() float64           { return b.mass }

func (b *fakeBody) ApplyImpulse(j cp.Vector) {
	b.impulses = append(b.impulses, j)
	b.vel = b.vel.Add(j.Mult(1 / b.mass))
}

type fakeProber struct {
	bb       cp.BB
	shapeHit bool
	rayHit   bool
	rayNorm  cp.Vector
	rays     int
}

func (p *fakeProber) Bounds() cp.BB                    { return p.bb }
func (p *fakeProber) ShapeProbe(distance float64) bool { return p.shapeHit }

func (p *fakeProber) Raycast(origin, dir cp.Vector, length float64) (RayHit, bool) {
	p.rays++
	if !p.rayHit {
		return RayHit{}, false
	}
	return RayHit{Point: origin.Add(dir.Mult(length / 2)), Normal: p.rayNorm}, true
}

type fakePlanner struct {
	points []cp.Vector
	stale  bool
	dest   cp.Vector
	sets   int
}

func (p *fakePlanner) SetDestination(d cp.Vector) {
	p.dest = d
	p.sets++
}

func (p *fakePlanner) RemainingPath() ([]cp.Vector, bool) { return p.points, p.stale }
func (p *fakePlanner) HasPath() bool                      { return len(p.points) > 0 }

type fakeSteering struct {
	target    cp.Vector
	hasTarget bool
	desired   cp.Vector
}

func (s fakeSteering) SteeringTarget() (cp.Vector, bool) { return s.target, s.hasTarget }
func (s fakeSteering) DesiredVelocity() cp.Vector        { return s.desired }

func fixedTarget(x, y float64) TargetProvider {
	return TargetFunc(func() (cp.Vector, bool) { return cp.Vector{X: x, Y: y}, true })
}

func pts(xy ...float64) []cp.Vector {
	out := make([]cp.Vector, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		out = append(out, cp.Vector{X: xy[i], Y: xy[i+1]})
	}
	return out
}

var groundContact = ContactEvent{Phase: ContactStay, Normal: cp.Vector{X: 0, Y: 1}}
