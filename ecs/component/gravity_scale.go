package component

// GravityScale multiplies world gravity for one dynamic body. The physics
// system applies it in the body's velocity update and enemies read it when
// sizing jump impulses. Zero floats.
type GravityScale struct {
	Scale float64
}

var GravityScaleComponent = NewComponent[GravityScale]()
