package locomotion

import (
	"errors"
	"fmt"
)

var (
	ErrNilBody   = errors.New("locomotion: body is nil")
	ErrBadConfig = errors.New("locomotion: invalid config")
)

// Config holds every tunable of the locomotion core. Distances are world
// units, times are seconds and speeds are units per second.
type Config struct {
	// Movement
	MoveSpeed            float64 `yaml:"move_speed"`
	ChaseSpeedMultiplier float64 `yaml:"chase_speed_multiplier"`

	// Physics
	PhysicsStep  float64 `yaml:"physics_step"`  // fixed integration step
	WorldGravity float64 `yaml:"world_gravity"` // magnitude, pulls toward -Y

	// Jumping
	JumpForce             float64 `yaml:"jump_force"` // applied over one PhysicsStep
	JumpHorizontalImpulse float64 `yaml:"jump_horizontal_impulse"`
	JumpCooldown          float64 `yaml:"jump_cooldown"`
	JumpHeightThreshold   float64 `yaml:"jump_height_threshold"`
	MinJumpTargetDistance float64 `yaml:"min_jump_target_distance"`
	LookAheadSegments     int     `yaml:"look_ahead_segments"`
	FlatEpsilon           float64 `yaml:"flat_epsilon"`
	SteepMinHeight        float64 `yaml:"steep_min_height"`
	SteepSlopeRatio       float64 `yaml:"steep_slope_ratio"`
	LandingEpsilon        float64 `yaml:"landing_epsilon"`
	JumpTolerance         float64 `yaml:"jump_tolerance"`
	ReachTolerance        float64 `yaml:"reach_tolerance"`
	LeadBase              float64 `yaml:"lead_base"`
	LeadSlopeFactor       float64 `yaml:"lead_slope_factor"`
	LeadMax               float64 `yaml:"lead_max"`
	LeadOffset            float64 `yaml:"lead_offset"`
	RunThroughBias        float64 `yaml:"run_through_bias"`

	// Sensing
	GroundNormalMinY float64 `yaml:"ground_normal_min_y"`
	WallNormalMinX   float64 `yaml:"wall_normal_min_x"`
	CoyoteTime       float64 `yaml:"coyote_time"`
	ProbeDistance    float64 `yaml:"probe_distance"`
	FootInset        float64 `yaml:"foot_inset"`
	FootRayLength    float64 `yaml:"foot_ray_length"`

	// Chasing
	ChaseLookAhead       int     `yaml:"chase_look_ahead"`
	StopDistance         float64 `yaml:"stop_distance"`
	Deadzone             float64 `yaml:"deadzone"`
	VerticalGapThreshold float64 `yaml:"vertical_gap_threshold"`
	VerticalOffset       float64 `yaml:"vertical_offset"`

	// Behavior
	AttackRange    float64 `yaml:"attack_range"`
	DetectionRange float64 `yaml:"detection_range"`
	AttackSpeed    float64 `yaml:"attack_speed"` // attacks per second
	PatrolRange    float64 `yaml:"patrol_range"`
	PatrolWait     float64 `yaml:"patrol_wait"`
}

// DefaultConfig returns tuning for a roughly one-unit-wide walker on a tile
// grid of one unit.
func DefaultConfig() Config {
	return Config{
		MoveSpeed:            4,
		ChaseSpeedMultiplier: 1.25,

		PhysicsStep:  1.0 / 60.0,
		WorldGravity: 20,

		JumpForce:             720,
		JumpHorizontalImpulse: 1.5,
		JumpCooldown:          0.25,
		JumpHeightThreshold:   0.6,
		MinJumpTargetDistance: 1.0,
		LookAheadSegments:     6,
		FlatEpsilon:           0.01,
		SteepMinHeight:        0.2,
		SteepSlopeRatio:       2.5,
		LandingEpsilon:        0.1,
		JumpTolerance:         0.35,
		ReachTolerance:        0.5,
		LeadBase:              0.08,
		LeadSlopeFactor:       0.03,
		LeadMax:               0.3,
		LeadOffset:            0.05,
		RunThroughBias:        0.5,

		GroundNormalMinY: 0.4,
		WallNormalMinX:   0.7,
		CoyoteTime:       0.1,
		ProbeDistance:    0.05,
		FootInset:        0.05,
		FootRayLength:    0.15,

		ChaseLookAhead:       2,
		StopDistance:         0.1,
		Deadzone:             0.4,
		VerticalGapThreshold: 2.5,
		VerticalOffset:       1.5,

		AttackRange:    1.5,
		DetectionRange: 10,
		AttackSpeed:    1,
		PatrolRange:    4,
		PatrolWait:     3,
	}
}

// LaunchVelocity is the vertical speed produced by JumpForce applied over a
// single integration step to a body of the given mass.
func (c Config) LaunchVelocity(mass float64) float64 {
	if mass <= 0 {
		mass = 1
	}
	return c.JumpForce * c.PhysicsStep / mass
}

// Validate reports every tunable that would make the core misbehave.
func (c Config) Validate() error {
	var errs []error
	positive := []struct {
		name string
		v    float64
	}{
		{"move_speed", c.MoveSpeed},
		{"physics_step", c.PhysicsStep},
		{"world_gravity", c.WorldGravity},
		{"jump_force", c.JumpForce},
		{"jump_height_threshold", c.JumpHeightThreshold},
		{"attack_speed", c.AttackSpeed},
		{"detection_range", c.DetectionRange},
	}
	for _, p := range positive {
		if p.v <= 0 {
			errs = append(errs, fmt.Errorf("%w: %s must be positive, got %g", ErrBadConfig, p.name, p.v))
		}
	}
	if c.AttackRange < 0 || c.AttackRange >= c.DetectionRange {
		errs = append(errs, fmt.Errorf("%w: attack_range %g must be below detection_range %g", ErrBadConfig, c.AttackRange, c.DetectionRange))
	}
	if c.LookAheadSegments <= 0 {
		errs = append(errs, fmt.Errorf("%w: look_ahead_segments must be positive", ErrBadConfig))
	}
	if c.ChaseLookAhead < 0 {
		errs = append(errs, fmt.Errorf("%w: chase_look_ahead must not be negative", ErrBadConfig))
	}
	if c.Deadzone < c.StopDistance {
		errs = append(errs, fmt.Errorf("%w: deadzone %g must not be below stop_distance %g", ErrBadConfig, c.Deadzone, c.StopDistance))
	}
	return errors.Join(errs...)
}
