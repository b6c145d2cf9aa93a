package locomotion

import (
	"testing"

	"github.com/jakecoffman/cp"
)

type fakeStrategy struct {
	ticks  int
	resets int
	state  BehaviorState
}

func (s *fakeStrategy) Tick(dt float64) Intent {
	s.ticks++
	return Intent{Direction: 1, State: s.state}
}

func (s *fakeStrategy) Reset() {
	s.resets++
	s.state = Patrol
}

func (s *fakeStrategy) State() BehaviorState { return s.state }

func TestNewAgentBody(t *testing.T) {
	if _, err := NewAgentBody(Walker, 10, nil, &fakeStrategy{}); err != ErrNilBody {
		t.Fatalf("expected ErrNilBody, got %v", err)
	}
	if _, err := NewAgentBody(Walker, 10, newFakeBody(0, 0), nil); err == nil {
		t.Fatalf("expected error for nil strategy")
	}
	a, err := NewAgentBody(Brute, 0, newFakeBody(0, 0), &fakeStrategy{})
	if err != nil {
		t.Fatalf("NewAgentBody: %v", err)
	}
	if a.Health != 1 || a.MaxHealth != 1 || !a.IsAlive() {
		t.Fatalf("non-positive health should clamp to 1, got %+v", a)
	}
}

func TestAgentBodyKnockback(t *testing.T) {
	body := newFakeBody(0, 0)
	strat := &fakeStrategy{state: Chase}
	a, err := NewAgentBody(Walker, 10, body, strat)
	if err != nil {
		t.Fatalf("NewAgentBody: %v", err)
	}
	damaged := 0.0
	a.OnDamage = func(_ *AgentBody, amount float64) { damaged += amount }

	if !a.Hit(3, cp.Vector{X: -2, Y: 1}, 0.1) {
		t.Fatalf("hit on a live agent should apply")
	}
	if a.Health != 7 || damaged != 3 {
		t.Fatalf("health = %g damaged = %g", a.Health, damaged)
	}
	if len(body.impulses) != 1 || body.impulses[0] != (cp.Vector{X: -2, Y: 1}) {
		t.Fatalf("impulses = %v", body.impulses)
	}
	if !a.IsKnockedBack() {
		t.Fatalf("expected knockback")
	}

	intent := a.Tick(0.05)
	if strat.ticks != 0 || intent.Direction != 0 || intent.State != Chase {
		t.Fatalf("strategy should be suspended during knockback, intent %+v", intent)
	}
	a.Tick(0.05)
	if strat.resets != 1 || a.IsKnockedBack() {
		t.Fatalf("knockback end should reset the strategy once, resets=%d", strat.resets)
	}
	if got := a.Tick(0.05); got.Direction != 1 || strat.ticks != 1 {
		t.Fatalf("strategy should resume, got %+v", got)
	}
}

func TestAgentBodyDeath(t *testing.T) {
	body := newFakeBody(0, 0)
	body.vel = cp.Vector{X: 3, Y: -2}
	strat := &fakeStrategy{}
	a, err := NewAgentBody(Walker, 5, body, strat)
	if err != nil {
		t.Fatalf("NewAgentBody: %v", err)
	}
	deaths := 0
	a.OnDeath = func(*AgentBody) { deaths++ }

	a.Hit(8, cp.Vector{X: 5}, 1)
	if a.IsAlive() || a.Health != 0 || deaths != 1 {
		t.Fatalf("agent should be dead: health=%g deaths=%d", a.Health, deaths)
	}
	if len(body.impulses) != 0 || body.vel != (cp.Vector{X: 0, Y: -2}) {
		t.Fatalf("death should stop horizontal motion without knockback, vel=%v impulses=%v", body.vel, body.impulses)
	}
	if a.Hit(1, cp.Vector{}, 0) {
		t.Fatalf("dead agent should ignore hits")
	}
	if got := a.Tick(tick); got.State != Idle || strat.ticks != 0 {
		t.Fatalf("dead agent should idle, got %+v", got)
	}
}

func TestEnemyKind(t *testing.T) {
	cases := []struct {
		in      string
		want    EnemyKind
		wantErr bool
	}{
		{"", Walker, false},
		{"walker", Walker, false},
		{" Brute ", Brute, false},
		{"dragon", Walker, true},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			got, err := ParseEnemyKind(c.in)
			if (err != nil) != c.wantErr || got != c.want {
				t.Fatalf("ParseEnemyKind(%q) = %s, %v", c.in, got, err)
			}
		})
	}

	base := DefaultConfig()
	if Walker.Tune(base) != base {
		t.Fatalf("walker tuning should be unchanged")
	}
	brute := Brute.Tune(base)
	if brute.MoveSpeed >= base.MoveSpeed || brute.AttackRange <= base.AttackRange {
		t.Fatalf("brute tuning not applied: %+v", brute)
	}
	if err := brute.Validate(); err != nil {
		t.Fatalf("brute tuning should stay valid: %v", err)
	}
}
