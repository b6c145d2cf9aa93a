package locomotion

import (
	"fmt"
	"strings"

	"github.com/jakecoffman/cp"
)

// EnemyKind is fixed at construction and selects tuning adjustments.
type EnemyKind int

const (
	Walker EnemyKind = iota
	Brute
)

func (k EnemyKind) String() string {
	switch k {
	case Walker:
		return "walker"
	case Brute:
		return "brute"
	}
	return "unknown"
}

// ParseEnemyKind accepts the names produced by String; empty means Walker.
func ParseEnemyKind(s string) (EnemyKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "walker":
		return Walker, nil
	case "brute":
		return Brute, nil
	}
	return Walker, fmt.Errorf("locomotion: unknown enemy kind %q", s)
}

// Tune adjusts base tuning for the kind. Brutes are slower, jump lower and
// hit from further away.
func (k EnemyKind) Tune(cfg Config) Config {
	if k == Brute {
		cfg.MoveSpeed *= 0.75
		cfg.JumpForce *= 0.9
		cfg.AttackRange *= 1.3
		cfg.AttackSpeed *= 0.6
	}
	return cfg
}

// AgentBody carries what every enemy variant shares: health, hit reaction
// and death. Movement is delegated to the strategy.
type AgentBody struct {
	Kind EnemyKind

	MaxHealth float64
	Health    float64

	OnDamage func(a *AgentBody, amount float64)
	OnDeath  func(a *AgentBody)

	body      Body
	strategy  LocomotionStrategy
	knockback float64
	dead      bool
}

func NewAgentBody(kind EnemyKind, health float64, body Body, strategy LocomotionStrategy) (*AgentBody, error) {
	if body == nil {
		return nil, ErrNilBody
	}
	if strategy == nil {
		return nil, fmt.Errorf("locomotion: agent body: nil strategy")
	}
	if health <= 0 {
		health = 1
	}
	return &AgentBody{
		Kind:      kind,
		MaxHealth: health,
		Health:    health,
		body:      body,
		strategy:  strategy,
	}, nil
}

func (a *AgentBody) IsAlive() bool {
	return a != nil && !a.dead && a.Health > 0
}

func (a *AgentBody) IsKnockedBack() bool {
	return a != nil && a.knockback > 0
}

func (a *AgentBody) Strategy() LocomotionStrategy {
	if a == nil {
		return nil
	}
	return a.strategy
}

// Hit applies damage and a knockback impulse, suspending locomotion for
// duration seconds. It returns false when the agent is already dead.
func (a *AgentBody) Hit(damage float64, impulse cp.Vector, duration float64) bool {
	if !a.IsAlive() {
		return false
	}
	if damage > 0 {
		a.Health -= damage
		if a.Health < 0 {
			a.Health = 0
		}
		if a.OnDamage != nil {
			a.OnDamage(a, damage)
		}
	}
	if a.Health <= 0 {
		a.dead = true
		a.knockback = 0
		vel := a.body.Velocity()
		a.body.SetVelocity(cp.Vector{X: 0, Y: vel.Y})
		if a.OnDeath != nil {
			a.OnDeath(a)
		}
		return true
	}
	if impulse.X != 0 || impulse.Y != 0 {
		a.body.ApplyImpulse(impulse)
	}
	if duration > a.knockback {
		a.knockback = duration
	}
	return true
}

// Tick advances the strategy unless the agent is dead or reeling from a
// hit. When a knockback ends the strategy is reset.
func (a *AgentBody) Tick(dt float64) Intent {
	if a == nil || a.strategy == nil {
		return Intent{State: Idle}
	}
	if !a.IsAlive() {
		return Intent{State: Idle}
	}
	if a.knockback > 0 {
		a.knockback -= dt
		if a.knockback <= 0 {
			a.knockback = 0
			a.strategy.Reset()
		}
		return Intent{State: a.strategy.State()}
	}
	return a.strategy.Tick(dt)
}
