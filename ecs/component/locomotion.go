package component

import "github.com/milk9111/pursuit/locomotion"

// Locomotion holds the pursuit core of an enemy. Agent owns health and hit
// reaction; Machine is the strategy it drives.
type Locomotion struct {
	Kind    locomotion.EnemyKind
	Agent   *locomotion.AgentBody
	Machine *locomotion.Machine
	Last    locomotion.Intent

	Jumps   int
	Attacks int
}

var LocomotionComponent = NewComponent[Locomotion]()
