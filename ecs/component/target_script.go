package component

// TargetScript drives a target entity from a tengo script under
// prefabs/scripts.
type TargetScript struct {
	Path      string
	MoveSpeed float64
	JumpSpeed float64
	// StrikeReach bounds the distance at which strike() reaches an enemy.
	StrikeReach float64
}

var TargetScriptComponent = NewComponent[TargetScript]()
