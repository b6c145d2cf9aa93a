package component

type AITag struct{}

var AITagComponent = NewComponent[AITag]()

type TargetTag struct{}

var TargetTagComponent = NewComponent[TargetTag]()
