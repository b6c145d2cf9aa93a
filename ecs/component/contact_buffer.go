package component

import "github.com/milk9111/pursuit/locomotion"

// ContactBuffer collects contact events reported during a physics step until
// the AI system hands them to the locomotion core.
type ContactBuffer struct {
	Events []locomotion.ContactEvent
}

var ContactBufferComponent = NewComponent[ContactBuffer]()
