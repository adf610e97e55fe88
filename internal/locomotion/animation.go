package locomotion

import "gonum.org/v1/gonum/spatial/r3"

// AnimationEvents receives the motion events an animation layer reacts to.
type AnimationEvents interface {
	// OnGroundUpdate is sent every grounded frame with the horizontal speed.
	OnGroundUpdate(speed float64)
	OnFall()
	OnLanding()
	// OnClimb is sent when the character is repositioned onto a ledge.
	OnClimb(target r3.Vec)
	OnStop()
}

// NopAnimation ignores every event.
type NopAnimation struct{}

func (NopAnimation) OnGroundUpdate(float64) {}
func (NopAnimation) OnFall()                {}
func (NopAnimation) OnLanding()             {}
func (NopAnimation) OnClimb(r3.Vec)         {}
func (NopAnimation) OnStop()                {}
