package hardware

// Noop implements Device but does nothing. Used for setups without
// feedback hardware.
type Noop struct{}

func (Noop) TurnOn() error  { return nil }
func (Noop) TurnOff() error { return nil }
func (Noop) Release() error { return nil }
