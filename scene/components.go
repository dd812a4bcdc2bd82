package scene

// Position is a stirrer's location in grid cells.
type Position struct {
	X, Y float32
}

// Heading is the direction of travel in radians.
type Heading struct {
	Angle float32
}

// Wander controls how a stirrer's heading drifts.
type Wander struct {
	Turn  float32 // current turn rate, radians per tick
	Phase float32 // offset into the shared turn oscillation
}
