package physics

const (
	DefaultTimeStep    = 0.01
	DefaultMinTimeStep = 0.001

	// maxStepsPerAdvance bounds catch-up work after a long frame.
	maxStepsPerAdvance = 10

	LinearDamping  = 0.999
	AngularDamping = 0.98
	GroundFriction = 0.9
	GroundProbe    = 0.05

	CollisionAxisTolerance = 1e-6
)
