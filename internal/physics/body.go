package physics

import (
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// RigidBody is the handle the vehicle controller drives. The composition
// layer owns the body; controllers only borrow it.
type RigidBody interface {
	// RotationMatrix returns the body axes as rows: forward, up, right.
	RotationMatrix() mgl32.Mat3
	AddForce(force mgl32.Vec3, corner Corner)
	ResetForces()
	SetCenter(pos mgl32.Vec3)
	Center() mgl32.Vec3
}

// RigidBox is a box-shaped body with per-corner force accumulation.
type RigidBox struct {
	mass        float32
	halfExtents mgl32.Vec3
	gravity     mgl32.Vec3

	center      mgl32.Vec3
	velocity    mgl32.Vec3
	orientation mgl32.Quat
	angular     mgl32.Vec3
	onGround    bool

	forces [CornerCount + 1]mgl32.Vec3
}

var _ RigidBody = (*RigidBox)(nil)

func NewRigidBox(halfExtents mgl32.Vec3, mass float32) *RigidBox {
	if mass <= 0 {
		mass = 1
	}
	for i := range halfExtents {
		if halfExtents[i] <= 0 {
			halfExtents[i] = 0.5
		}
	}
	return &RigidBox{
		mass:        mass,
		halfExtents: halfExtents,
		orientation: mgl32.QuatIdent(),
	}
}

func (b *RigidBox) SetGravity(g mgl32.Vec3) {
	b.gravity = g
}

func (b *RigidBox) RotationMatrix() mgl32.Mat3 {
	return b.orientation.Mat4().Mat3().Transpose()
}

func (b *RigidBox) SetOrientation(q mgl32.Quat) {
	b.orientation = q.Normalize()
}

func (b *RigidBox) Orientation() mgl32.Quat {
	return b.orientation
}

func (b *RigidBox) AddForce(force mgl32.Vec3, corner Corner) {
	if !corner.Valid() {
		slog.Warn("Ignoring force on unknown corner", "corner", int(corner))
		return
	}
	b.forces[corner] = b.forces[corner].Add(force)
}

// Force returns the force accumulated on corner since the last step or reset.
func (b *RigidBox) Force(corner Corner) mgl32.Vec3 {
	if !corner.Valid() {
		return mgl32.Vec3{}
	}
	return b.forces[corner]
}

// ResetForces drops accumulated forces and the body's momentum.
func (b *RigidBox) ResetForces() {
	b.clearForces()
	b.velocity = mgl32.Vec3{}
	b.angular = mgl32.Vec3{}
}

func (b *RigidBox) SetCenter(pos mgl32.Vec3) {
	b.center = pos
}

func (b *RigidBox) Center() mgl32.Vec3 {
	return b.center
}

func (b *RigidBox) Velocity() mgl32.Vec3 {
	return b.velocity
}

func (b *RigidBox) OnGround() bool {
	return b.onGround
}

func (b *RigidBox) HalfExtents() mgl32.Vec3 {
	return b.halfExtents
}

func (b *RigidBox) Bounds() AABB {
	var box AABB
	for c := FrontRightTop; c <= RearLeftBottom; c++ {
		p := b.CornerPosition(c)
		if c == FrontRightTop {
			box = AABB{Min: p, Max: p}
			continue
		}
		for i := 0; i < 3; i++ {
			box.Min[i] = min(box.Min[i], p[i])
			box.Max[i] = max(box.Max[i], p[i])
		}
	}
	return box
}

// CornerPosition returns the world position of corner.
func (b *RigidBox) CornerPosition(c Corner) mgl32.Vec3 {
	local := mulElem(c.Offset(), b.halfExtents)
	return b.center.Add(b.orientation.Rotate(local))
}

func (b *RigidBox) clearForces() {
	for i := range b.forces {
		b.forces[i] = mgl32.Vec3{}
	}
}

// step integrates one fixed step of length dt and consumes the forces.
func (b *RigidBox) step(dt float32, scene StaticScene) {
	total := b.gravity.Mul(b.mass)
	var torque mgl32.Vec3
	for c := FrontRightTop; c <= RearLeftBottom; c++ {
		f := b.forces[c]
		if f.ApproxEqual(mgl32.Vec3{}) {
			continue
		}
		total = total.Add(f)
		arm := b.orientation.Rotate(mulElem(c.Offset(), b.halfExtents))
		torque = torque.Add(arm.Cross(f))
	}

	b.velocity = b.velocity.Add(total.Mul(dt / b.mass)).Mul(LinearDamping)

	// Angular acceleration in the body frame with the box's diagonal inertia.
	inv := b.orientation.Conjugate()
	localTorque := inv.Rotate(torque)
	inertia := b.inertia()
	localAccel := mgl32.Vec3{
		localTorque[0] / inertia[0],
		localTorque[1] / inertia[1],
		localTorque[2] / inertia[2],
	}
	b.angular = b.angular.Add(b.orientation.Rotate(localAccel).Mul(dt)).Mul(AngularDamping)

	b.center = b.center.Add(b.velocity.Mul(dt))
	if b.angular.Len() > CollisionAxisTolerance {
		spin := mgl32.Quat{W: 0, V: b.angular}.Mul(b.orientation).Scale(0.5 * dt)
		b.orientation = b.orientation.Add(spin).Normalize()
	}

	b.onGround = resolveGround(b, scene)
	b.clearForces()
}

func (b *RigidBox) inertia() mgl32.Vec3 {
	h := b.halfExtents
	k := b.mass / 3
	return mgl32.Vec3{
		k * (h[1]*h[1] + h[2]*h[2]),
		k * (h[0]*h[0] + h[2]*h[2]),
		k * (h[0]*h[0] + h[1]*h[1]),
	}
}

func mulElem(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

// Heading returns the yaw of the forward axis in degrees, for status lines.
func (b *RigidBox) Heading() float32 {
	f := b.RotationMatrix().Row(0)
	return float32(math.Atan2(float64(f[2]), float64(f[0])) * 180 / math.Pi)
}
