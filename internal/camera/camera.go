package camera

import (
	"github.com/Versifine/racer/internal/event"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	DefaultOffset     = mgl32.Vec3{-150, 40, 0}
	DefaultLookOffset = mgl32.Vec3{0, -30, 0}
)

// Target is anything with a world position the camera can trail.
type Target interface {
	Center() mgl32.Vec3
}

// FollowCamera keeps a fixed world-space offset from its target and looks
// slightly below it.
type FollowCamera struct {
	position   mgl32.Vec3
	lookAt     mgl32.Vec3
	up         mgl32.Vec3
	offset     mgl32.Vec3
	lookOffset mgl32.Vec3
	target     Target
}

func NewFollowCamera() *FollowCamera {
	return &FollowCamera{
		up:         mgl32.Vec3{0, 1, 0},
		offset:     DefaultOffset,
		lookOffset: DefaultLookOffset,
	}
}

func (c *FollowCamera) SetOffset(offset, lookOffset mgl32.Vec3) {
	c.offset = offset
	c.lookOffset = lookOffset
}

// Follow binds the camera to t and snaps it into place.
func (c *FollowCamera) Follow(t Target) {
	c.target = t
	c.update()
}

func (c *FollowCamera) SetPosition(p mgl32.Vec3) {
	c.position = p
}

func (c *FollowCamera) LookAt(p mgl32.Vec3) {
	c.lookAt = p
}

func (c *FollowCamera) Position() mgl32.Vec3 {
	return c.position
}

func (c *FollowCamera) Target() mgl32.Vec3 {
	return c.lookAt
}

// View returns the world-to-camera matrix.
func (c *FollowCamera) View() mgl32.Mat4 {
	if c.position.ApproxEqual(c.lookAt) {
		return mgl32.Translate3D(-c.position[0], -c.position[1], -c.position[2])
	}
	return mgl32.LookAtV(c.position, c.lookAt, c.up)
}

func (c *FollowCamera) OnProcess(event.ProcessEvent) {
	c.update()
}

func (c *FollowCamera) update() {
	if c.target == nil {
		return
	}
	center := c.target.Center()
	c.position = center.Add(c.offset)
	c.lookAt = center.Add(c.lookOffset)
}
