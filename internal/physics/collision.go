package physics

import "github.com/go-gl/mathgl/mgl32"

// StaticScene is the immovable geometry bodies collide with.
type StaticScene interface {
	// Raycast returns the distance to the first surface hit along dir
	// (unit length) within maxDist, and that surface's normal.
	Raycast(origin, dir mgl32.Vec3, maxDist float32) (float32, mgl32.Vec3, bool)
}

type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

func BoxAABB(center, halfExtents mgl32.Vec3) AABB {
	return AABB{Min: center.Sub(halfExtents), Max: center.Add(halfExtents)}
}

func (a AABB) Center() mgl32.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

func (a AABB) HalfExtents() mgl32.Vec3 {
	return a.Max.Sub(a.Min).Mul(0.5)
}

var down = mgl32.Vec3{0, -1, 0}

// resolveGround lifts the box out of the static scene along +Y. Each world
// corner casts down from the body center height; a corner below the surface
// it finds pushes the body up by its penetration. Returns whether the box
// touches ground.
func resolveGround(b *RigidBox, scene StaticScene) bool {
	if scene == nil {
		return false
	}

	var lift float32
	touched := false
	for c := FrontRightTop; c <= RearLeftBottom; c++ {
		corner := b.CornerPosition(c)
		origin := mgl32.Vec3{corner[0], b.center[1] + b.halfExtents.Len(), corner[2]}
		reach := origin[1] - corner[1] + GroundProbe
		dist, _, ok := scene.Raycast(origin, down, reach)
		if !ok {
			continue
		}
		surface := origin[1] - dist
		penetration := surface - corner[1]
		if penetration > -GroundProbe {
			touched = true
		}
		if penetration > lift {
			lift = penetration
		}
	}

	if lift > CollisionAxisTolerance {
		b.center[1] += lift
	}
	if touched {
		if b.velocity[1] < 0 {
			b.velocity[1] = 0
		}
		b.velocity[0] *= GroundFriction
		b.velocity[2] *= GroundFriction
	}
	return touched
}
