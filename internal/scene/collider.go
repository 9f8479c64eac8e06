package scene

import "github.com/go-gl/mathgl/mgl32"

// Collider exposes a prepared scene to the physics integrator.
type Collider struct {
	root Node
}

func NewCollider(root Node) *Collider {
	return &Collider{root: root}
}

func (c *Collider) Raycast(origin, dir mgl32.Vec3, maxDist float32) (float32, mgl32.Vec3, bool) {
	if c == nil || c.root == nil {
		return 0, mgl32.Vec3{}, false
	}
	hit, ok := Raycast(c.root, Ray{Origin: origin, Dir: dir}, maxDist)
	if !ok {
		return 0, mgl32.Vec3{}, false
	}
	return hit.Distance, hit.Normal, true
}
