package physics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Corner identifies one of the eight force application points of a rigid
// box. The numbering is part of the controller contract: forward thrust uses
// 1-4, reverse thrust 5-8, left steering 2 and 4, right steering 1 and 3.
//
// Body frame: +X front, +Y top, +Z right.
type Corner int

const (
	FrontRightTop Corner = iota + 1
	FrontLeftTop
	FrontRightBottom
	FrontLeftBottom
	RearRightTop
	RearLeftTop
	RearRightBottom
	RearLeftBottom
)

const CornerCount = 8

var (
	FrontCorners = []Corner{FrontRightTop, FrontLeftTop, FrontRightBottom, FrontLeftBottom}
	RearCorners  = []Corner{RearRightTop, RearLeftTop, RearRightBottom, RearLeftBottom}
	LeftCorners  = []Corner{FrontLeftTop, FrontLeftBottom}
	RightCorners = []Corner{FrontRightTop, FrontRightBottom}
)

func (c Corner) Valid() bool {
	return c >= FrontRightTop && c <= RearLeftBottom
}

// Offset returns the corner position in the unit body frame, each component ±1.
func (c Corner) Offset() mgl32.Vec3 {
	if !c.Valid() {
		return mgl32.Vec3{}
	}
	i := int(c - FrontRightTop)
	x := float32(1)
	if i >= 4 {
		x = -1
	}
	y := float32(1)
	if i%4 >= 2 {
		y = -1
	}
	z := float32(1)
	if i%2 == 1 {
		z = -1
	}
	return mgl32.Vec3{x, y, z}
}

var cornerNames = [...]string{
	"invalid",
	"front-right-top",
	"front-left-top",
	"front-right-bottom",
	"front-left-bottom",
	"rear-right-top",
	"rear-left-top",
	"rear-right-bottom",
	"rear-left-bottom",
}

func (c Corner) String() string {
	if !c.Valid() {
		return fmt.Sprintf("corner(%d)", int(c))
	}
	return cornerNames[c]
}
