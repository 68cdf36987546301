// Package geom provides the coordinate math shared by the label engine.
//
// # Coordinate Spaces
//
// Object positions are stored in canvas space: the origin is the top-left
// corner of the label, X grows right and Y grows down. The editor viewport
// maps canvas space to screen pixels with a uniform zoom followed by a pan:
//
//	screen = canvas*zoom + pan
//
// # Angles
//
// Angles are expressed in degrees. Because Y grows down, a positive angle
// turns clockwise on screen. AngleDegrees, RotatePoint and the object
// "angle" property all share this convention:
//
//	AngleDegrees(Pt(0, 0), Pt(1, 0)) == 0
//	AngleDegrees(Pt(0, 0), Pt(0, 1)) == 90
//	AngleDegrees(Pt(0, 0), Pt(-1, 0)) == 180
//	AngleDegrees(Pt(0, 0), Pt(0, -1)) == 270
//
// Bounds returns the unrotated, scaled box of an object. RotatedBounds is
// a separate operation; callers choose the one they need.
package geom
