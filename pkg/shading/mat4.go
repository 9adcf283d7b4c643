package shading

// Mat4 is a 4x4 float32 matrix in column-major order, the layout WebGPU
// uniform buffers expect. Element (row r, column c) lives at index c*4+r.
type Mat4 [16]float32

// Vec2 is a 2D position in world (tile) space.
type Vec2 struct {
	X, Y float32
}

// Vec4 is a homogeneous 4D vector, used for clip-space positions.
type Vec4 struct {
	X, Y, Z, W float32
}

// Identity returns the identity matrix.
func Identity() Mat4 {
	var m Mat4
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
	return m
}

// Translation returns a matrix translating by (x, y, z).
func Translation(x, y, z float32) Mat4 {
	m := Identity()
	m[12] = x
	m[13] = y
	m[14] = z
	return m
}

// Orthographic returns a right-handed orthographic projection mapping the
// given box to WebGPU clip space (z in [0, 1]).
func Orthographic(left, right, bottom, top, near, far float32) Mat4 {
	var m Mat4
	m[0] = 2 / (right - left)
	m[5] = 2 / (top - bottom)
	m[10] = 1 / (near - far)
	m[12] = (right + left) / (left - right)
	m[13] = (top + bottom) / (bottom - top)
	m[14] = near / (near - far)
	m[15] = 1
	return m
}

// Mul returns the matrix product a*b, so that (a.Mul(b)).TransformVec4(v)
// equals a.TransformVec4(b.TransformVec4(v)).
func (a Mat4) Mul(b Mat4) Mat4 {
	var out Mat4
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += a[k*4+r] * b[c*4+k]
			}
			out[c*4+r] = sum
		}
	}
	return out
}

// TransformVec4 applies the matrix to a column vector.
func (a Mat4) TransformVec4(v Vec4) Vec4 {
	return Vec4{
		X: a[0]*v.X + a[4]*v.Y + a[8]*v.Z + a[12]*v.W,
		Y: a[1]*v.X + a[5]*v.Y + a[9]*v.Z + a[13]*v.W,
		Z: a[2]*v.X + a[6]*v.Y + a[10]*v.Z + a[14]*v.W,
		W: a[3]*v.X + a[7]*v.Y + a[11]*v.Z + a[15]*v.W,
	}
}
