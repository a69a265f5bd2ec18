package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
)

// RotationMatrix is a 3x3 matrix in row major order.
// m[3*r + c] is the element in the r'th row and c'th column.
type RotationMatrix struct {
	mat [9]float64
}

// NewRotationMatrix creates the rotation matrix from a slice of 9 values in row major order.
// The rows must form an orthonormal basis with determinant 1.
func NewRotationMatrix(m []float64) (*RotationMatrix, error) {
	if len(m) != 9 {
		return nil, errors.Errorf("input slice representing rotation matrix must have 9 elements, got %d", len(m))
	}
	rm := &RotationMatrix{}
	copy(rm.mat[:], m)
	if !rm.isOrthonormal(1e-6) {
		return nil, errors.New("input slice does not describe an orthonormal rotation matrix")
	}
	return rm, nil
}

// NewLookAtRotation returns the world-to-camera rotation of a camera looking along forward, with
// up pointing towards the top of the image. Image rows grow downwards, so the second row of the
// result is the negated up vector orthogonalized against forward.
func NewLookAtRotation(forward, up r3.Vector) (*RotationMatrix, error) {
	if forward.Norm() == 0 {
		return nil, errors.New("look direction must be non-zero")
	}
	z := forward.Normalize()
	down := z.Mul(up.Dot(z)).Sub(up)
	if down.Norm() < 1e-9 {
		return nil, errors.New("up vector must not be parallel to the look direction")
	}
	y := down.Normalize()
	x := y.Cross(z)
	return &RotationMatrix{[9]float64{
		x.X, x.Y, x.Z,
		y.X, y.Y, y.Z,
		z.X, z.Y, z.Z,
	}}, nil
}

// RotationMatrix returns the orientation in rotation matrix representation.
func (rm *RotationMatrix) RotationMatrix() *RotationMatrix {
	return rm
}

// Quaternion returns the orientation in quaternion representation.
func (rm *RotationMatrix) Quaternion() quat.Number {
	m := rm.mat
	trace := m[0] + m[4] + m[8]
	var q quat.Number
	switch {
	case trace > 0:
		s := 0.5 / math.Sqrt(trace+1)
		q = quat.Number{Real: 0.25 / s, Imag: (m[7] - m[5]) * s, Jmag: (m[2] - m[6]) * s, Kmag: (m[3] - m[1]) * s}
	case m[0] > m[4] && m[0] > m[8]:
		s := 2 * math.Sqrt(1+m[0]-m[4]-m[8])
		q = quat.Number{Real: (m[7] - m[5]) / s, Imag: 0.25 * s, Jmag: (m[1] + m[3]) / s, Kmag: (m[2] + m[6]) / s}
	case m[4] > m[8]:
		s := 2 * math.Sqrt(1+m[4]-m[0]-m[8])
		q = quat.Number{Real: (m[2] - m[6]) / s, Imag: (m[1] + m[3]) / s, Jmag: 0.25 * s, Kmag: (m[5] + m[7]) / s}
	default:
		s := 2 * math.Sqrt(1+m[8]-m[0]-m[4])
		q = quat.Number{Real: (m[3] - m[1]) / s, Imag: (m[2] + m[6]) / s, Jmag: (m[5] + m[7]) / s, Kmag: 0.25 * s}
	}
	return Normalize(q)
}

// At returns the float corresponding to the element at the specified location.
func (rm *RotationMatrix) At(row, col int) float64 {
	return rm.mat[row*3+col]
}

// Row returns the specified row as an r3.Vector.
func (rm *RotationMatrix) Row(row int) r3.Vector {
	i := 3 * row
	return r3.Vector{rm.mat[i], rm.mat[i+1], rm.mat[i+2]}
}

// Col returns the specified column as an r3.Vector.
func (rm *RotationMatrix) Col(col int) r3.Vector {
	return r3.Vector{rm.mat[col], rm.mat[col+3], rm.mat[col+6]}
}

// Mul returns the product R v.
func (rm *RotationMatrix) Mul(v r3.Vector) r3.Vector {
	return r3.Vector{rm.Row(0).Dot(v), rm.Row(1).Dot(v), rm.Row(2).Dot(v)}
}

// TransposeMul returns the product R^T v, the inverse rotation applied to v.
func (rm *RotationMatrix) TransposeMul(v r3.Vector) r3.Vector {
	return r3.Vector{rm.Col(0).Dot(v), rm.Col(1).Dot(v), rm.Col(2).Dot(v)}
}

// Dense returns a copy of the rotation as a gonum matrix.
func (rm *RotationMatrix) Dense() *mat.Dense {
	return mat.NewDense(3, 3, append([]float64(nil), rm.mat[:]...))
}

func (rm *RotationMatrix) isOrthonormal(tol float64) bool {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			expected := 0.
			if i == j {
				expected = 1
			}
			if math.Abs(rm.Row(i).Dot(rm.Row(j))-expected) > tol {
				return false
			}
		}
	}
	return math.Abs(rm.Row(0).Cross(rm.Row(1)).Dot(rm.Row(2))-1) <= tol
}
