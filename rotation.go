package spacet

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// R1 rotation about the 1st axis.
func R1(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{1, 0, 0, 0, c, s, 0, -s, c})
}

// R3 rotation about the 3rd axis.
func R3(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{c, s, 0, -s, c, 0, 0, 0, 1})
}

// OrbitTransform returns the 4x4 homogeneous transform which takes a point of the
// centre-parametrised ellipse into the frame of the mother body: the point is first
// shifted by -c along the major axis (so that the mother sits at the focus), scaled,
// tilted by the inclination θ about the 1st axis, and finally turned by φ about the
// 3rd axis.
// R1 and R3 are frame rotations, hence the negated angles.
func OrbitTransform(θ, φ, c, scale float64) *mat.Dense {
	var rot mat.Dense
	rot.Mul(R3(-φ), R1(-θ))
	m := mat.NewDense(4, 4, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m.Set(i, j, scale*rot.At(i, j))
		}
		m.Set(i, 3, -c*scale*rot.At(i, 0))
	}
	m.Set(3, 3, 1)
	return m
}

// transformPoint applies a 4x4 homogeneous transform to a point.
func transformPoint(m mat.Matrix, p r3.Vec) r3.Vec {
	var out mat.VecDense
	out.MulVec(m, mat.NewVecDense(4, []float64{p.X, p.Y, p.Z, 1}))
	return r3.Vec{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}
}
