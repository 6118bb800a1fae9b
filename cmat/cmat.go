// Package cmat implements dense complex matrices with a fixed capacity
// bound, suitable for small tensor-product Hilbert spaces.
package cmat

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"

	"github.com/pkg/errors"
)

// MaxDim is the maximum logical dimension per side.
// 64 covers a 4-level atom coupled to a 16-photon cavity.
const MaxDim = 64

// Matrix is a dense complex matrix with logical size rows x cols.
// The zero value is an empty matrix, usable as the destination of any
// mutating method; construct sized matrices with New or M.
type Matrix struct {
	rows int
	cols int
	data []complex128
}

// New returns a zeroed rows x cols matrix.
func New(rows, cols int) (*Matrix, error) {
	m := &Matrix{}
	if err := m.Zeros(rows, cols); err != nil {
		return nil, err
	}
	return m, nil
}

// M builds a matrix from a dense literal. It panics on invalid shapes and
// is intended for operator literals and tests.
func M(dense [][]complex128) *Matrix {
	m, err := New(len(dense), len(dense[0]))
	if err != nil {
		panic(fmt.Sprintf("%+v", err))
	}
	for i, row := range dense {
		if len(row) != m.cols {
			panic(fmt.Sprintf("ragged row %d: %d != %d", i, len(row), m.cols))
		}
		copy(m.data[i*m.cols:(i+1)*m.cols], row)
	}
	return m
}

func checkShape(rows, cols int) error {
	if rows <= 0 || cols <= 0 {
		return errors.Wrap(ErrBadShape, fmt.Sprintf("%dx%d", rows, cols))
	}
	if rows > MaxDim || cols > MaxDim {
		return errors.Wrap(ErrCapacityExceeded, fmt.Sprintf("%dx%d > %d", rows, cols, MaxDim))
	}
	return nil
}

// reshape sets the logical size without clearing elements.
func (m *Matrix) reshape(rows, cols int) error {
	if err := checkShape(rows, cols); err != nil {
		return err
	}
	m.rows, m.cols = rows, cols
	if n := rows * cols; n <= cap(m.data) {
		m.data = m.data[:n]
	} else {
		m.data = make([]complex128, n)
	}
	return nil
}

// Zeros sets the logical size to rows x cols and clears every element.
func (m *Matrix) Zeros(rows, cols int) error {
	if err := m.reshape(rows, cols); err != nil {
		return err
	}
	clear(m.data)
	return nil
}

// Identity sets m to the dim x dim identity.
func (m *Matrix) Identity(dim int) error {
	if err := m.Zeros(dim, dim); err != nil {
		return err
	}
	for i := 0; i < dim; i++ {
		m.data[i*dim+i] = 1
	}
	return nil
}

func (m *Matrix) Rows() int { return m.rows }
func (m *Matrix) Cols() int { return m.cols }

// At returns the element at row i, column j.
func (m *Matrix) At(i, j int) complex128 {
	return m.data[i*m.cols+j]
}

// Set assigns the element at row i, column j.
func (m *Matrix) Set(i, j int, v complex128) {
	m.data[i*m.cols+j] = v
}

// Copy copies src into dst, including the logical size.
func (dst *Matrix) Copy(src *Matrix) error {
	if err := dst.reshape(src.rows, src.cols); err != nil {
		return err
	}
	copy(dst.data, src.data)
	return nil
}

// Dagger sets dst to the conjugate transpose of src. dst may alias src.
func (dst *Matrix) Dagger(src *Matrix) error {
	t := make([]complex128, len(src.data))
	for i := 0; i < src.rows; i++ {
		for j := 0; j < src.cols; j++ {
			t[j*src.rows+i] = cmplx.Conj(src.data[i*src.cols+j])
		}
	}
	if err := dst.reshape(src.cols, src.rows); err != nil {
		return err
	}
	copy(dst.data, t)
	return nil
}

// Mul sets dst = a*b. dst may alias a or b; the product is accumulated
// into a temporary before being written out.
func (dst *Matrix) Mul(a, b *Matrix) error {
	if a.cols != b.rows {
		return errors.Wrap(ErrDimensionMismatch, fmt.Sprintf("%dx%d * %dx%d", a.rows, a.cols, b.rows, b.cols))
	}
	t := make([]complex128, a.rows*b.cols)
	for i := 0; i < a.rows; i++ {
		for k := 0; k < a.cols; k++ {
			aik := a.data[i*a.cols+k]
			if aik == 0 {
				continue
			}
			for j := 0; j < b.cols; j++ {
				t[i*b.cols+j] += aik * b.data[k*b.cols+j]
			}
		}
	}
	if err := dst.reshape(a.rows, b.cols); err != nil {
		return err
	}
	copy(dst.data, t)
	return nil
}

// Commutator sets dst = a*b - b*a.
func (dst *Matrix) Commutator(a, b *Matrix) error {
	var ab, ba Matrix
	if err := ab.Mul(a, b); err != nil {
		return err
	}
	if err := ba.Mul(b, a); err != nil {
		return err
	}
	return dst.AddScaled(&ab, &ba, -1)
}

// Anticommutator sets dst = a*b + b*a.
func (dst *Matrix) Anticommutator(a, b *Matrix) error {
	var ab, ba Matrix
	if err := ab.Mul(a, b); err != nil {
		return err
	}
	if err := ba.Mul(b, a); err != nil {
		return err
	}
	return dst.Add(&ab, &ba)
}

// Add sets dst = a + b. dst may alias a or b.
func (dst *Matrix) Add(a, b *Matrix) error {
	return dst.AddScaled(a, b, 1)
}

// AddScaled sets dst = a + s*b. dst may alias a or b.
func (dst *Matrix) AddScaled(a, b *Matrix, s complex128) error {
	if a.rows != b.rows || a.cols != b.cols {
		return errors.Wrap(ErrDimensionMismatch, fmt.Sprintf("%dx%d + %dx%d", a.rows, a.cols, b.rows, b.cols))
	}
	if err := dst.reshape(a.rows, a.cols); err != nil {
		return err
	}
	for i := range dst.data {
		dst.data[i] = a.data[i] + s*b.data[i]
	}
	return nil
}

// Scale multiplies every element of m by s in place.
func (m *Matrix) Scale(s complex128) {
	for i := range m.data {
		m.data[i] *= s
	}
}

// Kron sets dst to the Kronecker product of a and b. Block (i,j) of dst
// is a[i][j] * b. dst must not alias a or b.
func (dst *Matrix) Kron(a, b *Matrix) error {
	if err := dst.reshape(a.rows*b.rows, a.cols*b.cols); err != nil {
		return err
	}
	for i := 0; i < a.rows; i++ {
		for j := 0; j < a.cols; j++ {
			aij := a.data[i*a.cols+j]
			for k := 0; k < b.rows; k++ {
				for l := 0; l < b.cols; l++ {
					dst.data[(i*b.rows+k)*dst.cols+(j*b.cols+l)] = aij * b.data[k*b.cols+l]
				}
			}
		}
	}
	return nil
}

// Trace returns the sum of the min(rows, cols) diagonal elements.
func (m *Matrix) Trace() complex128 {
	n := min(m.rows, m.cols)
	var tr complex128
	for i := 0; i < n; i++ {
		tr += m.data[i*m.cols+i]
	}
	return tr
}

// Equal reports exact equality of shapes and elements.
func (a *Matrix) Equal(b *Matrix) bool {
	return a.EqualApprox(b, 0)
}

// EqualApprox reports equality of shapes and elements within tol.
func (a *Matrix) EqualApprox(b *Matrix, tol float64) bool {
	if a.rows != b.rows || a.cols != b.cols {
		return false
	}
	for i, av := range a.data {
		if cmplx.Abs(av-b.data[i]) > tol {
			return false
		}
	}
	return true
}

func (m *Matrix) String() string {
	lines := make([]string, 0, m.rows)
	for i := 0; i < m.rows; i++ {
		cs := make([]string, 0, m.cols)
		for j := 0; j < m.cols; j++ {
			v := m.data[i*m.cols+j]
			switch {
			case imag(v) == 0:
				cs = append(cs, format(real(v)))
			case real(v) == 0:
				cs = append(cs, format(imag(v))+"i")
			default:
				cs = append(cs, format(real(v))+"+"+format(imag(v))+"i")
			}
		}
		lines = append(lines, strings.Join(cs, "\t"))
	}
	return strings.Join(lines, "\n")
}

func format(v float64) string {
	// If v is 0 or -0, return "0" immediately to avoid returning "-0".
	if v == 0 {
		return " 0"
	}

	s := fmt.Sprintf("%v", v)

	// Add a space before non-negative numbers to align with other negative numbers in the same column.
	if v >= 0 {
		s = " " + s
	}

	return s
}

// Hermitian reports whether m equals its own conjugate transpose within tol.
func (m *Matrix) Hermitian(tol float64) bool {
	if m.rows != m.cols {
		return false
	}
	for i := 0; i < m.rows; i++ {
		for j := i; j < m.cols; j++ {
			d := m.data[i*m.cols+j] - cmplx.Conj(m.data[j*m.cols+i])
			if math.Abs(real(d)) > tol || math.Abs(imag(d)) > tol {
				return false
			}
		}
	}
	return true
}
