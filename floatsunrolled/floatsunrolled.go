// Package floatsunrolled provides loop unrolled vector kernels for the coordinate descent
// inner loop. Slices of any length are supported with the remainder handled one at a time.
package floatsunrolled

import "errors"

const UnrollBatch = 4

var ErrSliceLengthMismatch = errors.New("slices must have equal lengths")

// Dot returns the inner product of a and b. Panics if the lengths differ, matching gonum floats.
func Dot(a, b []float64) float64 {
	if len(a) != len(b) {
		panic(ErrSliceLengthMismatch)
	}

	var sum float64
	body := len(a) - len(a)%UnrollBatch
	for i := 0; i < body; i += UnrollBatch {
		aTmp := a[i : i+UnrollBatch : i+UnrollBatch]
		bTmp := b[i : i+UnrollBatch : i+UnrollBatch]
		s0 := aTmp[0] * bTmp[0]
		s1 := aTmp[1] * bTmp[1]
		s2 := aTmp[2] * bTmp[2]
		s3 := aTmp[3] * bTmp[3]
		sum += s0 + s1 + s2 + s3
	}
	for i := body; i < len(a); i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// AddScaled performs dst = dst + alpha * s and returns dst
func AddScaled(dst []float64, alpha float64, s []float64) []float64 {
	if len(dst) != len(s) {
		panic(ErrSliceLengthMismatch)
	}

	body := len(s) - len(s)%UnrollBatch
	for i := 0; i < body; i += UnrollBatch {
		dstTmp := dst[i : i+UnrollBatch : i+UnrollBatch]
		sTmp := s[i : i+UnrollBatch : i+UnrollBatch]
		dstTmp[0] += alpha * sTmp[0]
		dstTmp[1] += alpha * sTmp[1]
		dstTmp[2] += alpha * sTmp[2]
		dstTmp[3] += alpha * sTmp[3]
	}
	for i := body; i < len(s); i++ {
		dst[i] += alpha * s[i]
	}
	return dst
}
