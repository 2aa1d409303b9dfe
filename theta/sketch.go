package theta

import (
	"fmt"
	"iter"
	"strings"
)

// Sketch is a generalization of the Kth Minimum Value (KMV) sketch.
type Sketch interface {
	// IsEmpty returns true if this sketch represents an empty set
	// (not the same as no retained entries!)
	IsEmpty() bool

	// Estimate returns estimate of the distinct count of the input stream
	Estimate() float64

	// LowerBound returns the approximate lower error bound given a number of standard deviations.
	// This parameter is similar to the number of standard deviations of the normal distribution
	// and corresponds to approximately 67%, 95% and 99% confidence intervals.
	// numStdDevs number of Standard Deviations (1, 2 or 3)
	LowerBound(numStdDevs uint8) (float64, error)

	// UpperBound returns the approximate upper error bound given a number of standard deviations.
	// This parameter is similar to the number of standard deviations of the normal distribution
	// and corresponds to approximately 67%, 95% and 99% confidence intervals.
	// numStdDevs number of Standard Deviations (1, 2 or 3)
	UpperBound(numStdDevs uint8) (float64, error)

	// IsEstimationMode returns true if the sketch is in estimation mode
	// (as opposed to exact mode)
	IsEstimationMode() bool

	// Theta returns theta as a fraction from 0 to 1 (effective sampling rate)
	Theta() float64

	// Theta64 returns theta as a positive integer between 0 and math.MaxInt64
	Theta64() uint64

	// NumRetained returns the number of retained entries in the sketch
	NumRetained() uint32

	// SeedHash returns hash of the seed that was used to hash the input
	SeedHash() (uint16, error)

	// IsOrdered returns true if retained entries are ordered
	IsOrdered() bool

	// String returns a human-readable summary of this sketch as a string
	// If shouldPrintItems is true, include the list of items retained by the sketch
	String(shouldPrintItems bool) string

	// All returns an iterator over hash values in the sketch.
	All() iter.Seq[uint64]
}

// summarizeSketch renders the fields common to every Sketch implementation
// the same way. extraLines are inserted before the closing banner; callers
// that carry fields no other implementation has (QuickSelectUpdateSketch's
// lgK and resize factor) pass them there instead of duplicating the rest of
// this layout.
func summarizeSketch(s Sketch, shouldPrintItems bool, extraLines ...string) string {
	seedHash, _ := s.SeedHash()
	lb, _ := s.LowerBound(2)
	ub, _ := s.UpperBound(2)

	var sb strings.Builder
	sb.WriteString("### Theta sketch summary:\n")
	fmt.Fprintf(&sb, "   num retained entries : %d\n", s.NumRetained())
	fmt.Fprintf(&sb, "   seed hash            : %d\n", seedHash)
	fmt.Fprintf(&sb, "   empty?               : %t\n", s.IsEmpty())
	fmt.Fprintf(&sb, "   ordered?             : %t\n", s.IsOrdered())
	fmt.Fprintf(&sb, "   estimation mode?     : %t\n", s.IsEstimationMode())
	fmt.Fprintf(&sb, "   theta (fraction)     : %f\n", s.Theta())
	fmt.Fprintf(&sb, "   theta (raw 64-bit)   : %d\n", s.Theta64())
	fmt.Fprintf(&sb, "   estimate             : %f\n", s.Estimate())
	fmt.Fprintf(&sb, "   lower bound 95%% conf : %f\n", lb)
	fmt.Fprintf(&sb, "   upper bound 95%% conf : %f\n", ub)
	for _, line := range extraLines {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString("### End sketch summary\n")

	if shouldPrintItems {
		sb.WriteString("### Retained entries\n")
		for hash := range s.All() {
			fmt.Fprintf(&sb, "%d\n", hash)
		}
		sb.WriteString("### End retained entries\n")
	}

	return sb.String()
}
