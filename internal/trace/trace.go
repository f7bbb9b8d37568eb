// Package trace writes world trajectories as text and compares two of them. Values are printed with
// full float64 precision, so equal traces mean bit-identical simulations.
package trace

import (
	"fmt"
	"io"

	"github.com/pmezard/go-difflib/difflib"

	"boxworld/internal/physics"
)

// Write appends one line per body of s in snapshot order.
func Write(w io.Writer, s physics.Snapshot) error {
	for _, b := range s.Bodies {
		if b.Static {
			continue
		}
		_, err := fmt.Fprintf(w, "step %d body %d pos %.17g %.17g rot %.17g vel %.17g %.17g\n",
			s.Step, b.ID, b.Position[0], b.Position[1], b.Rotation, b.Velocity[0], b.Velocity[1])
		if err != nil {
			return err
		}
	}
	return nil
}

// Diff returns a unified diff between two traces, or "" when they are identical.
func Diff(fromName, from, toName, to string) (string, error) {
	if from == to {
		return "", nil
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(from),
		B:        difflib.SplitLines(to),
		FromFile: fromName,
		ToFile:   toName,
		Context:  1,
	})
}
