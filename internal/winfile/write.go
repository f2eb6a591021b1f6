package winfile

import (
	"fmt"
	"os"
	"strings"

	"cmtdata/internal/cmterr"
)

// WriteText re-emits skeletons in the line-oriented text format. Parsing the
// output yields the same windows and weights back.
func WriteText(path string, skeletons []*Skeleton) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%d\n", len(skeletons))
	for _, s := range skeletons {
		fmt.Fprintf(&b, "%s\n", s.ObsdPath)
		fmt.Fprintf(&b, "%s\n", s.SyntPath)
		fmt.Fprintf(&b, "%d\n", len(s.Windows))
		for _, w := range s.Windows {
			fmt.Fprintf(&b, "%g %g %g\n", w.Start, w.End, w.Weight)
		}
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return cmterr.Wrap(cmterr.ErrIO, "write window file", path, err)
	}
	return nil
}
