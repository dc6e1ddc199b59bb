package testutil

import (
	"github.com/andreyvit/diff"
)

// LineDiff returns a line-oriented diff of two multi-line strings, for test
// failures where dumping both values whole would be hard to read.
func LineDiff(expected, actual string) string {
	return diff.LineDiff(expected, actual)
}
