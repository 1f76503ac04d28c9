package scoring

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
)

// Digest fingerprints a resolved score set independent of its order.
// An empty set has an empty digest.
func Digest(scores []Resolved) string {
	if len(scores) == 0 {
		return ""
	}
	lines := make([]string, 0, len(scores))
	for _, s := range scores {
		lines = append(lines, s.QuestionID+"="+strconv.FormatFloat(s.Value, 'g', -1, 64))
	}
	sort.Strings(lines)
	sum := sha256.Sum256([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(sum[:16])
}
