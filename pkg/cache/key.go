package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Key builds a deterministic cache key for a scored window. The agent subset
// is sorted first so permutations of the same subset share an entry.
func Key(trajectoryID uuid.UUID, start, end int, agents []int) string {
	sorted := make([]int, len(agents))
	copy(sorted, agents)
	sort.Ints(sorted)

	var b strings.Builder
	fmt.Fprintf(&b, "%s|%d|%d|", trajectoryID, start, end)
	for i, id := range sorted {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", id)
	}

	h := sha256.Sum256([]byte(b.String()))
	return "score_" + hex.EncodeToString(h[:])[:32]
}
