package storage

import (
	"strconv"
	"strings"
)

// ParseCount decodes a stored non-negative integer. Anything else, including
// "12.5", "12abc", negatives and values that overflow int, is corrupt and
// reported with ok false. PutMax and readers share this rule so a corrupt
// entry is always replaced by the next write.
func ParseCount(raw string) (n int, ok bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
