package storage

import (
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"time"
)

// StoredName builds the opaque name a blob is saved under: a nanosecond
// timestamp plus a random suffix, keeping the original extension. No lock is
// taken, concurrent uploads rely on the randomness to not collide.
func StoredName(originalName string, now time.Time) string {
	return fmt.Sprintf("%d-%d%s", now.UnixNano(), rand.IntN(1e9), filepath.Ext(originalName))
}
