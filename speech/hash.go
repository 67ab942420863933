package speech

import (
	"fmt"
	"hash/fnv"

	"golang.org/x/text/unicode/norm"
)

// ContentHash returns a cheap non-cryptographic hash of a block's text,
// used purely for change detection. Text is NFC-normalized first so that
// editors emitting different Unicode compositions of the same characters
// do not invalidate cached audio.
func ContentHash(text string) string {
	h := fnv.New64a()
	h.Write([]byte(norm.NFC.String(text)))
	return fmt.Sprintf("%016x", h.Sum64())
}
