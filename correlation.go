package patman

import (
	"math/rand/v2"
	"strconv"
	"sync/atomic"
)

// Counter issues correlation ids. The zero value starts at 0 and is safe for
// concurrent use.
type Counter struct {
	n atomic.Uint64
}

// Next returns the next id. Ids are strictly increasing.
func (c *Counter) Next() uint64 {
	return c.n.Add(1) - 1
}

// processCounter backs DefaultClient for the lifetime of the process.
var processCounter = &Counter{}

const suffixChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// randomSuffix returns n random alphanumeric characters. It is not meant to
// be unguessable.
func randomSuffix(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = suffixChars[rand.IntN(len(suffixChars))]
	}
	return string(b)
}

// transactionName is the sub-logger name of a call.
func transactionName(id uint64) string {
	return strconv.FormatUint(id, 10) + "." + randomSuffix(8)
}
