// Package nonce supplies strictly increasing nonce values for signed
// exchange requests.
package nonce

import (
	"strconv"
	"sync"
	"time"
)

// Nonce struct holds the last issued nonce value
type Nonce struct {
	n int64
	m sync.Mutex
}

// Value is an issued nonce
type Value int64

// GetMilli returns the current Unix millisecond timestamp, guaranteed to be
// greater than any previously issued value so rapid successive requests
// cannot replay a nonce
func (n *Nonce) GetMilli() Value {
	n.m.Lock()
	defer n.m.Unlock()
	now := time.Now().UnixNano() / int64(time.Millisecond)
	if now <= n.n {
		now = n.n + 1
	}
	n.n = now
	return Value(now)
}

// Set sets the nonce value
func (n *Nonce) Set(val int64) {
	n.m.Lock()
	n.n = val
	n.m.Unlock()
}

// Get retrieves the nonce value
func (n *Nonce) Get() Value {
	n.m.Lock()
	defer n.m.Unlock()
	return Value(n.n)
}

// String is a Value method that changes format to a string
func (v Value) String() string {
	return strconv.FormatInt(int64(v), 10)
}
