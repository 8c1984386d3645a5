// Package dblock serializes test packages that share the integration
// database. Acquire blocks until this process holds the lock port.
package dblock

import (
	"net"
	"time"
)

const lockAddr = "127.0.0.1:46432"

func Acquire() func() {
	for {
		ln, err := net.Listen("tcp", lockAddr)
		if err == nil {
			return func() { ln.Close() }
		}
		time.Sleep(50 * time.Millisecond)
	}
}
