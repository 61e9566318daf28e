// Package wire provides the byte-channel primitives used by the identity
// catalog exchange.
//
// Unlike XDR there is no alignment or padding: integers are fixed 4-byte
// values in the configured byte order, single bytes are written as-is, and
// raw buffers carry exactly the requested number of bytes.
//
// Key characteristics:
//   - int32 values in little-endian order by default (the historical order
//     used by replication peers); big-endian is available for peers that
//     agree on it out of band
//   - no framing: a partially read value fails the whole stream
//   - Writer buffers output; callers must Flush before handing the
//     underlying writer to anything else
//
// This package has no dependencies on other dittosync packages.
package wire

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// MaxNameLength is the largest byte count a single length byte can describe.
const MaxNameLength = 255

// ByteOrderName is the configuration spelling of a byte order.
type ByteOrderName string

const (
	LittleEndian ByteOrderName = "little"
	BigEndian    ByteOrderName = "big"
)

// ParseByteOrder maps a configuration value to a binary.ByteOrder.
// An empty string selects little-endian.
func ParseByteOrder(s string) (binary.ByteOrder, error) {
	switch ByteOrderName(strings.ToLower(strings.TrimSpace(s))) {
	case LittleEndian, "":
		return binary.LittleEndian, nil
	case BigEndian:
		return binary.BigEndian, nil
	default:
		return nil, fmt.Errorf("invalid byte order %q (valid: little, big)", s)
	}
}
