package elgamal

import "fmt"

// ErrInvalidPoint is returned when a public key does not decode to a
// point on the curve. Cipher components that fail to decode are
// reported as ErrInvalidCipher instead.
var ErrInvalidPoint = fmt.Errorf("elgamal: invalid point")

// ErrInvalidCipher is returned when a 64-byte wire cipher cannot be
// parsed into two valid points.
var ErrInvalidCipher = fmt.Errorf("elgamal: invalid cipher encoding")
