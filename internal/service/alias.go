package service

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// backHalfCharset is the fixed alphabet short aliases are drawn from.
// Digits start at 1 so a back half never looks like a zero-padded number.
const backHalfCharset = "123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIKJLMNOPQRSTUVWXYZ"

// DefaultBackHalfLength is the alias length used when the caller does not
// supply their own back half.
const DefaultBackHalfLength = 5

// GenerateBackHalf produces a random alias of the given length from the
// fixed charset. Collision resistance, not secrecy, is the requirement;
// uniqueness is enforced by the caller against the link store.
func GenerateBackHalf(length int) (string, error) {
	if length <= 0 {
		length = DefaultBackHalfLength
	}

	return gonanoid.Generate(backHalfCharset, length)
}
