// Package tests holds small helpers shared by _test.go files across packages.
package tests

import (
	"math/rand"
)

const alphanumerics = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomString returns a random 10-character alphanumeric string
func RandomString() string {
	return RandomStringWithLen(10)
}

// RandomStringWithLen returns a random alphanumeric string of length n
func RandomStringWithLen(n int) string {
	s := make([]byte, n)
	for i := range s {
		s[i] = alphanumerics[rand.Intn(len(alphanumerics))] //nolint: gosec
	}
	return string(s)
}
