package utils

import (
	"fmt"
	"hash/fnv"
)

// Common Utilities needed by the client SDK and the CLI

// Dedupe removes duplicates from the list
func Dedupe(list []string) []string {
	seen := map[string]bool{}
	out := []string{}

	for _, elem := range list {
		if _, ok := seen[elem]; !ok {
			out = append(out, elem)
			seen[elem] = true
		}
	}
	return out
}

// HashString hashes a string using the FNV-1 hash function.
func HashString(s string) (uint32, error) {
	hash, e := hashBytes([]byte(s))
	if e != nil {
		return 0, fmt.Errorf("error while hashing string ('%s'): %s", s, e)
	}
	return hash, nil
}

// hashBytes hashes bytes using the FNV-1 hash function.
func hashBytes(b []byte) (uint32, error) {
	h := fnv.New32a()
	_, e := h.Write(b)
	if e != nil {
		return 0, fmt.Errorf("error while hashing bytes ('%s'): %s", string(b), e)
	}
	return h.Sum32(), nil
}
