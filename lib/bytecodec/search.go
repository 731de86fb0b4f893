// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bytecodec

// IndexOf returns the index of the first occurrence of needle in
// haystack, or -1. An empty needle matches at 0.
//
// The search is Boyer-Moore with both the bad-character and the
// good-suffix tables. Compiled meshes are several megabytes and the
// markers searched for are long and distinctive, which is where the
// skip tables pay off over a naive scan.
func IndexOf(haystack, needle []byte) int {
	if len(needle) == 0 {
		return 0
	}
	if len(needle) > len(haystack) {
		return -1
	}

	badCharacter := badCharacterTable(needle)
	goodSuffix := goodSuffixTable(needle)

	last := len(needle) - 1
	for i := last; i < len(haystack); {
		j := last
		for needle[j] == haystack[i] {
			if j == 0 {
				return i
			}
			i--
			j--
		}
		// i now sits on the mismatching byte.
		i += max(badCharacter[haystack[i]], goodSuffix[last-j])
	}
	return -1
}

// badCharacterTable maps each byte to the shift that aligns its last
// occurrence in needle (excluding the final position) with the
// mismatching text byte.
func badCharacterTable(needle []byte) [256]int {
	var table [256]int
	for i := range table {
		table[i] = len(needle)
	}
	for i := 0; i < len(needle)-1; i++ {
		table[needle[i]] = len(needle) - 1 - i
	}
	return table
}

// goodSuffixTable is indexed by the number of bytes matched from the
// end of needle before a mismatch.
func goodSuffixTable(needle []byte) []int {
	length := len(needle)
	table := make([]int, length)

	lastPrefix := length
	for i := length; i > 0; i-- {
		if isPrefix(needle, i) {
			lastPrefix = i
		}
		table[length-i] = lastPrefix - i + length
	}
	for i := 0; i < length-1; i++ {
		suffix := suffixLength(needle, i)
		table[suffix] = length - 1 - i + suffix
	}
	return table
}

// isPrefix reports whether needle[p:] is a prefix of needle.
func isPrefix(needle []byte, p int) bool {
	for i, j := p, 0; i < len(needle); i, j = i+1, j+1 {
		if needle[i] != needle[j] {
			return false
		}
	}
	return true
}

// suffixLength returns the length of the longest substring ending at p
// that is also a suffix of needle.
func suffixLength(needle []byte, p int) int {
	length := 0
	for i, j := p, len(needle)-1; i >= 0 && needle[i] == needle[j]; i, j = i-1, j-1 {
		length++
	}
	return length
}
