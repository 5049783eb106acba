// Package verify implements the access verifier (C4): classifying a
// tagged pointer and access length against the shadow store into one
// of a small set of outcomes, per spec §4.4. It is pure decision logic
// with no side effects other than the single raw-memory read needed to
// recover a short granule's real tag.
package verify
