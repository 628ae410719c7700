// Package hash turns OTP codes into the value persisted in the code column.
//
// Implementations must be deterministic: the store looks codes up by equality,
// so the same input always has to produce the same output.
package hash
