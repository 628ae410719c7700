// Package validator checks request structs with go-playground/validator and
// turns failures into snake_case field messages.
package validator
