package config

import (
	"io"
	"time"
)

// Config reads typed values by dotted key (for example "database.pool.max_conns").
//
// Missing keys and values that cannot be converted return the zero value of the
// requested type; callers decide their own defaults.
type Config interface {
	io.Closer

	GetBool(key string) bool
	GetString(key string) string

	GetInt(key string) int
	GetInt32(key string) int32
	GetInt64(key string) int64
	GetUint(key string) uint
	GetUint16(key string) uint16
	GetFloat64(key string) float64

	// GetSecond and GetMinute interpret an integer value as a duration unit.
	GetSecond(key string) time.Duration
	GetMinute(key string) time.Duration

	// GetArray splits a comma separated value, trimming blanks and dropping empty items.
	GetArray(key string) []string

	// GetMap parses "k1:v1,k2:v2" into a map.
	GetMap(key string) map[string]string
}
