package entity

import (
	"strings"
	"time"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ThemeFromString falls back to light for anything unknown.
func ThemeFromString(raw string) Theme {
	if strings.EqualFold(strings.TrimSpace(raw), string(ThemeDark)) {
		return ThemeDark
	}
	return ThemeLight
}

func (t Theme) String() string { return string(t) }

type Organization struct {
	ID        string
	Code      string
	Name      string
	Website   string
	Status    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// User is a member of exactly one organization.
type User struct {
	ID             string
	OrganizationID string
	Email          string
	Phone          string
	Status         bool
	Theme          Theme
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
