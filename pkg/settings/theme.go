package settings

import (
	"errors"
	"fmt"
)

type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"

	DefaultTheme = Light
)

var ErrInvalidTheme = errors.New("theme must be light or dark")

// ParseTheme accepts exactly "light" or "dark".
func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case Light, Dark:
		return Theme(s), nil
	}
	return "", fmt.Errorf("%w: got %q", ErrInvalidTheme, s)
}

// themeFromStored reads back a stored value. Anything but "dark" is light.
func themeFromStored(s string) Theme {
	if Theme(s) == Dark {
		return Dark
	}
	return Light
}

func (t Theme) Toggled() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}
