package bindings

import (
	"errors"
	"fmt"
)

const maxNameLength = 255

// ValidateStoreName reports whether a script can open a Dictionary or ConfigStore called name.
func ValidateStoreName(name string) error {
	return resourceName("")(name)
}

// ValidateEndpointName reports whether a script can open a SecretStore or Logger called name.
func ValidateEndpointName(name string) error {
	return resourceName("-.")(name)
}

// resourceName validates the name of a host resource. Names start with an ASCII letter and
// continue with letters, digits, underscores and any of extra.
func resourceName(extra string) func(string) error {
	return func(s string) error {
		if s == "" {
			return errors.New("can not be empty")
		}
		if len(s) > maxNameLength {
			return fmt.Errorf("can not be more than %d characters", maxNameLength)
		}
		if !isLetter(s[0]) {
			return errors.New("must start with an ascii alphabetical character")
		}
		for i := 1; i < len(s); i++ {
			c := s[i]
			if isLetter(c) || isDigit(c) || c == '_' || containsByte(extra, c) {
				continue
			}
			return fmt.Errorf("contains invalid character %q", c)
		}
		return nil
	}
}

// lookupKey validates a key passed to a get method.
func lookupKey(s string) error {
	if s == "" {
		return errors.New("can not be empty")
	}
	if len(s) > maxNameLength {
		return fmt.Errorf("can not be more than %d characters", maxNameLength)
	}
	return nil
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func containsByte(s string, c byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			return true
		}
	}
	return false
}
