package profile

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	accepted := []string{"main", "work123", "my-profile", "my_profile", "_scratch", "a", strings.Repeat("x", 64)}
	for _, name := range accepted {
		if err := ValidateName(name); err != nil {
			t.Errorf("ValidateName(%q) = %v, want nil", name, err)
		}
	}

	rejected := map[string]string{
		"empty":         "",
		"uppercase":     "Main",
		"space":         "my profile",
		"dot":           "..",
		"slash":         "a/b",
		"leading dash":  "-x",
		"email":         "ada@example.com",
		"too long":      strings.Repeat("x", 65),
		"trailing line": "main\n",
	}
	for label, name := range rejected {
		t.Run(label, func(t *testing.T) {
			err := ValidateName(name)
			if !errors.Is(err, ErrInvalidName) {
				t.Errorf("ValidateName(%q) = %v, want ErrInvalidName", name, err)
			}
		})
	}
}
