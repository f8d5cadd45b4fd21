// Package culture canonicalizes item culture names.
package culture

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/kailas-cloud/lookdex/internal/domain"
)

// Canonical parses a BCP 47 culture name ("en-gb", "EN_GB") and returns its canonical form ("en-GB").
// An unparseable name is a malformed query input.
func Canonical(name string) (string, error) {
	s := strings.ReplaceAll(strings.TrimSpace(name), "_", "-")
	if s == "" {
		return "", domain.NewMalformed(name, fmt.Errorf("empty culture"))
	}
	t, err := language.Parse(s)
	if err != nil {
		return "", domain.NewMalformed(name, fmt.Errorf("culture: %w", err))
	}
	return t.String(), nil
}
