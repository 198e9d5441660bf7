package factory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateProviderSpec checks a single spec for required fields and value ranges.
func ValidateProviderSpec(spec ProviderSpec) error {
	if err := validate.Struct(spec); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %s", strings.ToLower(fe.Field()), fe.Tag()))
			}
			return fmt.Errorf("provider %q: %s", spec.Key, strings.Join(msgs, ", "))
		}
		return fmt.Errorf("provider %q: %w", spec.Key, err)
	}
	if _, err := spec.TimeoutDuration(); err != nil {
		return fmt.Errorf("provider %q: %w", spec.Key, err)
	}
	return nil
}

// ValidateProviderSpecs validates every spec and rejects duplicate keys.
func ValidateProviderSpecs(specs []ProviderSpec) error {
	seen := make(map[string]int, len(specs))
	for i, spec := range specs {
		if err := ValidateProviderSpec(spec); err != nil {
			return fmt.Errorf("providers[%d]: %w", i, err)
		}
		if prev, dup := seen[spec.Key]; dup {
			return fmt.Errorf("providers[%d]: duplicate key %q (first defined at providers[%d])", i, spec.Key, prev)
		}
		seen[spec.Key] = i
	}
	return nil
}
