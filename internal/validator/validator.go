// Package validator provides sample validation.
package validator

import (
	"fmt"

	"github.com/jittakal/bufstore/internal/errors"
	"github.com/jittakal/bufstore/pkg/sample"
)

// SampleValidator validates samples before they are routed into buffers.
type SampleValidator struct {
	labels    map[string]struct{}
	strict    bool
	allowNull bool
}

var _ sample.Validator = (*SampleValidator)(nil)

// NewSampleValidator creates a new sample validator. In strict mode a sample
// whose label is not in the configured set is rejected; otherwise unknown
// labels pass through and the router decides what to do with them.
func NewSampleValidator(labels []string, strict, allowNull bool) *SampleValidator {
	set := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		set[l] = struct{}{}
	}
	return &SampleValidator{labels: set, strict: strict, allowNull: allowNull}
}

// Validate validates a sample.
func (v *SampleValidator) Validate(s *sample.Sample) error {
	if s.Label == "" {
		return &errors.ValidationError{
			Label:  s.Label,
			Field:  "label",
			Reason: "required field is missing",
		}
	}

	if v.strict {
		if _, ok := v.labels[s.Label]; !ok {
			return &errors.ValidationError{
				Label:  s.Label,
				Field:  "label",
				Reason: fmt.Sprintf("unknown label: %s", s.Label),
			}
		}
	}

	if s.Value == nil && !v.allowNull {
		return &errors.ValidationError{
			Label:  s.Label,
			Field:  "value",
			Reason: "null value is not allowed",
		}
	}

	return nil
}
