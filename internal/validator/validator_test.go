package validator

import (
	goerrors "errors"
	"testing"

	"github.com/jittakal/bufstore/internal/errors"
	"github.com/jittakal/bufstore/pkg/sample"
)

func TestNewSampleValidator(t *testing.T) {
	validator := NewSampleValidator([]string{"pressure"}, false, true)
	if validator == nil {
		t.Fatal("expected non-nil validator")
	}
}

func TestSampleValidator_ValidateSuccess(t *testing.T) {
	validator := NewSampleValidator([]string{"pressure", "temperature"}, true, true)

	tests := []struct {
		name   string
		sample *sample.Sample
	}{
		{
			name:   "numeric sample",
			sample: &sample.Sample{Label: "pressure", Value: 101.3},
		},
		{
			name:   "string sample",
			sample: &sample.Sample{Label: "temperature", Value: "steady"},
		},
		{
			name:   "null value allowed",
			sample: &sample.Sample{Label: "pressure", Value: nil},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := validator.Validate(tt.sample); err != nil {
				t.Errorf("Validate() error = %v, want nil", err)
			}
		})
	}
}

func TestSampleValidator_ValidateErrors(t *testing.T) {
	tests := []struct {
		name      string
		validator *SampleValidator
		sample    *sample.Sample
		wantField string
	}{
		{
			name:      "missing label",
			validator: NewSampleValidator([]string{"pressure"}, false, true),
			sample:    &sample.Sample{Value: 1.0},
			wantField: "label",
		},
		{
			name:      "unknown label in strict mode",
			validator: NewSampleValidator([]string{"pressure"}, true, true),
			sample:    &sample.Sample{Label: "humidity", Value: 1.0},
			wantField: "label",
		},
		{
			name:      "null value rejected",
			validator: NewSampleValidator([]string{"pressure"}, false, false),
			sample:    &sample.Sample{Label: "pressure", Value: nil},
			wantField: "value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.validator.Validate(tt.sample)
			if err == nil {
				t.Fatal("Validate() expected error, got nil")
			}

			var validationErr *errors.ValidationError
			if !goerrors.As(err, &validationErr) {
				t.Fatalf("Validate() error type = %T, want *errors.ValidationError", err)
			}
			if validationErr.Field != tt.wantField {
				t.Errorf("ValidationError.Field = %s, want %s", validationErr.Field, tt.wantField)
			}
		})
	}
}

func TestSampleValidator_LenientMode(t *testing.T) {
	validator := NewSampleValidator([]string{"pressure"}, false, true)

	// Unknown labels pass through when strict mode is off.
	s := &sample.Sample{Label: "humidity", Value: 55.0}
	if err := validator.Validate(s); err != nil {
		t.Errorf("Validate() error = %v, want nil in lenient mode", err)
	}
}
