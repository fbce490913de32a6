package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/campusloc/locations-api/internal/core/domain"
	"github.com/campusloc/locations-api/internal/core/ports"
)

func TestValidate_AcceptsValidLocation(t *testing.T) {
	v := New()
	in := ports.LocationInput{Name: "Library", Address: "1 Main St", Longitude: "-0.1", Latitude: "51.5"}
	if err := v.Validate(&in); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
}

func TestValidate_ReportsEveryField(t *testing.T) {
	v := New()
	err := v.Validate(&ports.LocationInput{Longitude: "200", Latitude: "north"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(ve.Fields) != 4 {
		t.Fatalf("expected 4 field errors, got %v", ve.Fields)
	}
	msg := err.Error()
	for _, want := range []string{"name is required", "address is required", "longitude must be", "latitude must be"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message %q missing %q", msg, want)
		}
	}
}
