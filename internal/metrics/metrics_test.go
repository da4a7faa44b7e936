package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisterIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
}

func TestIncrementsDoNotPanic(t *testing.T) {
	Register()
	assert.NotPanics(t, func() {
		IncHTTP("/api/v1/availability", 200)
		IncAvailabilityCheck("available")
		IncBooking("created")
	})
}
