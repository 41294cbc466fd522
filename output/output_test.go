package output_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agalue/sonora/output"
)

func TestAvailableAPIsHaveNames(t *testing.T) {
	for _, api := range output.AvailableAPIs() {
		assert.NotEqual(t, "Unknown", api.String(), "api %d should have a name", api)
	}
}

func TestAPIAutoIsNotInAvailableAPIs(t *testing.T) {
	for _, api := range output.AvailableAPIs() {
		assert.NotEqual(t, output.APIAuto, api)
	}
	assert.Equal(t, "Auto", output.APIAuto.String())
}
