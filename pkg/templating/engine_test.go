package templating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpolate(t *testing.T) {
	out, err := interpolate("{{ host }}:{{ port }}", map[string]interface{}{
		"host": "10.0.0.9",
		"port": 8080,
	})

	require.NoError(t, err)
	assert.Equal(t, "10.0.0.9:8080", out)
}

func TestInterpolateNoPlaceholders(t *testing.T) {
	out, err := interpolate("static text", nil)

	require.NoError(t, err)
	assert.Equal(t, "static text", out)
}
