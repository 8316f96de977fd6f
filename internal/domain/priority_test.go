package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePriority(t *testing.T) {
	t.Parallel()

	for _, valid := range []string{"low", "medium", "high"} {
		p, err := ParsePriority(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, p.String())
		assert.True(t, p.IsValid())
	}

	for _, invalid := range []string{"", "urgent", "LOW", "Medium", "critical"} {
		_, err := ParsePriority(invalid)
		assert.ErrorIs(t, err, ErrInvalidPriority, "input %q", invalid)
	}
}
