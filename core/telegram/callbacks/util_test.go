package callbacks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuffixInt64(t *testing.T) {
	id, err := SuffixInt64("buy_42", "buy_")
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)

	_, err = SuffixInt64("buy_", "buy_")
	assert.Error(t, err)
	_, err = SuffixInt64("buy_x", "buy_")
	assert.Error(t, err)
	_, err = SuffixInt64("store", "buy_")
	assert.Error(t, err)

	assert.Equal(t, "buy_7", Join("buy_", 7))
}
