package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNanoIDSize(t *testing.T) {
	assert.Len(t, NanoID(), NanoidSize)
	assert.Len(t, NanoIDSize(8), 8)
	assert.Len(t, NanoIDSize(0), NanoidSize)
	assert.NotEqual(t, NanoID(), NanoID())
}
