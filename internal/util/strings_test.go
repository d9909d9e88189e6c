package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPluralize(t *testing.T) {
	assert.Equal(t, "samples", Pluralize(0, "sample", "samples"))
	assert.Equal(t, "sample", Pluralize(1, "sample", "samples"))
	assert.Equal(t, "samples", Pluralize(2, "sample", "samples"))
}

func TestCount(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0 channels"},
		{1, "1 channel"},
		{12, "12 channels"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Count(tt.n, "channel", "channels"))
		})
	}
}
