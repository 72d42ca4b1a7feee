package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLikePattern(t *testing.T) {
	tests := []struct {
		term string
		want string
	}{
		{"leak", "%leak%"},
		{"100%", "%100!%%"},
		{"S_1", "%S!_1%"},
		{"wow!", "%wow!!%"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LikePattern(tt.term), tt.term)
	}
}

func TestOperationType_Valid(t *testing.T) {
	assert.True(t, OperationManual.Valid())
	assert.True(t, OperationStop.Valid())
	assert.False(t, OperationType("refill").Valid())
}
