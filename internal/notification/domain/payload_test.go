package domain

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeliveryErrorPermanent(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{400, true},
		{404, true},
		{422, true},
		{408, false},
		{429, false},
		{500, false},
		{503, false},
	}
	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, (&DeliveryError{Status: tt.status}).Permanent())
		})
	}
}
