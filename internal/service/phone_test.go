package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "+7 (999) 123-45-67", want: "+79991234567"},
		{in: "79991234567", want: "+79991234567"},
		{in: "0044 20 7946 0958", want: "+442079460958"},
		{in: "  +1.415.555.2671 ", want: "+14155552671"},
		{in: "12345", wantErr: true},
		{in: "+7999abc4567", wantErr: true},
		{in: "7+9991234567", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizePhone(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				require.True(t, errors.Is(err, ErrValidation))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}
