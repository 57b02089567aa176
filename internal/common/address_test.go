package common

import (
	"errors"
	"testing"
)

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "lower", in: "0x70997970c51812dc3a010c7d01b50e0d17dc79c8", want: "0x70997970c51812dc3a010c7d01b50e0d17dc79c8"},
		{name: "mixed case and spaces", in: "  0x70997970C51812dc3A010C7d01b50e0d17dc79C8 ", want: "0x70997970c51812dc3a010c7d01b50e0d17dc79c8"},
		{name: "upper prefix", in: "0X70997970c51812dc3a010c7d01b50e0d17dc79c8", want: "0x70997970c51812dc3a010c7d01b50e0d17dc79c8"},
		{name: "too short", in: "0x1234", wantErr: true},
		{name: "no prefix", in: "70997970c51812dc3a010c7d01b50e0d17dc79c8", wantErr: true},
		{name: "not hex", in: "0xz0997970c51812dc3a010c7d01b50e0d17dc79c8", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeAddress(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidAddress) {
					t.Fatalf("want ErrInvalidAddress, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}
