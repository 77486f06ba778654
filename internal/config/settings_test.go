package config

import (
	"reflect"
	"testing"
)

func TestDefault(t *testing.T) {
	s := Default()
	if s.IP != "192.168.1.5" || s.Port != 502 || s.UnitID != 1 {
		t.Errorf("Default() = %+v", s)
	}
	if s.Coil(1) != 0 || s.Coil(2) != 1 {
		t.Errorf("default mapping = %v, want DO1->0 DO2->1", s.Ch2Coil)
	}
	if s.Inverted(1) || s.Inverted(2) {
		t.Error("channels should not be inverted by default")
	}
	if s.Address() != "192.168.1.5:502" {
		t.Errorf("Address() = %q", s.Address())
	}
}

func TestClone(t *testing.T) {
	s := Default()
	c := s.Clone()
	c.Ch2Coil[1] = 9
	c.Invert[2] = true
	c.IP = "10.0.0.1"

	if s.Ch2Coil[1] != 0 || s.Invert[2] || s.IP != DefaultIP {
		t.Errorf("Clone shares state with original: %+v", s)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name      string
		coils     []int
		invert    []bool
		wantCoils []int
		wantInv   []bool
	}{
		{"nil", nil, nil, []int{-1, 0, 1}, []bool{false, false, false}},
		{"short", []int{-1, 7}, []bool{false, true}, []int{-1, 7, 1}, []bool{false, true, false}},
		{"full", []int{-1, 3, 4}, []bool{false, true, true}, []int{-1, 3, 4}, []bool{false, true, true}},
		{"long", []int{-1, 3, 4, 5}, []bool{false, false, false, true}, []int{-1, 3, 4, 5}, []bool{false, false, false, true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Settings{Ch2Coil: tt.coils, Invert: tt.invert}
			s.Normalize()
			if !reflect.DeepEqual(s.Ch2Coil, tt.wantCoils) {
				t.Errorf("Ch2Coil = %v, want %v", s.Ch2Coil, tt.wantCoils)
			}
			if !reflect.DeepEqual(s.Invert, tt.wantInv) {
				t.Errorf("Invert = %v, want %v", s.Invert, tt.wantInv)
			}
		})
	}
}

func TestCoilOutOfRange(t *testing.T) {
	s := Default()
	if s.Coil(5) != Unmapped || s.Coil(-1) != Unmapped {
		t.Error("out of range channels should be unmapped")
	}
	if s.Inverted(5) {
		t.Error("out of range channels are not inverted")
	}
}

func TestAddressIPv6(t *testing.T) {
	s := &Settings{IP: "::1", Port: 502}
	if s.Address() != "[::1]:502" {
		t.Errorf("Address() = %q", s.Address())
	}
}
