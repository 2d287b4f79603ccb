package gowrap

import "testing"

func TestLuaKey(t *testing.T) {
	tests := []struct {
		goName   string
		expected string
	}{
		{"Name", "name"},
		{"Age", "age"},
		{"HomeAddress", "homeAddress"},
		{"ID", "id"},
		{"X", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.goName, func(t *testing.T) {
			got := LuaKey(tt.goName)
			if got != tt.expected {
				t.Errorf("LuaKey(%q) = %q, want %q", tt.goName, got, tt.expected)
			}
		})
	}
}

func TestAccessorName(t *testing.T) {
	tests := []struct {
		method string
		prefix string
		prop   string
		ok     bool
	}{
		{"GetAge", "Get", "Age", true},
		{"SetAge", "Set", "Age", true},
		{"Get", "", "", false},
		{"Settle", "", "", false},
		{"Getaway", "", "", false},
		{"Greet", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			prefix, prop, ok := AccessorName(tt.method)
			if prefix != tt.prefix || prop != tt.prop || ok != tt.ok {
				t.Errorf("AccessorName(%q) = %q, %q, %v, want %q, %q, %v",
					tt.method, prefix, prop, ok, tt.prefix, tt.prop, tt.ok)
			}
		})
	}
}

func TestAccessPackage(t *testing.T) {
	tests := []struct {
		pkgPath  string
		sub      string
		expected string
	}{
		{"example.com/app/model", "access", "example.com/app/model/access"},
		{"example.com/app", "lua", "example.com/app/lua"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			got := AccessPackage(tt.pkgPath, tt.sub)
			if got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestFileStem(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Person", "person"},
		{"HomeAddress", "home_address"},
		{"Vec", "vec"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := FileStem(tt.input)
			if got != tt.expected {
				t.Errorf("FileStem(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
