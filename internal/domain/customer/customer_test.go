package customer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCustomer() Customer {
	return Customer{
		Name:  "Ana Souza",
		Phone: "+5511987654321",
		Email: "ana.souza@example.com",
	}
}

func TestValidate_OK(t *testing.T) {
	c := validCustomer()
	require.NoError(t, Validate(&c))
}

func TestValidate_Name(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"too short", "Al", true},
		{"minimum length", "Ana", false},
		{"maximum length", strings.Repeat("a", 50), false},
		{"too long", strings.Repeat("a", 51), true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCustomer()
			c.Name = tt.value
			err := Validate(&c)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_Phone(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"valid brazilian mobile", "+5511987654321", false},
		{"valid fifteen digits", "+123456789012345", false},
		{"missing plus", "5511987654321", true},
		{"leading zero", "+0511987654321", true},
		{"too short", "+551198765", true},
		{"too long", "+1234567890123456", true},
		{"letters", "+55eleven87654", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCustomer()
			c.Phone = tt.value
			err := Validate(&c)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_Email(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"valid", "ana@example.com", false},
		{"subdomain", "ana@mail.example.com", false},
		{"no at sign", "ana.example.com", true},
		{"no domain dot", "ana@example", true},
		{"spaces", "ana souza@example.com", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCustomer()
			c.Email = tt.value
			err := Validate(&c)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
