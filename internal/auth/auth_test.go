package auth

import (
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return token
}

func TestEmailFromRequest(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{
			name:   "email claim",
			header: "Bearer " + signedToken(t, jwt.MapClaims{"email": "ana@example.com"}),
			want:   "ana@example.com",
		},
		{
			name:   "cognito username fallback",
			header: "Bearer " + signedToken(t, jwt.MapClaims{"cognito:username": "ana@example.com"}),
			want:   "ana@example.com",
		},
		{
			name:   "email wins over username",
			header: "Bearer " + signedToken(t, jwt.MapClaims{"email": "ana@example.com", "cognito:username": "otro@example.com"}),
			want:   "ana@example.com",
		},
		{
			name:   "no header",
			header: "",
			want:   "",
		},
		{
			name:   "wrong scheme",
			header: "Basic dXNlcjpwYXNz",
			want:   "",
		},
		{
			name:   "garbage token",
			header: "Bearer not.a.jwt",
			want:   "",
		},
		{
			name:   "no identity claims",
			header: "Bearer " + signedToken(t, jwt.MapClaims{"sub": "123"}),
			want:   "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			if got := EmailFromRequest(r); got != tt.want {
				t.Errorf("EmailFromRequest() = %q, want %q", got, tt.want)
			}
		})
	}
}
