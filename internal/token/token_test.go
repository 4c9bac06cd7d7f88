package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

func signToken(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return raw
}

func tokenExpiringIn(t *testing.T, d time.Duration) string {
	return signToken(t, &Claims{
		Username: "alice",
		Role:     "user",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(d)),
		},
	})
}

func TestDecode(t *testing.T) {
	raw := signToken(t, &Claims{
		Username: "alice",
		Role:     "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "64f0c2",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if claims.UserID() != "64f0c2" {
		t.Errorf("UserID() = %v, want 64f0c2", claims.UserID())
	}
	if claims.Username != "alice" {
		t.Errorf("Username = %v, want alice", claims.Username)
	}
	if !claims.IsAdmin() {
		t.Error("IsAdmin() = false, want true")
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"not a jwt", "garbage"},
		{"two segments", "aaaa.bbbb"},
		{"bad payload", "eyJhbGciOiJIUzI1NiJ9.!!!.sig"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.raw); err == nil {
				t.Error("Decode() should fail for malformed token")
			}
		})
	}
}

func TestIsExpired(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"future exp", tokenExpiringIn(t, time.Hour), false},
		{"past exp", tokenExpiringIn(t, -time.Hour), true},
		{"malformed", "not.a.token", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsExpired(tt.raw); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsExpired_NoExpClaim(t *testing.T) {
	raw := signToken(t, &Claims{
		Username:         "bob",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-2"},
	})
	if IsExpired(raw) {
		t.Error("token without exp claim should not count as expired")
	}
}

func TestExpiringSoon(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		within time.Duration
		want   bool
	}{
		{"well outside window", tokenExpiringIn(t, time.Hour), 5 * time.Minute, false},
		{"inside window", tokenExpiringIn(t, 2*time.Minute), 5 * time.Minute, true},
		{"already expired", tokenExpiringIn(t, -time.Minute), 5 * time.Minute, true},
		{"malformed", "garbage", 5 * time.Minute, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpiringSoon(tt.raw, tt.within); got != tt.want {
				t.Errorf("ExpiringSoon() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExpirationTime(t *testing.T) {
	exp := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	raw := signToken(t, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)},
	})

	got, ok := ExpirationTime(raw)
	if !ok {
		t.Fatal("ExpirationTime() ok = false, want true")
	}
	if !got.Equal(exp) {
		t.Errorf("ExpirationTime() = %v, want %v", got, exp)
	}

	if _, ok := ExpirationTime("junk"); ok {
		t.Error("ExpirationTime() should report false for a malformed token")
	}
}
