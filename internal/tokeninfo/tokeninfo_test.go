package tokeninfo

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func sign(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

func TestInspectJWT(t *testing.T) {
	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	tok := sign(t, jwt.RegisteredClaims{
		Subject:   "player-1",
		Issuer:    "a2",
		ExpiresAt: jwt.NewNumericDate(exp),
	})

	info := Inspect(tok)
	if !info.IsJWT {
		t.Fatal("want IsJWT")
	}
	if info.Subject != "player-1" || info.Issuer != "a2" {
		t.Fatalf("claims: %+v", info)
	}
	if !info.ExpiresAt.Equal(exp) {
		t.Fatalf("exp: got %v, want %v", info.ExpiresAt, exp)
	}
	if info.Expired(exp.Add(-time.Second)) {
		t.Fatal("should not be expired before exp")
	}
	if !info.Expired(exp) {
		t.Fatal("should be expired at exp")
	}
}

func TestInspectWithoutExpiry(t *testing.T) {
	info := Inspect(sign(t, jwt.RegisteredClaims{Subject: "s"}))
	if !info.IsJWT || !info.ExpiresAt.IsZero() {
		t.Fatalf("unexpected info %+v", info)
	}
	if info.Expired(time.Now()) {
		t.Fatal("token without exp never expires")
	}
}

func TestInspectOpaque(t *testing.T) {
	for _, tok := range []string{"", "a:", "abc.def", "not.a.jwt", "x.y.z.w"} {
		info := Inspect(tok)
		if info.IsJWT {
			t.Errorf("Inspect(%q) claimed a JWT", tok)
		}
		if info.Expired(time.Now()) {
			t.Errorf("Inspect(%q) opaque token reported expired", tok)
		}
	}
}
