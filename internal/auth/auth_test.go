package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 30)
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	tm.now = func() time.Time { return now }

	token, session, err := tm.Issue("2509")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if !session.ExpiresAt.Equal(now.Add(30 * time.Minute)) {
		t.Fatalf("expires = %v", session.ExpiresAt)
	}

	parsed, err := tm.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed.TechnicianID != "2509" || !parsed.IssuedAt.Equal(now) {
		t.Fatalf("session = %+v", parsed)
	}
}

func TestTokenRejected(t *testing.T) {
	tm := NewTokenManager("secret", 30)
	token, _, err := tm.Issue("2509")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := NewTokenManager("other", 30).Parse(token); err == nil {
		t.Fatal("token signed with another secret accepted")
	}

	expired := NewTokenManager("secret", 1)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, _ := expired.Issue("2509")
	if _, err := tm.Parse(old); err == nil {
		t.Fatal("expired token accepted")
	}

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{TechnicianID: "2509"})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if _, err := tm.Parse(unsigned); err == nil {
		t.Fatal("unsigned token accepted")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("bob-dev", bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	if err := ComparePassword(hash, "bob-dev"); err != nil {
		t.Fatalf("matching password rejected: %v", err)
	}
	if err := ComparePassword(hash, "wrong"); err == nil {
		t.Fatal("wrong password accepted")
	}
	if err := ComparePassword("", ""); err == nil {
		t.Fatal("empty hash accepted")
	}
}
