package jwt

import (
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
)

func TestGenerateServiceTokenRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret")

	tokenString, err := svc.GenerateServiceToken("emp-1", "dept-1", "hr", time.Minute)
	if err != nil {
		t.Fatalf("GenerateServiceToken: %v", err)
	}

	token, err := jwtauth.VerifyToken(svc.JWTAuth(), tokenString)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}

	for claim, want := range map[string]string{
		"employee_id":   "emp-1",
		"department_id": "dept-1",
		"role":          "hr",
		"type":          "access",
	} {
		got, ok := token.Get(claim)
		if !ok || got != want {
			t.Errorf("claim %q = %v, want %q", claim, got, want)
		}
	}
}

func TestGenerateServiceTokenExpiry(t *testing.T) {
	svc := NewJWTService("test-secret")

	// Beyond the 30s acceptable skew.
	tokenString, err := svc.GenerateServiceToken("emp-1", "dept-1", "employee", -2*time.Minute)
	if err != nil {
		t.Fatalf("GenerateServiceToken: %v", err)
	}

	if _, err := jwtauth.VerifyToken(svc.JWTAuth(), tokenString); err == nil {
		t.Error("expected expired token to fail verification")
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := NewJWTService("secret-a")
	verifier := NewJWTService("secret-b")

	tokenString, err := issuer.GenerateServiceToken("emp-1", "dept-1", "employee", time.Minute)
	if err != nil {
		t.Fatalf("GenerateServiceToken: %v", err)
	}

	if _, err := jwtauth.VerifyToken(verifier.JWTAuth(), tokenString); err == nil {
		t.Error("expected token signed with a different secret to fail verification")
	}
}
