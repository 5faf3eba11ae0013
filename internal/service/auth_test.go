package service

import (
	"testing"
	"time"
)

func TestSignAndParseAccessToken(t *testing.T) {
	secret := "test-secret"
	tokenString, expiresAt, err := SignAccessToken(secret, AccessClaims{
		GamespaceID: 7,
		AccountID:   "acc_42",
		Scopes:      []string{"promo"},
	}, time.Hour)
	if err != nil {
		t.Fatalf("sign token failed: %v", err)
	}
	if !expiresAt.After(time.Now()) {
		t.Fatalf("unexpected expiry: %v", expiresAt)
	}

	claims, err := ParseAccessToken(secret, tokenString)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.GamespaceID != 7 || claims.AccountID != "acc_42" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if !claims.HasScope("promo") || claims.HasScope("promo_admin") {
		t.Fatalf("unexpected scopes: %v", claims.Scopes)
	}
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	tokenString, _, err := SignAccessToken("secret-a", AccessClaims{GamespaceID: 1, AccountID: "a"}, time.Hour)
	if err != nil {
		t.Fatalf("sign token failed: %v", err)
	}
	if _, err := ParseAccessToken("secret-b", tokenString); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	tokenString, _, err := SignAccessToken("secret", AccessClaims{GamespaceID: 1, AccountID: "a"}, -time.Minute)
	if err != nil {
		t.Fatalf("sign token failed: %v", err)
	}
	if _, err := ParseAccessToken("secret", tokenString); err == nil {
		t.Fatal("expected error for expired token")
	}
}
