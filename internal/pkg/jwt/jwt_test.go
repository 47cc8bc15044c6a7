package jwt

import (
	"errors"
	"testing"
	"time"
)

func TestSignParse(t *testing.T) {
	s, err := NewSigner("secret")
	if err != nil {
		t.Fatal(err)
	}
	tok, err := s.Sign("admin", "admin", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := s.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "admin" || claims.Role != "admin" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestParseRejectsOtherSecret(t *testing.T) {
	a, _ := NewSigner("a")
	b, _ := NewSigner("b")
	tok, _ := a.Sign("admin", "admin", time.Hour)
	if _, err := b.Parse(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v", err)
	}
}

func TestParseRejectsExpired(t *testing.T) {
	s, _ := NewSigner("secret")
	past := time.Now().Add(-2 * time.Hour)
	s.now = func() time.Time { return past }
	tok, _ := s.Sign("admin", "admin", time.Hour)
	s.now = time.Now
	if _, err := s.Parse(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v", err)
	}
}

func TestNewSignerRejectsEmpty(t *testing.T) {
	if _, err := NewSigner(""); err == nil {
		t.Fatal("expected error")
	}
}
