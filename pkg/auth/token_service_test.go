package auth

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/Abraxas-365/careerqr/pkg/errx"
)

func TestFileTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret", "careerqr")

	token, err := svc.GenerateFileToken("audio/abc.mp3", "audio/mpeg", time.Minute)
	if err != nil {
		t.Fatalf("GenerateFileToken: %v", err)
	}

	claims, err := svc.ValidateFileToken(token)
	if err != nil {
		t.Fatalf("ValidateFileToken: %v", err)
	}

	if claims.Path != "audio/abc.mp3" {
		t.Errorf("Path = %q", claims.Path)
	}
	if claims.ContentType != "audio/mpeg" {
		t.Errorf("ContentType = %q", claims.ContentType)
	}
}

func TestFileTokenExpired(t *testing.T) {
	svc := NewTokenService("test-secret", "careerqr")

	token, err := svc.GenerateFileToken("audio/abc.mp3", "audio/mpeg", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateFileToken: %v", err)
	}

	_, err = svc.ValidateFileToken(token)
	if err == nil {
		t.Fatal("expired token should be rejected")
	}

	var xerr *errx.Error
	if !errors.As(err, &xerr) {
		t.Fatalf("err = %T, want *errx.Error", err)
	}
	if xerr.HTTPStatus != http.StatusUnauthorized {
		t.Errorf("HTTPStatus = %d, want %d", xerr.HTTPStatus, http.StatusUnauthorized)
	}
}

func TestFileTokenWrongSecret(t *testing.T) {
	token, err := NewTokenService("secret-a", "careerqr").
		GenerateFileToken("audio/abc.mp3", "audio/mpeg", time.Minute)
	if err != nil {
		t.Fatalf("GenerateFileToken: %v", err)
	}

	if _, err := NewTokenService("secret-b", "careerqr").ValidateFileToken(token); err == nil {
		t.Error("token signed with a different secret should be rejected")
	}
}

func TestFileTokenWrongIssuer(t *testing.T) {
	token, err := NewTokenService("test-secret", "other-service").
		GenerateFileToken("audio/abc.mp3", "audio/mpeg", time.Minute)
	if err != nil {
		t.Fatalf("GenerateFileToken: %v", err)
	}

	if _, err := NewTokenService("test-secret", "careerqr").ValidateFileToken(token); err == nil {
		t.Error("token from a different issuer should be rejected")
	}
}
