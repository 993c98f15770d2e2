package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gcfisi/coursehub-backend/internal/platform/ctxutil"
	"github.com/gcfisi/coursehub-backend/internal/platform/logger"
)

func TestMintAndParseToken(t *testing.T) {
	auth := NewAuthService(logger.Nop(), "secret", "coursehub", time.Minute)
	userID := uuid.New()

	tok, err := auth.MintToken(userID)
	if err != nil {
		t.Fatalf("MintToken: %v", err)
	}
	got, err := auth.ParseToken(tok)
	if err != nil || got != userID {
		t.Fatalf("ParseToken: %v %v", got, err)
	}

	ctx, err := auth.SetContextFromToken(context.Background(), tok)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID != userID || rd.TokenString != tok {
		t.Fatalf("request data not set: %+v", rd)
	}
}

func TestParseTokenRejectsForeignTokens(t *testing.T) {
	auth := NewAuthService(logger.Nop(), "secret", "coursehub", time.Minute)
	other := NewAuthService(logger.Nop(), "other-secret", "coursehub", time.Minute)
	wrongIssuer := NewAuthService(logger.Nop(), "secret", "elsewhere", time.Minute)
	defaulted := NewAuthService(logger.Nop(), "secret", "coursehub", -time.Minute)

	for name, svc := range map[string]AuthService{"secret": other, "issuer": wrongIssuer} {
		tok, err := svc.MintToken(uuid.New())
		if err != nil {
			t.Fatalf("%s: MintToken: %v", name, err)
		}
		if _, err := auth.ParseToken(tok); err == nil {
			t.Fatalf("%s: expected parse failure", name)
		}
	}
	if defaulted.GetAccessTTL() != time.Hour {
		t.Fatalf("non-positive ttl should default to an hour")
	}
	if _, err := auth.ParseToken(""); err == nil {
		t.Fatalf("expected error for empty token")
	}
	if _, err := auth.MintToken(uuid.Nil); err == nil {
		t.Fatalf("expected error for nil user")
	}
}
