package auth

import (
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func TestCodec(t *testing.T) {
	codec := NewCodec(bcrypt.MinCost)

	t.Run("hash and verify round-trips", func(t *testing.T) {
		hash, err := codec.Hash("s3cret")
		if err != nil {
			t.Fatalf("Hash failed: %v", err)
		}
		if hash == "s3cret" {
			t.Fatal("code stored in clear")
		}
		if err := codec.Verify(hash, "s3cret"); err != nil {
			t.Errorf("Verify rejected the right code: %v", err)
		}
	})

	t.Run("wrong code is rejected", func(t *testing.T) {
		hash, err := codec.Hash("s3cret")
		if err != nil {
			t.Fatalf("Hash failed: %v", err)
		}
		err = codec.Verify(hash, "guess")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Verify error = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("short code is rejected", func(t *testing.T) {
		_, err := codec.Hash("abc")
		if !errors.Is(err, ErrWeakCode) {
			t.Errorf("Hash error = %v, want ErrWeakCode", err)
		}
	})
}

func TestTokenManager(t *testing.T) {
	manager := NewTokenManager("test-secret-key-for-tokens", time.Hour)

	t.Run("issue and verify round-trips", func(t *testing.T) {
		token, err := manager.Issue("weekend-trip")
		if err != nil {
			t.Fatalf("Issue failed: %v", err)
		}

		projectID, err := manager.Verify(token)
		if err != nil {
			t.Fatalf("Verify failed: %v", err)
		}
		if projectID != "weekend-trip" {
			t.Errorf("projectID = %q, want weekend-trip", projectID)
		}
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, err := manager.Verify("not.a.token")
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Verify error = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		expired := NewTokenManager("test-secret-key-for-tokens", -time.Minute)
		token, err := expired.Issue("weekend-trip")
		if err != nil {
			t.Fatalf("Issue failed: %v", err)
		}
		if _, err := manager.Verify(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Verify error = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("token from another secret is rejected", func(t *testing.T) {
		other := NewTokenManager("a-completely-different-secret", time.Hour)
		token, err := other.Issue("weekend-trip")
		if err != nil {
			t.Fatalf("Issue failed: %v", err)
		}
		if _, err := manager.Verify(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Verify error = %v, want ErrInvalidToken", err)
		}
	})
}
