package crypto

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	encoded, err := GenerateEncryptionKey()
	if err != nil {
		t.Fatalf("GenerateEncryptionKey() error = %v", err)
	}
	key, err := DecodeKey(encoded)
	if err != nil {
		t.Fatalf("DecodeKey() error = %v", err)
	}
	return key
}

// TestEncryptDecrypt tests the AES-GCM round trip
func TestEncryptDecrypt(t *testing.T) {
	key := testKey(t)
	plaintext := []byte(`[63,1,3,145,233,1,0,150,0,2.3,0]`)

	ciphertext, err := Encrypt(plaintext, key)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if strings.Contains(ciphertext, "145") {
		t.Error("ciphertext should not contain plaintext values")
	}

	again, _ := Encrypt(plaintext, key)
	if again == ciphertext {
		t.Error("two encryptions should differ because of the random nonce")
	}

	got, err := Decrypt(ciphertext, key)
	if err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if string(got) != string(plaintext) {
		t.Errorf("Decrypt() = %q, want %q", got, plaintext)
	}
}

// TestDecrypt_WrongKey tests that authentication fails with another key
func TestDecrypt_WrongKey(t *testing.T) {
	ciphertext, err := Encrypt([]byte("secret"), testKey(t))
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	_, err = Decrypt(ciphertext, testKey(t))
	if !errors.Is(err, ErrInvalidCiphertext) {
		t.Errorf("Decrypt() with wrong key error = %v, want ErrInvalidCiphertext", err)
	}
}

// TestDecrypt_ShortInput tests truncated ciphertext
func TestDecrypt_ShortInput(t *testing.T) {
	short := base64.StdEncoding.EncodeToString([]byte("abc"))
	if _, err := Decrypt(short, testKey(t)); !errors.Is(err, ErrCiphertextTooShort) {
		t.Errorf("Decrypt() error = %v, want ErrCiphertextTooShort", err)
	}
}

// TestDecodeKey tests key validation
func TestDecodeKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr error
	}{
		{"empty", "", ErrEncryptionKeyNotSet},
		{"too short", base64.StdEncoding.EncodeToString([]byte("short")), ErrInvalidKeySize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeKey(tt.key); !errors.Is(err, tt.wantErr) {
				t.Errorf("DecodeKey() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := DecodeKey("not base64!"); err == nil {
		t.Error("DecodeKey() with invalid base64 should fail")
	}
}

// TestAdminJWT tests signing and verification
func TestAdminJWT(t *testing.T) {
	secret, err := GenerateJWTSecret()
	if err != nil {
		t.Fatalf("GenerateJWTSecret() error = %v", err)
	}

	token, expiresAt, err := GenerateAdminJWT("admin@example.com", secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAdminJWT() error = %v", err)
	}
	if time.Until(expiresAt) <= 59*time.Minute {
		t.Errorf("expiresAt = %v, want about one hour from now", expiresAt)
	}

	claims, err := VerifyAdminJWT(token, secret)
	if err != nil {
		t.Fatalf("VerifyAdminJWT() error = %v", err)
	}
	if claims.Email != "admin@example.com" || claims.Issuer != JWTIssuer {
		t.Errorf("claims = %+v", claims)
	}

	other, _ := GenerateJWTSecret()
	if _, err := VerifyAdminJWT(token, other); err == nil {
		t.Error("VerifyAdminJWT() with another secret should fail")
	}
}

// TestAdminJWT_Expired tests that expired tokens are rejected
func TestAdminJWT_Expired(t *testing.T) {
	secret, _ := GenerateJWTSecret()

	token, _, err := GenerateAdminJWT("admin@example.com", secret, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateAdminJWT() error = %v", err)
	}
	if _, err := VerifyAdminJWT(token, secret); err == nil {
		t.Error("VerifyAdminJWT() should reject an expired token")
	}
}

// TestAdminJWT_RequiredArguments tests argument checks
func TestAdminJWT_RequiredArguments(t *testing.T) {
	secret, _ := GenerateJWTSecret()

	if _, _, err := GenerateAdminJWT("", secret, time.Hour); err == nil {
		t.Error("GenerateAdminJWT() without email should fail")
	}
	if _, _, err := GenerateAdminJWT("admin@example.com", "", time.Hour); err == nil {
		t.Error("GenerateAdminJWT() without secret should fail")
	}
	if _, err := VerifyAdminJWT("", secret); err == nil {
		t.Error("VerifyAdminJWT() without token should fail")
	}
}

// TestHashToken tests hashing is deterministic
func TestHashToken(t *testing.T) {
	if HashToken("abc") != HashToken("abc") {
		t.Error("HashToken() should be deterministic")
	}
	if len(HashToken("abc")) != 64 {
		t.Errorf("len(HashToken()) = %d, want 64", len(HashToken("abc")))
	}
}
