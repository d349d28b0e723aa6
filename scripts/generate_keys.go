package main

import (
	"fmt"
	"log"
	"time"

	"github.com/cardioshield/predictor/internal/crypto"
)

func main() {
	fmt.Println("CardioShield - Secret Generator")
	fmt.Println("===============================")
	fmt.Println()

	// Generate history encryption key
	key, err := crypto.GenerateEncryptionKey()
	if err != nil {
		log.Fatalf("Failed to generate encryption key: %v", err)
	}

	// Generate admin JWT secret
	secret, err := crypto.GenerateJWTSecret()
	if err != nil {
		log.Fatalf("Failed to generate JWT secret: %v", err)
	}

	fmt.Println("Successfully generated secrets!")
	fmt.Println()
	fmt.Println("Add these to your .env file:")
	fmt.Println("----------------------------")
	fmt.Printf("HISTORY_ENCRYPTION_KEY=%s\n", key)
	fmt.Printf("ADMIN_JWT_SECRET=%s\n", secret)
	fmt.Println()
	fmt.Println("SECURITY WARNING:")
	fmt.Println("   - Keep these values SECRET and SECURE")
	fmt.Println("   - Never commit them to version control")
	fmt.Println("   - Losing HISTORY_ENCRYPTION_KEY makes stored history unreadable")
	fmt.Println("   - Use different values for development/staging/production")
	fmt.Println()

	fmt.Println("Testing encryption/decryption...")
	keyBytes, err := crypto.DecodeKey(key)
	if err != nil {
		log.Fatalf("Failed to decode key: %v", err)
	}

	plaintext := []byte(`[63,1,0,145,233,1,2,150,0,2.3,0]`)
	encrypted, err := crypto.Encrypt(plaintext, keyBytes)
	if err != nil {
		log.Fatalf("Encryption test failed: %v", err)
	}
	decrypted, err := crypto.Decrypt(encrypted, keyBytes)
	if err != nil {
		log.Fatalf("Decryption test failed: %v", err)
	}
	if string(decrypted) != string(plaintext) {
		log.Fatalf("Test failed: decrypted value doesn't match original")
	}
	fmt.Println("Encryption test passed!")

	fmt.Println("Testing admin token signing...")
	token, _, err := crypto.GenerateAdminJWT("admin@example.com", secret, time.Minute)
	if err != nil {
		log.Fatalf("Signing test failed: %v", err)
	}
	if _, err := crypto.VerifyAdminJWT(token, secret); err != nil {
		log.Fatalf("Verification test failed: %v", err)
	}
	fmt.Println("Token test passed!")
	fmt.Println()
}
