package auth

import (
	"fmt"
	"strings"
	"syscall"

	"github.com/zalando/go-keyring"
	"golang.org/x/term"
)

const (
	serviceName   = "tamilfix"
	geminiAccount = "gemini-api-key"
)

// SourceKeychain labels a key read from the OS keychain.
const SourceKeychain = "Keychain"

// KeychainKey returns the key stored in the OS keychain, if any.
func KeychainKey() (string, bool) {
	key, err := keyring.Get(serviceName, geminiAccount)
	key = strings.TrimSpace(key)
	if err != nil || key == "" {
		return "", false
	}
	return key, true
}

// SaveKey stores the key in the OS keychain.
func SaveKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("refusing to store an empty API key")
	}
	return keyring.Set(serviceName, geminiAccount, key)
}

// DeleteKey removes the key from the OS keychain.
func DeleteKey() error {
	return keyring.Delete(serviceName, geminiAccount)
}

// PromptForAPIKey reads a key from the terminal without echo.
func PromptForAPIKey(prompt string) (string, error) {
	fmt.Print(prompt)
	b, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println()
	return strings.TrimSpace(string(b)), nil
}
