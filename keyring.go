package main

import (
	"errors"
	"fmt"

	gokeyring "github.com/zalando/go-keyring"
)

const (
	keyringService = "dev.afittestide.skillprompt"
	keyringPrefix  = "apikey_"
)

// SaveAPIKeyToKeyring securely stores a provider API key in the OS keyring
func SaveAPIKeyToKeyring(provider, apiKey string) error {
	if provider == "" {
		return fmt.Errorf("provider is empty")
	}
	if err := gokeyring.Set(keyringService, keyringPrefix+provider, apiKey); err != nil {
		return fmt.Errorf("failed to store API key in keyring: %w", err)
	}
	return nil
}

// GetAPIKeyFromKeyring retrieves a provider API key. A missing key is not an error.
func GetAPIKeyFromKeyring(provider string) (string, error) {
	apiKey, err := gokeyring.Get(keyringService, keyringPrefix+provider)
	if errors.Is(err, gokeyring.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to retrieve API key from keyring: %w", err)
	}
	return apiKey, nil
}

// DeleteAPIKeyFromKeyring removes a provider API key from the OS keyring
func DeleteAPIKeyFromKeyring(provider string) error {
	err := gokeyring.Delete(keyringService, keyringPrefix+provider)
	if err != nil && !errors.Is(err, gokeyring.ErrNotFound) {
		return fmt.Errorf("failed to delete API key from keyring: %w", err)
	}
	return nil
}
