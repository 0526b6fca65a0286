package config

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/0xPolygon/polygon-zenith/crypto"
)

// SequencerKeyEnv holds the hex encoded private key of the sequencer
const SequencerKeyEnv = "ZENITH_SEQUENCER_KEY"

var ErrNoSequencerKey = errors.New(SequencerKeyEnv + " is not set")

// LoadEnv loads the given .env files into the environment, variables already
// set are kept. Missing files are ignored.
func LoadEnv(files ...string) error {
	for _, file := range files {
		if _, err := os.Stat(file); errors.Is(err, os.ErrNotExist) {
			continue
		}

		if err := godotenv.Load(file); err != nil {
			return fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	return nil
}

// SequencerKey reads the sequencer private key from the environment
func SequencerKey() (*ecdsa.PrivateKey, error) {
	raw, ok := os.LookupEnv(SequencerKeyEnv)
	if !ok || raw == "" {
		return nil, ErrNoSequencerKey
	}

	key, err := crypto.BytesToECDSAPrivateKey([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", SequencerKeyEnv, err)
	}

	return key, nil
}
