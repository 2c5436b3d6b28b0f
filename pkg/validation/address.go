package validation

import (
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

const (
	// PublicKeyLength is the decoded size of a Solana account or mint address.
	PublicKeyLength = 32
	// SignatureLength is the decoded size of an ed25519 transaction signature.
	SignatureLength = 64
)

// ValidateMint validates a Solana mint address (base58, 32 bytes).
func ValidateMint(mint string) error {
	return validateBase58(mint, PublicKeyLength, "mint")
}

// ValidateSignature validates a Solana transaction signature (base58, 64 bytes).
func ValidateSignature(signature string) error {
	return validateBase58(signature, SignatureLength, "signature")
}

func validateBase58(value string, size int, what string) error {
	if value == "" {
		return errors.Errorf("%s cannot be empty", what)
	}

	decoded, err := base58.Decode(value)
	if err != nil {
		return errors.Wrapf(err, "invalid base58 %s", what)
	}

	if len(decoded) != size {
		return errors.Errorf("invalid %s length: expected %d bytes, got %d", what, size, len(decoded))
	}

	return nil
}
