package validation

import (
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
)

func TestValidateMint(t *testing.T) {
	assert.NoError(t, ValidateMint("So11111111111111111111111111111111111111112"))
	assert.NoError(t, ValidateMint("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"))

	assert.Error(t, ValidateMint(""))
	assert.Error(t, ValidateMint("0xdeadbeef")) // '0' and 'x' are outside the alphabet
	assert.Error(t, ValidateMint(base58.Encode([]byte{1, 2, 3})))
}

func TestValidateSignature(t *testing.T) {
	sig := base58.Encode(make([]byte, SignatureLength))
	assert.NoError(t, ValidateSignature(sig))
	assert.NoError(t, ValidateSignature(base58.Encode(append([]byte{9}, make([]byte, SignatureLength-1)...))))

	assert.Error(t, ValidateSignature(""))
	assert.Error(t, ValidateSignature("So11111111111111111111111111111111111111112"))
	assert.Error(t, ValidateSignature("l0O"))
}
