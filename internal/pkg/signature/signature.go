package signature

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/blake2b"
)

var (
	ErrInvalidSecret    = errors.New("signature secret must be 1 to 64 bytes")
	ErrMissingSignature = errors.New("signature is missing")
	ErrMalformed        = errors.New("signature is not valid hex")
	ErrMismatch         = errors.New("signature does not match payload")
)

// Signer computes and checks keyed BLAKE2b-256 MACs over raw payloads.
type Signer struct {
	secret []byte
}

func NewSigner(secret string) (*Signer, error) {
	if len(secret) == 0 || len(secret) > blake2b.Size {
		return nil, ErrInvalidSecret
	}
	return &Signer{secret: []byte(secret)}, nil
}

func (s *Signer) Sign(payload []byte) string {
	return hex.EncodeToString(s.mac(payload))
}

func (s *Signer) Verify(payload []byte, sig string) error {
	if sig == "" {
		return ErrMissingSignature
	}
	got, err := hex.DecodeString(sig)
	if err != nil {
		return ErrMalformed
	}
	if subtle.ConstantTimeCompare(got, s.mac(payload)) != 1 {
		return ErrMismatch
	}
	return nil
}

func (s *Signer) mac(payload []byte) []byte {
	// New256 only fails on an oversized key, which NewSigner rules out.
	h, _ := blake2b.New256(s.secret)
	h.Write(payload)
	return h.Sum(nil)
}
