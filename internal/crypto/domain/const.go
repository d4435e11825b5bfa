package domain

// Algorithm represents the AEAD algorithm used for field encryption.
//
// Both supported algorithms take a 32-byte key, a 12-byte nonce and produce a
// 16-byte authentication tag, so stored fields have the same shape regardless
// of which one encrypted them.
type Algorithm string

const (
	// AESGCM represents AES-256-GCM. Preferred on CPUs with AES-NI.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 represents ChaCha20-Poly1305. Preferred where AES hardware
	// acceleration is unavailable.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

const (
	// KeySize is the master key length in bytes.
	KeySize = 32
	// IVSize is the nonce length in bytes for every supported algorithm.
	IVSize = 12
	// TagSize is the authentication tag length in bytes.
	TagSize = 16
)

// ParseAlgorithm converts a configuration string into an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case AESGCM, ChaCha20:
		return Algorithm(s), nil
	default:
		return "", ErrUnsupportedAlgorithm
	}
}
