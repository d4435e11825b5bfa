package domain

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// BlobShape tags how a persisted field arrived from storage.
type BlobShape int

const (
	// BlobBinary is a raw byte column (BYTEA, BLOB) holding the JSON document.
	BlobBinary BlobShape = iota + 1
	// BlobText is a text column holding the JSON document.
	BlobText
	// BlobParsed is a document a driver or an older code path already decoded.
	BlobParsed
)

func (s BlobShape) String() string {
	switch s {
	case BlobBinary:
		return "binary"
	case BlobText:
		return "text"
	case BlobParsed:
		return "parsed"
	default:
		return "unknown"
	}
}

// StoredBlob is a tagged union over the three physical shapes of the same
// logical {encryptedData, iv, tag} document. Exactly one payload field is set,
// selected by Shape. ParseStoredBlob is the only place the shapes are told apart.
type StoredBlob struct {
	Shape  BlobShape
	Binary []byte
	Text   string
	Parsed map[string]any
}

// BinaryBlob wraps bytes read from a binary column.
func BinaryBlob(b []byte) StoredBlob {
	return StoredBlob{Shape: BlobBinary, Binary: b}
}

// TextBlob wraps a string read from a text column.
func TextBlob(s string) StoredBlob {
	return StoredBlob{Shape: BlobText, Text: s}
}

// ParsedBlob wraps an already-decoded document.
func ParsedBlob(m map[string]any) StoredBlob {
	return StoredBlob{Shape: BlobParsed, Parsed: m}
}

// IsZero reports whether no blob is present.
func (b StoredBlob) IsZero() bool {
	switch b.Shape {
	case BlobBinary:
		return len(b.Binary) == 0
	case BlobText:
		return strings.TrimSpace(b.Text) == ""
	case BlobParsed:
		return len(b.Parsed) == 0
	default:
		return true
	}
}

// StoredBlobFromValue classifies a value scanned from a database driver or
// decoded from JSON. A nil value yields ok=false.
func StoredBlobFromValue(v any) (blob StoredBlob, ok bool, err error) {
	switch t := v.(type) {
	case nil:
		return StoredBlob{}, false, nil
	case []byte:
		if len(t) == 0 {
			return StoredBlob{}, false, nil
		}
		return BinaryBlob(t), true, nil
	case json.RawMessage:
		if len(t) == 0 {
			return StoredBlob{}, false, nil
		}
		return BinaryBlob(t), true, nil
	case string:
		if t == "" {
			return StoredBlob{}, false, nil
		}
		return TextBlob(t), true, nil
	case map[string]any:
		return ParsedBlob(t), true, nil
	case map[string]string:
		m := make(map[string]any, len(t))
		for k, s := range t {
			m[k] = s
		}
		return ParsedBlob(m), true, nil
	default:
		return StoredBlob{}, false, fmt.Errorf("%w: unsupported value type %T", ErrMalformedBlob, v)
	}
}

// ParseStoredBlob normalizes any StoredBlob shape into an EncryptedField.
//
// Parts may be hex or base64 encoded. The encoding is detected from the IV:
// a 12-byte IV is 24 hex characters, which never collides with its 16-character
// base64 form.
func ParseStoredBlob(b StoredBlob) (*EncryptedField, error) {
	var doc map[string]any

	switch b.Shape {
	case BlobBinary:
		if err := decodeDocument(b.Binary, &doc); err != nil {
			return nil, err
		}
	case BlobText:
		if err := decodeDocument([]byte(b.Text), &doc); err != nil {
			return nil, err
		}
	case BlobParsed:
		doc = b.Parsed
	default:
		return nil, fmt.Errorf("%w: unknown shape", ErrMalformedBlob)
	}

	data, err := stringPart(doc, "encryptedData")
	if err != nil {
		return nil, err
	}
	iv, err := stringPart(doc, "iv")
	if err != nil {
		return nil, err
	}
	tag, err := stringPart(doc, "tag")
	if err != nil {
		return nil, err
	}

	decode := base64.StdEncoding.DecodeString
	if isHexIV(iv) {
		decode = hex.DecodeString
	}

	field := &EncryptedField{}
	if field.Ciphertext, err = decode(data); err != nil {
		return nil, fmt.Errorf("%w: encryptedData: %v", ErrMalformedBlob, err)
	}
	if field.IV, err = decode(iv); err != nil {
		return nil, fmt.Errorf("%w: iv: %v", ErrMalformedBlob, err)
	}
	if field.AuthTag, err = decode(tag); err != nil {
		return nil, fmt.Errorf("%w: tag: %v", ErrMalformedBlob, err)
	}

	if err := field.Validate(); err != nil {
		return nil, err
	}
	return field, nil
}

// decodeDocument unmarshals a JSON object. Text columns written by older code
// sometimes hold the document as a quoted JSON string, so one level of quoting
// is unwrapped first.
func decodeDocument(raw []byte, doc *map[string]any) error {
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, `"`) {
		unquoted, err := strconv.Unquote(trimmed)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedBlob, err)
		}
		trimmed = unquoted
	}
	if err := json.Unmarshal([]byte(trimmed), doc); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedBlob, err)
	}
	return nil
}

func stringPart(doc map[string]any, key string) (string, error) {
	v, ok := doc[key]
	if !ok {
		return "", fmt.Errorf("%w: missing %s", ErrMalformedBlob, key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("%w: %s must be a non-empty string", ErrMalformedBlob, key)
	}
	return s, nil
}

func isHexIV(iv string) bool {
	if len(iv) != hex.EncodedLen(IVSize) {
		return false
	}
	_, err := hex.DecodeString(iv)
	return err == nil
}
