package domain

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleField() *EncryptedField {
	return &EncryptedField{
		Ciphertext: []byte{0x4a, 0x61, 0x6e, 0x65},
		IV:         []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12},
		AuthTag:    []byte{16, 15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1},
	}
}

func TestParseStoredBlob_ShapesAreEquivalent(t *testing.T) {
	field := sampleField()
	doc, err := field.MarshalBlob()
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(doc, &parsed))

	blobs := map[string]StoredBlob{
		"binary":      BinaryBlob(doc),
		"text":        TextBlob(string(doc)),
		"quoted_text": TextBlob(strconv.Quote(string(doc))),
		"parsed":      ParsedBlob(parsed),
	}

	for name, blob := range blobs {
		t.Run(name, func(t *testing.T) {
			got, err := ParseStoredBlob(blob)
			require.NoError(t, err)
			assert.Equal(t, field, got)
		})
	}
}

func TestParseStoredBlob_Base64Encoding(t *testing.T) {
	field := sampleField()
	blob := ParsedBlob(map[string]any{
		"encryptedData": base64.StdEncoding.EncodeToString(field.Ciphertext),
		"iv":            base64.StdEncoding.EncodeToString(field.IV),
		"tag":           base64.StdEncoding.EncodeToString(field.AuthTag),
	})

	got, err := ParseStoredBlob(blob)
	require.NoError(t, err)
	assert.Equal(t, field, got)
}

func TestParseStoredBlob_Errors(t *testing.T) {
	field := sampleField()
	valid := map[string]any{
		"encryptedData": hex.EncodeToString(field.Ciphertext),
		"iv":            hex.EncodeToString(field.IV),
		"tag":           hex.EncodeToString(field.AuthTag),
	}

	with := func(key string, value any) map[string]any {
		m := map[string]any{}
		for k, v := range valid {
			m[k] = v
		}
		if value == nil {
			delete(m, key)
		} else {
			m[key] = value
		}
		return m
	}

	tests := []struct {
		name string
		blob StoredBlob
	}{
		{"invalid_json", BinaryBlob([]byte("{not json"))},
		{"text_not_object", TextBlob(`[1,2,3]`)},
		{"missing_iv", ParsedBlob(with("iv", nil))},
		{"tag_not_string", ParsedBlob(with("tag", 42))},
		{"short_tag", ParsedBlob(with("tag", hex.EncodeToString([]byte{1, 2, 3})))},
		{"bad_hex_data", ParsedBlob(with("encryptedData", "zz"))},
		{"sixteen_byte_iv", ParsedBlob(with("iv", base64.StdEncoding.EncodeToString(make([]byte, 16))))},
		{"unknown_shape", StoredBlob{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseStoredBlob(tt.blob)
			assert.ErrorIs(t, err, ErrMalformedBlob)
			assert.ErrorIs(t, err, ErrDecryptionFailed)
		})
	}
}

func TestStoredBlobFromValue(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		ok      bool
		shape   BlobShape
		wantErr bool
	}{
		{"nil", nil, false, 0, false},
		{"bytes", []byte(`{}`), true, BlobBinary, false},
		{"empty_bytes", []byte{}, false, 0, false},
		{"raw_message", json.RawMessage(`{}`), true, BlobBinary, false},
		{"string", `{}`, true, BlobText, false},
		{"map", map[string]any{"iv": "x"}, true, BlobParsed, false},
		{"string_map", map[string]string{"iv": "x"}, true, BlobParsed, false},
		{"int", 42, false, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob, ok, err := StoredBlobFromValue(tt.value)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedBlob)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.shape, blob.Shape)
			}
		})
	}
}

func TestEncryptedField_Validate(t *testing.T) {
	assert.NoError(t, sampleField().Validate())

	short := sampleField()
	short.IV = short.IV[:8]
	assert.ErrorIs(t, short.Validate(), ErrMalformedBlob)

	noData := sampleField()
	noData.Ciphertext = nil
	assert.ErrorIs(t, noData.Validate(), ErrMalformedBlob)

	var nilField *EncryptedField
	assert.ErrorIs(t, nilField.Validate(), ErrMalformedBlob)
}

func TestEncryptedField_MarshalBlob_UsesHex(t *testing.T) {
	doc, err := sampleField().MarshalBlob()
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"encryptedData":"4a616e65","iv":"0102030405060708090a0b0c","tag":"100f0e0d0c0b0a090807060504030201"}`,
		string(doc),
	)

	blob, err := sampleField().Blob()
	require.NoError(t, err)
	assert.Equal(t, BlobBinary, blob.Shape)
	assert.False(t, blob.IsZero())
}
