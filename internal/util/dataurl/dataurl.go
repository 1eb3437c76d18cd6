package dataurl

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Encode renders inline binary content as a base64 data URI.
func Encode(mimeType string, data []byte) string {
	mimeType = strings.TrimSpace(mimeType)
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Decode parses a base64 data URI back into its MIME type and raw bytes.
func Decode(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, fmt.Errorf("dataurl: missing data: prefix")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("dataurl: missing payload separator")
	}
	mimeType, encoded := meta, false
	if m, found := strings.CutSuffix(meta, ";base64"); found {
		mimeType = m
		encoded = true
	}
	if !encoded {
		return "", nil, fmt.Errorf("dataurl: only base64 payloads are supported")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("dataurl: decode payload: %w", err)
	}
	if strings.TrimSpace(mimeType) == "" {
		mimeType = "application/octet-stream"
	}
	return mimeType, data, nil
}

// IsDataURL reports whether s looks like an inline data URI.
func IsDataURL(s string) bool {
	return strings.HasPrefix(s, "data:")
}
