// Package canonicaljson produces deterministic JSON bytes (RFC 8785, JCS)
// for diffing, hashing, and the CLI's --pretty=false output mode.
package canonicaljson

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
)

// Marshal returns a deterministic JSON encoding of v according to RFC 8785,
// delegating the canonicalization itself to jsoncanonicalizer (the reference
// implementation's own Go port) rather than reimplementing JCS.
func Marshal(v any) ([]byte, error) {
	var b []byte

	switch x := v.(type) {
	case json.RawMessage:
		b = x
	case []byte:
		b = x
	default:
		var err error
		b, err = json.Marshal(v)
		if err != nil {
			return nil, err
		}
	}

	if err := rejectTrailingData(b); err != nil {
		return nil, err
	}

	return jsoncanonicalizer.Transform(b)
}

// rejectTrailingData matches the stricter "single JSON value" contract the
// package's callers rely on; json.Unmarshal alone tolerates trailing bytes
// jsoncanonicalizer would otherwise silently ignore.
func rejectTrailingData(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	var extra any
	if err := dec.Decode(&extra); err != io.EOF {
		if err == nil {
			return errors.New("invalid JSON: trailing data")
		}
		return err
	}
	return nil
}
