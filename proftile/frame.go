package proftile

import (
	"bytes"
	"io"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
)

// EncodeFrame CBOR-encodes v and zstd-compresses the result; this is the
// on-disk archive format and the HTTP wire format alike.
func EncodeFrame(v interface{}) ([]byte, error) {
	payload, err := cbor.Marshal(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(payload); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeFrame reverses EncodeFrame into v (a pointer).
func DecodeFrame(data []byte, v interface{}) error {
	r, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return err
	}
	defer r.Close()
	payload, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return cbor.Unmarshal(payload, v)
}

// WriteFrame CBOR-encodes v, zstd-compresses it, and writes it to w.
func WriteFrame(w io.Writer, v interface{}) error {
	data, err := EncodeFrame(v)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// ReadFrame reads all of r and decodes it with DecodeFrame.
func ReadFrame(r io.Reader, v interface{}) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return DecodeFrame(data, v)
}
