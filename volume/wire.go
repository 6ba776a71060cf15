package volume

import (
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
)

// Volumes are stored as zstd-compressed canonical CBOR, so identical
// volumes produce identical files.
var (
	cborEncMode cbor.EncMode
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("volume: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em

	zstdEncoder, err = zstd.NewWriter(nil)
	if err != nil {
		panic(fmt.Sprintf("volume: failed to create zstd encoder: %v", err))
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic(fmt.Sprintf("volume: failed to create zstd decoder: %v", err))
	}
}

// Marshal serializes a Volume to compressed bytes.
func Marshal(v *Volume) ([]byte, error) {
	if err := v.validate(); err != nil {
		return nil, err
	}
	raw, err := cborEncMode.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("volume: marshal: %w", err)
	}
	return zstdEncoder.EncodeAll(raw, nil), nil
}

// Unmarshal deserializes a Volume from compressed bytes.
func Unmarshal(data []byte) (*Volume, error) {
	raw, err := zstdDecoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("volume: decompress: %w", err)
	}
	var v Volume
	if err := cbor.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("volume: unmarshal: %w", err)
	}
	if err := v.validate(); err != nil {
		return nil, err
	}
	return &v, nil
}

// WriteFile marshals a Volume and writes it to path.
func WriteFile(path string, v *Volume) error {
	data, err := Marshal(v)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("volume: write %s: %w", path, err)
	}
	return nil
}

// ReadFile reads and unmarshals a Volume from path.
func ReadFile(path string) (*Volume, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("volume: read %s: %w", path, err)
	}
	return Unmarshal(data)
}
