package claimcheck

import (
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var pointerJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// Pointer is the claim-check record left on the wire in place of an
// offloaded body: which container holds the blob, and its full key
// (including any configured prefix). Two pointers are equal iff both
// fields are equal.
type Pointer struct {
	Container string
	Key       string
}

// wirePointer is the serialised shape. Field names are fixed so a
// legacy consumer recognises the record; jsoniter ignores unknown
// fields on decode, giving forward compatibility for free.
type wirePointer struct {
	ContainerName string `json:"containerName"`
	BlobName      string `json:"blobName"`
}

// EncodePointer serialises p to its on-wire textual form.
func EncodePointer(p Pointer) ([]byte, error) {
	return pointerJSON.Marshal(wirePointer{ContainerName: p.Container, BlobName: p.Key})
}

// DecodePointer parses the on-wire form produced by EncodePointer (or a
// legacy producer using the same field names). Empty or whitespace-only
// container/key fails decode.
func DecodePointer(data []byte) (Pointer, error) {
	var w wirePointer
	if err := pointerJSON.Unmarshal(data, &w); err != nil {
		return Pointer{}, ErrPointerInvalid("malformed pointer record", err)
	}
	container := strings.TrimSpace(w.ContainerName)
	key := strings.TrimSpace(w.BlobName)
	if container == "" || key == "" {
		return Pointer{}, ErrPointerInvalid("pointer record missing container or key", nil)
	}
	return Pointer{Container: w.ContainerName, Key: w.BlobName}, nil
}
