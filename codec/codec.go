// Package codec provides the marshallers used for message framing and value
// serialization.
package codec

import (
	"encoding/json"
	"errors"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"
)

// Marshaller serializes values and wire messages.
type Marshaller interface {
	// Marshal serializes a value to bytes.
	Marshal(v any) ([]byte, error)

	// Unmarshal deserializes a value from bytes.
	Unmarshal(data []byte, v any) error
}

// JSONMarshaller is a marshaller that uses the standard JSON library.
type JSONMarshaller struct{}

// Marshal serializes a value to JSON.
func (jm *JSONMarshaller) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal deserializes a value from JSON.
func (jm *JSONMarshaller) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// NewJSONMarshaller creates a new JSON marshaller.
func NewJSONMarshaller() Marshaller {
	return &JSONMarshaller{}
}

// MsgpackMarshaller is a marshaller that uses MessagePack encoding.
type MsgpackMarshaller struct{}

// Marshal serializes a value to MessagePack.
func (mm *MsgpackMarshaller) Marshal(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

// Unmarshal deserializes a value from MessagePack.
func (mm *MsgpackMarshaller) Unmarshal(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}

// NewMsgpackMarshaller creates a new MessagePack marshaller.
func NewMsgpackMarshaller() Marshaller {
	return &MsgpackMarshaller{}
}

// cborDecMode decodes untyped maps with string keys, so payloads decoded into
// any stay structurally equal to their JSON rendering. CBOR's default of
// map[interface{}]interface{} cannot be canonicalized for key derivation.
var cborDecMode = newCBORDecMode()

func newCBORDecMode() cbor.DecMode {
	dm, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic(err)
	}
	return dm
}

// CBORMarshaller is a marshaller that uses CBOR encoding.
type CBORMarshaller struct{}

// Marshal serializes a value to CBOR.
func (cm *CBORMarshaller) Marshal(v any) ([]byte, error) {
	return cbor.Marshal(v)
}

// Unmarshal deserializes a value from CBOR.
func (cm *CBORMarshaller) Unmarshal(data []byte, v any) error {
	return cborDecMode.Unmarshal(data, v)
}

// NewCBORMarshaller creates a new CBOR marshaller.
func NewCBORMarshaller() Marshaller {
	return &CBORMarshaller{}
}

// Get returns a marshaller for the given format ("json", "msgpack" or "cbor").
func Get(format string) (Marshaller, error) {
	switch format {
	case "json":
		return NewJSONMarshaller(), nil
	case "msgpack":
		return NewMsgpackMarshaller(), nil
	case "cbor":
		return NewCBORMarshaller(), nil
	default:
		return nil, errors.New("unsupported serialization format: " + format)
	}
}
