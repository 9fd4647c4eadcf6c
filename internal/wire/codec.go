// Package wire defines the rpass RPC protocol: CBOR messages carried by
// gRPC under the "cbor" content-subtype, the service descriptor used by the
// server and a typed client stub.
package wire

import (
	"github.com/fxamacker/cbor/v2"
	"google.golang.org/grpc/encoding"
)

// CodecName is the gRPC content-subtype of the CBOR codec.
const CodecName = "cbor"

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	if encMode, err = cbor.CoreDetEncOptions().EncMode(); err != nil {
		panic(err)
	}
	if decMode, err = (cbor.DecOptions{
		DupMapKey:       cbor.DupMapKeyEnforcedAPF,
		MaxNestedLevels: 16,
	}).DecMode(); err != nil {
		panic(err)
	}

	encoding.RegisterCodec(Codec{})
}

// Codec implements encoding.Codec with deterministic CBOR.
type Codec struct{}

func (Codec) Marshal(v any) ([]byte, error) { return encMode.Marshal(v) }

func (Codec) Unmarshal(data []byte, v any) error { return decMode.Unmarshal(data, v) }

func (Codec) Name() string { return CodecName }
