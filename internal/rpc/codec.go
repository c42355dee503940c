// Package rpc implements remote adapters for the Generator and Solver
// collaborators (spec.md §6), so an exploration/refinement run can be
// pointed at an out-of-process model or solver service over gRPC.
//
// The teacher's own codec/client.go talks to a generated protobuf stub
// package that is not present anywhere in the retrieved corpus (no
// protoc toolchain, no gen/ directory). Rather than hand-authoring fake
// .pb.go files, this package registers a JSON grpc/encoding.Codec — a
// real, documented grpc-go extension point — and drives calls directly
// through grpc.ClientConn.Invoke against a hand-built grpc.ServiceDesc.
// See DESIGN.md for the full justification.
package rpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

const codecName = "json"

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// jsonCodec implements google.golang.org/grpc/encoding.Codec by
// marshaling messages as JSON instead of protobuf wire format.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func (jsonCodec) Name() string { return codecName }
