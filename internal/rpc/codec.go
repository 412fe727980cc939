package rpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// jsonCodecName is the name the JSON codec is registered under. It is
// not the default codec: clients select it per call through
// grpc.ForceCodec (see callOptions and DialOptions), and the server
// looks it up by that content-subtype, so plain JSON-encoded Go structs
// are exchanged instead of protoc-generated proto.Message types.
const jsonCodecName = "json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return jsonCodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
