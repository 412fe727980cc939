package rpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"
)

func TestJSONCodecRegisteredUnderName(t *testing.T) {
	codec := encoding.GetCodec(jsonCodecName)
	require.NotNil(t, codec, "jsonCodec must self-register via init()")
	assert.Equal(t, jsonCodecName, codec.Name())
}

func TestJSONCodecRoundTrip(t *testing.T) {
	codec := jsonCodec{}
	original := MessageRequest{SessionID: "s1", UserInput: "推荐一个适合美食的城市", ModelID: "openai-gpt4o-mini", Stream: true}

	data, err := codec.Marshal(original)
	require.NoError(t, err)

	var decoded MessageRequest
	require.NoError(t, codec.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)
}

func TestJSONCodecRoundTripStreamChunk(t *testing.T) {
	codec := jsonCodec{}
	original := StreamChunk{ChunkType: "answer_chunk", Content: "Chengdu is great for food.", IsLast: false}

	data, err := codec.Marshal(original)
	require.NoError(t, err)

	var decoded StreamChunk
	require.NoError(t, codec.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)
}
