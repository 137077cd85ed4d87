package wire_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/huskgames/snakearena/wire"
	"github.com/stretchr/testify/require"
)

func TestWriteThenReadRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := wire.NewWriter(&buf)
	require.NoError(t, w.WriteMessage(wire.TypeJoin, wire.JoinPayload{Code: "AB3x", PlayerName: "nyx"}))

	r := wire.NewReader(&buf)
	env, err := r.ReadEnvelope()
	require.NoError(t, err)
	require.Equal(t, wire.TypeJoin, env.Type)

	var payload wire.JoinPayload
	require.NoError(t, wire.Decode(env, &payload))
	require.Equal(t, "AB3x", payload.Code)
	require.Equal(t, "nyx", payload.PlayerName)
}

func TestReadEnvelopeRejectsMissingType(t *testing.T) {
	r := wire.NewReader(bytes.NewBufferString("{\"data\":{}}\n"))
	_, err := r.ReadEnvelope()
	require.Error(t, err)
	var protoErr *wire.ProtocolError
	require.ErrorAs(t, err, &protoErr)
}

func TestReadEnvelopeRejectsMalformedJSON(t *testing.T) {
	r := wire.NewReader(bytes.NewBufferString("not json at all\n"))
	_, err := r.ReadEnvelope()
	require.Error(t, err)
	var protoErr *wire.ProtocolError
	require.ErrorAs(t, err, &protoErr)
}

func TestStateViewCellsRoundTripAsArrays(t *testing.T) {
	var buf bytes.Buffer
	w := wire.NewWriter(&buf)
	state := wire.StateView{
		Tick:   3,
		Apples: []wire.Cell{wire.NewCell(6, 5)},
		AlivePlayers: []wire.PlayerView{
			{Key: "h:1", Name: "A", Chunks: []wire.Cell{wire.NewCell(1, 1), wire.NewCell(1, 2)}, Direction: 1},
		},
	}
	require.NoError(t, w.WriteMessage(wire.TypeSessionStateUpdate, state))
	require.Contains(t, buf.String(), `"apples":[[6,5]]`)

	r := wire.NewReader(&buf)
	env, err := r.ReadEnvelope()
	require.NoError(t, err)

	var decoded wire.StateView
	require.NoError(t, wire.Decode(env, &decoded))
	require.Equal(t, state, decoded)
}

func TestReadEnvelopeReturnsEOFOnCleanClose(t *testing.T) {
	r := wire.NewReader(bytes.NewReader(nil))
	_, err := r.ReadEnvelope()
	require.ErrorIs(t, err, io.EOF)
}

func TestMultipleFramesOnOneConnection(t *testing.T) {
	var buf bytes.Buffer
	w := wire.NewWriter(&buf)
	require.NoError(t, w.WriteMessage(wire.TypeInput, wire.InputPayload{NewDirection: 1}))
	require.NoError(t, w.WriteMessage(wire.TypeInput, wire.InputPayload{NewDirection: 4}))

	r := wire.NewReader(&buf)
	env1, err := r.ReadEnvelope()
	require.NoError(t, err)
	env2, err := r.ReadEnvelope()
	require.NoError(t, err)

	var p1, p2 wire.InputPayload
	require.NoError(t, wire.Decode(env1, &p1))
	require.NoError(t, wire.Decode(env2, &p2))
	require.Equal(t, 1, p1.NewDirection)
	require.Equal(t, 4, p2.NewDirection)
}
