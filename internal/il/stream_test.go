package il_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"duskc/internal/il"
)

func TestStreamLabelClosure(t *testing.T) {
	s := il.New()

	elseLabel := s.NewLabel()
	endLabel := s.NewLabel()

	s.PushConstBool(true)
	s.BranchIfFalse(elseLabel)
	s.PushConstI64(1)
	s.Jump(endLabel)
	s.BindLabel(elseLabel)
	s.PushConstI64(2)
	s.BindLabel(endLabel)

	require.NoError(t, s.Resolve())
	assert.Equal(t, 0, s.PendingFixups())
}

func TestStreamUnresolvedLabelIsError(t *testing.T) {
	s := il.New()
	label := s.NewLabel()
	s.Jump(label) // never bound

	err := s.Resolve()
	assert.Error(t, err)
}

func TestStreamBytesLengthPrefix(t *testing.T) {
	s := il.New()
	s.PushConstI64(42)

	out := s.Bytes()
	require.True(t, len(out) >= 4)
	length := binary.LittleEndian.Uint32(out[:4])
	assert.Equal(t, uint32(len(s.Raw())), length)
	assert.Equal(t, s.Raw(), out[4:])
}

func TestStreamFnAndCall(t *testing.T) {
	s := il.New()
	s.FnBegin("main__run__", 0)
	s.Call("math__sqrt__i32")
	s.Return()
	s.FnEnd()

	require.NoError(t, s.Resolve())
	assert.Equal(t, 0, s.PendingFixups())
	assert.NotEmpty(t, s.Raw())
}
