package timed_device

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mit-pdos/go-jbod/jbod"
)

func TestCounts(t *testing.T) {
	assert := assert.New(t)
	d := New(jbod.NewMemArray())
	assert.NoError(jbod.Do(d, jbod.MkOp(jbod.CMD_MOUNT, 0, 0), nil))
	assert.NoError(jbod.Do(d, jbod.SeekToDisk(3), nil))
	assert.NoError(jbod.Do(d, jbod.SeekToBlock(9), nil))
	buf := make([]byte, jbod.BlockSize)
	assert.NoError(jbod.Do(d, jbod.MkOp(jbod.CMD_READ_BLOCK, 0, 0), buf))
	assert.NoError(jbod.Do(d, jbod.MkOp(jbod.CMD_READ_BLOCK, 0, 0), buf))
	assert.ErrorIs(jbod.Do(d, jbod.MkOp(jbod.Cmd(0xf), 0, 0), nil), jbod.BAD_CMD)

	assert.Equal(uint32(1), d.Count(jbod.CMD_MOUNT))
	assert.Equal(uint32(2), d.Count(jbod.CMD_READ_BLOCK))
	assert.Equal(uint32(0), d.Count(jbod.CMD_WRITE_BLOCK))
	assert.Equal(uint32(1), d.Count(jbod.Cmd(0xf)))
	assert.Equal(uint32(6), d.Total())

	out := new(bytes.Buffer)
	d.WriteStats(out)
	assert.Contains(out.String(), "READ_BLOCK")
	assert.Contains(out.String(), "INVALID")

	d.ResetStats()
	assert.Equal(uint32(0), d.Total())
}
