package jbod

import "fmt"

// Op is a decoded array request. Disk is only meaningful for
// CMD_SEEK_TO_DISK and Block for CMD_SEEK_TO_BLOCK; other commands act on
// the array's cursor.
type Op struct {
	Cmd   Cmd
	Disk  uint32
	Block uint32
}

const (
	diskBits  = 4
	blockBits = 8
	cmdShift  = diskBits + blockBits
)

func MkOp(cmd Cmd, disk uint32, block uint32) Op {
	return Op{Cmd: cmd, Disk: disk, Block: block}
}

func SeekToDisk(disk uint32) Op {
	return MkOp(CMD_SEEK_TO_DISK, disk, 0)
}

func SeekToBlock(block uint32) Op {
	return MkOp(CMD_SEEK_TO_BLOCK, 0, block)
}

// Encode packs op as (cmd << 12) | (block << 4) | disk. Disk and block are
// truncated to their 4 and 8 bit fields.
func (op Op) Encode() uint32 {
	disk := op.Disk & (1<<diskBits - 1)
	block := op.Block & (1<<blockBits - 1)
	return uint32(op.Cmd)<<cmdShift | block<<diskBits | disk
}

func DecodeOp(w uint32) Op {
	return Op{
		Cmd:   Cmd(w >> cmdShift),
		Disk:  w & (1<<diskBits - 1),
		Block: (w >> diskBits) & (1<<blockBits - 1),
	}
}

func (op Op) String() string {
	switch op.Cmd {
	case CMD_SEEK_TO_DISK:
		return fmt.Sprintf("%v(%d)", op.Cmd, op.Disk)
	case CMD_SEEK_TO_BLOCK:
		return fmt.Sprintf("%v(%d)", op.Cmd, op.Block)
	}
	return op.Cmd.String()
}

// Do encodes op and issues it to d.
func Do(d Device, op Op, block []byte) error {
	return d.Operation(op.Encode(), block)
}
