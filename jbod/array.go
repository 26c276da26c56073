package jbod

import (
	"fmt"

	"github.com/mit-pdos/go-journal/util"
	"github.com/spaolacci/murmur3"
	"github.com/tchajed/goose/machine/disk"
	"github.com/tchajed/marshal"
)

//
// Emulated JBOD array on top of a goose disk. Block 0 of the backing disk
// holds a header describing the geometry; the array's blocks follow it,
// packed disk.BlockSize/BlockSize to a backing block.
//

const (
	MAGIC     uint64 = 0x4a424f44_00000001
	HDRBLK    uint64 = 0
	DATASTART uint64 = HDRBLK + 1
	SIGSZ     uint64 = 16
)

// NDISKBLKS is the number of backing blocks an array image needs.
const NDISKBLKS uint64 = DATASTART + uint64(VolumeSize)/disk.BlockSize

type Array struct {
	d        disk.Disk
	mounted  bool
	writable bool
	curDisk  uint32
	curBlock uint32
}

var _ Device = &Array{}

// NewArray wraps d, which must be at least NDISKBLKS blocks. A zeroed disk
// is formatted; otherwise the header must match this geometry.
func NewArray(d disk.Disk) (*Array, error) {
	if d.Size() < NDISKBLKS {
		return nil, fmt.Errorf("jbod: disk has %d blocks, need %d",
			d.Size(), NDISKBLKS)
	}
	hdr := d.Read(HDRBLK)
	dec := marshal.NewDec(hdr)
	magic := dec.GetInt()
	if magic == 0 {
		util.DPrintf(1, "NewArray: formatting %d disks\n", NumDisks)
		d.Write(HDRBLK, encodeHeader())
		d.Barrier()
	} else {
		if magic != MAGIC {
			return nil, fmt.Errorf("jbod: bad magic %#x", magic)
		}
		ndisks := dec.GetInt32()
		nblocks := dec.GetInt32()
		blksz := dec.GetInt32()
		if ndisks != NumDisks || nblocks != NumBlocksPerDisk || blksz != BlockSize {
			return nil, fmt.Errorf("jbod: image geometry %dx%dx%d, want %dx%dx%d",
				ndisks, nblocks, blksz, NumDisks, NumBlocksPerDisk, BlockSize)
		}
		util.DPrintf(1, "NewArray: opened existing image\n")
	}
	return &Array{d: d}, nil
}

func encodeHeader() []byte {
	enc := marshal.NewEnc(disk.BlockSize)
	enc.PutInt(MAGIC)
	enc.PutInt32(NumDisks)
	enc.PutInt32(NumBlocksPerDisk)
	enc.PutInt32(BlockSize)
	return enc.Finish()
}

func NewMemArray() *Array {
	a, err := NewArray(disk.NewMemDisk(NDISKBLKS))
	if err != nil {
		panic(err)
	}
	return a
}

// NewFileArray opens or creates an array image at path.
func NewFileArray(path string) (*Array, error) {
	util.DPrintf(1, "NewFileArray: file disk %s\n", path)
	d, err := disk.NewFileDisk(path, NDISKBLKS)
	if err != nil {
		return nil, fmt.Errorf("jbod: could not open image: %w", err)
	}
	a, err := NewArray(d)
	if err != nil {
		d.Close()
		return nil, err
	}
	return a, nil
}

func (a *Array) Close() {
	a.d.Barrier()
	a.d.Close()
}

// Signature is the murmur3 128-bit sum of data, encoded as two
// little-endian 64-bit words.
func Signature(data []byte) []byte {
	h1, h2 := murmur3.Sum128(data)
	enc := marshal.NewEnc(SIGSZ)
	enc.PutInt(h1)
	enc.PutInt(h2)
	return enc.Finish()
}

func (a *Array) locate(d uint32, b uint32) (uint64, uint64) {
	off := uint64(d)*uint64(DiskSize) + uint64(b)*uint64(BlockSize)
	return DATASTART + off/disk.BlockSize, off % disk.BlockSize
}

func (a *Array) readBlock(buf []byte) {
	blkno, off := a.locate(a.curDisk, a.curBlock)
	blk := a.d.Read(blkno)
	copy(buf[:BlockSize], blk[off:off+uint64(BlockSize)])
}

func (a *Array) writeBlock(buf []byte) {
	blkno, off := a.locate(a.curDisk, a.curBlock)
	blk := a.d.Read(blkno)
	copy(blk[off:off+uint64(BlockSize)], buf[:BlockSize])
	a.d.Write(blkno, blk)
}

func (a *Array) Operation(w uint32, buf []byte) error {
	op := DecodeOp(w)
	util.DPrintf(10, "jbod: %v cursor (%d, %d)\n", op, a.curDisk, a.curBlock)
	switch op.Cmd {
	case CMD_MOUNT:
		if a.mounted {
			return ALREADY_MOUNTED
		}
		a.mounted = true
		a.curDisk = 0
		a.curBlock = 0
		return nil
	case CMD_UNMOUNT:
		if !a.mounted {
			return ALREADY_UNMOUNTED
		}
		a.d.Barrier()
		a.mounted = false
		return nil
	case CMD_WRITE_PERMISSION:
		if a.writable {
			return WRITE_PERMISSION_ALREADY_GRANTED
		}
		a.writable = true
		return nil
	case CMD_REVOKE_WRITE_PERMISSION:
		if !a.writable {
			return WRITE_PERMISSION_ALREADY_REVOKED
		}
		a.writable = false
		return nil
	}
	if uint32(op.Cmd) >= NUM_CMDS || op.Cmd == CMD_RESERVED {
		return BAD_CMD
	}
	if !a.mounted {
		return UNMOUNTED
	}
	switch op.Cmd {
	case CMD_SEEK_TO_DISK:
		if op.Disk >= NumDisks {
			return BAD_DISK_NUM
		}
		a.curDisk = op.Disk
	case CMD_SEEK_TO_BLOCK:
		if op.Block >= NumBlocksPerDisk {
			return BAD_BLOCK_NUM
		}
		a.curBlock = op.Block
	case CMD_READ_BLOCK:
		if uint32(len(buf)) < BlockSize {
			return BAD_READ
		}
		a.readBlock(buf)
	case CMD_WRITE_BLOCK:
		if uint32(len(buf)) < BlockSize {
			return BAD_WRITE
		}
		a.writeBlock(buf)
	case CMD_SIGN_BLOCK:
		if uint32(len(buf)) < BlockSize {
			return BAD_READ
		}
		data := make([]byte, BlockSize)
		a.readBlock(data)
		sig := Signature(data)
		for i := range buf[:BlockSize] {
			buf[i] = 0
		}
		copy(buf, sig)
	}
	return nil
}

// Mounted reports whether the array accepts I/O commands.
func (a *Array) Mounted() bool {
	return a.mounted
}

// Writable reports the array's own write-permission flag.
func (a *Array) Writable() bool {
	return a.writable
}
