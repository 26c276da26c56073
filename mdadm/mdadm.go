package mdadm

import (
	"time"

	"github.com/mit-pdos/go-journal/util"

	"github.com/mit-pdos/go-jbod/addr"
	"github.com/mit-pdos/go-jbod/cache"
	"github.com/mit-pdos/go-jbod/jbod"
	"github.com/mit-pdos/go-jbod/util/stats"
)

//
// A linear volume over a JBOD array. Requests are split into per-block
// segments; partial blocks are read, merged and written back whole. Blocks
// go through the cache on the way in and are written through to both the
// array and the cache on the way out.
//

// MAXIO is the largest read or write a single call accepts.
const MAXIO uint32 = 1024

type Volume struct {
	dev      jbod.Device
	cache    *cache.Cache
	mounted  bool
	writable bool
	stats    [NUM_VOL_OPS]stats.Op
}

// MkVolume builds an unmounted volume without write permission. c may be
// nil to run uncached.
func MkVolume(dev jbod.Device, c *cache.Cache) *Volume {
	return &Volume{dev: dev, cache: c}
}

func (v *Volume) Mounted() bool {
	return v.mounted
}

// CanWrite reports whether a write would pass the mount and permission
// checks.
func (v *Volume) CanWrite() bool {
	return v.mounted && v.writable
}

func (v *Volume) Cache() *cache.Cache {
	return v.cache
}

func (v *Volume) do(op jbod.Op, blk []byte) error {
	err := jbod.Do(v.dev, op, blk)
	if err != nil {
		util.DPrintf(1, "mdadm: %v failed: %v\n", op, err)
		return &DeviceError{Op: op, Err: err}
	}
	return nil
}

func (v *Volume) Mount() error {
	defer v.recordOp(MOUNT, time.Now())
	if v.mounted {
		return ErrAlreadyMounted
	}
	if err := v.do(jbod.MkOp(jbod.CMD_MOUNT, 0, 0), nil); err != nil {
		return err
	}
	v.mounted = true
	util.DPrintf(1, "mdadm: mounted\n")
	return nil
}

func (v *Volume) Unmount() error {
	defer v.recordOp(UNMOUNT, time.Now())
	if !v.mounted {
		return ErrAlreadyUnmounted
	}
	if err := v.do(jbod.MkOp(jbod.CMD_UNMOUNT, 0, 0), nil); err != nil {
		return err
	}
	v.mounted = false
	util.DPrintf(1, "mdadm: unmounted\n")
	return nil
}

func (v *Volume) GrantWritePermission() {
	v.writable = true
}

func (v *Volume) RevokeWritePermission() {
	v.writable = false
}

func (v *Volume) seek(a addr.Addr) error {
	if err := v.do(jbod.SeekToDisk(a.Disk), nil); err != nil {
		return err
	}
	return v.do(jbod.SeekToBlock(a.Block), nil)
}

// fetch fills blk with the current contents of a's block, from the cache
// if possible. The array must already be positioned at a when seeked is
// true; otherwise fetch seeks on a miss.
func (v *Volume) fetch(a addr.Addr, blk []byte, seeked bool) error {
	hit, _ := v.cache.Lookup(int(a.Disk), int(a.Block), blk)
	if hit {
		return nil
	}
	if !seeked {
		if err := v.seek(a); err != nil {
			return err
		}
	}
	if err := v.do(jbod.MkOp(jbod.CMD_READ_BLOCK, 0, 0), blk); err != nil {
		return err
	}
	v.cache.Insert(int(a.Disk), int(a.Block), blk)
	return nil
}

func (v *Volume) checkIO(n uint32, buf []byte) error {
	if n > MAXIO {
		return ErrLengthTooLarge
	}
	if n > 0 && buf == nil {
		return ErrNullBuffer
	}
	return nil
}

// Read copies n bytes starting at start into buf. It returns the number of
// bytes read, which is n unless err is non-nil.
func (v *Volume) Read(start uint32, n uint32, buf []byte) (uint32, error) {
	defer v.recordOp(READ, time.Now())
	if !v.mounted {
		return 0, ErrNotMounted
	}
	if err := v.checkIO(n, buf); err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}
	if uint32(len(buf)) < n {
		return 0, ErrShortBuffer
	}
	if !addr.InRange(start, n) {
		return 0, ErrOutOfRange
	}
	util.DPrintf(5, "Read: off %d cnt %d\n", start, n)

	blk := make([]byte, jbod.BlockSize)
	var done uint32 = 0
	for _, seg := range addr.Segments(start, n) {
		if err := v.fetch(seg.Addr, blk, false); err != nil {
			return done, err
		}
		copy(buf[seg.BufOff:seg.BufOff+seg.Len], blk[seg.Off:seg.Off+seg.Len])
		util.DPrintf(10, "Read: seg %v len %d\n", seg.Addr, seg.Len)
		done += seg.Len
	}
	return done, nil
}

// Write stores the first n bytes of buf starting at start. It returns the
// number of bytes written, which is n unless err is non-nil.
func (v *Volume) Write(start uint32, n uint32, buf []byte) (uint32, error) {
	defer v.recordOp(WRITE, time.Now())
	if !v.mounted {
		return 0, ErrNotMounted
	}
	if !v.writable {
		return 0, ErrPermissionDenied
	}
	if err := v.checkIO(n, buf); err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}
	if uint32(len(buf)) < n {
		return 0, ErrShortBuffer
	}
	if !addr.InRange(start, n) {
		return 0, ErrOutOfRange
	}
	util.DPrintf(5, "Write: off %d cnt %d\n", start, n)

	blk := make([]byte, jbod.BlockSize)
	var done uint32 = 0
	for _, seg := range addr.Segments(start, n) {
		if err := v.seek(seg.Addr); err != nil {
			return done, err
		}
		if !seg.Full() {
			if err := v.fetch(seg.Addr, blk, true); err != nil {
				return done, err
			}
		}
		copy(blk[seg.Off:seg.Off+seg.Len], buf[seg.BufOff:seg.BufOff+seg.Len])
		if err := v.do(jbod.MkOp(jbod.CMD_WRITE_BLOCK, 0, 0), blk); err != nil {
			return done, err
		}
		v.cache.Update(int(seg.Disk), int(seg.Block), blk)
		util.DPrintf(10, "Write: seg %v len %d full %v\n", seg.Addr, seg.Len, seg.Full())
		done += seg.Len
	}
	return done, nil
}

// Sign returns the array's signature of a block. Signatures bypass the
// cache; the cache never holds data the array does not.
func (v *Volume) Sign(disk uint32, block uint32) ([]byte, error) {
	defer v.recordOp(SIGN, time.Now())
	if !v.mounted {
		return nil, ErrNotMounted
	}
	if disk >= jbod.NumDisks || block >= jbod.NumBlocksPerDisk {
		return nil, ErrOutOfRange
	}
	a := addr.Addr{Disk: disk, Block: block}
	if err := v.seek(a); err != nil {
		return nil, err
	}
	blk := make([]byte, jbod.BlockSize)
	if err := v.do(jbod.MkOp(jbod.CMD_SIGN_BLOCK, 0, 0), blk); err != nil {
		return nil, err
	}
	return blk[:jbod.SIGSZ], nil
}
