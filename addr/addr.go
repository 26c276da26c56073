package addr

import (
	"github.com/mit-pdos/go-journal/util"

	"github.com/mit-pdos/go-jbod/jbod"
)

// Addr identifies a byte of the volume as a block of one disk and an
// offset into that block.
type Addr struct {
	Disk  uint32
	Block uint32
	Off   uint32
}

func Translate(a uint32) Addr {
	inDisk := a % jbod.DiskSize
	return Addr{
		Disk:  a / jbod.DiskSize,
		Block: inDisk / jbod.BlockSize,
		Off:   inDisk % jbod.BlockSize,
	}
}

// Linear is the inverse of Translate.
func (a Addr) Linear() uint32 {
	return a.Disk*jbod.DiskSize + a.Block*jbod.BlockSize + a.Off
}

// SegmentLen is how much of remaining can be served from the block that
// off falls in.
func SegmentLen(off uint32, remaining uint32) uint32 {
	return uint32(util.Min(uint64(jbod.BlockSize-off), uint64(remaining)))
}

// InRange reports whether [start, start+n) lies inside the volume.
func InRange(start uint32, n uint32) bool {
	if util.SumOverflows32(start, n) {
		return false
	}
	return start+n <= jbod.VolumeSize
}

// A Segment is a piece of a request contained in a single block. BufOff
// is where the segment starts relative to the start of the request.
type Segment struct {
	Addr
	Len    uint32
	BufOff uint32
}

// Full reports whether the segment covers its whole block.
func (s Segment) Full() bool {
	return s.Off == 0 && s.Len == jbod.BlockSize
}

// Segments splits [start, start+n) into per-block segments. The caller
// must have checked InRange.
func Segments(start uint32, n uint32) []Segment {
	var segs []Segment
	var done uint32 = 0
	for done < n {
		a := Translate(start + done)
		l := SegmentLen(a.Off, n-done)
		segs = append(segs, Segment{Addr: a, Len: l, BufOff: done})
		done += l
	}
	return segs
}
