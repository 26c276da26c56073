package addr

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mit-pdos/go-jbod/jbod"
)

func TestTranslate(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(Addr{Disk: 0, Block: 0, Off: 0}, Translate(0))
	assert.Equal(Addr{Disk: 1, Block: 0, Off: 0}, Translate(65536))
	assert.Equal(Addr{Disk: 0, Block: 1, Off: 44}, Translate(300))
	assert.Equal(Addr{Disk: 15, Block: 255, Off: 255}, Translate(jbod.VolumeSize-1))
	assert.Equal(Addr{Disk: 2, Block: 3, Off: 4}, Translate(2*65536+3*256+4))
}

func TestLinear(t *testing.T) {
	for _, a := range []uint32{0, 1, 255, 256, 300, 65535, 65536, 700000, jbod.VolumeSize - 1} {
		assert.Equal(t, a, Translate(a).Linear())
	}
}

func TestSegmentLen(t *testing.T) {
	assert.Equal(t, uint32(256), SegmentLen(0, 1024))
	assert.Equal(t, uint32(212), SegmentLen(44, 1024))
	assert.Equal(t, uint32(10), SegmentLen(44, 10))
	assert.Equal(t, uint32(1), SegmentLen(255, 2))
	assert.Equal(t, uint32(0), SegmentLen(5, 0))
}

func TestInRange(t *testing.T) {
	assert := assert.New(t)
	assert.True(InRange(0, 0))
	assert.True(InRange(0, 1024))
	assert.True(InRange(jbod.VolumeSize-1024, 1024))
	assert.True(InRange(jbod.VolumeSize, 0))
	assert.False(InRange(jbod.VolumeSize-1023, 1024))
	assert.False(InRange(jbod.VolumeSize, 1))
	assert.False(InRange(0xffffffff, 2), "overflow")
}

func TestSegments(t *testing.T) {
	assert := assert.New(t)
	assert.Empty(Segments(123, 0))

	segs := Segments(300, 500)
	assert.Equal([]Segment{
		{Addr: Addr{0, 1, 44}, Len: 212, BufOff: 0},
		{Addr: Addr{0, 2, 0}, Len: 256, BufOff: 212},
		{Addr: Addr{0, 3, 0}, Len: 32, BufOff: 468},
	}, segs)
	assert.False(segs[0].Full())
	assert.True(segs[1].Full())
	assert.False(segs[2].Full())

	// crossing a disk boundary
	segs = Segments(65536-10, 20)
	assert.Equal([]Segment{
		{Addr: Addr{0, 255, 246}, Len: 10, BufOff: 0},
		{Addr: Addr{1, 0, 0}, Len: 10, BufOff: 10},
	}, segs)
}

func TestSegmentsCover(t *testing.T) {
	for _, start := range []uint32{0, 1, 255, 256, 1000, 65530} {
		for _, n := range []uint32{1, 255, 256, 257, 1024} {
			segs := Segments(start, n)
			var total uint32
			next := start
			for _, s := range segs {
				assert.Equal(t, next, s.Linear())
				assert.Equal(t, total, s.BufOff)
				assert.LessOrEqual(t, s.Off+s.Len, jbod.BlockSize)
				total += s.Len
				next += s.Len
			}
			assert.Equal(t, n, total)
		}
	}
}
