package timed_device

import (
	"io"
	"time"

	"github.com/mit-pdos/go-jbod/jbod"
	"github.com/mit-pdos/go-jbod/util/stats"
)

// Device wraps a jbod.Device and records per-command latency.
type Device struct {
	d   jbod.Device
	ops [jbod.NUM_CMDS + 1]stats.Op
}

func New(d jbod.Device) *Device {
	return &Device{d: d}
}

// invalid commands are counted in the last slot
var ops = append(jbod.CmdNames(), "INVALID")

// assert that Device implements jbod.Device
var _ jbod.Device = &Device{}

func (d *Device) slot(cmd jbod.Cmd) int {
	if uint32(cmd) < jbod.NUM_CMDS {
		return int(cmd)
	}
	return jbod.NUM_CMDS
}

func (d *Device) Operation(op uint32, block []byte) error {
	cmd := jbod.DecodeOp(op).Cmd
	defer d.ops[d.slot(cmd)].Record(time.Now())
	return d.d.Operation(op, block)
}

// Count returns how many times cmd was issued.
func (d *Device) Count(cmd jbod.Cmd) uint32 {
	return d.ops[d.slot(cmd)].Count()
}

// Total returns the number of commands issued.
func (d *Device) Total() uint32 {
	var n uint32
	for i := range d.ops {
		n += d.ops[i].Count()
	}
	return n
}

func (d *Device) WriteStats(w io.Writer) {
	stats.WriteTable(ops, d.ops[:], w)
}

func (d *Device) ResetStats() {
	for i := range d.ops {
		d.ops[i].Reset()
	}
}
