package mdadm

import (
	"io"
	"time"

	"github.com/mit-pdos/go-jbod/util/stats"
)

const (
	MOUNT int = iota
	UNMOUNT
	READ
	WRITE
	SIGN
	NUM_VOL_OPS
)

var volopNames = []string{
	"MOUNT",
	"UNMOUNT",
	"READ",
	"WRITE",
	"SIGN",
}

func (v *Volume) recordOp(op int, start time.Time) {
	v.stats[op].Record(start)
}

func (v *Volume) WriteOpStats(w io.Writer) {
	stats.WriteTable(volopNames, v.stats[:], w)
}

func (v *Volume) ResetOpStats() {
	for i := range v.stats {
		v.stats[i].Reset()
	}
}
