package main

import (
	"fmt"
	"os"

	"github.com/mit-pdos/go-journal/util"
	"github.com/spf13/cobra"

	"github.com/mit-pdos/go-jbod/cache"
	"github.com/mit-pdos/go-jbod/jbod"
	"github.com/mit-pdos/go-jbod/mdadm"
	"github.com/mit-pdos/go-jbod/util/timed_device"
)

type options struct {
	diskfile  string
	cacheSz   int
	dumpStats bool
}

var opts options

// session is a mounted volume plus what is needed to tear it down.
type session struct {
	array *jbod.Array
	dev   *timed_device.Device
	cache *cache.Cache
	vol   *mdadm.Volume
}

func openSession(writable bool) (*session, error) {
	var array *jbod.Array
	if opts.diskfile == "" {
		array = jbod.NewMemArray()
	} else {
		var err error
		array, err = jbod.NewFileArray(opts.diskfile)
		if err != nil {
			return nil, err
		}
	}
	s := &session{array: array, dev: timed_device.New(array)}
	if opts.cacheSz > 0 {
		c, err := cache.MkCache(opts.cacheSz)
		if err != nil {
			array.Close()
			return nil, err
		}
		s.cache = c
	}
	s.vol = mdadm.MkVolume(s.dev, s.cache)
	if err := s.vol.Mount(); err != nil {
		array.Close()
		return nil, err
	}
	if writable {
		s.vol.GrantWritePermission()
	}
	return s, nil
}

func (s *session) close() error {
	err := s.vol.Unmount()
	if opts.dumpStats {
		s.vol.WriteOpStats(os.Stderr)
		s.dev.WriteStats(os.Stderr)
		if s.cache.Enabled() {
			s.cache.WriteHitRate(os.Stderr)
		}
	}
	if s.cache.Enabled() {
		s.cache.Destroy()
	}
	s.array.Close()
	return err
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mdadm",
		Short:         "Linear volume over an emulated JBOD array",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := root.PersistentFlags()
	flags.StringVar(&opts.diskfile, "disk", "", "array image (empty for an in-memory array)")
	flags.IntVar(&opts.cacheSz, "cache", 0, fmt.Sprintf("block cache entries (0 disables, %d-%d)", cache.MINSZ, cache.MAXSZ))
	flags.BoolVar(&opts.dumpStats, "stats", false, "dump stats to stderr at end")
	flags.Uint64Var(&util.Debug, "debug", 0, "debug level (higher is more verbose)")

	root.AddCommand(newReadCmd(), newWriteCmd(), newSignCmd(), newBenchCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "mdadm: %v\n", err)
		os.Exit(1)
	}
}
