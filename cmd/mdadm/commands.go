package main

import (
	"encoding/hex"
	"fmt"
	"io/ioutil"
	"math/rand"
	"strconv"

	"github.com/mit-pdos/go-journal/util"
	"github.com/spf13/cobra"

	"github.com/mit-pdos/go-jbod/jbod"
	"github.com/mit-pdos/go-jbod/mdadm"
)

// readRange reads n bytes at start in MAXIO-sized requests.
func readRange(vol *mdadm.Volume, start uint32, n uint32) ([]byte, error) {
	data := make([]byte, n)
	var off uint32 = 0
	for off < n {
		cnt := uint32(util.Min(uint64(n-off), uint64(mdadm.MAXIO)))
		if _, err := vol.Read(start+off, cnt, data[off:off+cnt]); err != nil {
			return nil, err
		}
		off += cnt
	}
	return data, nil
}

func writeRange(vol *mdadm.Volume, start uint32, data []byte) error {
	n := uint32(len(data))
	var off uint32 = 0
	for off < n {
		cnt := uint32(util.Min(uint64(n-off), uint64(mdadm.MAXIO)))
		if _, err := vol.Write(start+off, cnt, data[off:off+cnt]); err != nil {
			return err
		}
		off += cnt
	}
	return nil
}

func newReadCmd() *cobra.Command {
	var start, n uint32
	var out string
	cmd := &cobra.Command{
		Use:   "read",
		Short: "Read a byte range and hex dump it",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(false)
			if err != nil {
				return err
			}
			data, err := readRange(s.vol, start, n)
			cerr := s.close()
			if err != nil {
				return err
			}
			if out != "" {
				if err := ioutil.WriteFile(out, data, 0644); err != nil {
					return err
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), hex.Dump(data))
			}
			return cerr
		},
	}
	cmd.Flags().Uint32Var(&start, "addr", 0, "start address")
	cmd.Flags().Uint32Var(&n, "len", jbod.BlockSize, "number of bytes")
	cmd.Flags().StringVar(&out, "out", "", "write raw bytes to this file instead")
	return cmd
}

func newWriteCmd() *cobra.Command {
	var start, n uint32
	var in string
	var fill uint8
	cmd := &cobra.Command{
		Use:   "write",
		Short: "Write a file, or a repeated byte, at an address",
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			if in != "" {
				var err error
				if in == "-" {
					data, err = ioutil.ReadAll(cmd.InOrStdin())
				} else {
					data, err = ioutil.ReadFile(in)
				}
				if err != nil {
					return err
				}
			} else {
				data = make([]byte, n)
				for i := range data {
					data[i] = fill
				}
			}
			s, err := openSession(true)
			if err != nil {
				return err
			}
			err = writeRange(s.vol, start, data)
			cerr := s.close()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d bytes at %d\n", len(data), start)
			return cerr
		},
	}
	cmd.Flags().Uint32Var(&start, "addr", 0, "start address")
	cmd.Flags().StringVar(&in, "in", "", "file to write (- for stdin)")
	cmd.Flags().Uint32Var(&n, "len", jbod.BlockSize, "number of bytes when filling")
	cmd.Flags().Uint8Var(&fill, "fill", 0, "byte value to fill with when no file is given")
	return cmd
}

func newSignCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sign <disk> <block>",
		Short: "Print the array's signature of a block",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("bad disk %q: %w", args[0], err)
			}
			b, err := strconv.ParseUint(args[1], 10, 32)
			if err != nil {
				return fmt.Errorf("bad block %q: %w", args[1], err)
			}
			s, err := openSession(false)
			if err != nil {
				return err
			}
			sig, err := s.vol.Sign(uint32(d), uint32(b))
			cerr := s.close()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d %d %x\n", d, b, sig)
			return cerr
		},
	}
}

// bench runs a random mix of reads and writes over the first span bytes
// of the volume and checks every read against a shadow copy.
type bench struct {
	nops   int
	seed   int64
	span   uint32
	wratio float64
}

func (b *bench) run(vol *mdadm.Volume) (nread int, nwrite int, err error) {
	rnd := rand.New(rand.NewSource(b.seed))
	shadow, err := readRange(vol, 0, b.span)
	if err != nil {
		return 0, 0, err
	}
	for i := 0; i < b.nops; i++ {
		n := 1 + uint32(rnd.Intn(int(mdadm.MAXIO)))
		if n > b.span {
			n = b.span
		}
		start := uint32(rnd.Intn(int(b.span - n + 1)))
		if rnd.Float64() < b.wratio {
			data := make([]byte, n)
			rnd.Read(data)
			if _, err := vol.Write(start, n, data); err != nil {
				return nread, nwrite, err
			}
			copy(shadow[start:], data)
			nwrite++
		} else {
			data := make([]byte, n)
			if _, err := vol.Read(start, n, data); err != nil {
				return nread, nwrite, err
			}
			for j := range data {
				if data[j] != shadow[start+uint32(j)] {
					return nread, nwrite, fmt.Errorf("read at %d: byte %d is %#x, want %#x",
						start, j, data[j], shadow[start+uint32(j)])
				}
			}
			nread++
		}
	}
	return nread, nwrite, nil
}

func newBenchCmd() *cobra.Command {
	b := &bench{}
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run a random verified read/write workload",
		RunE: func(cmd *cobra.Command, args []string) error {
			if b.span == 0 || b.span > jbod.VolumeSize {
				return fmt.Errorf("span must be in 1..%d", jbod.VolumeSize)
			}
			s, err := openSession(true)
			if err != nil {
				return err
			}
			nread, nwrite, err := b.run(s.vol)
			if s.cache.Enabled() {
				s.cache.WriteHitRate(cmd.OutOrStdout())
			}
			cerr := s.close()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d reads, %d writes verified\n", nread, nwrite)
			return cerr
		},
	}
	cmd.Flags().IntVar(&b.nops, "ops", 10000, "number of operations")
	cmd.Flags().Int64Var(&b.seed, "seed", 1, "random seed")
	cmd.Flags().Uint32Var(&b.span, "span", 64*jbod.BlockSize, "bytes of the volume to exercise")
	cmd.Flags().Float64Var(&b.wratio, "writes", 0.3, "fraction of operations that write")
	return cmd
}
