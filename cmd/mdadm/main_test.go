package main

import (
	"bytes"
	"encoding/hex"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mit-pdos/go-jbod/jbod"
)

func run(t *testing.T, args ...string) string {
	root := newRootCmd()
	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetArgs(args)
	require.NoError(t, root.Execute())
	return out.String()
}

func TestWriteReadImage(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "jbod.img")
	in := filepath.Join(dir, "in")
	data := make([]byte, 3000)
	for i := range data {
		data[i] = byte(i * 7)
	}
	require.NoError(t, ioutil.WriteFile(in, data, 0644))

	out := run(t, "write", "--disk", img, "--cache", "4", "--addr", "65000", "--in", in)
	assert.Contains(t, out, "wrote 3000 bytes at 65000")

	got := filepath.Join(dir, "out")
	run(t, "read", "--disk", img, "--addr", "65000", "--len", "3000", "--out", got)
	b, err := ioutil.ReadFile(got)
	require.NoError(t, err)
	assert.Equal(t, data, b)

	out = run(t, "read", "--disk", img, "--addr", "65000", "--len", "4")
	assert.Contains(t, out, "00 07 0e 15")
}

func TestSignCmd(t *testing.T) {
	img := filepath.Join(t.TempDir(), "jbod.img")
	run(t, "write", "--disk", img, "--addr", "0", "--len", "256", "--fill", "9")
	out := run(t, "sign", "--disk", img, "0", "0")
	blk := bytes.Repeat([]byte{9}, int(jbod.BlockSize))
	assert.Contains(t, out, "0 0 ")
	assert.Contains(t, out, hex.EncodeToString(jbod.Signature(blk)))
}

func TestBench(t *testing.T) {
	out := run(t, "bench", "--ops", "500", "--cache", "8", "--span", "4096")
	assert.Contains(t, out, "hit rate")
	assert.Contains(t, out, "verified")

	out = run(t, "bench", "--ops", "200", "--span", "100", "--writes", "0.5")
	assert.Contains(t, out, "verified")
}

func TestBadSpan(t *testing.T) {
	root := newRootCmd()
	root.SetOut(new(bytes.Buffer))
	root.SetArgs([]string{"bench", "--span", "0"})
	assert.Error(t, root.Execute())
}
