package jbod

import "fmt"

const (
	NumDisks         uint32 = 16
	DiskSize         uint32 = 65536 // NumBlocksPerDisk * BlockSize
	BlockSize        uint32 = 256
	NumBlocksPerDisk uint32 = 256

	// VolumeSize is the size of the linear address space over all disks.
	VolumeSize uint32 = NumDisks * DiskSize
)

type Cmd uint32

const (
	CMD_MOUNT                   Cmd = 0x00
	CMD_UNMOUNT                 Cmd = 0x01
	CMD_SEEK_TO_DISK            Cmd = 0x02
	CMD_SEEK_TO_BLOCK           Cmd = 0x03
	CMD_READ_BLOCK              Cmd = 0x04
	CMD_WRITE_BLOCK             Cmd = 0x05
	CMD_SIGN_BLOCK              Cmd = 0x06
	CMD_RESERVED                Cmd = 0x07
	CMD_WRITE_PERMISSION        Cmd = 0x08
	CMD_REVOKE_WRITE_PERMISSION Cmd = 0x09
	NUM_CMDS                        = 10
)

var cmdNames = []string{
	"MOUNT",
	"UNMOUNT",
	"SEEK_TO_DISK",
	"SEEK_TO_BLOCK",
	"READ_BLOCK",
	"WRITE_BLOCK",
	"SIGN_BLOCK",
	"RESERVED",
	"WRITE_PERMISSION",
	"REVOKE_WRITE_PERMISSION",
}

// CmdNames lists the command names indexed by Cmd.
func CmdNames() []string {
	return append([]string(nil), cmdNames...)
}

func (c Cmd) String() string {
	if uint32(c) < NUM_CMDS {
		return cmdNames[c]
	}
	return fmt.Sprintf("CMD(%d)", uint32(c))
}

// Errno is the array's error space. The zero value is not an error and
// is never returned as one.
type Errno uint32

const (
	NO_ERROR Errno = iota
	UNMOUNTED
	ALREADY_MOUNTED
	ALREADY_UNMOUNTED
	CACHELOAD_FAIL
	CACHEWRITE_FAIL
	BAD_CMD
	BAD_DISK_NUM
	BAD_BLOCK_NUM
	BAD_READ
	BAD_WRITE
	WRITE_PERMISSION_ALREADY_GRANTED
	WRITE_PERMISSION_ALREADY_REVOKED
	NUM_ERRNOS
)

var errnoMsgs = []string{
	"no error",
	"jbod is unmounted",
	"jbod is already mounted",
	"jbod is already unmounted",
	"could not load cache",
	"could not write cache",
	"bad command",
	"bad disk number",
	"bad block number",
	"bad read buffer",
	"bad write buffer",
	"write permission already granted",
	"write permission already revoked",
}

func (e Errno) Error() string {
	if e < NUM_ERRNOS {
		return "jbod: " + errnoMsgs[e]
	}
	return fmt.Sprintf("jbod: errno %d", uint32(e))
}

// Device is the array's single entry point. op is an encoded Op; block is
// a BlockSize buffer for commands that transfer data and nil otherwise.
// A nil return is success; failures are Errno values.
type Device interface {
	Operation(op uint32, block []byte) error
}
