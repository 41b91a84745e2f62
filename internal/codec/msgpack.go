package codec

import (
	"fmt"
	"os"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/jittakal/bufstore/pkg/codec"
	"github.com/jittakal/bufstore/pkg/sample"
)

// Ensure implementation satisfies interface at compile time.
var _ codec.Codec = (*MsgPackCodec)(nil)

// MsgPackCodec implements codec.Codec for MessagePack binary snapshots.
type MsgPackCodec struct{}

// NewMsgPackCodec creates a new MessagePack codec.
func NewMsgPackCodec() *MsgPackCodec {
	return &MsgPackCodec{}
}

// Encode writes a snapshot to a MessagePack file.
func (c *MsgPackCodec) Encode(filePath string, snap *sample.Snapshot) (*sample.FileStats, error) {
	data, err := msgpack.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	return &sample.FileStats{
		RecordCount:    len(snap.Values),
		SizeBytes:      int64(len(data)),
		FirstWriteTime: time.Now(),
		LastWriteTime:  time.Now(),
	}, nil
}

// Format returns the file format.
func (c *MsgPackCodec) Format() sample.Format {
	return sample.FormatMsgPack
}

// FileExtension returns the file extension.
func (c *MsgPackCodec) FileExtension() string {
	return ".msgpack"
}
