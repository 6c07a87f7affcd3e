package packets

import (
	"io"

	"github.com/wardenproxy/warden/internal/protocol/wire"
)

// maxChatStringLen bounds the JSON status blob and disconnect reason
// strings, matching the protocol's generous chat-component string limit.
const maxChatStringLen = 262144

func writeLongString(w io.Writer, s string) error {
	return wire.WriteString(w, s, maxChatStringLen)
}

func readLongString(r io.Reader) (string, error) {
	return wire.ReadString(r, maxChatStringLen)
}

func writeInt64(w io.Writer, v int64) error { return wire.WriteInt64(w, v) }

func readInt64(r io.Reader) (int64, error) { return wire.ReadInt64(r) }
