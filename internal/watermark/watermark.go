// Package watermark frames provenance metadata inside a plaintext payload
// before it is encrypted:
//
//	u32BE(len(meta)) || meta (JSON, UTF-8) || content
//
// The metadata travels through encryption and is only recoverable after
// decryption. Content may be arbitrary binary data.
package watermark

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/dmitrijs2005/sealvault/internal/common"
)

const prefixSize = 4

// Record is a decoded watermark. Nested values follow encoding/json rules
// (objects become map[string]any, numbers float64).
type Record = map[string]any

// Keys used in provenance records.
const (
	KeyOwnerID   = "ownerId"
	KeyUsername  = "username"
	KeyTimestamp = "timestamp"
	KeyMetadata  = "metadata"
)

// Provenance builds the standard ownership record stamped on uploads.
// extra is attached under "metadata" when non-empty.
func Provenance(ownerID, username string, at time.Time, extra map[string]any) Record {
	r := Record{
		KeyOwnerID:   ownerID,
		KeyUsername:  username,
		KeyTimestamp: at.UTC().Format(time.RFC3339Nano),
	}
	if len(extra) > 0 {
		r[KeyMetadata] = extra
	}
	return r
}

// Embed prepends the serialized watermark to content.
func Embed(content []byte, wm any) ([]byte, error) {
	meta, err := json.Marshal(wm)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrSerialization, err)
	}
	if uint64(len(meta)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: watermark too large", common.ErrValidation)
	}

	frame := make([]byte, prefixSize, prefixSize+len(meta)+len(content))
	binary.BigEndian.PutUint32(frame, uint32(len(meta)))
	frame = append(frame, meta...)
	frame = append(frame, content...)

	return frame, nil
}

// Extract splits a frame back into content and watermark.
//
// A broken watermark never blocks content recovery: the returned content is
// always usable and the error, if any, wraps common.ErrSerialization. When
// the length prefix itself is unusable the whole frame is returned as
// content; when only the JSON is bad, content is whatever follows the
// metadata region.
func Extract(frame []byte) (content []byte, wm Record, err error) {
	if len(frame) < prefixSize {
		return frame, nil, fmt.Errorf("%w: frame shorter than length prefix", common.ErrSerialization)
	}

	n := uint64(binary.BigEndian.Uint32(frame))
	if n > uint64(len(frame)-prefixSize) {
		return frame, nil, fmt.Errorf("%w: length prefix %d exceeds frame", common.ErrSerialization, n)
	}

	end := prefixSize + int(n)
	content = frame[end:]

	if err := json.Unmarshal(frame[prefixSize:end], &wm); err != nil {
		return content, nil, fmt.Errorf("%w: %v", common.ErrSerialization, err)
	}

	return content, wm, nil
}
