// Package split computes the piece plan for oversized audio payloads.
//
// Remote transcription backends cap the request size, so a large recording is
// cut into byte ranges and each range is submitted as its own call. Many
// streaming audio containers keep required decode metadata at the start of
// the file; a truncated middle segment is undecodable without it, so every
// piece after the first is submitted with the payload's leading header bytes
// prepended.
//
// The plan is a pure function of the payload size and the two limits. It is
// never persisted: retry addressing recomputes it, which is safe because a
// recording's payload is immutable after creation.
package split

// Default limits for a single transcription call.
const (
	// DefaultMaxPieceSize is the largest payload submitted in one call.
	DefaultMaxPieceSize = 10 << 20 // 10 MiB
	// DefaultHeaderSize is the container header prepended to pieces after
	// the first.
	DefaultHeaderSize = 10 << 10 // 10 KiB
)

// Piece is one byte range of a payload.
type Piece struct {
	// Index is the piece's position in the plan.
	Index int
	// Start is the inclusive start offset within the payload.
	Start int64
	// End is the exclusive end offset within the payload.
	End int64
}

// Len returns the number of payload bytes the piece covers, excluding any
// prepended header.
func (p Piece) Len() int64 { return p.End - p.Start }

// Limits bounds the size of a single submission.
type Limits struct {
	MaxPieceSize int64
	HeaderSize   int64
}

// DefaultLimits returns the built-in submission limits.
func DefaultLimits() Limits {
	return Limits{
		MaxPieceSize: DefaultMaxPieceSize,
		HeaderSize:   DefaultHeaderSize,
	}
}

// Plan computes the ordered piece list for a payload of totalSize bytes.
//
// A payload that fits in one call yields a single piece covering the whole
// range. Otherwise pieces advance by MaxPieceSize-HeaderSize so that each
// submission (header + range) stays within MaxPieceSize. Piece ranges are
// contiguous, non-overlapping, and cover [0, totalSize) exactly.
func Plan(totalSize int64, lim Limits) []Piece {
	if totalSize <= lim.MaxPieceSize {
		return []Piece{{Index: 0, Start: 0, End: totalSize}}
	}

	step := lim.MaxPieceSize - lim.HeaderSize
	count := (totalSize - lim.HeaderSize + step - 1) / step

	pieces := make([]Piece, 0, count)
	for i := int64(0); i < count; i++ {
		start := i * step
		end := start + step
		if end > totalSize {
			end = totalSize
		}
		pieces = append(pieces, Piece{Index: int(i), Start: start, End: end})
	}
	return pieces
}

// SubmissionBytes builds the bytes actually sent for a piece. The first piece
// contains the container header natively and is submitted as-is; later pieces
// get the payload's leading HeaderSize bytes prepended.
func SubmissionBytes(payload []byte, p Piece, lim Limits) []byte {
	if p.Index == 0 {
		return payload[p.Start:p.End]
	}
	header := lim.HeaderSize
	if header > int64(len(payload)) {
		header = int64(len(payload))
	}
	out := make([]byte, 0, header+p.Len())
	out = append(out, payload[:header]...)
	out = append(out, payload[p.Start:p.End]...)
	return out
}
