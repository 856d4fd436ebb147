package ws

import "errors"

// ProtocolError groups errors raised by frame validity checks.
type ProtocolError error

// Errors used by CheckHeader.
var (
	ErrProtocolOpCodeReserved         = ProtocolError(errors.New("ws: use of reserved op code"))
	ErrProtocolControlPayloadOverflow = ProtocolError(errors.New("ws: control frame payload limit exceeded"))
	ErrProtocolControlNotFinal        = ProtocolError(errors.New("ws: control frame is not final"))
	ErrProtocolNonZeroRsv             = ProtocolError(errors.New("ws: non-zero rsv bits with no extension negotiated"))
)

// CheckHeader checks that h is a header this engine can act on.
//
// No extension is ever negotiated, so any RSV bit is a fault. Masking
// is deliberately not checked in either direction: a server expects
// client frames masked but decodes unmasked ones as well.
func CheckHeader(h Header) error {
	switch {
	case h.OpCode.IsReserved():
		return ErrProtocolOpCodeReserved
	case h.OpCode.IsControl() && h.Length > MaxControlFramePayloadSize:
		return ErrProtocolControlPayloadOverflow
	case h.OpCode.IsControl() && !h.Fin:
		return ErrProtocolControlNotFinal
	case h.Rsv != 0:
		return ErrProtocolNonZeroRsv
	}
	return nil
}
