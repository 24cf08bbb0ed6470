// Package haptic drives an external vibration motor controller over a
// serial line. Absence of the hardware is normal: opening falls back to
// a silent no-op sink, and key tracking continues without it.
package haptic

const (
	SOF0 = 0xAA
	SOF1 = 0x55

	CmdStart = 0x20
	CmdStop  = 0x21
)

// Frame is one command to the motor controller. Intensity and sharpness
// are 0..255; the controller maps sharpness to its transient waveform
// bank.
type Frame struct {
	Cmd       byte
	Channel   byte // key index on the controller, one motor zone per key
	Intensity byte
	Sharpness byte
}

// Encode builds the on-wire representation:
//
//	[SOF0][SOF1][LEN][CMD][Channel][Intensity][Sharpness][CKS]
//
// where LEN counts the CMD byte plus payload, and CKS is the xor of LEN,
// CMD and the payload bytes.
func (f Frame) Encode() []byte {
	payload := []byte{f.Channel, f.Intensity, f.Sharpness}
	length := byte(len(payload) + 1)
	cks := length ^ f.Cmd
	for _, b := range payload {
		cks ^= b
	}
	out := []byte{SOF0, SOF1, length, f.Cmd}
	out = append(out, payload...)
	return append(out, cks)
}
