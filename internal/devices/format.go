package devices

import (
	"fmt"

	"hw5800/internal/hw5800"
)

const (
	bitDoorOpen   = 0x20
	bitMotionTrip = 0x80
	bitToggle     = 0x40
)

func yesNo(bits, mask uint8) string {
	if bits&mask != 0 {
		return "y"
	}
	return "n"
}

// FormatStatus renders a decoded Status as the JSON payload its device
// type's downstream consumer expects:
//
//	Door:    {"open":"y|n","tog":"y|n","b":"HH"}
//	Motion:  {"motion":"y|n","tog":"y|n","b":"HH"}
//	Unknown: {"b":"HH"}
//
// b is always the full status byte as two uppercase hex digits.
func FormatStatus(status hw5800.Status, deviceType Type) []byte {
	bits := status.Bits()

	var s string
	switch deviceType {
	case Door:
		s = fmt.Sprintf(`{"open":"%s","tog":"%s","b":"%02X"}`,
			yesNo(bits, bitDoorOpen), yesNo(bits, bitToggle), bits)
	case Motion:
		s = fmt.Sprintf(`{"motion":"%s","tog":"%s","b":"%02X"}`,
			yesNo(bits, bitMotionTrip), yesNo(bits, bitToggle), bits)
	default:
		s = fmt.Sprintf(`{"b":"%02X"}`, bits)
	}
	return []byte(s)
}
