// Package tm1637 controls a TM1637 4-digit 7-segment LED display via two GPIO lines.
//
// The TM1637 is a LED driver with a keyboard scan interface found on the cheap
// "4-Digit LED Display" modules, often with a clock colon between digits 2 and 3.
// It does not speak I²C or SPI: the driver bit-bangs its two wire protocol on any
// pair of periph.io GPIO pins.
//
// # Display Characteristics
//
// - 4 addressable positions (0-3), 7 segments each
// - Colon wired to bit 7 of position 1
// - 8 brightness levels (0-7) and an on/off switch
// - Digits, letters (approximated) and - = ' , _ space
//
// # Hardware Connection
//
// Connect the module to two free GPIO pins:
//
//	Module Pin → System Pin
//	GND        → GND
//	VCC        → 3.3V or 5V
//	CLK        → GPIO (any available pin)
//	DIO        → GPIO (any available pin, must support input)
//
// The module carries pull-up resistors on both lines.
//
// # Basic Usage
//
//	package main
//
//	import (
//		"periph.io/x/conn/v3/gpio/gpioreg"
//		"periph.io/x/devices/v3/tm1637"
//		"periph.io/x/host/v3"
//	)
//
//	func main() {
//		// Initialize periph.io
//		host.Init()
//
//		dev, _ := tm1637.New(gpioreg.ByName("GPIO23"), gpioreg.ByName("GPIO24"), nil)
//		defer dev.Halt()
//
//		dev.DisplayColon(true)
//		dev.DisplayString("1234")
//	}
//
// # Text and Numbers
//
// DisplayString shows the first four characters of a string, blank padded:
//
//	dev.DisplayString("ab")   // "ab  "
//	dev.DisplayString("help") // "HELP" as far as 7 segments allow
//
// DisplayInteger shows a right-justified number in [-999, 9999]. Values outside
// the range are not errors, they render fixed markers:
//
//	dev.DisplayInteger(42)    // "  42"
//	dev.DisplayInteger(-314)  // "-314"
//	dev.DisplayInteger(10000) // "E999"
//	dev.DisplayInteger(-1000) // "E-99"
//
// Characters with no 7-segment form are shown blank and reported with
// ErrUnsupportedChar.
//
// # Colon
//
// The colon state is kept by the driver and survives character writes to
// position 1:
//
//	dev.DisplayColon(true)
//	dev.DisplayChar(1, '5') // '5' with colon
//
// # Raw Segments
//
// Patterns from the segment package can be written directly, one position at a
// time or all four in one auto-increment transfer:
//
//	dev.DisplaySegments(0, segment.SegA|segment.SegD)
//	dev.WriteSegments([]segment.Pattern{0x3F, 0x06 | segment.Colon, 0x5B, 0x4F})
//
// # Acknowledge
//
// The controller acknowledges every byte. A missing acknowledge usually means a
// disconnected module or a wrong pin and is returned as ErrNoAck after the
// transfer completes. The rest of the write is still sent, so a display that
// does not acknowledge gets the same wire traffic as with Opts.IgnoreAck, which
// logs the failures at debug level instead of returning them.
//
// # Concurrency
//
// A Dev must be driven from one goroutine. Overlapping calls fail with ErrBusy
// rather than interleaving wire sequences. The getters (Colon, Enabled,
// Brightness, String) are safe to call from any goroutine.
//
// # Datasheet
//
// https://www.mcielectronics.cl/website_MCI/static/documents/Datasheet_TM1637.pdf
package tm1637
