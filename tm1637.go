// Package tm1637 controls a TM1637 4-digit 7-segment LED display controller.
//
// The TM1637 is driven over two GPIO lines (clock and data) with a bit-banged
// protocol. Position 1 carries the colon found on clock-style modules.
//
// See the examples for how to use this package.
package tm1637

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/devices/v3/tm1637/segment"
)

const (
	// Positions is the number of addressable digit positions.
	Positions = 4
	// MaxBrightness is the brightest of the 8 PWM levels.
	MaxBrightness = 7
	// DefaultDelay is the default half clock period of the wire protocol.
	DefaultDelay = 5 * time.Microsecond

	// ColonPosition is the position whose bit 7 drives the colon.
	ColonPosition = 1
)

// Command bytes.
const (
	cmdData    byte = 0x40 // Data command, write with auto-increment address
	cmdAddress byte = 0xC0 // Address command, OR'd with the position
	cmdDisplay byte = 0x80 // Display control, OR'd with displayOn and brightness

	dataFixedAddr byte = 0x04 // Data command flag: fixed address
	displayOn     byte = 0x08 // Display control flag: display on
)

var (
	// ErrNoAck is returned when the controller does not acknowledge a byte.
	ErrNoAck = errors.New("tm1637: no acknowledge")
	// ErrUnsupportedChar is returned when a character has no 7-segment representation.
	ErrUnsupportedChar = errors.New("tm1637: unsupported character")
	// ErrBusy is returned when a call overlaps another call on the same device.
	ErrBusy = errors.New("tm1637: busy")
	// ErrHalted is returned by every operation after Halt.
	ErrHalted = errors.New("tm1637: halted")
)

// Opts is the configuration for the TM1637 display.
type Opts struct {
	// Off starts the display switched off. Segment writes still land in the
	// controller and show once Enable(true) is called.
	Off bool
	// Brightness is the initial PWM level, clamped to [0, MaxBrightness].
	Brightness int
	// Delay is the half clock period (default: DefaultDelay). The TM1637 needs
	// at least a few microseconds; long wires may need more.
	Delay time.Duration
	// IgnoreAck makes missing acknowledges non-fatal. They are logged at debug
	// level instead of returned as ErrNoAck.
	IgnoreAck bool
	// Logger receives debug records (optional).
	Logger *slog.Logger
}

// Dev is the device handle for the TM1637 display.
//
// Dev is not reentrant: the wire sequences are not atomic, so a call that
// overlaps another one fails with ErrBusy instead of corrupting the transfer.
// Colon, Enabled, Brightness and String may be called from any goroutine.
type Dev struct {
	b bus

	// Display control byte: displayOn flag and brightness.
	config byte
	// Last pattern written to position 1 through DisplayChar or DisplayColon.
	// Its bit 7 is the colon state.
	digit1 segment.Pattern
	// Copy of config (low byte) and digit1 (second byte) for the getters.
	state atomic.Uint32

	ignoreAck bool
	log       *slog.Logger

	busy   atomic.Bool
	halted bool
}

// New creates a new TM1637 device on the clock and data pins and initializes it.
//
// Both lines are driven low, the colon is cleared and the display control
// command is sent. The data pin must support input for the acknowledge bit;
// TM1637 modules carry their own pull-up resistors.
//
// opts can be nil to use defaults (display on, maximum brightness).
func New(clk gpio.PinOut, dio gpio.PinIO, opts *Opts) (*Dev, error) {
	return newDev(clk, dio, opts, time.Sleep)
}

func newDev(clk gpio.PinOut, dio gpio.PinIO, opts *Opts, sleep func(time.Duration)) (*Dev, error) {
	if opts == nil {
		opts = &Opts{Brightness: MaxBrightness}
	}
	if clk == nil || dio == nil {
		return nil, errors.New("tm1637: clock and data pins are required")
	}
	if opts.Delay < 0 {
		return nil, errors.New("tm1637: delay must not be negative")
	}

	delay := opts.Delay
	if delay == 0 {
		delay = DefaultDelay
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	d := &Dev{
		b: bus{
			clk:   clk,
			dio:   dio,
			delay: delay,
			sleep: sleep,
		},
		ignoreAck: opts.IgnoreAck,
		log:       logger,
	}

	if err := d.init(!opts.Off, opts.Brightness); err != nil {
		return nil, err
	}
	return d, nil
}

// init drives both lines low, clears the colon and sends the display control.
func (d *Dev) init(enable bool, brightness int) error {
	if err := d.b.reset(); err != nil {
		return err
	}
	if err := d.displaySegments(ColonPosition, segment.Blank); err != nil {
		return err
	}
	d.setDigit1(segment.Blank)
	return d.sendConfig(enable, brightness)
}

// sent reports whether err leaves the transfer on the wire, that is whether
// it is nil or only a missing acknowledge.
func sent(err error) bool {
	return err == nil || errors.Is(err, ErrNoAck)
}

func (d *Dev) publish() {
	d.state.Store(uint32(d.config) | uint32(d.digit1)<<8)
}

func (d *Dev) setDigit1(p segment.Pattern) {
	d.digit1 = p
	d.publish()
}

// lock marks the device busy for the duration of one operation.
func (d *Dev) lock() error {
	if !d.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	if d.halted {
		d.busy.Store(false)
		return ErrHalted
	}
	return nil
}

func (d *Dev) unlock() {
	d.busy.Store(false)
}

// checkAck turns a missing acknowledge for byte v into an error.
func (d *Dev) checkAck(v byte, ack bool) error {
	if ack {
		return nil
	}
	if d.ignoreAck {
		d.log.Debug("tm1637: no acknowledge", "byte", fmt.Sprintf("0x%02X", v))
		return nil
	}
	return fmt.Errorf("%w for byte 0x%02X", ErrNoAck, v)
}

// command sends a single byte command in its own transaction.
func (d *Dev) command(v byte) error {
	ack, err := d.b.sendCommand(v)
	if err != nil {
		return err
	}
	return d.checkAck(v, ack)
}

// transaction sends data between one start and one stop condition.
// All bytes are sent even when one is not acknowledged; the first missing
// acknowledge is reported after the stop condition.
func (d *Dev) transaction(data ...byte) error {
	if err := d.b.start(); err != nil {
		return err
	}
	var nack error
	for _, v := range data {
		ack, err := d.b.writeByte(v)
		if err != nil {
			return err
		}
		if err := d.checkAck(v, ack); err != nil && nack == nil {
			nack = err
		}
	}
	if err := d.b.stop(); err != nil {
		return err
	}
	return nack
}

// sendConfig sends the display control byte and stores it once it is on the
// wire.
func (d *Dev) sendConfig(enable bool, brightness int) error {
	config := byte(clampBrightness(brightness))
	if enable {
		config |= displayOn
	}
	err := d.command(cmdDisplay | config)
	if sent(err) {
		d.config = config
		d.publish()
	}
	return err
}

func clampBrightness(v int) int {
	return min(max(v, 0), MaxBrightness)
}

// displaySegments writes p at position.
func (d *Dev) displaySegments(position int, p segment.Pattern) error {
	return d.write(cmdAddress|byte(position&(Positions-1)), byte(p))
}

// write sends the data command, then data starting with an address command.
// They must be separate transactions. A missing acknowledge on the data
// command does not stop the second one; both are reported.
func (d *Dev) write(data ...byte) error {
	nack := d.command(cmdData)
	if !sent(nack) {
		return nack
	}
	err := d.transaction(data...)
	if !sent(err) {
		return err
	}
	return errors.Join(nack, err)
}

func (d *Dev) displayChar(position int, r rune) error {
	p, ok := segment.Encode(r)
	position &= Positions - 1
	if position == ColonPosition {
		p |= d.digit1 & segment.Colon
	}
	err := d.displaySegments(position, p)
	if !sent(err) {
		return err
	}
	if position == ColonPosition {
		d.setDigit1(p)
	}
	if !ok {
		err = errors.Join(err, fmt.Errorf("%w: %q", ErrUnsupportedChar, r))
	}
	return err
}

func (d *Dev) displayString(s string) error {
	var errs []error
	i := 0
	for _, r := range s {
		if i == Positions {
			break
		}
		if err := d.displayChar(i, r); err != nil {
			if !errors.Is(err, ErrUnsupportedChar) && !errors.Is(err, ErrNoAck) {
				return err
			}
			errs = append(errs, err)
		}
		i++
	}
	for ; i < Positions; i++ {
		if err := d.displayChar(i, ' '); err != nil {
			if !errors.Is(err, ErrNoAck) {
				return err
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DisplaySegments writes a raw segment pattern at position (masked to 0-3).
//
// Raw writes bypass the colon state kept for position 1: a later DisplayChar
// or DisplayColon at position 1 uses the pattern cached by those calls.
func (d *Dev) DisplaySegments(position int, p segment.Pattern) error {
	if err := d.lock(); err != nil {
		return err
	}
	defer d.unlock()
	return d.displaySegments(position, p)
}

// WriteSegments writes up to 4 raw patterns starting at position 0 in a single
// auto-increment transfer. Like DisplaySegments it bypasses the colon state.
func (d *Dev) WriteSegments(p []segment.Pattern) error {
	if len(p) > Positions {
		return fmt.Errorf("tm1637: %d patterns for %d positions", len(p), Positions)
	}
	if err := d.lock(); err != nil {
		return err
	}
	defer d.unlock()
	if len(p) == 0 {
		return nil
	}
	data := make([]byte, 0, len(p)+1)
	data = append(data, cmdAddress)
	for _, v := range p {
		data = append(data, byte(v))
	}
	return d.write(data...)
}

// DisplayChar writes the pattern of r at position (masked to 0-3).
//
// At position 1 the current colon state is kept. A character with no
// representation is shown blank and reported as ErrUnsupportedChar.
func (d *Dev) DisplayChar(position int, r rune) error {
	if err := d.lock(); err != nil {
		return err
	}
	defer d.unlock()
	return d.displayChar(position, r)
}

// DisplayColon turns the colon on or off without changing the character at
// position 1.
func (d *Dev) DisplayColon(on bool) error {
	if err := d.lock(); err != nil {
		return err
	}
	defer d.unlock()
	p := d.digit1 &^ segment.Colon
	if on {
		p |= segment.Colon
	}
	err := d.displaySegments(ColonPosition, p)
	if sent(err) {
		d.setDigit1(p)
	}
	return err
}

// Colon reports the current colon state.
func (d *Dev) Colon() bool {
	return segment.Pattern(d.state.Load() >> 8).HasColon()
}

// DisplayString shows the first 4 characters of s, padding a shorter string
// with blanks. Characters past the fourth are never shown.
//
// All four positions are written even when some characters are unsupported;
// the individual errors are joined.
func (d *Dev) DisplayString(s string) error {
	if err := d.lock(); err != nil {
		return err
	}
	defer d.unlock()
	return d.displayString(s)
}

// DisplayInteger shows n right-justified. Values above 9999 show "E999" and
// values below -999 show "E-99".
func (d *Dev) DisplayInteger(n int) error {
	if err := d.lock(); err != nil {
		return err
	}
	defer d.unlock()
	return d.displayString(FormatInteger(n))
}

// Clear blanks all 4 positions. The colon state is kept for the next
// DisplayChar or DisplayColon.
func (d *Dev) Clear() error {
	if err := d.lock(); err != nil {
		return err
	}
	defer d.unlock()
	for i := 0; i < Positions; i++ {
		if err := d.displaySegments(i, segment.Blank); err != nil {
			return err
		}
	}
	return nil
}

// Enable switches the display on or off, keeping the brightness.
func (d *Dev) Enable(on bool) error {
	if err := d.lock(); err != nil {
		return err
	}
	defer d.unlock()
	return d.sendConfig(on, int(d.config&MaxBrightness))
}

// SetBrightness sets the PWM level (0-7, clamped), keeping the on/off state.
func (d *Dev) SetBrightness(v int) error {
	if err := d.lock(); err != nil {
		return err
	}
	defer d.unlock()
	return d.sendConfig(d.config&displayOn != 0, v)
}

// Enabled reports whether the display is switched on.
func (d *Dev) Enabled() bool {
	return byte(d.state.Load())&displayOn != 0
}

// Brightness returns the current PWM level.
func (d *Dev) Brightness() int {
	return int(byte(d.state.Load()) & MaxBrightness)
}

// Halt switches the display off.
// After calling Halt, every other operation returns ErrHalted. If the off
// command cannot be sent because of a pin error, the device is not halted and
// Halt may be called again.
func (d *Dev) Halt() error {
	if !d.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer d.unlock()
	if d.halted {
		return nil
	}
	err := d.sendConfig(false, int(d.config&MaxBrightness))
	if sent(err) {
		d.halted = true
	}
	return err
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	state := "off"
	if d.Enabled() {
		state = "on"
	}
	return fmt.Sprintf("tm1637.Dev{%s, brightness %d}", state, d.Brightness())
}
