package tm1637

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// bus bit-bangs the TM1637 two wire protocol on a clock and a data pin.
//
// The protocol looks like I²C without addresses: bytes are shifted LSB first,
// the receiver samples data on the rising clock edge and pulls data low during
// the ninth clock to acknowledge.
//
// A bus is not safe for concurrent use; Dev serializes access.
type bus struct {
	clk   gpio.PinOut
	dio   gpio.PinIO
	delay time.Duration
	sleep func(time.Duration)
}

// wait holds the lines for one half clock period.
func (b *bus) wait() {
	if b.delay > 0 {
		b.sleep(b.delay)
	}
}

func (b *bus) clkOut(l gpio.Level) error {
	if err := b.clk.Out(l); err != nil {
		return fmt.Errorf("tm1637: clock pin %s: %w", b.clk, err)
	}
	return nil
}

func (b *bus) dioOut(l gpio.Level) error {
	if err := b.dio.Out(l); err != nil {
		return fmt.Errorf("tm1637: data pin %s: %w", b.dio, err)
	}
	return nil
}

// reset drives both lines low as outputs.
func (b *bus) reset() error {
	if err := b.dioOut(gpio.Low); err != nil {
		return err
	}
	return b.clkOut(gpio.Low)
}

// start signals the beginning of a transfer: data falls while clock is high.
func (b *bus) start() error {
	if err := b.dioOut(gpio.High); err != nil {
		return err
	}
	if err := b.clkOut(gpio.High); err != nil {
		return err
	}
	b.wait()
	return b.dioOut(gpio.Low)
}

// stop signals the end of a transfer: data rises while clock is high.
func (b *bus) stop() error {
	if err := b.clkOut(gpio.Low); err != nil {
		return err
	}
	b.wait()
	if err := b.dioOut(gpio.Low); err != nil {
		return err
	}
	b.wait()
	if err := b.clkOut(gpio.High); err != nil {
		return err
	}
	b.wait()
	return b.dioOut(gpio.High)
}

// writeByte shifts v out LSB first and clocks the acknowledge bit.
// The data bits are sent the same way whether or not the receiver acknowledges.
func (b *bus) writeByte(v byte) (ack bool, err error) {
	for i := 0; i < 8; i, v = i+1, v>>1 {
		if err := b.clkOut(gpio.Low); err != nil {
			return false, err
		}
		b.wait()
		if err := b.dioOut(gpio.Level(v&0x01 != 0)); err != nil {
			return false, err
		}
		if err := b.clkOut(gpio.High); err != nil {
			return false, err
		}
		b.wait()
	}

	// Ninth clock: release data and let the receiver pull it low.
	if err := b.clkOut(gpio.Low); err != nil {
		return false, err
	}
	if err := b.dio.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return false, fmt.Errorf("tm1637: data pin %s: %w", b.dio, err)
	}
	b.wait()

	ack = b.dio.Read() == gpio.Low
	level := gpio.High
	if ack {
		level = gpio.Low
		if err := b.dioOut(level); err != nil {
			return false, err
		}
	}
	b.wait()

	if err := b.clkOut(gpio.High); err != nil {
		return ack, err
	}
	b.wait()
	if err := b.clkOut(gpio.Low); err != nil {
		return ack, err
	}
	b.wait()

	// Back to output at the level the line already holds.
	return ack, b.dioOut(level)
}

// sendCommand sends v as a single byte transaction.
func (b *bus) sendCommand(v byte) (ack bool, err error) {
	if err := b.start(); err != nil {
		return false, err
	}
	ack, err = b.writeByte(v)
	if err != nil {
		return ack, err
	}
	return ack, b.stop()
}
