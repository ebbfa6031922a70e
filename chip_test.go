package tm1637

import (
	"strings"
	"testing"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/devices/v3/tm1637/segment"
)

// chip models the receiving side of the wire: it decodes start and stop
// conditions, samples bits on rising clock edges, acknowledges bytes and keeps
// the display registers.
type chip struct {
	clk      gpio.Level
	dio      gpio.Level
	dioInput bool

	// nack disables acknowledges.
	nack bool
	// Errors returned by the fake pins.
	clkErr, dioErr error

	inTx   bool
	bits   int
	cur    byte
	acking bool
	tx     []byte
	txs    [][]byte

	fixedAddr bool
	addr      int
	regs      [8]byte
	config    byte
}

// line returns the data line level as seen on the wire.
func (c *chip) line() gpio.Level {
	if !c.dioInput {
		return c.dio
	}
	if c.acking {
		return gpio.Low
	}
	return gpio.High
}

func (c *chip) setCLK(l gpio.Level) {
	rising := c.clk == gpio.Low && l == gpio.High
	c.clk = l
	if rising && c.inTx {
		c.clock()
	}
}

func (c *chip) setDIO(l gpio.Level, input bool) {
	prev := c.line()
	c.dio, c.dioInput = l, input
	now := c.line()
	if c.clk != gpio.High || prev == now {
		return
	}
	if now == gpio.Low {
		c.inTx, c.bits, c.cur, c.acking, c.tx = true, 0, 0, false, nil
		return
	}
	if c.inTx {
		c.txs = append(c.txs, c.tx)
	}
	c.inTx, c.bits, c.cur, c.acking, c.tx = false, 0, 0, false, nil
}

func (c *chip) clock() {
	if c.bits == 8 {
		c.bits, c.cur, c.acking = 0, 0, false
		return
	}
	if c.line() == gpio.High {
		c.cur |= 1 << c.bits
	}
	c.bits++
	if c.bits == 8 {
		c.tx = append(c.tx, c.cur)
		c.receive(c.cur, len(c.tx) == 1)
		c.acking = !c.nack
	}
}

func (c *chip) receive(b byte, first bool) {
	if !first {
		c.regs[c.addr] = b
		if !c.fixedAddr {
			c.addr = (c.addr + 1) % len(c.regs)
		}
		return
	}
	switch b & 0xC0 {
	case 0x40:
		c.fixedAddr = b&dataFixedAddr != 0
	case 0x80:
		c.config = b & 0x0F
	case 0xC0:
		c.addr = int(b & 0x07)
	}
}

// text decodes positions 0-3.
func (c *chip) text() string {
	var b strings.Builder
	for _, v := range c.regs[:Positions] {
		r, ok := segment.Decode(segment.Pattern(v))
		if !ok {
			r = '?'
		}
		b.WriteRune(r)
	}
	return b.String()
}

type clkPin struct {
	*gpiotest.Pin
	c *chip
}

func (p *clkPin) Out(l gpio.Level) error {
	if p.c.clkErr != nil {
		return p.c.clkErr
	}
	p.c.setCLK(l)
	return nil
}

type dioPin struct {
	*gpiotest.Pin
	c *chip
}

func (p *dioPin) Out(l gpio.Level) error {
	if p.c.dioErr != nil {
		return p.c.dioErr
	}
	p.c.setDIO(l, false)
	return nil
}

func (p *dioPin) In(pull gpio.Pull, edge gpio.Edge) error {
	if p.c.dioErr != nil {
		return p.c.dioErr
	}
	p.c.setDIO(p.c.dio, true)
	return nil
}

func (p *dioPin) Read() gpio.Level {
	return p.c.line()
}

var (
	_ gpio.PinOut = &clkPin{}
	_ gpio.PinIO  = &dioPin{}
)

func newPins() (*chip, *clkPin, *dioPin) {
	c := &chip{}
	return c,
		&clkPin{Pin: &gpiotest.Pin{N: "CLK", Num: 23}, c: c},
		&dioPin{Pin: &gpiotest.Pin{N: "DIO", Num: 24}, c: c}
}

func noSleep(time.Duration) {}

// newTestDev returns an initialized device with the init transactions discarded.
func newTestDev(t *testing.T, opts *Opts) (*Dev, *chip) {
	t.Helper()
	c, clk, dio := newPins()
	d, err := newDev(clk, dio, opts, noSleep)
	if err != nil {
		t.Fatalf("newDev() failed: %v", err)
	}
	c.txs = nil
	return d, c
}
