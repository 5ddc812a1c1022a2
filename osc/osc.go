package osc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"
)

const (
	// The time tag value consisting of 63 zero bits followed by a one in the
	// least significant bit is a special case meaning "immediately."
	timeTagImmediate      = uint64(1)
	secondsFrom1900To1970 = 2208988800

	// BundleTag is the OSC-string that opens every bundle.
	BundleTag = "#bundle"

	// bundleHeaderLen covers the padded "#bundle" id and the 8 byte timetag.
	bundleHeaderLen = 16

	// MaxPacketSize is the largest datagram the listener reads.
	MaxPacketSize = 4096
)

// Type tags understood by the decoder.
const (
	TagInt32   byte = 'i'
	TagFloat32 byte = 'f'
)

var bundlePrefix = []byte(BundleTag + "\x00")

// Packet is implemented by everything that can be written to the wire.
type Packet interface {
	MarshalBinary() ([]byte, error)
}

// Message is a decoded OSC message reduced to its address and first
// numeric argument. Raw holds the argument's 32 bits as they arrived, after
// big-endian reassembly.
type Message struct {
	Address string
	Tag     byte
	Raw     uint32
}

// Bundle is an OSC bundle: a timetag followed by size-prefixed elements.
type Bundle struct {
	Timetag  Timetag
	Elements []Packet
}

// Timetag represents an OSC Time Tag.
// Time tags are represented by a 64 bit fixed point number. The first 32 bits
// specify the number of seconds since midnight on January 1, 1900, and the
// last 32 bits specify fractional parts of a second to a precision of about
// 200 picoseconds. This is the representation used by Internet NTP timestamps.
type Timetag uint64

////
// Message
////

// NewInt returns a message carrying a single int32 argument.
func NewInt(address string, v int32) Message {
	return Message{Address: address, Tag: TagInt32, Raw: uint32(v)}
}

// NewFloat returns a message carrying a single float32 argument.
func NewFloat(address string, v float32) Message {
	return Message{Address: address, Tag: TagFloat32, Raw: math.Float32bits(v)}
}

// Int reinterprets Raw as a two's-complement int32.
func (msg Message) Int() int32 {
	return int32(msg.Raw)
}

// Float reinterprets the bit pattern of Raw as an IEEE-754 float32.
func (msg Message) Float() float32 {
	return math.Float32frombits(msg.Raw)
}

// Value returns the argument as a float64 regardless of its tag.
func (msg Message) Value() float64 {
	if msg.Tag == TagInt32 {
		return float64(msg.Int())
	}
	return float64(msg.Float())
}

// ValueString formats the argument according to its tag.
func (msg Message) ValueString() string {
	switch msg.Tag {
	case TagInt32:
		return fmt.Sprint(msg.Int())
	case TagFloat32:
		return fmt.Sprint(msg.Float())
	default:
		return fmt.Sprintf("0x%08x", msg.Raw)
	}
}

// String formats the message like "/address ,i 9".
func (msg Message) String() string {
	return fmt.Sprintf("%s ,%c %s", msg.Address, msg.Tag, msg.ValueString())
}

// MarshalBinary serializes the message as:
// 1. OSC Address Pattern
// 2. OSC Type Tag String
// 3. The single 4 byte argument
func (msg Message) MarshalBinary() ([]byte, error) {
	if msg.Tag != TagInt32 && msg.Tag != TagFloat32 {
		return nil, fmt.Errorf("osc: unsupported type tag %q", msg.Tag)
	}
	if msg.Address == "" || msg.Address[0] != '/' {
		return nil, fmt.Errorf("osc: invalid address %q", msg.Address)
	}

	var data = new(bytes.Buffer)
	writePaddedString(msg.Address, data)
	writePaddedString(string([]byte{',', msg.Tag}), data)
	if err := binary.Write(data, binary.BigEndian, msg.Raw); err != nil {
		return nil, err
	}
	return data.Bytes(), nil
}

////
// Bundle
////

// NewBundle returns a bundle scheduled for t. A zero time means "immediately".
func NewBundle(t time.Time) *Bundle {
	if t.IsZero() {
		return &Bundle{Timetag: Timetag(timeTagImmediate)}
	}
	return &Bundle{Timetag: NewTimetag(t)}
}

// Append adds a message or a nested bundle.
func (b *Bundle) Append(p Packet) {
	b.Elements = append(b.Elements, p)
}

// MarshalBinary serializes the bundle with the following format:
// 1. Bundle string: '#bundle'
// 2. OSC timetag
// 3. Length of first OSC bundle element
// 4. First bundle element
// 5. Length of n OSC bundle element
// 6. n bundle element
func (b *Bundle) MarshalBinary() ([]byte, error) {
	var data = new(bytes.Buffer)

	writePaddedString(BundleTag, data)
	if err := binary.Write(data, binary.BigEndian, uint64(b.Timetag)); err != nil {
		return nil, err
	}

	for _, e := range b.Elements {
		buf, err := e.MarshalBinary()
		if err != nil {
			return nil, err
		}
		if err := binary.Write(data, binary.BigEndian, uint32(len(buf))); err != nil {
			return nil, err
		}
		data.Write(buf)
	}

	return data.Bytes(), nil
}

////
// Decoding
////

// Decode splits a raw packet into the messages it carries, in wire order.
// Elements that cannot be decoded are left out; Decode never fails.
func Decode(buf []byte) []Message {
	if !IsBundle(buf) {
		if msg, ok := DecodeMessage(buf); ok {
			return []Message{msg}
		}
		return nil
	}

	var msgs []Message
	pos := bundleHeaderLen
	for pos+4 <= len(buf) {
		size := binary.BigEndian.Uint32(buf[pos : pos+4])
		pos += 4
		if size == 0 || uint64(size) > uint64(len(buf)-pos) {
			break
		}
		end := pos + int(size)
		if msg, ok := DecodeMessage(buf[pos:end]); ok {
			msgs = append(msgs, msg)
		}
		pos = end
	}
	return msgs
}

// IsBundle reports whether buf starts with the null terminated "#bundle" id.
func IsBundle(buf []byte) bool {
	return len(buf) >= len(bundlePrefix) && bytes.Equal(buf[:len(bundlePrefix)], bundlePrefix)
}

// DecodeMessage reads the address and the first argument of a single
// message. ok is false when the buffer is malformed, the leading type tag
// is neither 'i' nor 'f', or the argument is cut short.
func DecodeMessage(buf []byte) (msg Message, ok bool) {
	address, n, ok := readPaddedString(buf)
	if !ok {
		return Message{}, false
	}

	tags, m, ok := readPaddedString(buf[n:])
	if !ok || len(tags) < 2 || tags[0] != ',' {
		return Message{}, false
	}

	tag := tags[1]
	if tag != TagInt32 && tag != TagFloat32 {
		return Message{}, false
	}

	pos := n + m
	if pos+4 > len(buf) {
		return Message{}, false
	}

	return Message{
		Address: address,
		Tag:     tag,
		Raw:     binary.BigEndian.Uint32(buf[pos : pos+4]),
	}, true
}

// TypeTagOffset returns where the type tag block starts for a message whose
// address is addressLen bytes long, not counting its terminator.
func TypeTagOffset(addressLen int) int {
	return addressLen + padBytesNeeded(addressLen)
}

////
// Timetag
////

// NewTimetag converts t to an OSC timetag.
func NewTimetag(t time.Time) Timetag {
	return Timetag(timeToTimetag(t))
}

// Time returns the wall clock time of the timetag.
func (tt Timetag) Time() time.Time {
	return timetagToTime(uint64(tt))
}

// Immediate reports whether the timetag carries the special "now" value.
func (tt Timetag) Immediate() bool {
	return uint64(tt) == timeTagImmediate
}

// BundleTimetag returns the timetag of a bundle packet.
func BundleTimetag(buf []byte) (Timetag, error) {
	if !IsBundle(buf) {
		return 0, errors.New("osc: not a bundle")
	}
	if len(buf) < bundleHeaderLen {
		return 0, errors.New("osc: bundle header truncated")
	}
	return Timetag(binary.BigEndian.Uint64(buf[8:bundleHeaderLen])), nil
}

////
// De/Encoding functions
////

// readPaddedString reads a null terminated string from the start of buf.
// n is the number of bytes consumed including the padding, clamped to
// len(buf) so a string whose padding runs off the end is still usable.
func readPaddedString(buf []byte) (str string, n int, ok bool) {
	end := bytes.IndexByte(buf, 0)
	if end < 0 {
		return "", 0, false
	}
	n = end + padBytesNeeded(end)
	if n > len(buf) {
		n = len(buf)
	}
	return string(buf[:end]), n, true
}

// writePaddedString writes a string with its terminator and padding bytes to
// buff. Returns the number of written bytes.
func writePaddedString(str string, buff *bytes.Buffer) int {
	n, _ := buff.WriteString(str)
	numPadBytes := padBytesNeeded(len(str))
	buff.Write(make([]byte, numPadBytes))
	return n + numPadBytes
}

// padBytesNeeded determines how many bytes, terminator included, follow a
// string of elementLen bytes so the next element starts on a 4 byte boundary.
func padBytesNeeded(elementLen int) int {
	return 4*(elementLen/4+1) - elementLen
}

// timeToTimetag converts the given time to an OSC timetag.
func timeToTimetag(t time.Time) uint64 {
	secs := uint64(secondsFrom1900To1970+t.Unix()) << 32
	frac := (uint64(t.Nanosecond()) << 32) / uint64(time.Second)
	return secs + frac
}

// timetagToTime converts the given timetag to a time object.
func timetagToTime(timetag uint64) time.Time {
	secs := int64(timetag>>32) - secondsFrom1900To1970
	nanos := ((timetag & 0xffffffff) * uint64(time.Second)) >> 32
	return time.Unix(secs, int64(nanos))
}
