// Package decode converts the raw byte stream received from the Roku
// debugger into text that is safe to render on the output window and
// to diff across transcript runs.
package decode

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxRenderable is the highest code point rendered as-is. The Consolas
// console font covers the first 1300 Unicode code points; everything
// above it is escaped as \uhhhh tokens.
const MaxRenderable = 0x513

// printable marks the ASCII bytes that pass through unescaped. TAB, LF
// and CR are the only control codes the console renders natively; the
// rest of C0 and DEL are escaped as \xhh.
var printable = [128]bool{}

func init() {
	printable[0x09] = true // TAB
	printable[0x0a] = true // LF
	printable[0x0d] = true // CR
	for b := 0x20; b <= 0x7e; b++ {
		printable[b] = true
	}
}

// Decoder turns incoming byte chunks into display-ready text. It is
// stateless across chunks except for an incomplete trailing UTF-8
// sequence, which is withheld and prepended to the next chunk.
//
// Decode never fails: every byte sequence maps to some output. Invalid
// UTF-8 bytes are escaped as \xhh, one token per raw byte.
type Decoder struct {
	trail []byte
}

// NewDecoder creates a decoder with no buffered state.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode converts one received chunk into display text, buffering any
// partial multi-byte sequence at the end of the chunk for the next call.
func (d *Decoder) Decode(chunk []byte) string {
	if len(d.trail) > 0 {
		chunk = append(d.trail, chunk...)
		d.trail = nil
	}

	// Strip an incomplete trailing UTF-8 sequence so a code point
	// split across socket reads is not escaped as garbage bytes.
	if n := incompleteTail(chunk); n > 0 {
		d.trail = append([]byte(nil), chunk[len(chunk)-n:]...)
		chunk = chunk[:len(chunk)-n]
	}

	return format(chunk)
}

// Flush escapes any still-buffered partial sequence. Called at stream
// end, when no continuation bytes can arrive anymore.
func (d *Decoder) Flush() string {
	if len(d.trail) == 0 {
		return ""
	}
	trail := d.trail
	d.trail = nil
	return format(trail)
}

// Pending reports how many bytes are withheld awaiting continuation.
func (d *Decoder) Pending() int {
	return len(d.trail)
}

// incompleteTail returns the length of an incomplete UTF-8 sequence at
// the end of p, or 0 if p ends on a sequence boundary. Continuation
// bytes have the form 10xxxxxx; the lead byte's high bits announce how
// many continuations must follow.
func incompleteTail(p []byte) int {
	// Count trailing continuation bytes.
	i := len(p)
	for i > 0 && p[i-1]&0xc0 == 0x80 {
		i--
	}
	nCont := len(p) - i
	if i == 0 {
		// Chunk is nothing but continuation bytes. Broken input;
		// hold it all in case a lead byte was split off upstream.
		return len(p)
	}

	lead := p[i-1]
	var want int
	switch {
	case lead>>5 == 0b110:
		want = 1
	case lead>>4 == 0b1110:
		want = 2
	case lead>>3 == 0b11110:
		want = 3
	default:
		// ASCII or a stray byte; nothing is pending.
		return 0
	}

	if nCont < want {
		return nCont + 1 // continuations plus their lead byte
	}
	return 0
}

// format applies the escaping policy to a complete byte sequence.
//
// Three-way branch: printable code points up to MaxRenderable pass
// through; higher code points become \uhhhh tokens (two for a
// surrogate pair); escaped control bytes and invalid UTF-8 become \xhh.
func format(p []byte) string {
	var sb strings.Builder
	sb.Grow(len(p))

	for len(p) > 0 {
		r, size := utf8.DecodeRune(p)
		if r == utf8.RuneError && size == 1 {
			// Not valid UTF-8; escape the raw byte.
			fmt.Fprintf(&sb, `\x%02x`, p[0])
			p = p[1:]
			continue
		}
		sb.WriteString(EscapeRune(r))
		p = p[size:]
	}

	return sb.String()
}

// EscapeRune renders a single code point under the escaping policy.
func EscapeRune(r rune) string {
	switch {
	case r < 0x80:
		if printable[r] {
			return string(r)
		}
		return fmt.Sprintf(`\x%02x`, r)
	case r <= MaxRenderable:
		return string(r)
	case r <= 0xffff:
		return fmt.Sprintf(`\u%04x`, r)
	case r <= 0x10ffff:
		hi, lo := surrogatePair(r)
		return fmt.Sprintf(`\u%04x\u%04x`, hi, lo)
	default:
		// Unreachable for runes produced by utf8.DecodeRune.
		return string(utf8.RuneError)
	}
}

// surrogatePair splits an astral code point into its UTF-16 code units
// (RFC 2781 section 2.1).
func surrogatePair(r rune) (hi, lo uint16) {
	v := uint32(r) - 0x10000
	hi = uint16(0xd800 + (v>>10)&0x3ff)
	lo = uint16(0xdc00 + v&0x3ff)
	return hi, lo
}

// isPrintableByte reports whether an ASCII byte passes through the
// decoder unescaped.
func isPrintableByte(b byte) bool {
	return b < 0x80 && printable[b]
}
