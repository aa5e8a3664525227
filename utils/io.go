package utils

import (
	"bytes"
	"io"
	"math"
	"os"
	"path/filepath"
	"unsafe"

	"github.com/pkg/errors"
)

func init() {
	checkCompiler()
}

// Enforces a 64bit machine due to assumptions about size of ints.
func checkCompiler() {
	myInt := int(math.MaxInt64) // Shouldn't compile on a 32 bit system.
	myInt64 := int64(math.MaxInt64)
	if uint64(myInt) != uint64(myInt64) {
		panic("Must be on 64 bit system.")
	}
}

var ErrLineTooLong = errors.New("line exceeds read buffer")

func OpenFile(path string) (*os.File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file: "+path)
	}
	return file, nil
}

// CreateFile creates (or truncates) path, creating missing parent directories.
func CreateFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create directory for: "+path)
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create file: "+path)
	}
	return file, nil
}

// Parses a base 10 unsigned integer. ok is false on empty input, a non-digit, or overflow of uint32.
func ToUint32(buf string) (n uint32, ok bool) {
	if len(buf) == 0 {
		return 0, false
	}
	acc := uint64(0)
	for i := 0; i < len(buf); i++ {
		d := buf[i] - '0'
		if d > 9 {
			return 0, false
		}
		acc = acc*10 + uint64(d)
		if acc > math.MaxUint32 {
			return 0, false
		}
	}
	return uint32(acc), true
}

// Hides a pointer from escape analysis.
//
//go:nosplit
func noescape(p unsafe.Pointer) unsafe.Pointer {
	x := uintptr(p)
	return unsafe.Pointer(x ^ 0)
}

// var asciiSpace = [256]uint8{'\t': 1, '\n': 1, '\v': 1, '\f': 1, '\r': 1, ' ': 1}
const SPACE_MASK = 1<<9 | 1<<10 | 1<<11 | 1<<12 | 1<<13 | 1<<32

func isByteSpace(b byte) bool {
	return ((SPACE_MASK & (1 << b)) != 0)
}

// ASCII only, no re-allocation. Fields point into byteBuff, so they are only valid until the buffer is reused.
// Returns the number of fields found; fields beyond len(fieldBuff) are counted but not stored.
func FastFields(fieldBuff []string, byteBuff []byte) (count int) {
	i := 0
	for {
		for i < len(byteBuff) && isByteSpace(byteBuff[i]) {
			i++
		}
		if i >= len(byteBuff) {
			return count
		}
		fieldStart := i
		for i < len(byteBuff) && !isByteSpace(byteBuff[i]) {
			i++
		}
		if count < len(fieldBuff) {
			b := byteBuff[fieldStart:i]
			fieldBuff[count] = *(*string)(noescape(unsafe.Pointer(&b)))
		}
		count++
	}
}

// Line reader over a fixed buffer; lines are views into Buf.
type FastFileLines struct {
	Buf   []byte
	Start int // First non-processed byte in buf.
	End   int // End of data in buf.
}

func NewFastFileLines(size int) *FastFileLines {
	return &FastFileLines{Buf: make([]byte, size)}
}

// Advance to the next line. Returns (nil, io.EOF) when the input is exhausted.
func (s *FastFileLines) Scan(r io.Reader) ([]byte, error) {
	var err error
	for { // Until we have a token.
		if s.End > s.Start { // See if we can get a token with what we already have.
			if i := bytes.IndexByte(s.Buf[s.Start:s.End], '\n'); i >= 0 {
				token := s.Buf[s.Start : s.Start+i]
				s.Start += i + 1
				return token, nil
			}
		}
		// We cannot generate a token with what we are holding.
		if err != nil {
			if err != io.EOF {
				return nil, err
			}
			if s.End > s.Start { // Last line without a trailing newline.
				i := s.Start
				s.Start = s.End
				return s.Buf[i:s.End], nil
			}
			return nil, io.EOF
		}
		// Must read more data. Shift data to beginning of buffer.
		if s.Start > 0 {
			copy(s.Buf, s.Buf[s.Start:s.End])
			s.End -= s.Start
			s.Start = 0
		}
		if s.End == len(s.Buf) {
			return nil, ErrLineTooLong
		}
		var n int
		for loop := 0; ; loop++ {
			n, err = r.Read(s.Buf[s.End:])
			s.End += n
			if n > 0 || err != nil {
				break
			}
			if loop > 100 {
				return nil, io.ErrNoProgress
			}
		}
	}
}
