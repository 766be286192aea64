package hal

import (
	"fmt"

	"go.bug.st/serial"
)

// DefaultBaudRate matches the original reporting link.
const DefaultBaudRate = 115200

// SerialSink bridges the frame transmitter to a real serial port. The OS
// buffers writes, so the sink reports ready as long as the port is open;
// write errors are latched and surfaced via Err.
type SerialSink struct {
	port serial.Port
	err  error
}

// OpenSerialSink opens the named port for frame output.
func OpenSerialSink(name string, baudRate int) (*SerialSink, error) {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	port, err := serial.Open(name, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", name, err)
	}
	return &SerialSink{port: port}, nil
}

// Ready reports whether the sink can accept a byte.
func (s *SerialSink) Ready() bool {
	return s.port != nil && s.err == nil
}

// WriteByte queues one byte on the port.
func (s *SerialSink) WriteByte(b byte) {
	if s.port == nil || s.err != nil {
		return
	}
	if _, err := s.port.Write([]byte{b}); err != nil {
		s.err = fmt.Errorf("serial write failed: %w", err)
	}
}

// Err returns the first write error, if any.
func (s *SerialSink) Err() error { return s.err }

// Close releases the port.
func (s *SerialSink) Close() error {
	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	s.port = nil
	return err
}
