package serial

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"time"

	"aeroponic_tower/internal/logger"
	"aeroponic_tower/internal/service"
)

// ReconnectDelay is the pause between losing the port and reopening it.
const ReconnectDelay = time.Second

// Opener opens the serial stream.
type Opener func(ctx context.Context) (io.ReadCloser, error)

// DeviceOpener configures the tty at baud with stty (skipped when baud is 0)
// and opens it for reading.
func DeviceOpener(port string, baud int) Opener {
	return func(ctx context.Context) (io.ReadCloser, error) {
		if baud > 0 {
			if err := configureTTY(ctx, port, baud); err != nil {
				return nil, err
			}
		}
		f, err := os.Open(port)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", port, err)
		}
		return f, nil
	}
}

// configureTTY shells out to stty, GNU syntax first then BSD.
func configureTTY(ctx context.Context, port string, baud int) error {
	args := []string{strconv.Itoa(baud), "clocal", "cread", "-crtscts", "cs8", "-hupcl", "-cstopb", "-parenb", "-echo"}
	if err := exec.CommandContext(ctx, "stty", append([]string{"-F", port}, args...)...).Run(); err == nil {
		return nil
	}
	if err := exec.CommandContext(ctx, "stty", append([]string{"-f", port}, args...)...).Run(); err != nil {
		return fmt.Errorf("stty failed on %s: %w", port, err)
	}
	return nil
}

// Relay forwards every parsed line to a sink, keeping the port open across
// unplugs.
type Relay struct {
	open  Opener
	sink  service.Sink
	log   *logger.Logger
	delay time.Duration
}

func NewRelay(open Opener, sink service.Sink, log *logger.Logger) *Relay {
	if log == nil {
		log = logger.Nop()
	}
	return &Relay{open: open, sink: sink, log: log, delay: ReconnectDelay}
}

// Run reads until ctx is done, reopening the port after EOF or an I/O error.
func (r *Relay) Run(ctx context.Context) {
	for {
		if err := r.session(ctx); err != nil {
			r.log.Warnw("relay_port_lost", "err", err)
		}
		select {
		case <-ctx.Done():
			r.log.Infow("relay_stopped")
			return
		case <-time.After(r.delay):
		}
	}
}

// session reads one open period of the port.
func (r *Relay) session(ctx context.Context) error {
	rc, err := r.open(ctx)
	if err != nil {
		return err
	}
	// Unblocks the scanner when ctx ends.
	stop := context.AfterFunc(ctx, func() { _ = rc.Close() })
	defer func() {
		if stop() {
			_ = rc.Close()
		}
	}()

	r.log.Infow("relay_port_open")
	scanner := bufio.NewScanner(rc)
	for scanner.Scan() {
		r.forward(ctx, scanner.Text())
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	r.log.Infow("relay_port_eof")
	return nil
}

func (r *Relay) forward(ctx context.Context, line string) {
	p, err := ParseLine(line)
	switch {
	case errors.Is(err, ErrSkip):
		return
	case err != nil:
		r.log.Warnw("relay_line_skipped", "line", line, "err", err)
		return
	}
	if err := r.sink.Send(ctx, p); err != nil {
		r.log.Warnw("relay_send_failed", "err", err)
		return
	}
	r.log.Debugw("relay_line_sent", "temp", p["temp"], "humi", p["humi"], "lumi", p["lumi"])
}
