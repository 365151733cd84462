package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

const defaultCodeTimeout = 5 * time.Minute

// terminalCodes asks for a second-factor code on a terminal. A single
// goroutine owns the reader for the life of the process, so an abandoned
// prompt cannot consume the answer to the next one. Each prompt waits at most
// timeout, which bounds how long a pipeline run holds the app lock.
type terminalCodes struct {
	in      io.Reader
	out     io.Writer
	timeout time.Duration

	once    sync.Once
	lines   chan string
	readErr error
}

func (p *terminalCodes) Code(ctx context.Context, username string) (string, error) {
	if err := p.discardPending(); err != nil {
		return "", err
	}
	p.once.Do(p.start)

	timeout := p.timeout
	if timeout <= 0 {
		timeout = defaultCodeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	fmt.Fprintf(p.out, "Two-factor authentication enabled for user %s. Enter the verification code:\n", username)
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-p.lines:
		if !ok {
			return "", p.readErr
		}
		return strings.TrimSpace(line), nil
	}
}

// start launches the reader. lines is closed after the first read error,
// which is kept in readErr.
func (p *terminalCodes) start() {
	p.lines = make(chan string)
	go func() {
		defer close(p.lines)
		r := bufio.NewReader(p.in)
		for {
			line, err := r.ReadString('\n')
			if line != "" || err == nil {
				p.lines <- line
			}
			if err != nil {
				p.readErr = fmt.Errorf("read verification code: %w", err)
				return
			}
		}
	}()
}

// discardPending drops lines typed while no prompt was waiting.
func (p *terminalCodes) discardPending() error {
	if p.lines == nil {
		return nil
	}
	for {
		select {
		case _, ok := <-p.lines:
			if !ok {
				return p.readErr
			}
		default:
			return nil
		}
	}
}
