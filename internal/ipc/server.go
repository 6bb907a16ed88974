package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
)

// Handler processes one board command.
type Handler interface {
	Handle(context.Context, Request) Response
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(context.Context, Request) Response

func (f HandlerFunc) Handle(ctx context.Context, req Request) Response {
	return f(ctx, req)
}

// Serve accepts unix-socket clients until context cancellation or listener
// close. Each connection carries exactly one board command; the response is
// written back as one JSON line and the connection closed.
func Serve(ctx context.Context, listener net.Listener, handler Handler) error {
	var wg sync.WaitGroup

	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				wg.Wait()
				return nil
			}
			return fmt.Errorf("accept board connection: %w", err)
		}

		wg.Add(1)
		go func(c net.Conn) {
			defer wg.Done()
			defer c.Close()
			serveConn(ctx, c, handler)
		}(conn)
	}
}

// serveConn reads the command line, dispatches it, and writes the response.
// Malformed input earns an error response rather than a dropped connection so
// frontends always see a reply.
func serveConn(ctx context.Context, conn net.Conn, handler Handler) {
	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		writeResponse(conn, Response{Error: fmt.Sprintf("read command: %v", err)})
		return
	}

	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		writeResponse(conn, Response{Error: fmt.Sprintf("decode command: %v", err)})
		return
	}
	if strings.TrimSpace(req.Command) == "" {
		writeResponse(conn, Response{Error: "empty command"})
		return
	}

	writeResponse(conn, handler.Handle(ctx, req))
}

func writeResponse(conn net.Conn, resp Response) {
	_ = json.NewEncoder(conn).Encode(resp)
}
