// Package term serves the ground terminal over WebSocket. A console panel
// connects, receives the receive/transmit log incrementally, and queues
// uplink frames for the radio link to drain.
package term

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/calgarytospace/tcx/internal/config"
	"github.com/calgarytospace/tcx/internal/jsonscan"
	"github.com/calgarytospace/tcx/internal/rxtx"
	"github.com/gorilla/websocket"
)

const (
	wsWriteWait = 10 * time.Second
	wsPongWait  = 60 * time.Second
	wsPingEvery = (wsPongWait * 9) / 10

	tailPoll = 300 * time.Millisecond
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type wsInbound struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type wsOutbound struct {
	Type    string       `json:"type"`
	Entries []rxtx.Entry `json:"entries,omitempty"`
	Next    int          `json:"next,omitempty"`
	Paused  bool         `json:"paused,omitempty"`
	Queued  int          `json:"queued,omitempty"`
	Message string       `json:"message,omitempty"`
}

// Server is the ground terminal WebSocket server. One log and one
// transmit queue are shared by every connected panel.
type Server struct {
	cfg     *config.Config
	log     *rxtx.Log
	tx      *rxtx.TxQueue
	httpSrv *http.Server
}

// New creates a terminal server with an empty log and transmit queue.
func New(cfg *config.Config) *Server {
	return &Server{
		cfg: cfg,
		log: rxtx.NewLog(),
		tx:  &rxtx.TxQueue{},
	}
}

// Log returns the shared receive/transmit log.
func (s *Server) Log() *rxtx.Log {
	return s.log
}

// TxQueue returns the shared uplink queue.
func (s *Server) TxQueue() *rxtx.TxQueue {
	return s.tx
}

// RecordReceived appends downlinked text to the log, pretty-printing any
// embedded JSON blobs when auto-format is on.
func (s *Server) RecordReceived(text string) rxtx.Entry {
	if s.cfg.Term.AutoFormat() {
		text = jsonscan.Reformat(text)
	}
	return s.log.Append(rxtx.KindReceived, text)
}

// ListenAndServe serves the terminal on cfg.Term.Listen until Shutdown.
func (s *Server) ListenAndServe() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleWS)

	s.httpSrv = &http.Server{
		Addr:    s.cfg.Term.Listen,
		Handler: mux,
	}
	return s.httpSrv.ListenAndServe()
}

// Shutdown stops the HTTP listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// HandleWS upgrades the connection and runs the terminal session loop.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(wsPongWait)); err != nil {
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	writeCh := make(chan wsOutbound, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(wsPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	// Hand the panel everything visible so far, then stream increments.
	snapshot := s.log.Snapshot()
	after := -1
	if len(snapshot) > 0 {
		after = snapshot[len(snapshot)-1].Index
	}
	pushTermWS(writeCh, wsOutbound{
		Type:    "hello",
		Entries: snapshot,
		Next:    after + 1,
		Paused:  s.log.Paused(),
	})

	go func() {
		timer := time.NewTimer(s.log.RefreshInterval(time.Now()))
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
				entries := s.log.EntriesSince(after)
				if len(entries) > 0 {
					after = entries[len(entries)-1].Index
					pushTermWS(writeCh, wsOutbound{
						Type:    "entries",
						Entries: entries,
						Next:    after + 1,
					})
				}
				timer.Reset(s.log.RefreshInterval(time.Now()))
			}
		}
	}()

	for {
		var in wsInbound
		if err := conn.ReadJSON(&in); err != nil {
			cancel()
			<-writerDone
			return
		}

		msgType := strings.ToLower(strings.TrimSpace(in.Type))
		switch msgType {
		case "ping":
			pushTermWS(writeCh, wsOutbound{Type: "pong"})

		case "send":
			text := strings.TrimSpace(in.Text)
			if text == "" {
				pushTermWS(writeCh, wsOutbound{
					Type:    "error",
					Message: "text is required",
				})
				continue
			}
			s.tx.Enqueue([]byte(text))
			s.log.Append(rxtx.KindSent, text)
			pushTermWS(writeCh, wsOutbound{
				Type:   "send_ack",
				Queued: s.tx.Len(),
			})

		case "input":
			if in.Text == "" {
				pushTermWS(writeCh, wsOutbound{
					Type:    "error",
					Message: "text is required",
				})
				continue
			}
			s.RecordReceived(in.Text)

		case "clear":
			s.log.Clear()

		case "pause":
			s.log.Pause()
			pushTermWS(writeCh, wsOutbound{Type: "pause_ack", Paused: true})

		case "resume":
			s.log.Resume()
			pushTermWS(writeCh, wsOutbound{Type: "resume_ack"})

		default:
			pushTermWS(writeCh, wsOutbound{
				Type:    "error",
				Message: "unsupported type: " + msgType,
			})
		}
	}
}

// pushTermWS enqueues an outbound message without blocking the session
// loop. When the channel is full the oldest pending message is dropped.
func pushTermWS(writeCh chan wsOutbound, out wsOutbound) {
	if writeCh == nil {
		return
	}
	select {
	case writeCh <- out:
		return
	default:
	}
	select {
	case <-writeCh:
	default:
	}
	select {
	case writeCh <- out:
	default:
	}
}

// TailFile follows a downlink capture file and records each appended line
// as received traffic. Polls rather than using inotify so it behaves the
// same on every filesystem. Blocks until ctx is canceled.
func (s *Server) TailFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open input file: %w", err)
	}
	defer f.Close()

	// Only lines appended after startup count as live traffic.
	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("seek input file: %w", err)
	}

	reader := bufio.NewReader(f)
	var partial strings.Builder

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		chunk, err := reader.ReadString('\n')
		if len(chunk) > 0 {
			partial.WriteString(chunk)
		}
		if err == io.EOF {
			time.Sleep(tailPoll)
			continue
		}
		if err != nil {
			return fmt.Errorf("read input file: %w", err)
		}

		text := strings.TrimRight(partial.String(), "\r\n")
		partial.Reset()
		if text != "" {
			s.RecordReceived(text)
		}
	}
}

// ReadInput records each line from r as received traffic. Returns when r
// is exhausted or ctx is canceled. Used for piped stdin.
func (s *Server) ReadInput(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		text := strings.TrimRight(scanner.Text(), "\r")
		if text != "" {
			s.RecordReceived(text)
		}
	}
	return scanner.Err()
}
