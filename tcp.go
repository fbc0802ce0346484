package main

import (
	"fmt"
	"net"
	"time"

	"github.com/juju/loggo"

	"rplethub/hardware"
)

var tcpLogger = loggo.GetLogger("tcp")

// queueTick bounds the latency between a queued card scan and its
// broadcast to the connected readers, and therefore also the worst-case
// shutdown latency.
const queueTick = 500 * time.Millisecond

// sendTimeout caps how long a single send to a slow client may stall
// the loop before that client is dropped.
const sendTimeout = 2 * time.Second

// RplethServer listens for and serves connections from Rpleth readers.
// All framing, decoding, command handling and sends happen on the
// single loop goroutine, which is the sole owner of the client set;
// per-connection reader goroutines only shovel raw bytes in.
type RplethServer struct {
	listenAddr string
	greenLed   hardware.Device
	buzzer     hardware.Device
	queue      *cardQueue
	notify     *notifier

	clients map[*client]bool
	addChan chan net.Conn  // accepted connections
	events  chan readEvent // raw bytes and read errors from clients
	quit    chan struct{}
	done    chan struct{}

	// Errs receives loop-fatal failures (listener death); per-client
	// errors never show up here.
	Errs chan error

	ln   net.Listener
	wire []byte // scratch encode buffer, loop goroutine only
}

func newRplethServer(addr string, queue *cardQueue) *RplethServer {
	return &RplethServer{
		listenAddr: addr,
		queue:      queue,
		clients:    make(map[*client]bool),
		addChan:    make(chan net.Conn),
		events:     make(chan readEvent),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
		Errs:       make(chan error, 1),
		wire:       make([]byte, ringBufferSize),
	}
}

// start binds the listening socket and launches the accept and loop
// goroutines.
func (srv *RplethServer) start() error {
	ln, err := net.Listen("tcp", srv.listenAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", srv.listenAddr, err)
	}
	srv.ln = ln
	go srv.acceptLoop()
	go srv.run()
	return nil
}

// stop shuts the loop down and waits for it. Every client and the
// listening socket are closed when it returns; the call is bounded by
// one queue tick plus in-flight I/O.
func (srv *RplethServer) stop() {
	close(srv.quit)
	srv.ln.Close()
	<-srv.done
}

func (srv *RplethServer) acceptLoop() {
	for {
		conn, err := srv.ln.Accept()
		if err != nil {
			select {
			case <-srv.quit:
				// Listener closed by stop; not an error.
			default:
				tcpLogger.Errorf("accept: %v", err)
				select {
				case srv.Errs <- err:
				default:
				}
			}
			return
		}
		select {
		case srv.addChan <- conn:
		case <-srv.quit:
			conn.Close()
			return
		}
	}
}

// run is the server event loop.
func (srv *RplethServer) run() {
	defer close(srv.done)
	ticker := time.NewTicker(queueTick)
	defer ticker.Stop()
	for {
		select {
		case <-srv.quit:
			for c := range srv.clients {
				c.conn.Close()
			}
			return
		case conn := <-srv.addChan:
			c := newClient(conn)
			srv.clients[c] = true
			appStatus.ClientsConnected.Inc(1)
			tcpLogger.Infof("reader connected %v", conn.RemoteAddr())
			srv.notify.event("reader_connect", readerEvent{Addr: conn.RemoteAddr().String()})
			go c.reader(srv.events, srv.quit)
		case ev := <-srv.events:
			srv.handleRead(ev)
		case <-ticker.C:
			srv.drainAndBroadcast()
		}
	}
}

// handleRead feeds a chunk of raw bytes into the client's framing
// buffer, then serves every complete command already buffered. The
// first incomplete frame stays buffered for the next read; any error is
// fatal for this one connection only.
func (srv *RplethServer) handleRead(ev readEvent) {
	if !srv.clients[ev.c] {
		// Late event from a connection already dropped.
		return
	}
	if ev.err != nil {
		srv.drop(ev.c, ev.err)
		return
	}
	if err := ev.c.buf.Write(ev.data); err != nil {
		srv.drop(ev.c, err)
		return
	}
	for {
		p, err := decodeCommand(ev.c.buf)
		if err != nil {
			srv.drop(ev.c, err)
			return
		}
		if !p.Good {
			return
		}
		resp := processClientPacket(srv, p)
		appStatus.CommandsHandled.Inc(1)
		n, err := encodeCommand(resp, srv.wire)
		if err != nil {
			srv.drop(ev.c, err)
			return
		}
		if err := srv.send(ev.c, srv.wire[:n]); err != nil {
			srv.drop(ev.c, err)
			return
		}
		if ev.c.buf.Len() == 0 {
			return
		}
	}
}

// drainAndBroadcast pops queued card scans one at a time and sends each
// to every connected reader as a badge event. The queue lock is never
// held during a send, so the authorize path stays unblocked; scan order
// is preserved for every client.
func (srv *RplethServer) drainAndBroadcast() {
	for {
		cid, ok := srv.queue.pop()
		if !ok {
			return
		}
		p := rplethPacket{
			Sender:  senderServer,
			Status:  statusSuccess,
			Type:    typeHID,
			Command: cmdBadge,
			DataLen: byte(len(cid)),
			Data:    cid,
			Good:    true,
		}
		n, err := encodeCommand(p, srv.wire)
		if err != nil {
			tcpLogger.Errorf("badge event for card %v: %v", cid, err)
			continue
		}
		for c := range srv.clients {
			if err := srv.send(c, srv.wire[:n]); err != nil {
				srv.drop(c, err)
			}
		}
		appStatus.BadgesBroadcast.Inc(1)
	}
}

func (srv *RplethServer) send(c *client, b []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(sendTimeout))
	_, err := c.conn.Write(b)
	return err
}

// drop closes one connection and forgets it. Safe to call for an
// already-dropped client.
func (srv *RplethServer) drop(c *client, err error) {
	if !srv.clients[c] {
		return
	}
	delete(srv.clients, c)
	addr := c.conn.RemoteAddr()
	c.conn.Close()
	appStatus.ClientsConnected.Dec(1)
	tcpLogger.Infof("reader disconnected %v: %v", addr, err)
	srv.notify.event("reader_disconnect", readerEvent{Addr: addr.String()})
}
