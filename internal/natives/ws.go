package natives

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ochre-lang/ochre/internal/value"
)

// wsHandles mirrors dbHandles: an opaque-integer-Value table of open
// connections, grounded on the teacher's internal/network.WebSocketConn
// bookkeeping (there keyed by a generated string ID, here by a counter).
type wsHandles struct {
	mu   sync.Mutex
	next int
	open map[int]*websocket.Conn
}

func installWS(h Host) {
	reg := &wsHandles{open: make(map[int]*websocket.Conn)}

	h.Define("wsConnect", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return value.Nil, argError("wsConnect", 1, len(args))
		}
		url, err := wantString("wsConnect", 1, args[0])
		if err != nil {
			return value.Nil, err
		}
		dialer := websocket.DefaultDialer
		dialer.HandshakeTimeout = 10 * time.Second
		conn, _, err := dialer.Dial(url.Chars, nil)
		if err != nil {
			return value.Nil, fmt.Errorf("wsConnect: %w", err)
		}
		reg.mu.Lock()
		handle := reg.next
		reg.next++
		reg.open[handle] = conn
		reg.mu.Unlock()
		return value.Number(float64(handle)), nil
	})

	h.Define("wsSend", func(args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return value.Nil, argError("wsSend", 2, len(args))
		}
		conn, err := reg.lookup("wsSend", args[0])
		if err != nil {
			return value.Nil, err
		}
		text, err := wantString("wsSend", 2, args[1])
		if err != nil {
			return value.Nil, err
		}
		if err := conn.WriteMessage(websocket.TextMessage, []byte(text.Chars)); err != nil {
			return value.Nil, fmt.Errorf("wsSend: %w", err)
		}
		return value.Nil, nil
	})

	h.Define("wsRecv", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return value.Nil, argError("wsRecv", 1, len(args))
		}
		conn, err := reg.lookup("wsRecv", args[0])
		if err != nil {
			return value.Nil, err
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			return value.Nil, fmt.Errorf("wsRecv: %w", err)
		}
		return value.FromObj(h.Heap().InternString(string(data))), nil
	})

	h.Define("wsClose", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return value.Nil, argError("wsClose", 1, len(args))
		}
		conn, err := reg.lookup("wsClose", args[0])
		if err != nil {
			return value.Nil, err
		}
		handle := int(args[0].AsNumber())
		reg.mu.Lock()
		delete(reg.open, handle)
		reg.mu.Unlock()
		if err := conn.Close(); err != nil {
			return value.Nil, fmt.Errorf("wsClose: %w", err)
		}
		return value.Nil, nil
	})
}

func (r *wsHandles) lookup(fn string, v value.Value) (*websocket.Conn, error) {
	n, err := wantNumber(fn, 1, v)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	conn, ok := r.open[int(n)]
	if !ok {
		return nil, fmt.Errorf("%s: no open connection for handle %v", fn, n)
	}
	return conn, nil
}
