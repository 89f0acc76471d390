package rpc

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/LeJamon/goPriceOracle/internal/core/events"
	"github.com/LeJamon/goPriceOracle/internal/metrics"
	"github.com/LeJamon/goPriceOracle/internal/rpc/rpc_types"
)

const (
	wsReadLimit    = 512 * 1024
	wsPongWait     = 60 * time.Second
	wsPingInterval = 54 * time.Second
	wsWriteWait    = 10 * time.Second
	wsSendBuffer   = 256
)

// WebSocketServer handles WebSocket connections for price subscriptions
type WebSocketServer struct {
	upgrader         websocket.Upgrader
	server           *Server
	connections      map[string]*WebSocketConnection
	connectionsMutex sync.RWMutex
	log              logrus.FieldLogger
	metrics          *metrics.Metrics
}

// WebSocketConnection represents a single WebSocket connection
type WebSocketConnection struct {
	ID            string
	conn          *websocket.Conn
	subscriptions map[rpc_types.SubscriptionType]struct{}
	sendChannel   chan []byte
	mutex         sync.RWMutex
	ctx           context.Context
	cancel        context.CancelFunc
	closeOnce     sync.Once
}

// NewWebSocketServer creates a WebSocket server dispatching regular
// commands to server
func NewWebSocketServer(server *Server, opts ...Option) *WebSocketServer {
	o := buildOptions(opts)
	return &WebSocketServer{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		server:      server,
		connections: make(map[string]*WebSocketConnection),
		log:         o.log.WithField("module", "websocket"),
		metrics:     o.metrics,
	}
}

// ServeHTTP handles WebSocket upgrade requests
func (ws *WebSocketServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ws.log.WithError(err).Debug("websocket upgrade failed")
		return
	}

	// The connection outlives the upgrade request.
	ctx, cancel := context.WithCancel(context.Background())
	wsConn := &WebSocketConnection{
		ID:            uuid.NewString(),
		conn:          conn,
		subscriptions: make(map[rpc_types.SubscriptionType]struct{}),
		sendChannel:   make(chan []byte, wsSendBuffer),
		ctx:           ctx,
		cancel:        cancel,
	}

	ws.connectionsMutex.Lock()
	ws.connections[wsConn.ID] = wsConn
	ws.connectionsMutex.Unlock()
	ws.metrics.AddWSClients(1)
	ws.log.WithField("conn", wsConn.ID).Debug("websocket connection opened")

	go ws.readLoop(wsConn)
	go ws.writeLoop(wsConn)
}

// ConnectionCount returns the number of open connections
func (ws *WebSocketServer) ConnectionCount() int {
	ws.connectionsMutex.RLock()
	defer ws.connectionsMutex.RUnlock()
	return len(ws.connections)
}

// readLoop processes messages from a WebSocket connection
func (ws *WebSocketServer) readLoop(wsConn *WebSocketConnection) {
	defer ws.closeConnection(wsConn)

	wsConn.conn.SetReadLimit(wsReadLimit)
	_ = wsConn.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	wsConn.conn.SetPongHandler(func(string) error {
		return wsConn.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		_, message, err := wsConn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				ws.log.WithError(err).WithField("conn", wsConn.ID).Debug("websocket read failed")
			}
			return
		}
		ws.handleMessage(wsConn, message)
	}
}

// writeLoop sends queued messages and keepalive pings. It owns the
// underlying connection and closes it on exit.
func (ws *WebSocketServer) writeLoop(wsConn *WebSocketConnection) {
	ticker := time.NewTicker(wsPingInterval)
	defer func() {
		ticker.Stop()
		ws.closeConnection(wsConn)
		_ = wsConn.conn.Close()
	}()

	for {
		select {
		case <-wsConn.ctx.Done():
			_ = wsConn.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(wsWriteWait))
			return
		case <-ticker.C:
			_ = wsConn.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := wsConn.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case message := <-wsConn.sendChannel:
			_ = wsConn.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := wsConn.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				ws.log.WithError(err).WithField("conn", wsConn.ID).Debug("websocket send failed")
				return
			}
		}
	}
}

// handleMessage processes a single message. Command and params share the
// top-level object.
func (ws *WebSocketServer) handleMessage(wsConn *WebSocketConnection, message []byte) {
	var cmdMap map[string]json.RawMessage
	if err := json.Unmarshal(message, &cmdMap); err != nil {
		ws.sendError(wsConn, rpc_types.RpcErrorInvalidParams("Invalid JSON: "+err.Error()), nil)
		return
	}

	var cmd rpc_types.WebSocketCommand
	_ = json.Unmarshal(message, &cmd)
	if cmd.Command == "" {
		ws.sendError(wsConn, rpc_types.RpcErrorMissingCommand(), cmd.ID)
		return
	}

	apiVersion := rpc_types.DefaultApiVersion
	if raw, ok := cmdMap["api_version"]; ok {
		var v int
		if err := json.Unmarshal(raw, &v); err == nil {
			apiVersion = v
		}
	}
	delete(cmdMap, "command")
	delete(cmdMap, "id")
	delete(cmdMap, "api_version")

	var params json.RawMessage
	if len(cmdMap) > 0 {
		params, _ = json.Marshal(cmdMap)
	}

	switch cmd.Command {
	case "subscribe":
		ws.handleSubscription(wsConn, cmd, params, true)
		return
	case "unsubscribe":
		ws.handleSubscription(wsConn, cmd, params, false)
		return
	}

	rpcCtx := &rpc_types.RpcContext{
		Context:    wsConn.ctx,
		Role:       rpc_types.RoleGuest,
		ApiVersion: apiVersion,
		ClientIP:   remoteIP(wsConn.conn),
	}
	result, rpcErr := ws.server.Execute(rpcCtx, cmd.Command, params)
	if rpcErr != nil {
		ws.sendError(wsConn, rpcErr, cmd.ID)
		return
	}
	ws.send(wsConn, rpc_types.WebSocketResponse{
		Type:   "response",
		ID:     cmd.ID,
		Status: "success",
		Result: result,
	})
}

// handleSubscription adds or removes streams for a connection
func (ws *WebSocketServer) handleSubscription(wsConn *WebSocketConnection, cmd rpc_types.WebSocketCommand, params json.RawMessage, subscribe bool) {
	var request rpc_types.SubscriptionRequest
	if len(params) > 0 {
		if err := json.Unmarshal(params, &request); err != nil {
			ws.sendError(wsConn, rpc_types.RpcErrorInvalidParams("Invalid subscription parameters"), cmd.ID)
			return
		}
	}
	if len(request.Streams) == 0 {
		ws.sendError(wsConn, rpc_types.RpcErrorMissingField("streams"), cmd.ID)
		return
	}
	for _, stream := range request.Streams {
		switch stream {
		case rpc_types.SubPrices, rpc_types.SubBlocks:
		default:
			ws.sendError(wsConn, rpc_types.RpcErrorStreamMalformed(string(stream)), cmd.ID)
			return
		}
	}

	wsConn.mutex.Lock()
	for _, stream := range request.Streams {
		if subscribe {
			wsConn.subscriptions[stream] = struct{}{}
		} else {
			delete(wsConn.subscriptions, stream)
		}
	}
	wsConn.mutex.Unlock()

	ws.send(wsConn, rpc_types.WebSocketResponse{
		Type:   "response",
		ID:     cmd.ID,
		Status: "success",
		Result: map[string]interface{}{},
	})
}

// send queues a response. A client that cannot keep up is disconnected.
func (ws *WebSocketServer) send(wsConn *WebSocketConnection, response interface{}) {
	data, err := json.Marshal(response)
	if err != nil {
		ws.log.WithError(err).Error("failed to marshal websocket response")
		return
	}

	select {
	case wsConn.sendChannel <- data:
	case <-wsConn.ctx.Done():
	default:
		ws.log.WithField("conn", wsConn.ID).Warn("websocket send channel full, closing connection")
		ws.closeConnection(wsConn)
	}
}

// sendError sends an error response with flat error fields
func (ws *WebSocketServer) sendError(wsConn *WebSocketConnection, rpcErr *rpc_types.RpcError, id interface{}) {
	ws.send(wsConn, rpc_types.WebSocketResponse{
		Type:         "response",
		ID:           id,
		Status:       "error",
		Error:        rpcErr.ErrorString,
		ErrorCode:    rpcErr.Code,
		ErrorMessage: rpcErr.Message,
	})
}

// closeConnection unregisters a connection once and stops its writer
func (ws *WebSocketServer) closeConnection(wsConn *WebSocketConnection) {
	wsConn.closeOnce.Do(func() {
		wsConn.cancel()

		ws.connectionsMutex.Lock()
		delete(ws.connections, wsConn.ID)
		ws.connectionsMutex.Unlock()
		ws.metrics.AddWSClients(-1)
		ws.log.WithField("conn", wsConn.ID).Debug("websocket connection closed")
	})
}

// BroadcastToSubscribers sends a message to all connections subscribed to
// stream. Slow connections miss the message.
func (ws *WebSocketServer) BroadcastToSubscribers(stream rpc_types.SubscriptionType, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		ws.log.WithError(err).Error("failed to marshal broadcast message")
		return
	}

	ws.connectionsMutex.RLock()
	defer ws.connectionsMutex.RUnlock()
	for _, conn := range ws.connections {
		conn.mutex.RLock()
		_, subscribed := conn.subscriptions[stream]
		conn.mutex.RUnlock()
		if !subscribed {
			continue
		}
		select {
		case conn.sendChannel <- data:
		default:
			ws.log.WithField("conn", conn.ID).Debug("skipping slow websocket connection")
		}
	}
}

// PublishPrices forwards PriceStored events to the prices stream until ch
// is closed or ctx is done.
func (ws *WebSocketServer) PublishPrices(ctx context.Context, ch <-chan events.PriceStored) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			ws.BroadcastToSubscribers(rpc_types.SubPrices, rpc_types.StreamMessage{
				Type:      "priceStored",
				Price:     ev.Price.String(),
				Submitter: ev.Submitter,
				Height:    ev.Height,
				Snapshot:  ev.Snapshot,
			})
		}
	}
}

// OnBlock announces a produced block on the blocks stream.
func (ws *WebSocketServer) OnBlock(height uint64) {
	ws.BroadcastToSubscribers(rpc_types.SubBlocks, rpc_types.StreamMessage{
		Type:   "blockClosed",
		Height: height,
	})
}

// Close disconnects every client
func (ws *WebSocketServer) Close() {
	ws.connectionsMutex.RLock()
	conns := make([]*WebSocketConnection, 0, len(ws.connections))
	for _, c := range ws.connections {
		conns = append(conns, c)
	}
	ws.connectionsMutex.RUnlock()

	for _, c := range conns {
		ws.closeConnection(c)
	}
}

func remoteIP(conn *websocket.Conn) string {
	addr := conn.RemoteAddr().String()
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
