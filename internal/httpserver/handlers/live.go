package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MrSnakeDoc/smartbookmark/internal/domain"
	"github.com/MrSnakeDoc/smartbookmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/smartbookmark/internal/logger"
	"github.com/MrSnakeDoc/smartbookmark/internal/session"
	"github.com/MrSnakeDoc/smartbookmark/internal/utils"
)

// Client -> server operations.
const (
	OpQuery         = "query"
	OpAdd           = "add"
	OpRequestDelete = "request_delete"
	OpConfirmDelete = "confirm_delete"
	OpCancelDelete  = "cancel_delete"
	OpRefresh       = "refresh"
)

// Server -> client frame types.
const (
	FrameBookmarks     = "bookmarks"
	FramePendingDelete = "pending_delete"
	FrameError         = "error"
	FrameAck           = "ack"
)

const (
	defaultPingInterval = 30 * time.Second
	liveWriteTimeout    = 10 * time.Second
	liveReadLimit       = 64 << 10
)

// LiveRequest is one client frame.
type LiveRequest struct {
	Op    string `json:"op"`
	Q     string `json:"q,omitempty"`
	Sort  string `json:"sort,omitempty"`
	Dir   string `json:"dir,omitempty"`
	URL   string `json:"url,omitempty"`
	Title string `json:"title,omitempty"`
	ID    string `json:"id,omitempty"`
	Token string `json:"token,omitempty"`
}

// BookmarksFrame carries the current projection of the view.
type BookmarksFrame struct {
	Type       string            `json:"type"`
	Items      []domain.Bookmark `json:"items"`
	Query      domain.Query      `json:"query"`
	Degraded   bool              `json:"degraded"`
	LastChange time.Time         `json:"last_change"`
}

// PendingDeleteFrame hands the client the token to confirm a delete.
type PendingDeleteFrame struct {
	Type      string    `json:"type"`
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ErrorFrame is a transient notification; it never replaces the list.
type ErrorFrame struct {
	Type    string `json:"type"`
	Op      string `json:"op,omitempty"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// AckFrame confirms a command. Its effect shows up later through a
// bookmarks frame, once the change channel delivers it.
type AckFrame struct {
	Type string `json:"type"`
	Op   string `json:"op"`
	ID   string `json:"id,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// Live upgrades to a websocket and streams the user's synchronized view.
func Live(d deps.Deps) http.HandlerFunc {
	pingInterval := d.WSPingInterval
	if pingInterval <= 0 {
		pingInterval = defaultPingInterval
	}

	return func(w http.ResponseWriter, r *http.Request) {
		client := clientFor(r.Context(), d)
		if _, ok := client.CurrentUser(r.Context()); !ok {
			writeError(w, d.Logger, domain.ErrNotAuthenticated)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			d.Logger.Debug("websocket upgrade failed", logger.Error(err))
			return
		}
		defer utils.Close(conn)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		sess, err := session.Open(ctx, client, session.Options{
			SnapshotLimit: d.SnapshotLimit,
			Pending:       d.Pending,
			Logger:        d.Logger,
		})
		if err != nil {
			kind, _ := classify(err)
			_ = writeFrame(conn, ErrorFrame{Type: FrameError, Kind: kind, Message: err.Error()})
			return
		}
		defer sess.Close()

		if d.LiveSessions != nil {
			d.LiveSessions.Add(1)
			defer d.LiveSessions.Add(-1)
		}

		lc := &liveConn{
			conn:          conn,
			sess:          sess,
			query:         domain.DefaultQuery(),
			snapshotLimit: d.SnapshotLimit,
			log:           d.Logger.With(logger.String("user", sess.UserID())),
		}
		lc.run(ctx, pingInterval)
	}
}

type liveConn struct {
	conn          *websocket.Conn
	sess          *session.Session
	query         domain.Query
	snapshotLimit int
	log           logger.Logger
}

func (lc *liveConn) run(ctx context.Context, pingInterval time.Duration) {
	incoming := make(chan LiveRequest)
	go lc.read(ctx, incoming, 2*pingInterval)

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	// The initial frame covers whatever the seeding signalled.
	lc.skipPendingChange()
	if err := lc.sendView(); err != nil {
		return
	}

	sessDone := lc.sess.Done()
	if lc.sess.Degraded() {
		sessDone = nil
	}

	for {
		var err error
		select {
		case <-ctx.Done():
			return
		case <-lc.sess.View().Changes():
			err = lc.sendView()
		case <-sessDone:
			sessDone = nil
			err = lc.sendView()
		case req, ok := <-incoming:
			if !ok {
				return
			}
			err = lc.handle(ctx, req)
		case <-ticker.C:
			err = lc.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(liveWriteTimeout))
		}
		if err != nil {
			lc.log.Debug("live connection closed", logger.Error(err))
			return
		}
	}
}

// read decodes client frames until the connection fails. Malformed JSON
// is answered by the writer loop as a bad request.
func (lc *liveConn) read(ctx context.Context, out chan<- LiveRequest, pongWait time.Duration) {
	defer close(out)

	lc.conn.SetReadLimit(liveReadLimit)
	_ = lc.conn.SetReadDeadline(time.Now().Add(pongWait))
	lc.conn.SetPongHandler(func(string) error {
		return lc.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := lc.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				lc.log.Debug("live read failed", logger.Error(err))
			}
			return
		}
		_ = lc.conn.SetReadDeadline(time.Now().Add(pongWait))

		var req LiveRequest
		if err := json.Unmarshal(data, &req); err != nil {
			req = LiveRequest{}
		}
		select {
		case out <- req:
		case <-ctx.Done():
			return
		}
	}
}

func (lc *liveConn) handle(ctx context.Context, req LiveRequest) error {
	cmds := lc.sess.Commands()

	switch req.Op {
	case OpQuery:
		q, err := domain.ParseQuery(req.Q, req.Sort, req.Dir)
		if err != nil {
			return lc.sendError(req.Op, err)
		}
		lc.query = q
		return lc.sendView()

	case OpRefresh:
		if err := lc.sess.Refresh(ctx, lc.snapshotLimit); err != nil {
			return lc.sendError(req.Op, err)
		}
		lc.skipPendingChange()
		return lc.sendView()

	case OpAdd:
		row, err := cmds.Add(ctx, req.URL, req.Title)
		if err != nil {
			return lc.sendError(req.Op, err)
		}
		return writeFrame(lc.conn, AckFrame{Type: FrameAck, Op: req.Op, ID: row.ID})

	case OpRequestDelete:
		pending, err := cmds.RequestDelete(ctx, req.ID)
		if err != nil {
			return lc.sendError(req.Op, err)
		}
		return writeFrame(lc.conn, PendingDeleteFrame{
			Type:      FramePendingDelete,
			ID:        pending.ID,
			Token:     pending.Token,
			ExpiresAt: pending.ExpiresAt,
		})

	case OpConfirmDelete:
		if err := cmds.ConfirmDelete(ctx, req.ID, req.Token); err != nil {
			return lc.sendError(req.Op, err)
		}
		return writeFrame(lc.conn, AckFrame{Type: FrameAck, Op: req.Op, ID: req.ID})

	case OpCancelDelete:
		if err := cmds.CancelDelete(ctx, req.ID); err != nil {
			return lc.sendError(req.Op, err)
		}
		return writeFrame(lc.conn, AckFrame{Type: FrameAck, Op: req.Op, ID: req.ID})

	default:
		return writeFrame(lc.conn, ErrorFrame{
			Type:    FrameError,
			Op:      req.Op,
			Kind:    KindBadRequest,
			Message: "unknown op",
		})
	}
}

// skipPendingChange drops a change signal the next frame already covers.
func (lc *liveConn) skipPendingChange() {
	select {
	case <-lc.sess.View().Changes():
	default:
	}
}

func (lc *liveConn) sendView() error {
	view := lc.sess.View()
	return writeFrame(lc.conn, BookmarksFrame{
		Type:       FrameBookmarks,
		Items:      view.Project(lc.query),
		Query:      lc.query,
		Degraded:   lc.sess.Degraded(),
		LastChange: view.LastChange(),
	})
}

func (lc *liveConn) sendError(op string, err error) error {
	kind, _ := classify(err)
	msg := err.Error()
	if kind == KindInternal {
		lc.log.Error("live command failed", logger.String("op", op), logger.Error(err))
		msg = http.StatusText(http.StatusInternalServerError)
	}
	if errors.Is(err, domain.ErrGateway) {
		lc.log.Warn("live command rejected by backend", logger.String("op", op), logger.Error(err))
	}
	return writeFrame(lc.conn, ErrorFrame{Type: FrameError, Op: op, Kind: kind, Message: msg})
}

func writeFrame(conn *websocket.Conn, v any) error {
	_ = conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
	return conn.WriteJSON(v)
}
