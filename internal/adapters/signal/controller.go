package signal

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Video/internal/config"
	"github.com/dkeye/Video/internal/domain"
	"github.com/dkeye/Video/internal/hub"
)

const writeWait = 5 * time.Second

type Controller struct {
	Hub *hub.Hub
	Cfg *config.Config
}

func NewController(h *hub.Hub, cfg *config.Config) *Controller {
	return &Controller{Hub: h, Cfg: cfg}
}

// connSession is the per-connection context the pumps and handlers share.
type connSession struct {
	id    domain.ConnID
	token string // cookie identity, fallback userId for join
	conn  *WsSignalConn
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and runs the session until the
// transport drops. Every connection gets a fresh handle.
func (ctl *Controller) HandleSignal(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	sess := &connSession{
		id:    domain.ConnID(uuid.NewString()),
		token: c.GetString("client_token"),
		conn:  &WsSignalConn{conn: ws, send: make(chan hub.Frame, 32)},
	}
	log.Info().Str("module", "signal").Str("conn", string(sess.id)).Msg("new WS connection")

	ctl.Hub.Register(sess.id, sess.conn)
	ctx, cancel := context.WithCancel(ctx)

	go ctl.writePump(ctx, sess.conn)
	go ctl.readPump(ctx, cancel, sess)
}

func (ctl *Controller) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.Cfg.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, cancel context.CancelFunc, sess *connSession) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", string(sess.id)).Msg("readPump closing")
		ctl.Hub.Disconnect(sess.id)
		sess.conn.Close()
		cancel()
	}()

	pongWait := ctl.Cfg.PingPeriod * 10 / 9
	sess.conn.conn.SetReadLimit(ctl.Cfg.ReadLimit)
	_ = sess.conn.conn.SetReadDeadline(time.Now().Add(pongWait))
	sess.conn.conn.SetPongHandler(func(string) error {
		return sess.conn.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := sess.conn.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Error().Err(err).Str("module", "signal").Str("conn", string(sess.id)).Msg("readPump read error")
				}
				return
			}
			ctl.handleFrame(sess, data)
		}
	}
}
