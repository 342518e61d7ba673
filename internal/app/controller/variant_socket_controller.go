package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/ikkim/shoplive-catalog/internal/app/service"
	apperrors "github.com/ikkim/shoplive-catalog/internal/errors"
	"github.com/ikkim/shoplive-catalog/internal/middleware"
	"github.com/ikkim/shoplive-catalog/internal/variant"
	ws "github.com/ikkim/shoplive-catalog/internal/websocket"
	"github.com/ikkim/shoplive-catalog/pkg/logger"
)

// Live message types
const (
	LiveMessageView           = "view"
	LiveMessageChange         = "change"
	LiveMessageCatalogUpdated = "catalog_updated"
	LiveMessageError          = "error"

	LiveCommandChoose = "choose"
	LiveCommandReset  = "reset"
)

type LiveCommand struct {
	Type           string          `json:"type"`
	ValueID        variant.ValueID `json:"value_id"`
	DimensionIndex int             `json:"dimension_index"`
}

type LiveViewMessage struct {
	Type      string       `json:"type"`
	ProductID uint         `json:"product_id"`
	View      variant.View `json:"view"`
	Media     []string     `json:"media"`
}

type LiveChangeMessage struct {
	Type string `json:"type"`
	variant.Change
}

type LiveErrorMessage struct {
	Type string `json:"type"`
	apperrors.ErrorResponse
}

type VariantSocketController struct {
	variantService service.VariantService
	hub            *ws.Hub
	upgrader       websocket.Upgrader
}

func NewVariantSocketController(variantService service.VariantService, hub *ws.Hub, allowedOrigins []string) *VariantSocketController {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	return &VariantSocketController{
		variantService: variantService,
		hub:            hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				// non-browser clients send no Origin
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
	}
}

// Live upgrades to a websocket that owns one variant session
// GET /api/v1/products/:id/variants/live
func (ctrl *VariantSocketController) Live(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	// fail before the upgrade so the client gets a plain 404
	if _, err := ctrl.variantService.GetView(productID, nil); err != nil {
		respondServiceError(c, err, "open live variant session")
		return
	}

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Failed to upgrade to WebSocket", err)
		return
	}

	client := ws.NewClient(ctrl.hub, conn, productID, &liveSession{
		variants:  ctrl.variantService,
		productID: productID,
	})
	client.Start()

	log.Info("Live variant connection established", map[string]interface{}{
		"product_id": productID,
		"client_id":  client.ID,
	})
}

// liveSession is the single owner of one variant.Session. All methods run on
// the client's serve goroutine.
type liveSession struct {
	variants    service.VariantService
	productID   uint
	session     *variant.Session
	unsubscribe func()
}

func (l *liveSession) Open(c *ws.Client) error {
	session, err := l.variants.NewLiveSession(l.productID)
	if err != nil {
		sendLiveError(c, err)
		return err
	}
	l.attach(c, session)
	c.SendJSON(l.viewMessage(LiveMessageView))
	return nil
}

func (l *liveSession) attach(c *ws.Client, session *variant.Session) {
	if l.unsubscribe != nil {
		l.unsubscribe()
	}
	l.session = session
	l.unsubscribe = session.Subscribe(func(change variant.Change) {
		c.SendJSON(LiveChangeMessage{Type: LiveMessageChange, Change: change})
	})
}

func (l *liveSession) viewMessage(kind string) LiveViewMessage {
	return LiveViewMessage{
		Type:      kind,
		ProductID: l.productID,
		View:      l.session.View(),
		Media:     l.session.Media(),
	}
}

func (l *liveSession) HandleMessage(c *ws.Client, message []byte) {
	var cmd LiveCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		logger.Warn("Failed to parse live command", logger.Fields{
			"client_id": c.ID,
			"error":     err.Error(),
		})
		c.SendJSON(LiveErrorMessage{
			Type:          LiveMessageError,
			ErrorResponse: apperrors.ErrorResponse{Error: apperrors.ValidationInvalidInput, Message: "메시지 형식이 올바르지 않습니다"},
		})
		return
	}

	// observers publish the change; a no-op transition sends nothing
	switch cmd.Type {
	case LiveCommandChoose:
		l.session.Choose(cmd.ValueID, cmd.DimensionIndex)
	case LiveCommandReset:
		l.session.Reset()
	default:
		c.SendJSON(LiveErrorMessage{
			Type:          LiveMessageError,
			ErrorResponse: apperrors.ErrorResponse{Error: apperrors.ValidationInvalidInput, Message: "지원하지 않는 메시지입니다"},
		})
	}
}

func (l *liveSession) Refresh(c *ws.Client) {
	session, err := l.variants.RefreshLiveSession(l.productID, l.session)
	if err != nil {
		sendLiveError(c, err)
		if errors.Is(err, service.ErrProductNotFound) {
			c.Close()
		}
		return
	}
	l.attach(c, session)
	c.SendJSON(l.viewMessage(LiveMessageCatalogUpdated))
}

func (l *liveSession) Close() {
	if l.unsubscribe != nil {
		l.unsubscribe()
		l.unsubscribe = nil
	}
}

func sendLiveError(c *ws.Client, err error) {
	resp := apperrors.ErrorResponse{Error: apperrors.InternalServerError, Message: "서버 오류가 발생했습니다"}
	if errors.Is(err, service.ErrProductNotFound) {
		resp = apperrors.ErrorResponse{Error: apperrors.ProductNotFound, Message: "상품을 찾을 수 없습니다"}
	} else {
		logger.Error("Live variant session failed", err, logger.Fields{
			"client_id":  c.ID,
			"product_id": c.ProductID,
		})
	}
	c.SendJSON(LiveErrorMessage{Type: LiveMessageError, ErrorResponse: resp})
}
