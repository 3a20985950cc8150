package handlers

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/evamaria/fanchat-backend/internal/domain"
	"github.com/evamaria/fanchat-backend/internal/http/middleware"
	"github.com/evamaria/fanchat-backend/internal/realtime"
	"github.com/evamaria/fanchat-backend/internal/services"
)

// Subscribe godoc
// @Summary      Live updates over WebSocket
// @Description  Upgrades the connection and accepts subscribe/unsubscribe
// @Description  commands. Topic "chats" is the admin inbox directory;
// @Description  "chat:<id>" is one chat's transcript. Users may only follow
// @Description  their own chat, admins may follow everything. Each
// @Description  subscription is seeded with a full snapshot, and every write
// @Description  afterwards pushes a fresh one.
// @Tags         realtime
// @Security     BearerAuth
// @Success      101
// @Failure      401  {object}  ErrorResponse
// @Router       /ws [get]
func (h *Handlers) Subscribe(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserID)
	role := c.GetString(middleware.CtxUserRole)

	// The callbacks below run from the connection's read pump, long after
	// this handler has returned and net/http has canceled the request
	// context. Detach so ownership checks and snapshot loads still work.
	ctx := context.WithoutCancel(c.Request.Context())

	canSubscribe := func(topic string) bool {
		if role == domain.RoleAdmin {
			return topic == services.TopicChats || strings.HasPrefix(topic, services.TopicChatPrefix)
		}
		chatID := strings.TrimPrefix(topic, services.TopicChatPrefix)
		if chatID == topic || chatID == "" {
			return false
		}
		chat, err := h.chats.Chat(ctx, chatID)
		return err == nil && chat.UserID == uid
	}

	onSubscribe := func(topic string) {
		switch {
		case topic == services.TopicChats:
			chats, err := h.chats.ListChats(ctx)
			if err != nil {
				return
			}
			h.hub.Publish(topic, services.DirectorySnapshot{Type: "chats", Chats: chats})
		case strings.HasPrefix(topic, services.TopicChatPrefix):
			chatID := strings.TrimPrefix(topic, services.TopicChatPrefix)
			msgs, err := h.chats.ListMessages(ctx, chatID)
			if err != nil {
				return
			}
			h.hub.Publish(topic, services.MessagesSnapshot{Type: "messages", ChatID: chatID, Messages: msgs})
		}
	}

	if err := realtime.ServeClient(h.hub, c.Writer, c.Request, canSubscribe, onSubscribe); err != nil {
		lg := middleware.LoggerFrom(c)
		lg.Warn().Err(err).Msg("websocket upgrade failed")
	}
}
