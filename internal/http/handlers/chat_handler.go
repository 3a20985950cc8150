package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/evamaria/fanchat-backend/internal/domain"
	"github.com/evamaria/fanchat-backend/internal/http/middleware"
	"github.com/evamaria/fanchat-backend/internal/repo"
	"github.com/evamaria/fanchat-backend/internal/services"
)

// SendMessageRequest carries the text of an outgoing support message.
type SendMessageRequest struct {
	Text string `json:"text" binding:"required" example:"hey, my payment failed"`
}

// MessagesResponse wraps a chat's full transcript.
type MessagesResponse struct {
	ChatID   string           `json:"chatId"`
	Messages []domain.Message `json:"messages"`
}

// OpenChat godoc
// @Summary      Open the caller's support chat
// @Description  Returns the caller's chat thread, creating it on first use.
// @Tags         chat
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Chat
// @Failure      401  {object}  ErrorResponse
// @Router       /chat [post]
func (h *Handlers) OpenChat(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserID)

	profile, err := h.accounts.Profile(c.Request.Context(), uid)
	if err != nil {
		mapServiceError(c, err)
		return
	}

	chat, err := h.chats.GetOrCreateChat(c.Request.Context(), uid, profile.Email)
	if err != nil {
		mapServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, chat)
}

// GetChat godoc
// @Summary      Fetch the caller's support chat
// @Description  Returns 404 when the caller has never opened a chat.
// @Tags         chat
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Chat
// @Failure      404  {object}  ErrorResponse
// @Router       /chat [get]
func (h *Handlers) GetChat(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserID)

	chat, err := h.chats.ChatForUser(c.Request.Context(), uid)
	if err != nil {
		mapServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, chat)
}

// ListChatMessages godoc
// @Summary      List the caller's chat transcript
// @Tags         chat
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  MessagesResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /chat/messages [get]
func (h *Handlers) ListChatMessages(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserID)

	chat, err := h.chats.ChatForUser(c.Request.Context(), uid)
	if err != nil {
		mapServiceError(c, err)
		return
	}

	msgs, err := h.chats.ListMessages(c.Request.Context(), chat.ID)
	if err != nil {
		mapServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, MessagesResponse{ChatID: chat.ID, Messages: msgs})
}

// SendChatMessage godoc
// @Summary      Send a message in the caller's chat
// @Description  Appends a message to the caller's thread, creating the thread
// @Description  on first use. Supports the Idempotency-Key header: replaying
// @Description  a key within its TTL returns the originally created message.
// @Tags         chat
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string              false  "Client-chosen dedupe key"
// @Param        payload          body      SendMessageRequest  true   "Message text"
// @Success      200  {object}  domain.Message  "Replayed from a previous request"
// @Success      201  {object}  domain.Message
// @Failure      400  {object}  ErrorResponse
// @Router       /chat/messages [post]
func (h *Handlers) SendChatMessage(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserID)
	ctx := c.Request.Context()

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, CodeBadRequest, "text is required")
		return
	}

	profile, err := h.accounts.Profile(ctx, uid)
	if err != nil {
		mapServiceError(c, err)
		return
	}

	chat, err := h.chats.GetOrCreateChat(ctx, uid, profile.Email)
	if err != nil {
		mapServiceError(c, err)
		return
	}

	key, _ := middleware.GetIdempotencyKey(c)
	if key != "" {
		if rec, err := repo.GetIdempotency(ctx, h.db, uid, chat.ID, key, time.Now().UTC()); err == nil {
			if msg, err := repo.GetMessage(h.db.WithContext(ctx), rec.MessageID); err == nil {
				c.Header("X-Idempotent-Replay", "true")
				ok(c, rec.Status, msg)
				return
			}
		}
	}

	msg, err := h.chats.SendMessage(ctx, chat.ID, uid, profile.Email, req.Text, false, nil)
	if err != nil {
		mapServiceError(c, err)
		return
	}

	if key != "" {
		if _, err := repo.CreateIdempotency(ctx, h.db, uid, chat.ID, key, msg.ID, http.StatusCreated, h.idemTTL); err != nil && !errors.Is(err, repo.ErrDuplicate) {
			lg := middleware.LoggerFrom(c)
			lg.Warn().Err(err).Str("chat_id", chat.ID).Msg("could not record idempotency key")
		}
	}

	ok(c, http.StatusCreated, msg)
}

// MarkChatRead godoc
// @Summary      Mark the caller's chat as read
// @Description  Clears the caller's unread flag only. The admin-side flag is
// @Description  untouched.
// @Tags         chat
// @Security     BearerAuth
// @Success      204
// @Failure      404  {object}  ErrorResponse
// @Router       /chat/read [post]
func (h *Handlers) MarkChatRead(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserID)

	chat, err := h.chats.ChatForUser(c.Request.Context(), uid)
	if err != nil {
		if errors.Is(err, services.ErrChatNotFound) {
			noContent(c)
			return
		}
		mapServiceError(c, err)
		return
	}

	if err := h.chats.MarkChatAsRead(c.Request.Context(), chat.ID, false); err != nil {
		mapServiceError(c, err)
		return
	}
	noContent(c)
}
