package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/evamaria/fanchat-backend/internal/domain"
	"github.com/evamaria/fanchat-backend/internal/http/middleware"
	"github.com/evamaria/fanchat-backend/internal/repo"
	"github.com/evamaria/fanchat-backend/internal/utils"
)

// ChatListResponse wraps a page of the admin inbox, newest activity first.
type ChatListResponse struct {
	Chats      []domain.Chat    `json:"chats"`
	Pagination utils.Pagination `json:"pagination"`
}

// AdminListChats godoc
// @Summary      Admin inbox
// @Description  Lists all support chats ordered by most recent activity.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        page       query  int  false  "Page number"     default(1)
// @Param        page_size  query  int  false  "Chats per page"  default(20)
// @Success      200  {object}  ChatListResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /admin/chats [get]
func (h *Handlers) AdminListChats(c *gin.Context) {
	page, pageSize := utils.ParsePagination(c.Query("page"), c.Query("page_size"))

	chats, total, err := h.chats.ListChatsPage(c.Request.Context(), page, pageSize)
	if err != nil {
		mapServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, ChatListResponse{
		Chats:      chats,
		Pagination: utils.NewPagination(page, pageSize, total),
	})
}

// AdminListMessages godoc
// @Summary      Read a chat transcript
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Chat ID"
// @Success      200  {object}  MessagesResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /admin/chats/{id}/messages [get]
func (h *Handlers) AdminListMessages(c *gin.Context) {
	chatID := c.Param("id")

	if _, err := h.chats.Chat(c.Request.Context(), chatID); err != nil {
		mapServiceError(c, err)
		return
	}

	msgs, err := h.chats.ListMessages(c.Request.Context(), chatID)
	if err != nil {
		mapServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, MessagesResponse{ChatID: chatID, Messages: msgs})
}

// AdminSendMessage godoc
// @Summary      Reply in a chat
// @Description  Posts an operator reply into a user's chat. The reply is
// @Description  attributed to the shared "admin" sender, raises the user's
// @Description  unread flag and resets the admin-side flag.
// @Description  Supports the Idempotency-Key header.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  string              true  "Chat ID"
// @Param        payload  body  SendMessageRequest  true  "Reply text"
// @Success      200  {object}  domain.Message  "Replayed from a previous request"
// @Success      201  {object}  domain.Message
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /admin/chats/{id}/messages [post]
func (h *Handlers) AdminSendMessage(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserID)
	chatID := c.Param("id")
	ctx := c.Request.Context()

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, CodeBadRequest, "text is required")
		return
	}

	if middleware.IsReplay(c) {
		key, _ := middleware.GetIdempotencyKey(c)
		if rec, err := repo.GetIdempotency(ctx, h.db, uid, chatID, key, time.Now().UTC()); err == nil {
			if msg, err := repo.GetMessage(h.db.WithContext(ctx), rec.MessageID); err == nil {
				c.Header("X-Idempotent-Replay", "true")
				ok(c, rec.Status, msg)
				return
			}
		}
	}

	profile, err := h.accounts.Profile(ctx, uid)
	if err != nil {
		mapServiceError(c, err)
		return
	}

	msg, err := h.chats.SendMessage(ctx, chatID, domain.SenderAdmin, profile.Email, req.Text, true, nil)
	if err != nil {
		mapServiceError(c, err)
		return
	}

	if key, present := middleware.GetIdempotencyKey(c); present && key != "" {
		if _, err := repo.CreateIdempotency(ctx, h.db, uid, chatID, key, msg.ID, http.StatusCreated, h.idemTTL); err != nil && !errors.Is(err, repo.ErrDuplicate) {
			lg := middleware.LoggerFrom(c)
			lg.Warn().Err(err).Str("chat_id", chatID).Msg("could not record idempotency key")
		}
	}

	ok(c, http.StatusCreated, msg)
}

// AdminMarkRead godoc
// @Summary      Mark a chat as read by the operator
// @Description  Clears the admin-side unread flag only.
// @Tags         admin
// @Security     BearerAuth
// @Param        id  path  string  true  "Chat ID"
// @Success      204
// @Failure      404  {object}  ErrorResponse
// @Router       /admin/chats/{id}/read [post]
func (h *Handlers) AdminMarkRead(c *gin.Context) {
	chatID := c.Param("id")

	if err := h.chats.MarkChatAsRead(c.Request.Context(), chatID, true); err != nil {
		mapServiceError(c, err)
		return
	}
	noContent(c)
}
