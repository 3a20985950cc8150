package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/evamaria/fanchat-backend/internal/domain"
	"github.com/evamaria/fanchat-backend/internal/http/middleware"
	"github.com/evamaria/fanchat-backend/internal/persona"
)

// AIChatRequest is the conversation payload for the persona endpoint. The
// messages array is the client's view of the conversation so far, oldest
// first, with roles "user" and "assistant".
type AIChatRequest struct {
	Messages []persona.Turn `json:"messages"`
	Language string         `json:"language" example:"en"`
}

// AIChatResponse carries the persona reply and an optional generated image.
type AIChatResponse struct {
	Response string  `json:"response"`
	ImageURL *string `json:"imageUrl,omitempty"`
}

// AIErrorResponse is the flat error shape of the persona endpoint. It keeps
// the `error` key the web client expects rather than the standard envelope.
type AIErrorResponse struct {
	Error string `json:"error" example:"Invalid messages format"`
}

// AIChat godoc
// @Summary      Persona reply
// @Description  Generates an in-character reply to the supplied conversation
// @Description  and appends it to the caller's support chat as the
// @Description  "assistant" sender. Replies are paced with a short delay and
// @Description  may include a generated image URL.
// @Tags         ai
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      AIChatRequest  true  "Conversation so far"
// @Success      200      {object}  AIChatResponse
// @Failure      400      {object}  AIErrorResponse
// @Failure      500      {object}  AIErrorResponse
// @Router       /ai/chat [post]
func (h *Handlers) AIChat(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserID)
	ctx := c.Request.Context()

	var raw struct {
		Messages json.RawMessage `json:"messages"`
		Language string          `json:"language"`
	}
	if err := c.ShouldBindJSON(&raw); err != nil || len(raw.Messages) == 0 {
		middleware.CountPersonaReply("bad_input")
		c.AbortWithStatusJSON(http.StatusBadRequest, AIErrorResponse{Error: "Invalid messages format"})
		return
	}

	var history []persona.Turn
	if err := json.Unmarshal(raw.Messages, &history); err != nil {
		middleware.CountPersonaReply("bad_input")
		c.AbortWithStatusJSON(http.StatusBadRequest, AIErrorResponse{Error: "Invalid messages format"})
		return
	}

	reply, err := h.respond.Reply(ctx, history, raw.Language)
	if err != nil {
		h.aiError(c, err)
		return
	}
	middleware.CountPersonaReply("ok")

	// The reply also lands in the caller's support thread so that both the
	// user's transcript and the admin inbox stay consistent with what the
	// client rendered.
	if profile, perr := h.accounts.Profile(ctx, uid); perr == nil {
		if chat, cerr := h.chats.GetOrCreateChat(ctx, uid, profile.Email); cerr == nil {
			if _, serr := h.chats.SendMessage(ctx, chat.ID, domain.SenderAssistant, profile.Email, reply.Text, true, reply.ImageURL); serr != nil {
				lg := middleware.LoggerFrom(c)
				lg.Warn().Err(serr).Str("chat_id", chat.ID).Msg("could not persist persona reply")
			}
		}
	}

	ok(c, http.StatusOK, AIChatResponse{Response: reply.Text, ImageURL: reply.ImageURL})
}

func (h *Handlers) aiError(c *gin.Context, err error) {
	lg := middleware.LoggerFrom(c)

	switch {
	case errors.Is(err, persona.ErrBadHistory):
		middleware.CountPersonaReply("bad_input")
		c.AbortWithStatusJSON(http.StatusBadRequest, AIErrorResponse{Error: "Invalid messages format"})
	case errors.Is(err, persona.ErrNotConfigured):
		middleware.CountPersonaReply("not_configured")
		lg.Error().Msg("persona reply requested without an API key")
		c.AbortWithStatusJSON(http.StatusInternalServerError, AIErrorResponse{Error: "OpenAI API key not configured"})
	default:
		middleware.CountPersonaReply("upstream_error")
		lg.Error().Err(err).Msg("persona reply failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, AIErrorResponse{Error: "Failed to generate AI response"})
	}
}
