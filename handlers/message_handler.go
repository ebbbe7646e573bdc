package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/csrf"

	"warbler/dto"
	"warbler/forms"
	"warbler/models"
	"warbler/monitoring"
	"warbler/repositories"
)

// MessageHandler handles the home timeline and message pages
type MessageHandler struct {
	*Handler
}

func NewMessageHandler(h *Handler) *MessageHandler {
	return &MessageHandler{Handler: h}
}

// Home shows the landing page, or the timeline of the current user and
// the users they follow
func (h *MessageHandler) Home(w http.ResponseWriter, r *http.Request) {
	curr := CurrentUser(r)
	if curr == nil {
		h.render(w, r, http.StatusOK, "home_anon", "", nil)
		return
	}

	messages, err := h.messages.Timeline(r.Context(), curr.ID, TimelineLimit)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	list, err := h.messageList(r, messages)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "home", "Home", list)
}

// New shows the compose form and posts the message on POST
func (h *MessageHandler) New(w http.ResponseWriter, r *http.Request) {
	curr, ok := h.requireLogin(w, r)
	if !ok {
		return
	}

	if r.Method == http.MethodGet {
		h.render(w, r, http.StatusOK, "messages_new", "New Message", nil)
		return
	}

	var form forms.MessageForm
	if err := forms.Decode(r, &form); err != nil {
		h.render(w, r, http.StatusBadRequest, "messages_new", "New Message", &form, notices(flashDanger, forms.Errors(err)...)...)
		return
	}

	msg := &models.Message{Text: form.Text, UserID: curr.ID}
	if err := h.messages.Create(r.Context(), msg); err != nil {
		h.serverError(w, r, err)
		return
	}
	monitoring.MessagesPosted.Inc()
	http.Redirect(w, r, userURL(curr.ID, ""), http.StatusFound)
}

// Show renders a single message
func (h *MessageHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.NotFound(w, r)
		return
	}

	msg, err := h.messages.FindByID(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	list, err := h.messageList(r, []models.Message{*msg})
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "messages_show", "Message", list.Items[0])
}

// Delete removes one of the current user's messages
func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	curr, ok := h.requireLogin(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		h.NotFound(w, r)
		return
	}

	msg, err := h.messages.FindByID(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if msg.UserID != curr.ID {
		h.flash(w, r, flashDanger, "Access unauthorized.")
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	if err := h.messages.Delete(r.Context(), id); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		h.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, userURL(curr.ID, ""), http.StatusFound)
}

// messageList prepares messages for the viewer, marking what they like
func (h *Handler) messageList(r *http.Request, messages []models.Message) (dto.MessageList, error) {
	viewer := CurrentUser(r)
	if viewer == nil {
		return dto.MessageList{Items: dto.NewMessageDTOs(messages, nil, 0)}, nil
	}

	liked, err := h.messages.LikedIDs(r.Context(), viewer.ID)
	if err != nil {
		return dto.MessageList{}, err
	}
	return dto.MessageList{
		Items:     dto.NewMessageDTOs(messages, liked, viewer.ID),
		CanLike:   true,
		CSRFField: csrf.TemplateField(r),
	}, nil
}
