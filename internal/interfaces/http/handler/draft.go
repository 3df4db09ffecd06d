package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appquotation "github.com/rental/backoffice/internal/application/quotation"
	"github.com/rental/backoffice/internal/domain/quotation"
	"github.com/rental/backoffice/internal/interfaces/http/dto"
	"github.com/rental/backoffice/internal/interfaces/http/middleware"
)

// DraftHandler handles quotation draft editing. Drafts belong to the
// session that opened them and are addressed by draft id and local handles.
type DraftHandler struct {
	BaseHandler
	editor *appquotation.Editor
}

// NewDraftHandler creates a new DraftHandler
func NewDraftHandler(editor *appquotation.Editor) *DraftHandler {
	return &DraftHandler{editor: editor}
}

// CreateDraftQuery optionally names a saved quotation to edit
type CreateDraftQuery struct {
	From int64 `form:"from" binding:"omitempty,gt=0"`
}

// SelectionRequest sets the active section and group. Empty strings clear
// the selection.
type SelectionRequest struct {
	Section string `json:"section" binding:"omitempty,numeric"`
	Group   string `json:"group" binding:"omitempty,numeric"`
}

// target resolves the caller's session and the draft id path parameter
func (h *DraftHandler) target(c *gin.Context) (owner, draftID uuid.UUID, ok bool) {
	var req dto.DraftRequest
	if err := c.ShouldBindUri(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return uuid.Nil, uuid.Nil, false
	}
	if owner, ok = h.sessionOwner(c); !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return owner, uuid.MustParse(req.DraftID), true
}

// part additionally resolves the :handle path parameter
func (h *DraftHandler) part(c *gin.Context) (owner, draftID uuid.UUID, handle quotation.Handle, ok bool) {
	var req dto.DraftPartRequest
	if err := c.ShouldBindUri(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return uuid.Nil, uuid.Nil, quotation.NoHandle, false
	}
	handle, err := quotation.ParseHandle(req.Handle)
	if err != nil {
		h.BadRequest(c, "Invalid handle")
		return uuid.Nil, uuid.Nil, quotation.NoHandle, false
	}
	if owner, ok = h.sessionOwner(c); !ok {
		return uuid.Nil, uuid.Nil, quotation.NoHandle, false
	}
	return owner, uuid.MustParse(req.DraftID), handle, true
}

// Create handles POST /drafts. With ?from=:id the saved quotation is loaded
// into the new draft.
func (h *DraftHandler) Create(c *gin.Context) {
	var q CreateDraftQuery
	if !h.bindQuery(c, &q) {
		return
	}
	owner, ok := h.sessionOwner(c)
	if !ok {
		return
	}

	var (
		draft *appquotation.DraftResponse
		err   error
	)
	if q.From > 0 {
		draft, err = h.editor.Open(c.Request.Context(), owner, q.From)
	} else {
		draft, err = h.editor.Create(c.Request.Context(), owner)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, draft)
}

// Get handles GET /drafts/:draftId
func (h *DraftHandler) Get(c *gin.Context) {
	owner, id, ok := h.target(c)
	if !ok {
		return
	}
	draft, err := h.editor.Get(owner, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, draft)
}

// Discard handles DELETE /drafts/:draftId
func (h *DraftHandler) Discard(c *gin.Context) {
	owner, id, ok := h.target(c)
	if !ok {
		return
	}
	if err := h.editor.Discard(owner, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// SetHeader handles PUT /drafts/:draftId/header
func (h *DraftHandler) SetHeader(c *gin.Context) {
	owner, id, ok := h.target(c)
	if !ok {
		return
	}
	var in quotation.HeaderInput
	if !h.bindJSON(c, &in) {
		return
	}
	h.respond(c)(h.editor.SetHeader(owner, id, in))
}

// SetRates handles PUT /drafts/:draftId/rates
func (h *DraftHandler) SetRates(c *gin.Context) {
	owner, id, ok := h.target(c)
	if !ok {
		return
	}
	var in quotation.RatesInput
	if !h.bindJSON(c, &in) {
		return
	}
	h.respond(c)(h.editor.SetRates(owner, id, in))
}

// AddSection handles POST /drafts/:draftId/sections
func (h *DraftHandler) AddSection(c *gin.Context) {
	owner, id, ok := h.target(c)
	if !ok {
		return
	}
	var in quotation.AddSectionInput
	if !h.bindJSON(c, &in) {
		return
	}
	h.respondCreated(c)(h.editor.AddSection(owner, id, in))
}

// RemoveSection handles DELETE /drafts/:draftId/sections/:handle
func (h *DraftHandler) RemoveSection(c *gin.Context) {
	owner, id, handle, ok := h.part(c)
	if !ok {
		return
	}
	h.respond(c)(h.editor.RemoveSection(owner, id, handle))
}

// AddGroup handles POST /drafts/:draftId/groups
func (h *DraftHandler) AddGroup(c *gin.Context) {
	owner, id, ok := h.target(c)
	if !ok {
		return
	}
	var in quotation.AddGroupInput
	if !h.bindJSON(c, &in) {
		return
	}
	h.respondCreated(c)(h.editor.AddGroup(owner, id, in))
}

// RemoveGroup handles DELETE /drafts/:draftId/groups/:handle
func (h *DraftHandler) RemoveGroup(c *gin.Context) {
	owner, id, handle, ok := h.part(c)
	if !ok {
		return
	}
	h.respond(c)(h.editor.RemoveGroup(owner, id, handle))
}

// AddItem handles POST /drafts/:draftId/items
func (h *DraftHandler) AddItem(c *gin.Context) {
	owner, id, ok := h.target(c)
	if !ok {
		return
	}
	var in quotation.AddItemInput
	if !h.bindJSON(c, &in) {
		return
	}
	h.respondCreated(c)(h.editor.AddItem(c.Request.Context(), owner, id, in))
}

// RemoveItem handles DELETE /drafts/:draftId/items/:handle
func (h *DraftHandler) RemoveItem(c *gin.Context) {
	owner, id, handle, ok := h.part(c)
	if !ok {
		return
	}
	h.respond(c)(h.editor.RemoveItem(owner, id, handle))
}

// Select handles PUT /drafts/:draftId/selection
func (h *DraftHandler) Select(c *gin.Context) {
	owner, id, ok := h.target(c)
	if !ok {
		return
	}
	var req SelectionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	section, err := optionalHandle(req.Section)
	if err != nil {
		h.BadRequest(c, "Invalid section handle")
		return
	}
	group, err := optionalHandle(req.Group)
	if err != nil {
		h.BadRequest(c, "Invalid group handle")
		return
	}
	h.respond(c)(h.editor.Select(owner, id, section, group))
}

// Submit handles POST /drafts/:draftId/submit. A new quotation answers 201,
// an edited one 200; both close the draft.
func (h *DraftHandler) Submit(c *gin.Context) {
	owner, id, ok := h.target(c)
	if !ok {
		return
	}
	result, err := h.editor.Submit(c.Request.Context(), owner, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if result.Created {
		h.Created(c, result)
		return
	}
	h.Success(c, result)
}

func (h *DraftHandler) respond(c *gin.Context) func(*appquotation.DraftResponse, error) {
	return func(draft *appquotation.DraftResponse, err error) {
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, draft)
	}
}

func (h *DraftHandler) respondCreated(c *gin.Context) func(*appquotation.MutationResult, error) {
	return func(result *appquotation.MutationResult, err error) {
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Created(c, result)
	}
}

func optionalHandle(s string) (quotation.Handle, error) {
	if s == "" {
		return quotation.NoHandle, nil
	}
	return quotation.ParseHandle(s)
}
