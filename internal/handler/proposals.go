package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/classroom-seating/internal/model"
	"github.com/iliyamo/classroom-seating/internal/service"
)

// ProposalHandler serves /v1/proposals.
type ProposalHandler struct {
	Proposals *service.ProposalService
}

func NewProposalHandler(ps *service.ProposalService) *ProposalHandler {
	return &ProposalHandler{Proposals: ps}
}

// Create handles POST /v1/proposals.
func (h *ProposalHandler) Create(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return fail(c, err)
	}
	var in service.ProposalInput
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	p, err := h.Proposals.Create(c.Request().Context(), actor, in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

// Update handles PUT /v1/proposals/:id.
func (h *ProposalHandler) Update(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var in service.ProposalInput
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	p, err := h.Proposals.Update(c.Request().Context(), actor, id, in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProposalHandler) Get(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	p, err := h.Proposals.Get(c.Request().Context(), actor, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// List handles GET /v1/proposals?status=&role=author|reviewer&limit=.
func (h *ProposalHandler) List(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return fail(c, err)
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return fail(c, err)
	}
	status := model.ProposalStatus(c.QueryParam("status"))
	switch status {
	case "", model.ProposalDraft, model.ProposalPending, model.ProposalApproved, model.ProposalRejected:
	default:
		return fail(c, service.NewValidationError(nil, service.FieldError{Field: "status", Error: "unknown status"}))
	}
	ps, err := h.Proposals.List(c.Request().Context(), actor, c.QueryParam("role"), status, limit)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"proposals": ps})
}

// Submit handles POST /v1/proposals/:id/submit.
func (h *ProposalHandler) Submit(c echo.Context) error {
	return h.transition(c, h.Proposals.Submit)
}

// Approve handles POST /v1/proposals/:id/approve.
func (h *ProposalHandler) Approve(c echo.Context) error {
	return h.transition(c, h.Proposals.Approve)
}

// Reject handles POST /v1/proposals/:id/reject with a {"reason"} body.
func (h *ProposalHandler) Reject(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if err := bind(c, &body); err != nil {
		return fail(c, err)
	}
	p, err := h.Proposals.Reject(c.Request().Context(), actor, id, body.Reason)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

type proposalStep func(ctx context.Context, actor model.Actor, id uint64) (*model.Proposal, error)

func (h *ProposalHandler) transition(c echo.Context, step proposalStep) error {
	actor, err := actorOf(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	p, err := step(c.Request().Context(), actor, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}
