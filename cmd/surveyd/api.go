package main

import (
	"errors"
	"net/http"
	"voicesurvey-backend/lib/interaction"
	"voicesurvey-backend/services/survey"

	"github.com/labstack/echo/v4"
)

type handler struct {
	service *survey.Service
}

func (h handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/v1/validate/:provider", h.Validate)
	e.POST("/v1/sessions", h.StartSession)
	e.GET("/v1/sessions/:id/next", h.Next)
	e.DELETE("/v1/sessions/:id", h.EndSession)
	e.GET("/health", h.Health)
}

func (h handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type validateResponse struct {
	Status              string   `json:"status"`
	IneligibilityReason string   `json:"ineligibility_reason,omitempty"`
	Interactions        int      `json:"interactions"`
	Errors              []string `json:"errors,omitempty"`
}

// Validate runs a provider's login/eligibility check. The frontend
// maps the returned status onto one of its four fixed messages.
// POST /v1/validate/:provider
func (h handler) Validate(c echo.Context) error {
	ctx := c.Request().Context()
	provider := survey.Provider(c.Param("provider"))

	result, err := h.service.Validate(ctx, provider)
	if errors.Is(err, survey.ErrUnknownProvider) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "unknown provider"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	res := validateResponse{
		Status:              string(result.Status),
		IneligibilityReason: result.IneligibilityReason,
		Interactions:        len(result.Interactions),
	}
	for _, e := range result.Errors {
		res.Errors = append(res.Errors, e.Error())
	}
	return c.JSON(http.StatusOK, res)
}

type startSessionRequest struct {
	Provider string `json:"provider"`
}

// StartSession opens a fresh sampling session over the last stashed
// snapshot for a provider.
// POST /v1/sessions
func (h handler) StartSession(c echo.Context) error {
	ctx := c.Request().Context()

	var req startSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Provider == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "provider is required"})
	}

	id, remaining, err := h.service.StartSession(ctx, survey.Provider(req.Provider))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"id":           id,
		"interactions": remaining,
	})
}

// Next samples one unseen interaction from the session.
// GET /v1/sessions/:id/next
func (h handler) Next(c echo.Context) error {
	ctx := c.Request().Context()

	i, err := h.service.Next(ctx, c.Param("id"))
	if errors.Is(err, survey.ErrNoSession) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "unknown session"})
	}
	if errors.Is(err, interaction.ErrAllSeen) {
		return c.JSON(http.StatusGone, map[string]string{"error": "session exhausted"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"url":                 i.Url,
		"transcript":          i.Transcript,
		"timestamp":           i.Timestamp,
		"recording_available": i.RecordingAvailable,
	})
}

// DELETE /v1/sessions/:id
func (h handler) EndSession(c echo.Context) error {
	h.service.EndSession(c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}
