package handlers

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"nutriflow/form"
	"nutriflow/models"
	"nutriflow/pkg/types"
	"nutriflow/registration"
	"nutriflow/web"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// keepAliveInterval keeps idle event streams from being cut by proxies.
const keepAliveInterval = 25 * time.Second

// FormHandler serves the registration page and its JSON API.
type FormHandler struct {
	Forms    *form.Registry
	Workflow *registration.Workflow
	Pages    *web.Renderer
	Log      *zap.Logger
}

func NewFormHandler(forms *form.Registry, wf *registration.Workflow, pages *web.Renderer, log *zap.Logger) *FormHandler {
	return &FormHandler{Forms: forms, Workflow: wf, Pages: pages, Log: log}
}

// Index handles GET /. Every page view gets a fresh form.
func (h *FormHandler) Index(c *fiber.Ctx) error {
	id, st := h.Forms.Create()
	c.Type("html", "utf-8")
	if err := h.Pages.Page(c, web.NewPageData(id, st.Snapshot())); err != nil {
		h.Forms.Remove(id)
		h.Log.Error("failed to render page", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).SendString("failed to render page")
	}
	return nil
}

// Diets handles GET /api/diets
func (h *FormHandler) Diets(c *fiber.Ctx) error {
	diets := models.Diets()
	out := make([]types.DietInfo, 0, len(diets))
	for _, d := range diets {
		out = append(out, types.DietInfo{Name: d.String(), Slug: d.Slug(), Description: d.Description()})
	}
	return c.JSON(out)
}

// GetForm handles GET /api/forms/:id
func (h *FormHandler) GetForm(c *fiber.Ctx) error {
	st, ok := h.lookup(c)
	if !ok {
		return formNotFound(c)
	}
	return c.JSON(viewOf(c.Params("id"), st.Snapshot()))
}

// SetField handles PUT /api/forms/:id/fields/:field
func (h *FormHandler) SetField(c *fiber.Ctx) error {
	st, ok := h.lookup(c)
	if !ok {
		return formNotFound(c)
	}

	field, err := form.ParseField(c.Params("field"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var body types.FieldUpdate
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to parse request body",
		})
	}

	if err := st.SetField(field, body.Value); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(viewOf(c.Params("id"), st.Snapshot()))
}

// Register handles POST /api/forms/:id/register
func (h *FormHandler) Register(c *fiber.Ctx) error {
	st, ok := h.lookup(c)
	if !ok {
		return formNotFound(c)
	}

	out := h.Workflow.Register(c.UserContext(), st)
	resp := types.RegisterResponse{Status: out.Status, Registered: out.OK()}
	if errors.Is(out.Err, registration.ErrInFlight) {
		return c.Status(fiber.StatusConflict).JSON(resp)
	}
	return c.JSON(resp)
}

// Reset handles POST /api/forms/:id/reset
func (h *FormHandler) Reset(c *fiber.Ctx) error {
	st, ok := h.lookup(c)
	if !ok {
		return formNotFound(c)
	}
	st.Reset()
	return c.JSON(viewOf(c.Params("id"), st.Snapshot()))
}

// Discard handles DELETE /api/forms/:id, sent when the page is left.
func (h *FormHandler) Discard(c *fiber.Ctx) error {
	if !h.Forms.Remove(c.Params("id")) {
		return formNotFound(c)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Events handles GET /api/forms/:id/events. Each change to the form is
// pushed as one server-sent event carrying the form view.
func (h *FormHandler) Events(c *fiber.Ctx) error {
	id := c.Params("id")
	st, ok := h.lookup(c)
	if !ok {
		return formNotFound(c)
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	// Only the latest snapshot matters; older ones are dropped.
	updates := make(chan form.Snapshot, 1)
	cancel := st.Subscribe(func(s form.Snapshot) {
		for {
			select {
			case updates <- s:
				return
			default:
			}
			select {
			case <-updates:
			default:
			}
		}
	})

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()
		ticker := time.NewTicker(keepAliveInterval)
		defer ticker.Stop()

		if err := writeEvent(w, viewOf(id, st.Snapshot())); err != nil {
			return
		}
		for {
			select {
			case s := <-updates:
				if err := writeEvent(w, viewOf(id, s)); err != nil {
					return
				}
			case <-ticker.C:
				// an open stream keeps the form alive
				h.Forms.Get(id)
				if _, err := w.WriteString(": keep-alive\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			case <-st.Done():
				return
			}
		}
	}))
	return nil
}

func (h *FormHandler) lookup(c *fiber.Ctx) (*form.State, bool) {
	return h.Forms.Get(c.Params("id"))
}

func formNotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "form not found"})
}

func viewOf(id string, s form.Snapshot) types.FormView {
	return types.FormView{
		ID:        id,
		FullName:  s.Values.FullName,
		Email:     s.Values.Email,
		Diet:      string(s.Values.Diet),
		Allergies: s.Values.Allergies,
		Goal:      s.Values.Goal,
		Status:    s.Status,
		Version:   s.Version,
	}
}

func writeEvent(w *bufio.Writer, v types.FormView) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	return w.Flush()
}
