package handlers

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/cardioshield/predictor/internal/classifier"
	"github.com/cardioshield/predictor/internal/logger"
	"github.com/cardioshield/predictor/internal/models"
	"github.com/cardioshield/predictor/internal/services"
	"github.com/cardioshield/predictor/internal/templates"
)

// PageHandler serves the prediction form
type PageHandler struct {
	predictor Predictor
	catalog   ModelCatalog
	renderer  *templates.TemplateRenderer
	log       logger.Logger
}

// NewPageHandler creates a new page handler
func NewPageHandler(predictor Predictor, catalog ModelCatalog, renderer *templates.TemplateRenderer, log logger.Logger) *PageHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &PageHandler{
		predictor: predictor,
		catalog:   catalog,
		renderer:  renderer,
		log:       log,
	}
}

// Show handles GET / and renders the form with its defaults
func (h *PageHandler) Show(c *gin.Context) {
	data := templates.NewPageData(h.choices(""), models.DefaultPatientInput())
	h.render(c, http.StatusOK, data)
}

// Submit handles POST /: it keeps the submitted values and shows either the
// result, the unavailable-model error or inline field errors
func (h *PageHandler) Submit(c *gin.Context) {
	input := models.DefaultPatientInput()
	modelName := c.PostForm("model")

	data := templates.NewPageData(h.choices(modelName), input)
	if modelName == "" && len(data.Models) > 0 {
		modelName = data.Models[0].Name
	}

	// Fields absent from the form keep their defaults; an unchecked box is absent
	if err := c.ShouldBindWith(&input, binding.Form); err != nil {
		data.Input = input
		data.FormError = "The form could not be read: " + err.Error()
		h.render(c, http.StatusBadRequest, data)
		return
	}
	data.Input = input

	prediction, err := h.predictor.Predict(c.Request.Context(), modelName, input)
	if err != nil {
		var inputErr *services.InputError
		switch {
		case errors.As(err, &inputErr):
			data.FieldErrors = inputErr.Fields()
			h.render(c, http.StatusBadRequest, data)
		case errors.Is(err, classifier.ErrModelUnavailable):
			data.ModelError = templates.ModelUnavailableMessage(modelName)
			h.render(c, http.StatusOK, data)
		case errors.Is(err, classifier.ErrUnknownModel):
			data.FieldErrors["model"] = "unknown model: " + modelName
			h.render(c, http.StatusBadRequest, data)
		default:
			h.log.Error("Prediction failed", logger.String("model", modelName), logger.Error(err))
			data.FormError = "The prediction could not be completed. Please try again."
			h.render(c, http.StatusInternalServerError, data)
		}
		return
	}

	data.Result = &prediction
	h.render(c, http.StatusOK, data)
}

// choices lists every model with its availability; selected defaults to the first
func (h *PageHandler) choices(selected string) []templates.ModelChoice {
	status := h.catalog.Status()
	out := make([]templates.ModelChoice, len(status))
	found := false
	for i, s := range status {
		out[i] = templates.ModelChoice{Name: s.Name, Available: s.Available, Selected: s.Name == selected}
		found = found || out[i].Selected
	}
	if !found && len(out) > 0 {
		out[0].Selected = true
	}
	return out
}

func (h *PageHandler) render(c *gin.Context, status int, data templates.PageData) {
	var buf bytes.Buffer
	if err := h.renderer.RenderPage(&buf, data); err != nil {
		h.log.Error("Failed to render page", logger.Error(err))
		c.String(http.StatusInternalServerError, "Internal server error")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}
