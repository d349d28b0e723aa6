package templates

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	text_template "text/template"
	"time"

	"github.com/cardioshield/predictor/internal/models"
)

//go:embed emails/*.html
var htmlTemplates embed.FS

//go:embed emails/*.txt
var textTemplates embed.FS

//go:embed pages/*.html
var pageTemplates embed.FS

// Page text shown above the form
const (
	PageTitle   = "Welcome to My Heart Disease Prediction App"
	PageTagline = "CardioShield: Early Prediction for a Safer Tomorrow"
)

// ModelChoice is one entry of the model dropdown
type ModelChoice struct {
	Name      string
	Available bool
	Selected  bool
}

// Bounds holds the numeric limits rendered into the form
type Bounds struct {
	AgeMin, AgeMax                   int
	RestingBPMin, RestingBPMax       int
	CholesterolMin, CholesterolMax   int
	MaxHeartRateMin, MaxHeartRateMax int
	OldpeakMin, OldpeakMax           float64
	OldpeakStep                      float64
}

// PageData is everything the prediction page renders
type PageData struct {
	Title   string
	Tagline string

	Models []ModelChoice
	Input  models.PatientInput

	SexOptions       []models.Option
	ChestPainOptions []models.Option
	RestECGOptions   []models.Option
	SlopeOptions     []models.Option
	Bounds           Bounds

	// FieldErrors maps a form field name to its inline message
	FieldErrors map[string]string

	// Result is set after a successful prediction
	Result *models.Prediction

	// ModelError is set when the chosen model is unavailable
	ModelError string

	// FormError is set when the submission could not be processed
	FormError string

	Disclaimer string
}

// NewPageData returns page data with the fixed text, options and bounds filled in
func NewPageData(choices []ModelChoice, input models.PatientInput) PageData {
	return PageData{
		Title:            PageTitle,
		Tagline:          PageTagline,
		Models:           choices,
		Input:            input,
		SexOptions:       models.SexOptions,
		ChestPainOptions: models.ChestPainOptions,
		RestECGOptions:   models.RestECGOptions,
		SlopeOptions:     models.SlopeOptions,
		Bounds: Bounds{
			AgeMin:          models.AgeMin,
			AgeMax:          models.AgeMax,
			RestingBPMin:    models.RestingBPMin,
			RestingBPMax:    models.RestingBPMax,
			CholesterolMin:  models.CholesterolMin,
			CholesterolMax:  models.CholesterolMax,
			MaxHeartRateMin: models.MaxHeartRateMin,
			MaxHeartRateMax: models.MaxHeartRateMax,
			OldpeakMin:      models.OldpeakMin,
			OldpeakMax:      models.OldpeakMax,
			OldpeakStep:     models.OldpeakStep,
		},
		FieldErrors: map[string]string{},
		Disclaimer:  models.Disclaimer,
	}
}

// ModelUnavailableMessage is the error shown when the chosen model is not loaded
func ModelUnavailableMessage(name string) string {
	return fmt.Sprintf("The selected model (%s) is not available. Please ensure the model is trained and saved.", name)
}

// TemplateRenderer manages loading and rendering of page and email templates
type TemplateRenderer struct {
	htmlTemplates *template.Template
	textTemplates *text_template.Template
	pages         *template.Template
}

// AdminTokenData holds data for admin token email template
type AdminTokenData struct {
	Token              string
	ExpiresInHours     int
	ExpiresAtFormatted string
}

var pageFuncs = template.FuncMap{
	"oneDecimal": func(v float64) string { return fmt.Sprintf("%.1f", v) },
}

// NewTemplateRenderer parses every embedded template
func NewTemplateRenderer() (*TemplateRenderer, error) {
	htmlTmpl, err := template.ParseFS(htmlTemplates, "emails/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to load HTML templates: %w", err)
	}

	textTmpl, err := text_template.ParseFS(textTemplates, "emails/*.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to load text templates: %w", err)
	}

	pages, err := template.New("pages").Funcs(pageFuncs).ParseFS(pageTemplates, "pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to load page templates: %w", err)
	}

	return &TemplateRenderer{
		htmlTemplates: htmlTmpl,
		textTemplates: textTmpl,
		pages:         pages,
	}, nil
}

// RenderPage writes the prediction page
func (t *TemplateRenderer) RenderPage(w io.Writer, data PageData) error {
	if err := t.pages.ExecuteTemplate(w, "index.html", data); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	return nil
}

func adminTokenData(token string, expiresAt time.Time) AdminTokenData {
	return AdminTokenData{
		Token:              token,
		ExpiresInHours:     int(time.Until(expiresAt).Round(time.Hour).Hours()),
		ExpiresAtFormatted: expiresAt.UTC().Format("2006-01-02 15:04:05 MST"),
	}
}

// RenderAdminTokenHTML renders the HTML email for admin token
func (t *TemplateRenderer) RenderAdminTokenHTML(token string, expiresAt time.Time) (string, error) {
	var buf strings.Builder
	if err := t.htmlTemplates.ExecuteTemplate(&buf, "admin_token.html", adminTokenData(token, expiresAt)); err != nil {
		return "", fmt.Errorf("failed to render HTML template: %w", err)
	}

	return buf.String(), nil
}

// RenderAdminTokenText renders the text email for admin token
func (t *TemplateRenderer) RenderAdminTokenText(token string, expiresAt time.Time) (string, error) {
	var buf strings.Builder
	if err := t.textTemplates.ExecuteTemplate(&buf, "admin_token.txt", adminTokenData(token, expiresAt)); err != nil {
		return "", fmt.Errorf("failed to render text template: %w", err)
	}

	return buf.String(), nil
}
