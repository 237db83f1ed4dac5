package ml

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/option"
)

// GoogleConfig holds configuration for the Vertex AI recognizer
type GoogleConfig struct {
	ProjectID       string `mapstructure:"project_id"`
	Location        string `mapstructure:"location"`
	CredentialsFile string `mapstructure:"credentials_file"`
	Model           string `mapstructure:"model"`
}

func (c *GoogleConfig) applyEnv() {
	envFallback(&c.ProjectID, "GOOGLE_PROJECT_ID")
	envFallback(&c.Location, "GOOGLE_LOCATION")
	envFallback(&c.CredentialsFile, "GOOGLE_CREDENTIALS_FILE")
	if c.Model == "" {
		c.Model = "gemini-1.5-flash"
	}
}

const transcribePrompt = `This image shows the ingredient list of a packaged food product.
Transcribe the ingredient list exactly as printed, in its original language.
Reply with the ingredients only, separated by commas, without any commentary.
If no ingredient list is visible, reply with an empty message.`

// GoogleRecognizer transcribes labels with a Gemini vision model on Vertex AI
type GoogleRecognizer struct {
	config GoogleConfig
	client *genai.Client
	model  *genai.GenerativeModel
}

// GoogleRecognizerFactory implements RecognizerFactory for Google models
type GoogleRecognizerFactory struct {
	config GoogleConfig
}

// NewGoogleRecognizerFactory creates a new Google recognizer factory
func NewGoogleRecognizerFactory(config GoogleConfig) *GoogleRecognizerFactory {
	config.applyEnv()
	return &GoogleRecognizerFactory{config: config}
}

// CreateRecognizer creates a new Google recognizer instance
func (f *GoogleRecognizerFactory) CreateRecognizer() (Recognizer, error) {
	if f.config.ProjectID == "" {
		return nil, fmt.Errorf("google recognizer requires a project id")
	}
	return &GoogleRecognizer{config: f.config}, nil
}

// Load initializes the Vertex AI client
func (r *GoogleRecognizer) Load(ctx context.Context) error {
	opts := []option.ClientOption{}

	if r.config.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(r.config.CredentialsFile))
	}

	client, err := genai.NewClient(ctx, r.config.ProjectID, r.config.Location, opts...)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	r.client = client
	r.model = client.GenerativeModel(r.config.Model)
	r.model.SetTemperature(0)
	return nil
}

// Close releases the Vertex AI client
func (r *GoogleRecognizer) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}

// RecognizeText asks the model to transcribe the ingredient list
func (r *GoogleRecognizer) RecognizeText(ctx context.Context, imageData []byte) (string, error) {
	if r.model == nil {
		return "", fmt.Errorf("%w: model not loaded", ErrRecognition)
	}

	img := genai.ImageData(imageFormat(imageData), imageData)

	resp, err := r.model.GenerateContent(ctx, genai.Text(transcribePrompt), img)
	if err != nil {
		if ctx.Err() != nil {
			return "", cancelled(ctx)
		}
		return "", fmt.Errorf("%w: failed to call ai: %w", ErrRecognition, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("%w: no response generated", ErrRecognition)
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("%w: no text found in image", ErrRecognition)
	}
	return text, nil
}

// imageFormat returns the short image format genai.ImageData expects
func imageFormat(data []byte) string {
	switch http.DetectContentType(data) {
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	default:
		return "jpeg"
	}
}
