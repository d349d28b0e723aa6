package services

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/cardioshield/predictor/internal/logger"
	"github.com/cardioshield/predictor/internal/templates"
)

// AdminTokenSubject is the subject line of admin token emails
const AdminTokenSubject = "CardioShield Admin Authentication Token"

// SESClient is the subset of the SES v2 client used for sending
type SESClient interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService handles email sending via AWS SES
type EmailService struct {
	client    SESClient
	fromEmail string
	templates *templates.TemplateRenderer
	log       logger.Logger
}

// EmailConfig holds configuration for email service
type EmailConfig struct {
	// FromEmail is the email address that will appear in the From field
	FromEmail string
	// Region is the AWS region for SES (e.g., "us-east-1", "eu-west-1")
	Region string
}

// NewEmailService creates an email service backed by a real SES client
func NewEmailService(ctx context.Context, cfg *EmailConfig, renderer *templates.TemplateRenderer, log logger.Logger) (*EmailService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("email config is required")
	}

	// Default credentials chain: environment, shared config, then IAM role
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewEmailServiceWithClient(sesv2.NewFromConfig(awsCfg), cfg, renderer, log)
}

// NewEmailServiceWithClient creates an email service around an existing client
func NewEmailServiceWithClient(client SESClient, cfg *EmailConfig, renderer *templates.TemplateRenderer, log logger.Logger) (*EmailService, error) {
	if client == nil {
		return nil, fmt.Errorf("SES client is required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("email config is required")
	}
	if cfg.FromEmail == "" {
		return nil, fmt.Errorf("from email is required")
	}
	if renderer == nil {
		var err error
		if renderer, err = templates.NewTemplateRenderer(); err != nil {
			return nil, fmt.Errorf("failed to initialize templates: %w", err)
		}
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &EmailService{
		client:    client,
		fromEmail: cfg.FromEmail,
		templates: renderer,
		log:       log.With(logger.String("component", "email")),
	}, nil
}

// SendAdminToken sends an admin authentication token via email
func (s *EmailService) SendAdminToken(ctx context.Context, toEmail string, token string, expiresAt time.Time) error {
	if toEmail == "" {
		return fmt.Errorf("recipient email is required")
	}
	if token == "" {
		return fmt.Errorf("token is required")
	}

	htmlBody, err := s.templates.RenderAdminTokenHTML(token, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to render HTML template: %w", err)
	}

	textBody, err := s.templates.RenderAdminTokenText(token, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to render text template: %w", err)
	}

	if err := s.sendEmail(ctx, toEmail, AdminTokenSubject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send admin token email: %w", err)
	}

	return nil
}

// sendEmail sends an email via AWS SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.fromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("SES SendEmail failed: %w", err)
	}

	fields := []logger.Field{logger.String("to", toEmail)}
	if result != nil && result.MessageId != nil {
		fields = append(fields, logger.String("message_id", *result.MessageId))
	}
	s.log.Info("Email sent", fields...)

	return nil
}
