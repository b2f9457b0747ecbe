package notifications

import (
	"context"
	"errors"
	"fmt"

	phxlog "birthdaybook/pkg/log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"
)

// SESAPI é o subconjunto do cliente sesv2 usado aqui.
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESEmailNotifier implementa EmailNotifier usando AWS SES.
type SESEmailNotifier struct {
	client SESAPI
	sender string
}

// NewSESEmailNotifier carrega a configuração padrão do SDK para a região informada.
func NewSESEmailNotifier(ctx context.Context, region, sender string) (*SESEmailNotifier, error) {
	if region == "" || sender == "" {
		return nil, errors.New("AWS_REGION and MAIL_SENDER are required for SES")
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config for SES: %w", err)
	}
	return &SESEmailNotifier{client: sesv2.NewFromConfig(cfg), sender: sender}, nil
}

func (s *SESEmailNotifier) Send(ctx context.Context, to, subject, body string) error {
	if s.client == nil {
		return errors.New("SES client not initialized")
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.sender),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Body: &types.Body{
					Text: &types.Content{
						Data:    aws.String(body),
						Charset: aws.String("UTF-8"),
					},
				},
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("ses send: %w", err)
	}
	phxlog.L.Info("Successfully sent email", zap.String("recipient", to), zap.String("subject", subject))
	return nil
}
