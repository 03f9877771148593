package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESLockNotifier sends account-locked security notices through AWS SES.
type SESLockNotifier struct {
	sesClient   *ses.Client
	fromAddress string
	portalName  string
	logger      *slog.Logger
}

func NewSESLockNotifier(region, fromAddress, portalName string, logger *slog.Logger) (*SESLockNotifier, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &SESLockNotifier{
		sesClient:   ses.NewFromConfig(cfg),
		fromAddress: fromAddress,
		portalName:  portalName,
		logger:      logger,
	}, nil
}

// NotifyAccountLocked tells the account holder their account was locked
// after repeated failed logins, and when it unlocks.
func (s *SESLockNotifier) NotifyAccountLocked(ctx context.Context, email, name string, until time.Time) error {
	if name == "" {
		name = "there"
	}
	unlockAt := until.UTC().Format("02 Jan 2006 15:04 MST")

	subject := fmt.Sprintf("%s: your account has been temporarily locked", s.portalName)

	textBody := fmt.Sprintf(`Hi %s,

Your %s account was locked after repeated failed sign-in attempts.

The lock lifts automatically at %s. If you need access sooner, contact an
administrator to unlock your account.

If these attempts were not yours, please change your password once the
account is unlocked.

This is an automated message. Please do not reply to this email.
`, name, s.portalName, unlockAt)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <p>Hi %s,</p>
  <p>Your <strong>%s</strong> account was locked after repeated failed sign-in attempts.</p>
  <p>The lock lifts automatically at <strong>%s</strong>. If you need access sooner,
  contact an administrator to unlock your account.</p>
  <p>If these attempts were not yours, please change your password once the
  account is unlocked.</p>
  <p style="color: #666; font-size: 12px;">This is an automated message. Please do not reply to this email.</p>
</body>
</html>`, name, s.portalName, unlockAt)

	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{email},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(subject),
			},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(htmlBody)},
				Text: &types.Content{Data: aws.String(textBody)},
			},
		},
	}

	result, err := s.sesClient.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send lock notification: %w", err)
	}

	s.logger.Info("lock notification sent", slog.String("message_id", aws.ToString(result.MessageId)))
	return nil
}
