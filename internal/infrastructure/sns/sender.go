package sns

import (
	"context"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/learnhub/user-service/internal/config"
	"github.com/learnhub/user-service/internal/domain"
)

// SMSSender sends SMS messages via AWS SNS.
type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type sender struct {
	client *sns.Client
}

func NewSender(cfg *config.Config) (SMSSender, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.SNSRegion),
	)
	if err != nil {
		return nil, err
	}
	return &sender{client: sns.NewFromConfig(awsCfg)}, nil
}

func (s *sender) SendSMS(ctx context.Context, to, message string) error {
	_, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber: &to,
		Message:     &message,
	})
	return err
}

// Notifier delivers one-time codes over SMS. Used when the deployment is
// configured with NOTIFY_CHANNEL=sms and identities are phone numbers.
type Notifier struct {
	sms SMSSender
}

func NewNotifier(sms SMSSender) *Notifier {
	return &Notifier{sms: sms}
}

func (n *Notifier) Send(ctx context.Context, identity, code, purpose string) error {
	msg := "LearnHub verification code: " + code
	if purpose == domain.OTPPurposePasswordReset {
		msg = "LearnHub password reset code: " + code
	}
	return n.sms.SendSMS(ctx, identity, msg)
}
