package smtp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/viper"
	"gopkg.in/gomail.v2"

	"github.com/teamthreads/storefront/order/internal/dal/interfaces/inotifier"
)

// Client is the SMTP notifier.
type Client struct {
	dialer *gomail.Dialer
	from   string
}

// MustNewClient creates a new SMTP client.
func MustNewClient() *Client {
	dialer := gomail.NewDialer(
		viper.GetString("smtp.host"),
		viper.GetInt("smtp.port"),
		os.Getenv("STOREFRONT_SMTP_USER"),
		os.Getenv("STOREFRONT_SMTP_PASSWORD"),
	)

	return &Client{
		dialer: dialer,
		from:   viper.GetString("smtp.from"),
	}
}

// Send delivers one notification. The context deadline is honored before
// dialing; gomail itself does not take a context.
func (c *Client) Send(ctx context.Context, msg inotifier.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", c.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	if msg.ReplyTo != "" {
		m.SetHeader("Reply-To", msg.ReplyTo)
	}
	m.SetBody("text/html", msg.HTML)

	for _, att := range msg.Attachments {
		data := att.Data
		m.Attach(att.Filename,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := io.Copy(w, bytes.NewReader(data))

				return err
			}),
		)
	}

	if err := c.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", msg.To, err)
	}

	return nil
}
