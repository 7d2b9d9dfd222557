package mail

import (
	"fmt"
	"io"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
	gomail "gopkg.in/gomail.v2"

	"github.com/mbenitez/tienda/internal/config"
	"github.com/mbenitez/tienda/internal/models"
)

type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func New(cfg *config.Config) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password),
		from:   cfg.SMTP.From,
	}
}

func (m *Mailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return m.dialer.DialAndSend(msg)
}

// SendPurchaseReceipt mails the itemized ticket with a QR code of the
// ticket code attached.
func (m *Mailer) SendPurchaseReceipt(to, firstName string, ticket *models.Ticket) error {
	var details strings.Builder
	for _, item := range ticket.Items {
		fmt.Fprintf(&details, "Producto: %s\nPrecio unitario: $%s\nCantidad: %d\n\n",
			item.ProductName, item.UnitPrice.String(), item.Quantity)
	}

	body := fmt.Sprintf(
		"Hola %s!\n\nAquí está el número de ticket: %s\n\n%sPrecio total: $%s\n\nEsperamos vuelvas",
		firstName, ticket.Code, details.String(), ticket.Amount.String(),
	)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Ticket de compra")
	msg.SetBody("text/plain", body)

	png, err := qrcode.Encode(ticket.Code, qrcode.Medium, 256)
	if err == nil {
		msg.Attach("ticket.png", gomail.SetCopyFunc(func(w io.Writer) error {
			_, werr := w.Write(png)
			return werr
		}))
	}

	return m.dialer.DialAndSend(msg)
}
