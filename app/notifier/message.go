package notifier

import (
	"bytes"
	"fmt"
	"html"
	"mime"
	"mime/multipart"
	"net/textproto"
	"time"

	"github.com/google/uuid"
)

const ResetEmailSubject = "Restablecer contraseña"

type Message struct {
	From    string
	To      string
	Subject string
	Text    string
	HTML    string
}

func NewResetMessage(from, to, resetLink string) Message {
	return Message{
		From:    from,
		To:      to,
		Subject: ResetEmailSubject,
		Text: "Recibimos una solicitud para restablecer tu contraseña.\n\n" +
			"Usa este link para continuar: " + resetLink + "\n\n" +
			"Si no solicitaste el cambio, ignora este correo.",
		HTML: "<p>Recibimos una solicitud para restablecer tu contraseña.</p>\n" +
			`<p><a href="` + html.EscapeString(resetLink) + `">Restablecer contraseña</a></p>` + "\n" +
			"<p>Si no solicitaste el cambio, ignora este correo.</p>",
	}
}

// Bytes renders the message as a multipart/alternative RFC 5322 document.
func (m Message) Bytes(now time.Time) ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	parts := []struct {
		contentType string
		content     string
	}{
		{"text/plain; charset=UTF-8", m.Text},
		{"text/html; charset=UTF-8", m.HTML},
	}
	for _, p := range parts {
		w, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {p.contentType},
			"Content-Transfer-Encoding": {"8bit"},
		})
		if err != nil {
			return nil, err
		}
		if _, err = w.Write([]byte(p.content)); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", m.From)
	fmt.Fprintf(&msg, "To: %s\r\n", m.To)
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", m.Subject))
	fmt.Fprintf(&msg, "Date: %s\r\n", now.Format(time.RFC1123Z))
	fmt.Fprintf(&msg, "Message-ID: <%s@bandidos>\r\n", uuid.NewString())
	msg.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", mw.Boundary())
	msg.Write(body.Bytes())
	return msg.Bytes(), nil
}
