// Package mail renders mail events into messages and delivers them.
package mail

import (
	"context"
	"fmt"
	"html"
	"net/mail"

	"github.com/iliyamo/tutoplus/internal/queue"
)

// Message is a rendered email ready for delivery.
type Message struct {
	To          mail.Address
	Subject     string
	TextContent string
	HTMLContent string
}

// Sender delivers rendered messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Render turns an event into a message. Unknown kinds are an error so the
// consumer rejects them instead of sending an empty email.
func Render(ev queue.MailEvent) (Message, error) {
	to := mail.Address{Address: ev.To}
	switch ev.Kind {
	case queue.MailPasswordRecovery:
		text := "Bonjour,\n\nPour choisir un nouveau mot de passe, ouvrez ce lien :\n" + ev.Link +
			"\n\nSi vous n'êtes pas à l'origine de cette demande, ignorez ce message.\n"
		link := html.EscapeString(ev.Link)
		body := fmt.Sprintf(`<p>Bonjour,</p><p>Pour choisir un nouveau mot de passe, <a href="%s">cliquez ici</a>.</p>`+
			`<p>Si vous n'êtes pas à l'origine de cette demande, ignorez ce message.</p>`, link)
		return Message{To: to, Subject: "Réinitialisation du mot de passe", TextContent: text, HTMLContent: body}, nil
	case queue.MailWelcome:
		text := "Bienvenue chez Tutoplus ! Votre inscription a bien été reçue; nous vous contacterons sous peu.\n"
		return Message{To: to, Subject: "Bienvenue", TextContent: text, HTMLContent: "<p>" + html.EscapeString(text) + "</p>"}, nil
	}
	return Message{}, fmt.Errorf("unknown mail kind %q", ev.Kind)
}

// Deliverer adapts a Sender into a queue.Handler.
func Deliverer(s Sender) queue.Handler {
	return func(ctx context.Context, ev queue.MailEvent) error {
		msg, err := Render(ev)
		if err != nil {
			return err
		}
		return s.Send(ctx, msg)
	}
}
