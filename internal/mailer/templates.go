// AngelaMos | 2026
// templates.go

package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

var invitationTmpl = template.Must(template.New("invitation").Parse(`<!doctype html>
<html>
<body>
<p>Hello {{.Name}},</p>
<p>An account with the <strong>{{.Role}}</strong> role has been created for you on the airline office directory.</p>
<p>Email: {{.Email}}<br>Temporary password: <code>{{.Password}}</code></p>
<p><a href="{{.LoginURL}}">Sign in</a> and change your password straight away.</p>
</body>
</html>`))

type Invitation struct {
	Name     string
	Email    string
	Role     string
	Password string
	LoginURL string
}

// InvitationMessage renders the credentials mail for a newly created user.
func InvitationMessage(inv Invitation) (Message, error) {
	var buf bytes.Buffer
	if err := invitationTmpl.Execute(&buf, inv); err != nil {
		return Message{}, fmt.Errorf("render invitation: %w", err)
	}

	return Message{
		To:      inv.Email,
		Subject: "Your airline office directory account",
		HTML:    buf.String(),
	}, nil
}
