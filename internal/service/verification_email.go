package service

import (
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

const verificationSubject = "Verify your email"

// VerificationEmail renders the verification message and its link.
type VerificationEmail struct {
	FrontendBaseURL string
	ProductName     string
}

func NewVerificationEmail(frontendBaseURL string) VerificationEmail {
	return VerificationEmail{
		FrontendBaseURL: strings.TrimRight(frontendBaseURL, "/"),
		ProductName:     "Turva",
	}
}

func (e VerificationEmail) Link(userID uuid.UUID, token string) string {
	query := url.Values{}
	query.Set("user_id", userID.String())
	query.Set("token", token)
	return fmt.Sprintf("%s/auth/verify?%s", e.FrontendBaseURL, query.Encode())
}

// Compose returns the subject and HTML body for a verification link.
func (e VerificationEmail) Compose(firstName string, link string) (string, string) {
	name := html.EscapeString(firstName)
	href := html.EscapeString(link)
	product := html.EscapeString(e.ProductName)

	body := fmt.Sprintf(`Hi, %s!
<br/>
<br/>Thank you for registering with %s. Please <a href="%s">click here to verify your email address</a> or copy and paste the link below into your browser:
<br/>
<br/>%s
<br/>
<br/>If you did not create an account with us, you can safely ignore this email.
<br/>
Best regards,<br/>
The %s Team`, name, product, href, href, product)

	return verificationSubject, body
}
