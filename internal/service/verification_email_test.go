package service

import (
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerificationEmail_Link(t *testing.T) {
	email := NewVerificationEmail("https://turva.example/app/")
	id := uuid.MustParse("7f0c2a55-3d1e-4c1b-9f0a-0d6a3b8e2c11")

	link := email.Link(id, "abc_DEF-123")
	parsed, err := url.Parse(link)
	require.NoError(t, err)

	assert.Equal(t, "turva.example", parsed.Host)
	assert.Equal(t, "/app/auth/verify", parsed.Path)
	assert.Equal(t, id.String(), parsed.Query().Get("user_id"))
	assert.Equal(t, "abc_DEF-123", parsed.Query().Get("token"))
}

func TestVerificationEmail_ComposeEscapesName(t *testing.T) {
	email := NewVerificationEmail("https://turva.example")

	subject, body := email.Compose("<script>", "https://turva.example/auth/verify?user_id=1&token=2")
	assert.Equal(t, "Verify your email", subject)
	assert.Contains(t, body, "Hi, &lt;script&gt;!")
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, `href="https://turva.example/auth/verify?user_id=1&amp;token=2"`)
	assert.Contains(t, body, "Thank you for registering with Turva.")
	assert.Contains(t, body, "The Turva Team")
}
