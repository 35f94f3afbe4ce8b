package email

import "fmt"

// passwordResetTemplate renders the subject, HTML body and plain-text body of
// the reset email. The raw secret appears only inside the reset link.
func passwordResetTemplate(resetLink, userName string) (subject, html, text string) {
	greeting := "Hello,"
	if userName != "" {
		greeting = fmt.Sprintf("Hello %s,", userName)
	}

	subject = "Password Reset Request"

	html = fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>Password Reset</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
  <div style="background-color: #f4f4f4; padding: 20px; border-radius: 5px;">
    <h1 style="color: #333; margin-top: 0;">Password Reset Request</h1>
    <p>%s</p>
    <p>You requested to reset your password. Click the button below to reset it:</p>
    <div style="text-align: center; margin: 30px 0;">
      <a href="%s" style="background-color: #007bff; color: white; padding: 12px 24px; text-decoration: none; border-radius: 5px; display: inline-block;">Reset Password</a>
    </div>
    <p>Or copy and paste this link into your browser:</p>
    <p style="word-break: break-all; color: #007bff;">%s</p>
    <p><strong>This link will expire in 1 hour.</strong></p>
    <p>If you didn't request a password reset, please ignore this email.</p>
  </div>
</body>
</html>`, greeting, resetLink, resetLink)

	text = fmt.Sprintf(`Password Reset Request

%s

You requested to reset your password. Use the link below to reset it:

%s

This link will expire in 1 hour.

If you didn't request a password reset, please ignore this email.`, greeting, resetLink)

	return subject, html, text
}
