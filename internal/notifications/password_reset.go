package notifications

import (
	"context"
	"fmt"
)

const passwordResetSubject = "Password Reset Request"

// PasswordResetBody renders the plain-text reset email around resetURL.
func PasswordResetBody(resetURL string) string {
	return fmt.Sprintf(`To reset your password, visit the following link:
%s

If you did not make this request, simply ignore this email and no changes will be made.
`, resetURL)
}

// SendPasswordReset mails the reset link to the given address.
func SendPasswordReset(ctx context.Context, notifier EmailNotifier, to, resetURL string) error {
	return notifier.Send(ctx, to, passwordResetSubject, PasswordResetBody(resetURL))
}
