package services

import "github.com/phototree/backend/pkg/logger"

// Mailer is the outbound-mail boundary. The core only generates the
// reset token; delivery belongs to whoever implements this.
type Mailer interface {
	SendResetEmail(address, token, name string) bool
}

// LogMailer is the default Mailer: it records the send instead of
// delivering it. Deployments wire a real implementation here.
type LogMailer struct{}

func (LogMailer) SendResetEmail(address, token, name string) bool {
	logger.Info("reset_email_logged", map[string]interface{}{
		"address": address,
		"name":    name,
		// The token itself stays out of the logs.
		"token_len": len(token),
	})
	return true
}
