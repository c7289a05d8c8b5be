package utils

import (
	"fmt"

	"fiber-mes/config"

	"gopkg.in/gomail.v2"
)

// SendOverageAlert notifies the org's alert address that a consumption was
// recorded past the planned requirement with an explicit override. No-op
// when SMTP or the recipient is not configured.
func SendOverageAlert(recipient, woNo, materialName, attemptedQty, overageQty string) error {
	if config.SMTPHost == "" || recipient == "" {
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", config.SMTPSender)
	msg.SetHeader("To", recipient)
	msg.SetHeader("Subject", fmt.Sprintf("Over-consumption recorded on %s", woNo))
	msg.SetBody("text/plain", fmt.Sprintf(
		"Work order %s consumed %s of %s, exceeding the planned requirement by %s. The overage was confirmed by the operator.",
		woNo, attemptedQty, materialName, overageQty))

	dialer := gomail.NewDialer(config.SMTPHost, config.SMTPPort, config.SMTPUser, config.SMTPPassword)
	return dialer.DialAndSend(msg)
}
