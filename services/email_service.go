package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"vibblo-api/config"
)

// EmailService sends registration verification codes. Codes live in
// memory and expire after ten minutes; losing them on restart only
// means the user requests a new code.
type EmailService struct {
	config *config.Config
	dialer *gomail.Dialer
	log    logrus.FieldLogger

	verificationCodes map[string]VerificationCode
	mutex             sync.RWMutex
}

type VerificationCode struct {
	Code      string    `json:"code"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `json:"used"`
}

func NewEmailService(cfg *config.Config, log logrus.FieldLogger) *EmailService {
	service := &EmailService{
		config:            cfg,
		dialer:            gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		log:               log,
		verificationCodes: make(map[string]VerificationCode),
	}

	go service.cleanupExpiredCodes()

	return service
}

func (es *EmailService) generateVerificationCode() string {
	const digits = "0123456789"
	code := make([]byte, 6)
	for i := range code {
		num, _ := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		code[i] = digits[num.Int64()]
	}
	return string(code)
}

// SendVerificationEmail mails a verification code to the address,
// reusing a still-valid code if one is outstanding.
func (es *EmailService) SendVerificationEmail(email, name string) (string, error) {
	es.mutex.RLock()
	existingCode, exists := es.verificationCodes[email]
	es.mutex.RUnlock()

	var code string
	if exists && !existingCode.Used && time.Now().Before(existingCode.ExpiresAt) {
		code = existingCode.Code
	} else {
		code = es.generateVerificationCode()

		es.mutex.Lock()
		es.verificationCodes[email] = VerificationCode{
			Code:      code,
			Email:     email,
			ExpiresAt: time.Now().Add(10 * time.Minute),
			Used:      false,
		}
		es.mutex.Unlock()
	}

	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("%s <%s>", es.config.FromName, es.config.FromEmail))
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Vibblo - Email Verification")

	textBody := fmt.Sprintf(`Hello %s!

Welcome to Vibblo! Please verify your email address to complete your registration.

Your verification code is: %s

This code will expire in 10 minutes.

If you didn't create an account with Vibblo, please ignore this email.

The Vibblo Team`, name, code)

	htmlBody := fmt.Sprintf(`<html><body>
<h2>Hello %s!</h2>
<p>Welcome to Vibblo! Please verify your email address to complete your registration.</p>
<p>Your verification code is:</p>
<p style="font-size:32px;font-weight:bold;letter-spacing:8px;">%s</p>
<p><small>This code will expire in 10 minutes.</small></p>
<p>If you didn't create an account with Vibblo, please ignore this email.</p>
<p><strong>The Vibblo Team</strong></p>
</body></html>`, name, code)

	m.SetBody("text/plain", textBody)
	m.AddAlternative("text/html", htmlBody)

	if err := es.dialer.DialAndSend(m); err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}

	es.log.WithField("email", email).Info("verification email sent")
	return code, nil
}

// VerifyCode checks and consumes a verification code.
func (es *EmailService) VerifyCode(email, inputCode string) bool {
	es.mutex.Lock()
	defer es.mutex.Unlock()

	storedCode, exists := es.verificationCodes[email]
	if !exists || storedCode.Used {
		return false
	}

	if time.Now().After(storedCode.ExpiresAt) {
		delete(es.verificationCodes, email)
		return false
	}

	if storedCode.Code != inputCode {
		return false
	}

	storedCode.Used = true
	es.verificationCodes[email] = storedCode
	return true
}

func (es *EmailService) cleanupExpiredCodes() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		es.mutex.Lock()
		for email, code := range es.verificationCodes {
			if now.After(code.ExpiresAt) {
				delete(es.verificationCodes, email)
			}
		}
		es.mutex.Unlock()
	}
}
