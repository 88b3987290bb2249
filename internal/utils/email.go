package utils

import (
	"mime"
	"strings"
)

// BuildMessage собирает письмо для net/smtp: заголовки и тело в UTF-8.
func BuildMessage(from string, to []string, subject, body string, isHTML bool) []byte {
	contentType := "text/plain"
	if isHTML {
		contentType = "text/html"
	}
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + strings.Join(to, ", ") + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: " + contentType + "; charset=\"utf-8\"\r\n\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
