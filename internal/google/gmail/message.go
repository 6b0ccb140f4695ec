package gmail

import (
	"encoding/base64"
	"fmt"
	"strings"

	"google.golang.org/api/gmail/v1"
)

// Message is the reshaped view of a Gmail message the gateway returns.
type Message struct {
	ID       string   `json:"id"`
	ThreadID string   `json:"threadId"`
	Snippet  string   `json:"snippet,omitempty"`
	Subject  string   `json:"subject,omitempty"`
	From     string   `json:"from,omitempty"`
	To       string   `json:"to,omitempty"`
	Date     string   `json:"date,omitempty"`
	Body     string   `json:"body,omitempty"`
	LabelIDs []string `json:"labelIds,omitempty"`
}

// SendParams describe an outgoing email.
type SendParams struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	IsHTML  bool   `json:"isHtml,omitempty"`
	CC      string `json:"cc,omitempty"`
	BCC     string `json:"bcc,omitempty"`
}

// Validate checks the required send fields.
func (p *SendParams) Validate() error {
	if p.To == "" || p.Subject == "" || p.Body == "" {
		return fmt.Errorf("missing required fields: to, subject, body")
	}
	return nil
}

func parseMessage(msg *gmail.Message) *Message {
	parsed := &Message{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		Snippet:  msg.Snippet,
		LabelIDs: msg.LabelIds,
	}
	if msg.Payload != nil {
		parsed.Subject = headerValue(msg.Payload.Headers, "subject")
		parsed.From = headerValue(msg.Payload.Headers, "from")
		parsed.To = headerValue(msg.Payload.Headers, "to")
		parsed.Date = headerValue(msg.Payload.Headers, "date")
		parsed.Body = extractBody(msg.Payload)
	}
	return parsed
}

func headerValue(headers []*gmail.MessagePartHeader, name string) string {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// extractBody decodes the message body, preferring the HTML part over plain
// text when the payload is multipart.
func extractBody(payload *gmail.MessagePart) string {
	if payload.Body != nil && payload.Body.Data != "" {
		return decodeBody(payload.Body.Data)
	}

	var textPart *gmail.MessagePart
	for _, part := range payload.Parts {
		switch part.MimeType {
		case "text/html":
			if part.Body != nil && part.Body.Data != "" {
				return decodeBody(part.Body.Data)
			}
		case "text/plain":
			if textPart == nil {
				textPart = part
			}
		}
	}
	if textPart != nil && textPart.Body != nil && textPart.Body.Data != "" {
		return decodeBody(textPart.Body.Data)
	}
	return ""
}

func decodeBody(data string) string {
	decoded, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(
		strings.TrimRight(data, "="))
	if err != nil {
		return ""
	}
	return string(decoded)
}

// buildRawMessage assembles the RFC 2822 wire form and base64url-encodes it
// the way the Gmail API expects.
func buildRawMessage(params SendParams) (string, error) {
	if err := params.Validate(); err != nil {
		return "", err
	}

	contentType := "text/plain"
	if params.IsHTML {
		contentType = "text/html"
	}

	lines := []string{"To: " + params.To}
	if params.CC != "" {
		lines = append(lines, "Cc: "+params.CC)
	}
	if params.BCC != "" {
		lines = append(lines, "Bcc: "+params.BCC)
	}
	lines = append(lines,
		"Subject: "+params.Subject,
		"Content-Type: "+contentType+"; charset=utf-8",
		"",
		params.Body,
	)

	raw := strings.Join(lines, "\r\n")
	return base64.URLEncoding.EncodeToString([]byte(raw)), nil
}
