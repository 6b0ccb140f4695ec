// Package gmail wraps the Gmail API surface the gateway exposes: listing,
// fetching, sending, and label mutation for the authenticated mailbox.
package gmail

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const userID = "me"

// Client is a request-scoped wrapper over the Gmail service.
type Client struct {
	svc *gmail.Service
}

// NewClient builds a Gmail client from an access-token source.
func NewClient(ctx context.Context, ts oauth2.TokenSource) (*Client, error) {
	svc, err := gmail.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("gmail service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// ListParams narrows a mailbox listing.
type ListParams struct {
	Query      string
	MaxResults int64
	PageToken  string
	LabelIDs   []string
}

// MessageList is one page of parsed messages.
type MessageList struct {
	Messages           []*Message `json:"messages"`
	NextPageToken      string     `json:"nextPageToken,omitempty"`
	ResultSizeEstimate int64      `json:"resultSizeEstimate"`
}

// ListMessages pages through the mailbox and fetches the full payload of
// each listed message so the response carries parsed headers and body.
func (c *Client) ListMessages(ctx context.Context, params ListParams) (*MessageList, error) {
	if params.MaxResults <= 0 {
		params.MaxResults = 10
	}

	call := c.svc.Users.Messages.List(userID).
		MaxResults(params.MaxResults).
		Context(ctx)
	if params.Query != "" {
		call = call.Q(params.Query)
	}
	if params.PageToken != "" {
		call = call.PageToken(params.PageToken)
	}
	if len(params.LabelIDs) > 0 {
		call = call.LabelIds(params.LabelIDs...)
	}

	listed, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	result := &MessageList{
		Messages:           make([]*Message, 0, len(listed.Messages)),
		NextPageToken:      listed.NextPageToken,
		ResultSizeEstimate: listed.ResultSizeEstimate,
	}
	for _, ref := range listed.Messages {
		msg, err := c.GetMessage(ctx, ref.Id)
		if err != nil {
			return nil, err
		}
		result.Messages = append(result.Messages, msg)
	}
	return result, nil
}

// GetMessage fetches one message in full format and parses it.
func (c *Client) GetMessage(ctx context.Context, id string) (*Message, error) {
	msg, err := c.svc.Users.Messages.Get(userID, id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get message %s: %w", id, err)
	}
	return parseMessage(msg), nil
}

// GetThread fetches every message in a thread.
func (c *Client) GetThread(ctx context.Context, threadID string) ([]*Message, error) {
	thread, err := c.svc.Users.Threads.Get(userID, threadID).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get thread %s: %w", threadID, err)
	}
	messages := make([]*Message, 0, len(thread.Messages))
	for _, m := range thread.Messages {
		messages = append(messages, parseMessage(m))
	}
	return messages, nil
}

// SendResult identifies a sent message.
type SendResult struct {
	ID       string `json:"id"`
	ThreadID string `json:"threadId"`
}

// Send assembles an RFC 2822 message and submits it.
func (c *Client) Send(ctx context.Context, params SendParams) (*SendResult, error) {
	raw, err := buildRawMessage(params)
	if err != nil {
		return nil, err
	}
	sent, err := c.svc.Users.Messages.Send(userID, &gmail.Message{Raw: raw}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	return &SendResult{ID: sent.Id, ThreadID: sent.ThreadId}, nil
}

// MarkRead removes the UNREAD label from a message.
func (c *Client) MarkRead(ctx context.Context, id string) error {
	_, err := c.svc.Users.Messages.Modify(userID, id, &gmail.ModifyMessageRequest{
		RemoveLabelIds: []string{"UNREAD"},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("mark read %s: %w", id, err)
	}
	return nil
}

// Profile is the mailbox summary.
type Profile struct {
	EmailAddress  string `json:"emailAddress"`
	MessagesTotal int64  `json:"messagesTotal"`
	ThreadsTotal  int64  `json:"threadsTotal"`
}

// GetProfile returns the mailbox address and message counts.
func (c *Client) GetProfile(ctx context.Context) (*Profile, error) {
	prof, err := c.svc.Users.GetProfile(userID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &Profile{
		EmailAddress:  prof.EmailAddress,
		MessagesTotal: prof.MessagesTotal,
		ThreadsTotal:  prof.ThreadsTotal,
	}, nil
}
