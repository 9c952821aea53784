package api

import "context"

// ContactFields is the contact form payload, validated locally before it is
// ever sent.
type ContactFields struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type subscribeRequest struct {
	Email string `json:"email"`
}

func (c *Client) SubmitContactForm(ctx context.Context, fields ContactFields) error {
	return c.do(ctx, "POST", "/contact", nil, fields, nil)
}

func (c *Client) Subscribe(ctx context.Context, email string) error {
	return c.do(ctx, "POST", "/subscribe", nil, subscribeRequest{Email: email}, nil)
}
