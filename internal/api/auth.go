package api

import "context"

// Credentials is what a successful login or signup confirmation yields. Level
// decides which dashboard the account sees: admin, specialist or parent.
type Credentials struct {
	Token string `json:"token"`
	Level string `json:"level"`
}

type SignupResult struct {
	VerifyURL string `json:"verifyURL"`
}

type PasswordResetRequested struct {
	Message string `json:"message"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type signupConfirmRequest struct {
	VerifyURL string `json:"verifyURL"`
	Code      string `json:"code"`
}

type resendCodeRequest struct {
	VerifyURL string `json:"verifyURL"`
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	VerifyURL string `json:"verifyURL"`
	Code      string `json:"code"`
	Password  string `json:"password"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*Credentials, error) {
	var creds Credentials
	err := c.do(ctx, "POST", "/auth/login", nil, loginRequest{Email: email, Password: password}, &creds)
	if err != nil {
		return nil, err
	}
	return &creds, nil
}

func (c *Client) Signup(ctx context.Context, email, phone, password, name string) (*SignupResult, error) {
	var result SignupResult
	req := signupRequest{Email: email, Phone: phone, Password: password, Name: name}
	if err := c.do(ctx, "POST", "/auth/signup", nil, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) SignupConfirm(ctx context.Context, verifyURL, code string) (*Credentials, error) {
	var creds Credentials
	req := signupConfirmRequest{VerifyURL: verifyURL, Code: code}
	if err := c.do(ctx, "POST", "/auth/signup-confirm", nil, req, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

func (c *Client) ResendVerificationCode(ctx context.Context, verifyURL string) error {
	return c.do(ctx, "POST", "/auth/resend-code", nil, resendCodeRequest{VerifyURL: verifyURL}, nil)
}

func (c *Client) RequestPasswordReset(ctx context.Context, email string) (*PasswordResetRequested, error) {
	var result PasswordResetRequested
	if err := c.do(ctx, "POST", "/auth/forgot-password", nil, passwordResetRequest{Email: email}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ResetPassword(ctx context.Context, verifyURL, code, password string) error {
	req := resetPasswordRequest{VerifyURL: verifyURL, Code: code, Password: password}
	return c.do(ctx, "POST", "/auth/reset-password", nil, req, nil)
}
