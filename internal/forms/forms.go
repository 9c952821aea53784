package forms

// The form types mirror the portal's screens one to one. Each knows how to
// normalize its input and report per-field errors.

type ContactForm struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (f *ContactForm) Normalize() {
	f.Name = NormalizeString(f.Name)
	f.Email = NormalizeEmail(f.Email)
	f.Phone = NormalizePhone(f.Phone)
	f.Subject = NormalizeString(f.Subject)
	f.Message = NormalizeString(f.Message)
}

func (f *ContactForm) Validate() Errors {
	errs := Errors{}
	if !ValidName(f.Name) {
		errs.Set("name", "Name must be at least 2 characters")
	}
	if !ValidEmail(f.Email) {
		errs.Set("email", "Please enter a valid email address")
	}
	if !ValidPhone(f.Phone) {
		errs.Set("phone", "Phone number must be at least 8 characters")
	}
	if !ValidSubject(f.Subject) {
		errs.Set("subject", "Subject must be at least 3 characters")
	}
	if !ValidMessage(f.Message) {
		errs.Set("message", "Message must be at least 10 characters")
	}
	return errs
}

type SignupForm struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (f *SignupForm) Normalize() {
	f.Name = NormalizeString(f.Name)
	f.Email = NormalizeEmail(f.Email)
	f.Phone = NormalizePhone(f.Phone)
}

func (f *SignupForm) Validate() Errors {
	errs := Errors{}
	if !ValidName(f.Name) {
		errs.Set("name", "Name must be at least 2 characters")
	}
	if !ValidEmail(f.Email) {
		errs.Set("email", "Please enter a valid email address")
	}
	if !ValidPhone(f.Phone) {
		errs.Set("phone", "Phone number must be at least 8 characters")
	}
	if f.Password == "" {
		errs.Set("password", "Password is required")
	}
	if f.ConfirmPassword != f.Password {
		errs.Set("confirmPassword", "Passwords do not match")
	}
	return errs
}

type LoginForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (f *LoginForm) Normalize() {
	f.Email = NormalizeEmail(f.Email)
}

func (f *LoginForm) Validate() Errors {
	errs := Errors{}
	if !ValidEmail(f.Email) {
		errs.Set("email", "Please enter a valid email address")
	}
	if f.Password == "" {
		errs.Set("password", "Password is required")
	}
	return errs
}

type ConfirmForm struct {
	VerifyURL string `json:"verifyURL"`
	Code      string `json:"code"`
}

func (f *ConfirmForm) Normalize() {
	f.VerifyURL = NormalizeString(f.VerifyURL)
	f.Code = SanitizeCode(f.Code)
}

func (f *ConfirmForm) Validate() Errors {
	errs := Errors{}
	if f.VerifyURL == "" {
		errs.Set("verifyURL", "Verification reference is missing")
	}
	if !ValidCode(f.Code) {
		errs.Set("code", "Verification code must be 6 digits")
	}
	return errs
}

type ForgotPasswordForm struct {
	Email string `json:"email"`
}

func (f *ForgotPasswordForm) Normalize() {
	f.Email = NormalizeEmail(f.Email)
}

func (f *ForgotPasswordForm) Validate() Errors {
	errs := Errors{}
	if !ValidEmail(f.Email) {
		errs.Set("email", "Please enter a valid email address")
	}
	return errs
}

type ResetPasswordForm struct {
	VerifyURL       string `json:"verifyURL"`
	Code            string `json:"code"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (f *ResetPasswordForm) Normalize() {
	f.VerifyURL = NormalizeString(f.VerifyURL)
	f.Code = SanitizeCode(f.Code)
}

func (f *ResetPasswordForm) Validate() Errors {
	errs := Errors{}
	if f.VerifyURL == "" {
		errs.Set("verifyURL", "Verification reference is missing")
	}
	if !ValidCode(f.Code) {
		errs.Set("code", "Verification code must be 6 digits")
	}
	if f.Password == "" {
		errs.Set("password", "Password is required")
	}
	if f.ConfirmPassword != f.Password {
		errs.Set("confirmPassword", "Passwords do not match")
	}
	return errs
}

type SubscribeForm struct {
	Email string `json:"email"`
}

func (f *SubscribeForm) Normalize() {
	f.Email = NormalizeEmail(f.Email)
}

func (f *SubscribeForm) Validate() Errors {
	errs := Errors{}
	if !ValidEmail(f.Email) {
		errs.Set("email", "Please enter a valid email address")
	}
	return errs
}
