package validation

// LoginForm is the landing page sign in form
type LoginForm struct {
	MobileNumber string `validate:"required"`
	Password     string `validate:"required"`
}

func (LoginForm) Messages() map[string]string {
	const msg = "Please enter both mobile number and password"
	return map[string]string{
		"MobileNumber": msg,
		"Password":     msg,
	}
}

// RegisterForm is the sign up form
type RegisterForm struct {
	FullName     string `validate:"trimmin=2"`
	MobileNumber string `validate:"required"`
	Password     string `validate:"min=6"`
}

func (RegisterForm) Messages() map[string]string {
	return map[string]string{
		"FullName":     "Please enter your full name",
		"MobileNumber": "Please enter your mobile number",
		"Password":     "Password must be at least 6 characters",
	}
}

// ProfileForm is the editable part of the profile page
type ProfileForm struct {
	FullName     string `validate:"trimmin=2"`
	Email        string `validate:"omitempty,email"`
	Phone        string `validate:"digits=10"`
	State        string
	District     string
	Pincode      string `validate:"omitempty,digits=6"`
	CurrentClass string
	Village      string
}

func (ProfileForm) Messages() map[string]string {
	return map[string]string{
		"FullName": "Please enter your full name",
		"Email":    "Enter a valid email",
		"Phone":    "Phone must be 10 digits",
		"Pincode":  "PIN must be 6 digits",
	}
}

// PasswordForm changes the password from the profile page
type PasswordForm struct {
	NewPassword     string `validate:"min=6"`
	ConfirmPassword string `validate:"eqfield=NewPassword"`
}

func (PasswordForm) Messages() map[string]string {
	return map[string]string{
		"NewPassword":     "Password must be at least 6 characters",
		"ConfirmPassword": "Passwords do not match",
	}
}

// PasswordResetForm requests a reset mail
type PasswordResetForm struct {
	Email string `validate:"required,email"`
}

func (PasswordResetForm) Messages() map[string]string {
	return map[string]string{
		"Email.required": "Please enter your email",
		"Email":          "Enter a valid email",
	}
}
