package services

// ResultKind classifies the outcome of an account operation so transports can map
// it to a status code without inspecting messages.
type ResultKind string

const (
	ResultOK             ResultKind = "ok"
	ResultValidation     ResultKind = "validation"
	ResultConflict       ResultKind = "conflict"
	ResultDomain         ResultKind = "domain"
	ResultInfrastructure ResultKind = "infrastructure"
)

// User facing messages returned by the registration and verification flows.
const (
	MsgRegistered              = "Registration successful! Please check your email for the verification code."
	MsgRegisteredEmailFailed   = "Registration successful, but we could not send the verification email. Please use the resend option to request a new code."
	MsgEmailRegistered         = "Email already registered"
	MsgUsernameTaken           = "Username already taken"
	MsgDatabaseError           = "Database error"
	MsgRegistrationFailed      = "Registration failed"
	MsgVerified                = "Email verified successfully! You can now log in."
	MsgInvalidEmailOrVerified  = "Invalid email or account already verified"
	MsgInvalidCode             = "Invalid verification code"
	MsgCodeExpired             = "Verification code has expired. Please request a new one."
	MsgVerificationFailed      = "Verification failed. Please try again later."
	MsgCodeResent              = "A new verification code has been sent to your email."
	MsgEmailNotFoundOrVerified = "Email not found or already verified"
	MsgResendFailed            = "Failed to send verification email. Please try again later."
)

// Result is the outcome of register, verify and resend. Failures never carry raw
// infrastructure errors; those are logged where they occur.
type Result struct {
	Success bool       `json:"success"`
	Message string     `json:"message,omitempty"`
	Errors  []string   `json:"errors,omitempty"`
	Email   string     `json:"email,omitempty"`
	Kind    ResultKind `json:"-"`
}

func succeeded(message, email string) Result {
	return Result{Success: true, Message: message, Email: email, Kind: ResultOK}
}

func failed(kind ResultKind, message string) Result {
	return Result{Success: false, Message: message, Kind: kind}
}

func invalid(errs []string) Result {
	return Result{Success: false, Errors: errs, Kind: ResultValidation}
}

func conflict(message string) Result {
	return Result{Success: false, Message: message, Errors: []string{message}, Kind: ResultConflict}
}
