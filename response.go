package talon

import "fmt"

// SMTPCode represents the SMTP reply codes the backend produces
// (RFC 5321, RFC 4954).
type SMTPCode int

const (
	CodeAuthSuccess            SMTPCode = 235
	CodeAuthContinue           SMTPCode = 334
	CodeLocalError             SMTPCode = 451
	CodeParameterNotImpl       SMTPCode = 504
	CodeAuthRequired           SMTPCode = 530
	CodeAuthCredentialsInvalid SMTPCode = 535
	CodeTransactionFailed      SMTPCode = 554
)

// EnhancedCode represents an enhanced status code (RFC 3463, RFC 2034).
type EnhancedCode string

const (
	ESCSecuritySuccess        EnhancedCode = "2.7.0"
	ESCTempLocalError         EnhancedCode = "4.3.0"
	ESCInvalidArgs            EnhancedCode = "5.5.4"
	ESCSecurityError          EnhancedCode = "5.7.0"
	ESCDeliveryNotAuth        EnhancedCode = "5.7.1"
	ESCAuthCredentialsInvalid EnhancedCode = "5.7.8"
)

// Response is an SMTP reply the host server should send verbatim.
type Response struct {
	Code         SMTPCode
	EnhancedCode string
	Message      string
}

// String formats the response as an SMTP reply line.
func (r Response) String() string {
	if r.EnhancedCode != "" {
		return fmt.Sprintf("%d %s %s", r.Code, r.EnhancedCode, r.Message)
	}
	return fmt.Sprintf("%d %s", r.Code, r.Message)
}

// IsError returns true for 4xx or 5xx codes.
func (r Response) IsError() bool {
	return r.Code >= 400
}

// ResponseAuthSuccess creates the 235 reply for a completed
// authentication.
func ResponseAuthSuccess() *Response {
	return &Response{
		Code:         CodeAuthSuccess,
		EnhancedCode: string(ESCSecuritySuccess),
		Message:      "Authentication successful",
	}
}

// ResponseAuthCredentialsInvalid creates the 535 reply sent for any
// failed authentication attempt, whatever the underlying cause.
func ResponseAuthCredentialsInvalid() *Response {
	return &Response{
		Code:         CodeAuthCredentialsInvalid,
		EnhancedCode: string(ESCAuthCredentialsInvalid),
		Message:      "Authentication credentials invalid",
	}
}

// ResponseAuthRequired creates the 530 reply for commands that need an
// authenticated session.
func ResponseAuthRequired() *Response {
	return &Response{
		Code:         CodeAuthRequired,
		EnhancedCode: string(ESCSecurityError),
		Message:      "Authentication required",
	}
}

// ResponseSendDenied creates the 554 reply for a sender the policy
// rejected.
func ResponseSendDenied() *Response {
	return &Response{
		Code:         CodeTransactionFailed,
		EnhancedCode: string(ESCDeliveryNotAuth),
		Message:      "You are not allowed to send as this domain",
	}
}

// ResponseMechanismNotSupported creates the 504 reply for an AUTH
// mechanism the backend does not handle.
func ResponseMechanismNotSupported() *Response {
	return &Response{
		Code:         CodeParameterNotImpl,
		EnhancedCode: string(ESCInvalidArgs),
		Message:      "Mechanism not supported",
	}
}
