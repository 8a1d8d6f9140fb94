package constants

// ============================================================================
// AUTHENTICATION & SESSION ERRORS
// ============================================================================

const (
	ErrMissingUserID  = "user_id is required in the request"
	ErrInvalidSession = "Your session has expired or is invalid. Please login again"
	ErrUnauthorized   = "You are not authorized to perform this action"
)

// ============================================================================
// VALIDATION ERRORS - Transaction
// ============================================================================

const (
	ErrTrxNotFound        = "Transaction not found or you don't have access to it"
	ErrTrxCodeRequired    = "transaction_code is required"
	ErrTrxLocked          = "Transaction is locked for its current status"
	ErrTrxAlreadyFinal    = "Transaction has reached a terminal status"
	ErrTrxCreateFailed    = "Failed to create transaction. Please check if the code already exists"
	ErrTrxNoItems         = "Transaction has no items"
	ErrTrxInvalidItems    = "Invalid item rows in request"
	ErrTrxAmountRequired  = "amount is required when no items are provided"
	ErrTrxSubmitConflict  = "Transaction was already submitted or processed by another request"
)

// ============================================================================
// VALIDATION ERRORS - Document & Reconciliation
// ============================================================================

const (
	ErrDocRequired        = "A document upload is required before submission"
	ErrDocUnsupported     = "Unsupported document type. Upload a PDF or image file"
	ErrDocExtractionFail  = "Text extraction failed for the uploaded document"
	ErrDocNoReconcile     = "No reconciliation result available for this transaction"
)

// ============================================================================
// VALIDATION ERRORS - Exception Case
// ============================================================================

const (
	ErrCaseNotFound      = "Exception case not found"
	ErrCaseNotOpen       = "Exception case is not open"
	ErrCaseFieldDenied   = "One or more fields are outside the correction allowlist"
	ErrCaseAlreadyOpen   = "An open exception case already exists for this transaction"
)

// ============================================================================
// VALIDATION ERRORS - Revision & Escalation
// ============================================================================

const (
	ErrRevisionNotOpen   = "Transaction is not in a revisable state"
	ErrRevisionExpired   = "deadline has passed"
	ErrRevisionNoGrant   = "Field was not opened for revision by the approver"
)
