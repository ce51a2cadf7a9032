package domain

// External business event types published by the platform
const (
	EventLoanCreated              = "LoanCreatedBusinessEvent"
	EventLoanApproved             = "LoanApprovedBusinessEvent"
	EventLoanDisbursal            = "LoanDisbursalBusinessEvent"
	EventLoanUndoApproval         = "LoanUndoApprovalBusinessEvent"
	EventLoanUndoDisbursal        = "LoanUndoDisbursalBusinessEvent"
	EventLoanStatusChanged        = "LoanStatusChangedBusinessEvent"
	EventLoanBalanceChanged       = "LoanBalanceChangedBusinessEvent"
	EventLoanRepayment            = "LoanTransactionMakeRepaymentPostBusinessEvent"
	EventLoanAddCharge            = "LoanAddChargeBusinessEvent"
	EventLoanWaiveCharge          = "LoanWaiveChargeBusinessEvent"
	EventLoanReAge                = "LoanReAgeBusinessEvent"
	EventLoanUndoReAge            = "LoanUndoReAgeBusinessEvent"
	EventLoanReAmortize           = "LoanReAmortizeBusinessEvent"
	EventLoanUndoReAmortize       = "LoanUndoReAmortizeBusinessEvent"
	EventLoanDelinquencyChanged   = "LoanDelinquencyRangeChangeBusinessEvent"
	EventLoanAccountsStayedLocked = "LoanAccountsStayedLockedBusinessEvent"
	EventLoanCOBFinished          = "LoanAccountCustomSnapshotBusinessEvent"
	EventClientCreated            = "ClientCreateBusinessEvent"
)

// Aggregate categories carried on each event
const (
	EventCategoryLoan   = "Loan"
	EventCategoryClient = "Client"
)
