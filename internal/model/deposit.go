package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// DepositType is the classification attached to a bank deposit.
type DepositType string

// Deposit classification types.
const (
	DepositSalary      DepositType = "salary"
	DepositOther       DepositType = "other"
	DepositNeedsReview DepositType = "needs_review"
)

// Valid reports whether t is a known classification type.
func (t DepositType) Valid() bool {
	switch t {
	case DepositSalary, DepositOther, DepositNeedsReview:
		return true
	}
	return false
}

// ClassificationResult describes how a deposit was attributed.
type ClassificationResult struct {
	Type       DepositType
	EmployerID string
	Reason     string
	Confidence float64
	IsTaxable  bool
}

// Deposit is an incoming bank transaction. Amount, Description and Date are
// fixed at ingestion; Classification is attached afterwards.
type Deposit struct {
	Date           time.Time
	ClassifiedAt   time.Time
	ID             string
	UserID         string
	Description    string
	Hash           string
	Classification ClassificationResult
	Amount         int64
}

// GenerateHash creates a unique hash for duplicate detection.
func (d *Deposit) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%d:%s",
		d.UserID,
		d.Date.Format("2006-01-02"),
		d.Amount,
		d.Description)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// ClassificationRecord is one entry in a deposit's classification history.
type ClassificationRecord struct {
	CreatedAt time.Time
	DepositID string
	Source    string
	ClassificationResult
}

// Classification sources recorded with each history entry.
const (
	SourceIngest = "ingest"
	SourceReview = "review"
)
