// Package ofx reads bank statements in OFX/QFX format and extracts the
// incoming deposits that count towards income.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/the-wall-must-hold/internal/model"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// transferPrefixes are bank-added labels in front of the remitter name.
var transferPrefixes = []string{
	"振込 ",
	"振込　",
	"フリコミ ",
	"ﾌﾘｺﾐ ",
	"DIRECT DEPOSIT ",
	"ACH CREDIT ",
	"DEPOSIT ",
}

// Statement is the result of reading one OFX file.
type Statement struct {
	Deposits []model.Deposit
	Accounts []string
	// Skipped counts debits and zero-amount rows.
	Skipped int
}

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be upper case.
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// SGML-style files sometimes drop the closing bracket of a bare tag.
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

// ParseFile parses an OFX/QFX file and returns the credits in it as
// unclassified deposits owned by userID.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader, userID string) (*Statement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("user id is required")
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	stmt := &Statement{}
	accounts := make(map[string]bool)

	for _, msg := range resp.Bank {
		bank, ok := msg.(*ofxgo.StatementResponse)
		if !ok {
			continue
		}
		if bank.BankAcctFrom.AcctID != "" {
			accounts[string(bank.BankAcctFrom.AcctID)] = true
		}
		if bank.BankTranList == nil {
			continue
		}
		for _, ofxTx := range bank.BankTranList.Transactions {
			d, ok := p.convertTransaction(ofxTx, userID)
			if !ok {
				stmt.Skipped++
				continue
			}
			stmt.Deposits = append(stmt.Deposits, d)
		}
	}

	for acct := range accounts {
		stmt.Accounts = append(stmt.Accounts, acct)
	}
	sort.Strings(stmt.Accounts)
	sort.SliceStable(stmt.Deposits, func(i, j int) bool {
		return stmt.Deposits[i].Date.Before(stmt.Deposits[j].Date)
	})

	slog.Info("Parsed OFX file",
		"deposits", len(stmt.Deposits),
		"skipped", stmt.Skipped,
		"accounts", len(stmt.Accounts))

	return stmt, nil
}

// convertTransaction turns a credit into a deposit. Debits report false.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction, userID string) (model.Deposit, bool) {
	// Amounts are exact rationals; yen have no minor unit.
	parsed, err := decimal.NewFromString(ofxTx.TrnAmt.String())
	if err != nil {
		slog.Warn("Skipping transaction with unreadable amount",
			"fitid", ofxTx.FiTID.String(), "amount", ofxTx.TrnAmt.String(), "error", err)
		return model.Deposit{}, false
	}
	amount := parsed.Round(0).IntPart()
	if amount <= 0 {
		return model.Deposit{}, false
	}

	d := model.Deposit{
		UserID:      userID,
		Date:        ofxTx.DtPosted.Time,
		Amount:      amount,
		Description: p.extractDescription(ofxTx),
	}
	d.Hash = d.GenerateHash()
	return d, true
}

// extractDescription picks the most informative remitter text.
func (p *Parser) extractDescription(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := strings.TrimSpace(string(tx.Name))
	if tx.Memo != "" && (name == "" || isGenericDescription(name)) {
		name = strings.TrimSpace(string(tx.Memo))
	}

	upper := strings.ToUpper(name)
	for _, prefix := range transferPrefixes {
		if strings.HasPrefix(upper, prefix) {
			name = strings.TrimSpace(name[len(prefix):])
			break
		}
	}

	return name
}

// isGenericDescription checks if a transaction name is too generic.
func isGenericDescription(name string) bool {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "振込", "フリコミ", "ﾌﾘｺﾐ", "CREDIT", "DEPOSIT", "DIRECT DEPOSIT", "TRANSFER":
		return true
	}
	return false
}
