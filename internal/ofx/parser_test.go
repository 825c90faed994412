package ofx

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20250731120000[0:GMT]
<LANGUAGE>JPN
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>JPY
<BANKACCTFROM>
<BANKID>0001
<ACCTID>1234567
<ACCTTYPE>SAVINGS
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20250701000000[0:GMT]
<DTEND>20250731000000[0:GMT]
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20250725000000[0:GMT]
<TRNAMT>85000
<FITID>2025072501
<NAME>DIRECT DEPOSIT CAFE MOCHA PAYROLL
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20250710000000[0:GMT]
<TRNAMT>-3200
<FITID>2025071001
<NAME>CONVENIENCE STORE
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20250705000000[0:GMT]
<TRNAMT>12000.40
<FITID>2025070501
<NAME>DEPOSIT
<MEMO>TRAVEL EXPENSE REIMBURSEMENT
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>500000
<DTASOF>20250731000000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

func TestParseFile(t *testing.T) {
	parser := NewParser()

	stmt, err := parser.ParseFile(context.Background(), strings.NewReader(sampleBankOFX), "user-1")
	require.NoError(t, err)

	assert.Equal(t, []string{"1234567"}, stmt.Accounts)
	assert.Equal(t, 1, stmt.Skipped, "debit is skipped")
	require.Len(t, stmt.Deposits, 2)

	first := stmt.Deposits[0]
	assert.Equal(t, "TRAVEL EXPENSE REIMBURSEMENT", first.Description, "generic name falls back to memo")
	assert.Equal(t, int64(12_000), first.Amount)
	assert.Equal(t, "user-1", first.UserID)
	assert.True(t, first.Date.Equal(time.Date(2025, 7, 5, 0, 0, 0, 0, time.UTC)))

	second := stmt.Deposits[1]
	assert.Equal(t, "CAFE MOCHA PAYROLL", second.Description, "transfer prefix removed")
	assert.Equal(t, int64(85_000), second.Amount)
	assert.NotEmpty(t, second.Hash)
	assert.Equal(t, second.GenerateHash(), second.Hash)
	assert.Empty(t, second.ID, "ids are assigned at ingestion")
}

func TestParseFile_Errors(t *testing.T) {
	parser := NewParser()

	_, err := parser.ParseFile(context.Background(), strings.NewReader("not ofx"), "user-1")
	require.Error(t, err)

	_, err = parser.ParseFile(context.Background(), strings.NewReader(sampleBankOFX), " ")
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = parser.ParseFile(ctx, strings.NewReader(sampleBankOFX), "user-1")
	require.ErrorIs(t, err, context.Canceled)
}

func TestParseFile_Deterministic(t *testing.T) {
	parser := NewParser()

	a, err := parser.ParseFile(context.Background(), strings.NewReader(sampleBankOFX), "user-1")
	require.NoError(t, err)
	b, err := parser.ParseFile(context.Background(), strings.NewReader(sampleBankOFX), "user-1")
	require.NoError(t, err)

	require.Len(t, b.Deposits, len(a.Deposits))
	for i := range a.Deposits {
		assert.Equal(t, a.Deposits[i].Hash, b.Deposits[i].Hash)
	}
}

func TestPreprocessOFX(t *testing.T) {
	parser := NewParser()

	got := parser.preprocessOFX("\n\n<SEVERITY>Info</SEVERITY>\n<BANKTRANLIST\n")
	assert.Equal(t, "<SEVERITY>INFO</SEVERITY>\n<BANKTRANLIST>\n", got)
}

func TestExtractDescription(t *testing.T) {
	parser := NewParser()

	tests := []struct {
		name string
		tx   ofxgo.Transaction
		want string
	}{
		{
			name: "payee wins",
			tx:   ofxgo.Transaction{Name: "振込 カフエモカ", Payee: &ofxgo.Payee{Name: "カフェモカ"}},
			want: "カフェモカ",
		},
		{
			name: "japanese transfer prefix",
			tx:   ofxgo.Transaction{Name: "振込 キユウヨ カフエモカ"},
			want: "キユウヨ カフエモカ",
		},
		{
			name: "half-width prefix",
			tx:   ofxgo.Transaction{Name: "ﾌﾘｺﾐ ｶﾌｴﾓｶ"},
			want: "ｶﾌｴﾓｶ",
		},
		{
			name: "generic name uses memo",
			tx:   ofxgo.Transaction{Name: "振込", Memo: "コウツウヒ"},
			want: "コウツウヒ",
		},
		{
			name: "empty name uses memo",
			tx:   ofxgo.Transaction{Memo: "BONUS"},
			want: "BONUS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parser.extractDescription(tt.tx))
		})
	}
}
