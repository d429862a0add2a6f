package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akhilmv/statementiq/internal/session"
	"github.com/akhilmv/statementiq/internal/transaction"
	"github.com/akhilmv/statementiq/internal/uploader"
)

type stubParser struct {
	stmt *transaction.Statement
}

func (p *stubParser) Parse(_ context.Context, _ string, _ []byte, _ string) (*transaction.Statement, error) {
	return p.stmt, nil
}

func sampleStatement() *transaction.Statement {
	credit := int64(500000)
	debit := int64(200000)

	return &transaction.Statement{
		Bank:     transaction.BankSBI,
		FileName: "march.pdf",
		Transactions: []transaction.Transaction{
			{ID: uuid.New(), Date: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), CreditPaise: &credit, Confidence: 0.9},
			{ID: uuid.New(), Date: time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC), DebitPaise: &debit, Confidence: 0.7},
		},
	}
}

func TestStore_CreateGetDelete(t *testing.T) {
	store := session.NewStore(time.Hour)

	sess := store.Create(&stubParser{})
	require.NotEqual(t, uuid.Nil, sess.ID)
	require.NotNil(t, sess.Uploader)
	assert.Nil(t, sess.Statement())

	got, err := store.Get(sess.ID)
	require.NoError(t, err)
	assert.Same(t, sess, got)

	store.Delete(sess.ID)

	_, err = store.Get(sess.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestStore_GetUnknown(t *testing.T) {
	store := session.NewStore(time.Hour)

	_, err := store.Get(uuid.New())
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestStore_Expiry(t *testing.T) {
	store := session.NewStore(10 * time.Millisecond)

	sess := store.Create(&stubParser{})

	time.Sleep(30 * time.Millisecond)

	_, err := store.Get(sess.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestSession_Remaining(t *testing.T) {
	store := session.NewStore(time.Hour)
	sess := store.Create(&stubParser{})

	remaining := sess.Remaining(time.Now().UTC())
	assert.Greater(t, remaining, 59*time.Minute)
	assert.LessOrEqual(t, remaining, time.Hour)

	assert.Equal(t, time.Duration(0), sess.Remaining(sess.ExpiresAt.Add(time.Minute)))
}

func TestSession_FinalizedBatchLandsOnSession(t *testing.T) {
	store := session.NewStore(time.Hour)
	sess := store.Create(&stubParser{stmt: sampleStatement()})

	err := sess.Uploader.Enqueue(context.Background(), []uploader.File{
		{Name: "march.pdf", Size: 1024, Data: []byte("%PDF-1.4")},
	})
	require.NoError(t, err)

	st := sess.Statement()
	require.NotNil(t, st)
	assert.Equal(t, transaction.BankSBI, st.Bank)
	assert.Len(t, st.Transactions, 2)
}

func TestSession_FlagTransactions(t *testing.T) {
	store := session.NewStore(time.Hour)
	sess := store.Create(&stubParser{stmt: sampleStatement()})

	require.NoError(t, sess.Uploader.Enqueue(context.Background(), []uploader.File{
		{Name: "march.pdf", Size: 1024, Data: []byte("%PDF-1.4")},
	}))

	before := sess.Statement()
	target := before.Transactions[1].ID

	n := sess.FlagTransactions([]uuid.UUID{target, uuid.New()})
	assert.Equal(t, 1, n, "unknown IDs are ignored")

	after := sess.Statement()
	require.NotNil(t, after)
	assert.NotSame(t, before, after, "flagging swaps in a fresh statement")
	assert.True(t, after.Transactions[1].Flagged)
	assert.False(t, before.Transactions[1].Flagged, "prior snapshot untouched")
}

func TestSession_FlagWithoutStatement(t *testing.T) {
	store := session.NewStore(time.Hour)
	sess := store.Create(&stubParser{})

	assert.Equal(t, 0, sess.FlagTransactions([]uuid.UUID{uuid.New()}))
}
