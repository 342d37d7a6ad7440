package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/satheeshds/cashpilot/ledger"
	"github.com/satheeshds/cashpilot/ledger/ledgertest"
	"github.com/satheeshds/cashpilot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFixture returns user 1 with accounts A (1000) and B (200), user 2 with
// account C (0), and category 7 owned by user 1.
func newFixture() (*ledgertest.Store, *ledger.Service) {
	store := ledgertest.New()
	store.AddUser(1)
	store.AddUser(2)
	store.AddAccount(1, 1, "1000")
	store.AddAccount(2, 1, "200")
	store.AddAccount(3, 2, "0")
	store.AddCategory(7, "Comida", id(1))
	store.AddCategory(8, "Servicios", nil)
	return store, ledger.NewService(store, nil)
}

func TestTransfer_MovesAmountAndFee(t *testing.T) {
	store, svc := newFixture()

	got, err := svc.Transfer(context.Background(), models.TransferInput{
		Amount: dec("300"), Fee: decPtr("10"), UserID: 1, Kind: models.KindTransfer,
		SourceAccountID: id(1), DestinationAccountID: id(2),
	})
	require.NoError(t, err)

	assert.Equal(t, models.KindTransfer, got.Kind)
	assert.Equal(t, models.StatusCompleted, got.Status)
	assert.True(t, store.Balance(1).Equal(dec("690")), "A = %s", store.Balance(1))
	assert.True(t, store.Balance(2).Equal(dec("500")), "B = %s", store.Balance(2))
	require.Len(t, store.Transfers(), 1)
	assert.Equal(t, 1, store.FindAccountsCalls, "accounts are looked up in one batch")
}

func TestTransfer_ExactBalanceIsEnough(t *testing.T) {
	store, svc := newFixture()

	_, err := svc.Transfer(context.Background(), models.TransferInput{
		Amount: dec("990"), Fee: decPtr("10"), UserID: 1, Kind: models.KindTransfer,
		SourceAccountID: id(1), DestinationAccountID: id(2),
	})
	require.NoError(t, err)
	assert.True(t, store.Balance(1).IsZero())
}

func TestPayment_OnlyDebitsSource(t *testing.T) {
	store, svc := newFixture()

	got, err := svc.Transfer(context.Background(), models.PaymentInput{
		Amount: dec("100"), Fee: decPtr("2.50"), UserID: 1, SourceAccountID: id(1),
		Recipient: str("Electric Co"), CategoryID: id(8),
	}.TransferInput())
	require.NoError(t, err)

	assert.Nil(t, got.DestinationAccountID)
	assert.True(t, store.Balance(1).Equal(dec("897.50")))
	assert.True(t, store.Balance(2).Equal(dec("200")))
	assert.True(t, store.Balance(3).Equal(dec("0")))
}

func TestReceive_OnlyCreditsDestination(t *testing.T) {
	store, svc := newFixture()

	got, err := svc.Transfer(context.Background(), models.ReceiveInput{
		Amount: dec("75"), UserID: 1, DestinationAccountID: id(2), Sender: str("Grandma"),
	}.TransferInput())
	require.NoError(t, err)

	assert.Nil(t, got.SourceAccountID)
	assert.True(t, store.Balance(1).Equal(dec("1000")))
	assert.True(t, store.Balance(2).Equal(dec("275")))
}

func TestPayment_InsufficientFunds(t *testing.T) {
	store := ledgertest.New()
	store.AddUser(1)
	store.AddAccount(1, 1, "50")
	store.AddCategory(8, "Servicios", nil)
	svc := ledger.NewService(store, nil)

	_, err := svc.Transfer(context.Background(), models.PaymentInput{
		Amount: dec("100"), UserID: 1, SourceAccountID: id(1),
		Recipient: str("Shop"), CategoryID: id(8),
	}.TransferInput())

	var funds *ledger.InsufficientFundsError
	require.True(t, errors.As(err, &funds), "got %v", err)
	assert.True(t, funds.Required.Equal(dec("100")))
	assert.True(t, funds.Shortfall().Equal(dec("50")))
	assert.True(t, store.Balance(1).Equal(dec("50")))
	assert.Empty(t, store.Transfers())
}

func TestTransfer_FeeCountsTowardsFunds(t *testing.T) {
	store, svc := newFixture()

	_, err := svc.Transfer(context.Background(), models.TransferInput{
		Amount: dec("1000"), Fee: decPtr("0.01"), UserID: 1, Kind: models.KindTransfer,
		SourceAccountID: id(1), DestinationAccountID: id(2),
	})
	var funds *ledger.InsufficientFundsError
	require.True(t, errors.As(err, &funds))
	assert.True(t, funds.Required.Equal(dec("1000.01")))
	assert.True(t, store.Balance(2).Equal(dec("200")))
}

func TestTransfer_MissingEntitiesLeaveNoTrace(t *testing.T) {
	tests := []struct {
		name   string
		in     models.TransferInput
		entity string
	}{
		{
			name:   "unknown source",
			in:     models.TransferInput{Amount: dec("1"), UserID: 1, Kind: models.KindTransfer, SourceAccountID: id(99), DestinationAccountID: id(2)},
			entity: "source account",
		},
		{
			name:   "unknown destination",
			in:     models.TransferInput{Amount: dec("1"), UserID: 1, Kind: models.KindTransfer, SourceAccountID: id(1), DestinationAccountID: id(99)},
			entity: "destination account",
		},
		{
			name:   "source owned by someone else",
			in:     models.TransferInput{Amount: dec("1"), UserID: 2, Kind: models.KindTransfer, SourceAccountID: id(1), DestinationAccountID: id(3)},
			entity: "source account",
		},
		{
			name:   "unknown user",
			in:     models.TransferInput{Amount: dec("1"), UserID: 42, Kind: models.KindReceive, DestinationAccountID: id(1), Counterparty: str("x")},
			entity: "user",
		},
		{
			name:   "category of another user",
			in:     models.TransferInput{Amount: dec("1"), UserID: 2, Kind: models.KindPayment, SourceAccountID: id(3), Counterparty: str("x"), CategoryID: id(7)},
			entity: "category",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, svc := newFixture()

			_, err := svc.Transfer(context.Background(), tt.in)
			require.ErrorIs(t, err, ledger.ErrNotFound)
			var nf *ledger.NotFoundError
			require.True(t, errors.As(err, &nf))
			assert.Equal(t, tt.entity, nf.Entity)

			assert.Empty(t, store.Transfers())
			assert.True(t, store.Balance(1).Equal(dec("1000")))
			assert.True(t, store.Balance(2).Equal(dec("200")))
			assert.True(t, store.Balance(3).Equal(dec("0")))
		})
	}
}

func TestTransfer_InactiveAccountIsMissing(t *testing.T) {
	store, svc := newFixture()
	store.Deactivate(2)

	_, err := svc.Transfer(context.Background(), models.TransferInput{
		Amount: dec("1"), UserID: 1, Kind: models.KindTransfer,
		SourceAccountID: id(1), DestinationAccountID: id(2),
	})
	require.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestTransfer_RollsBackWhenBalanceUpdateFails(t *testing.T) {
	store, svc := newFixture()
	boom := errors.New("connection reset")
	store.FailBalanceUpdate = boom

	_, err := svc.Transfer(context.Background(), models.TransferInput{
		Amount: dec("300"), Fee: decPtr("10"), UserID: 1, Kind: models.KindTransfer,
		SourceAccountID: id(1), DestinationAccountID: id(2),
	})
	require.ErrorIs(t, err, boom)

	assert.Empty(t, store.Transfers(), "inserted row must be rolled back")
	assert.True(t, store.Balance(1).Equal(dec("1000")))
	assert.True(t, store.Balance(2).Equal(dec("200")))
}

func TestTransfer_ValidationRunsBeforeLookups(t *testing.T) {
	store, svc := newFixture()

	_, err := svc.Transfer(context.Background(), models.TransferInput{Amount: dec("0"), UserID: 1, Kind: models.KindTransfer})
	requireValidation(t, err)
	assert.Zero(t, store.FindAccountsCalls)
}

func TestHistory_NewestFirst(t *testing.T) {
	store, svc := newFixture()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.Now = func() time.Time {
		now = now.Add(time.Minute)
		return now
	}
	ctx := context.Background()

	_, err := svc.Transfer(ctx, models.TransferInput{Amount: dec("10"), UserID: 1, Kind: models.KindTransfer, SourceAccountID: id(1), DestinationAccountID: id(2)})
	require.NoError(t, err)
	_, err = svc.Transfer(ctx, models.PaymentInput{Amount: dec("5"), UserID: 1, SourceAccountID: id(2), Recipient: str("Shop"), CategoryID: id(7)}.TransferInput())
	require.NoError(t, err)
	_, err = svc.Transfer(ctx, models.ReceiveInput{Amount: dec("1"), UserID: 2, DestinationAccountID: id(3), Sender: str("x")}.TransferInput())
	require.NoError(t, err)

	history, err := svc.History(ctx, 1)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.KindPayment, history[0].Kind)
	assert.Equal(t, "Comida", *history[0].Category)
	assert.Equal(t, "Cuenta 2", *history[0].SourceAccount)
	assert.Equal(t, models.KindTransfer, history[1].Kind)

	empty, err := svc.History(ctx, 5)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

// staleStore reports every account as active, as if it was deactivated after
// the existence check ran.
type staleStore struct {
	*ledgertest.Store
}

func (s staleStore) FindAccounts(ctx context.Context, ids []int64) (map[int64]ledger.AccountRef, error) {
	found, err := s.Store.FindAccounts(ctx, ids)
	for k, a := range found {
		a.Active = true
		found[k] = a
	}
	return found, err
}

func TestTransfer_AccountDeactivatedBeforeWrite(t *testing.T) {
	tests := []struct {
		name   string
		in     models.TransferInput
		entity string
	}{
		{
			name: "destination",
			in: models.TransferInput{
				Amount: dec("10"), UserID: 1, Kind: models.KindTransfer,
				SourceAccountID: id(1), DestinationAccountID: id(2),
			},
			entity: "destination account",
		},
		{
			name: "receive destination",
			in: models.ReceiveInput{
				Amount: dec("10"), UserID: 1, DestinationAccountID: id(2), Sender: str("Boss"),
			}.TransferInput(),
			entity: "destination account",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _ := newFixture()
			store.Deactivate(2)
			svc := ledger.NewService(staleStore{store}, nil)

			_, err := svc.Transfer(context.Background(), tt.in)
			var nf *ledger.NotFoundError
			require.ErrorAs(t, err, &nf)
			assert.Equal(t, tt.entity, nf.Entity)

			assert.Empty(t, store.Transfers())
			assert.True(t, store.Balance(1).Equal(dec("1000")))
			assert.True(t, store.Balance(2).Equal(dec("200")))
		})
	}
}

func TestReceive_BalanceOutOfRange(t *testing.T) {
	store, svc := newFixture()
	store.AddAccount(4, 1, "999999999990")

	_, err := svc.Transfer(context.Background(), models.ReceiveInput{
		Amount: dec("10"), UserID: 1, DestinationAccountID: id(4), Sender: str("Lottery"),
	}.TransferInput())
	ve := requireValidation(t, err)
	assert.Equal(t, []string{"monto"}, ve.Fields)
	assert.Empty(t, store.Transfers())
	assert.True(t, store.Balance(4).Equal(dec("999999999990")))
}

func TestPayment_AmountIsStoredExactly(t *testing.T) {
	store, svc := newFixture()

	_, err := svc.Transfer(context.Background(), models.PaymentInput{
		Amount: dec("100.005"), UserID: 1, SourceAccountID: id(1),
		Recipient: str("Shop"), CategoryID: id(8),
	}.TransferInput())
	requireValidation(t, err)
	assert.Empty(t, store.Transfers())
	assert.True(t, store.Balance(1).Equal(dec("1000")))
}
