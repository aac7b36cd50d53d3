package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/primabook/primabook/internal/clock"
	storedomain "github.com/primabook/primabook/internal/eventstore/domain"
	"github.com/primabook/primabook/internal/eventstore/gormstore"
	"github.com/primabook/primabook/internal/money"
	"github.com/primabook/primabook/internal/payout/domain"
	"github.com/primabook/primabook/internal/payout/repository"
)

func setupService(t *testing.T) (*Service, *clock.FakeClock) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&storedomain.StoredEvent{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	store := gormstore.New(gormstore.Params{DB: gdb, Log: zap.NewNop(), GenID: node, Clock: fake})
	repo := repository.New(repository.Params{Store: store, Log: zap.NewNop()})

	return NewService(Params{Log: zap.NewNop(), Repo: repo, Clock: fake}), fake
}

func usd(t *testing.T, amount string) money.Money {
	t.Helper()
	m, err := money.FromString(amount, "USD")
	require.NoError(t, err)
	return m
}

func createPayout(t *testing.T, svc *Service) *domain.Payout {
	t.Helper()
	payout, err := svc.Create(context.Background(), CreateCommand{
		ProviderID:       "provider-1",
		GrossAmount:      usd(t, "1000"),
		CommissionAmount: usd(t, "150"),
		PeriodStart:      time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:        time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC),
		PaymentIDs:       []string{"payment-1", "payment-2"},
		Notes:            "february settlement",
	})
	require.NoError(t, err)
	return payout
}

func TestCreatePersistsPayout(t *testing.T) {
	svc, _ := setupService(t)

	created := createPayout(t, svc)
	assert.True(t, created.NetAmount.Equal(usd(t, "850")))

	loaded, err := svc.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, loaded.Status)
	assert.Equal(t, "provider-1", loaded.ProviderID)
	assert.True(t, loaded.GrossAmount.Equal(usd(t, "1000")))
	assert.Equal(t, []string{"payment-1", "payment-2"}, loaded.PaymentIDs)
}

func TestCreateRejectsCommissionAboveGross(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.Create(context.Background(), CreateCommand{
		ProviderID:       "provider-1",
		GrossAmount:      usd(t, "100"),
		CommissionAmount: usd(t, "150"),
		PeriodStart:      time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:        time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
	})
	require.ErrorIs(t, err, domain.ErrCommissionExceedsGross)
}

func TestSettlementLifecycleThroughService(t *testing.T) {
	svc, fake := setupService(t)
	ctx := context.Background()
	created := createPayout(t, svc)

	_, err := svc.Schedule(ctx, ScheduleCommand{
		PayoutID:    created.ID,
		ScheduledAt: fake.Now().Add(72 * time.Hour),
	})
	require.NoError(t, err)

	_, err = svc.MarkProcessing(ctx, MarkProcessingCommand{
		PayoutID:         created.ID,
		ExternalPayoutID: "po_1",
		StripeAccountID:  "acct_123",
	})
	require.NoError(t, err)

	fake.Advance(24 * time.Hour)
	paid, err := svc.MarkPaid(ctx, MarkPaidCommand{
		PayoutID:         created.ID,
		BankAccountLast4: "1234",
		BankName:         "Chase Bank",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, paid.Status)

	loaded, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, loaded.Status)
	assert.Equal(t, "po_1", loaded.ExternalPayoutID)
	assert.Equal(t, "1234", loaded.BankAccountLast4)
	assert.Equal(t, "Chase Bank", loaded.BankName)
	require.NotNil(t, loaded.PaidAt)
	assert.Equal(t, fake.Now(), *loaded.PaidAt)
}

func TestCancelRejectedOncePaid(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	created := createPayout(t, svc)

	_, err := svc.MarkProcessing(ctx, MarkProcessingCommand{PayoutID: created.ID, ExternalPayoutID: "po_1"})
	require.NoError(t, err)
	_, err = svc.MarkPaid(ctx, MarkPaidCommand{PayoutID: created.ID, BankAccountLast4: "1234", BankName: "Chase Bank"})
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, CancelCommand{PayoutID: created.ID, Reason: "duplicate"})
	require.ErrorIs(t, err, domain.ErrInvalidState)

	loaded, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, loaded.Status)
}

func TestHoldThenResume(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	created := createPayout(t, svc)

	_, err := svc.PutOnHold(ctx, PutOnHoldCommand{PayoutID: created.ID, Reason: "provider under review"})
	require.NoError(t, err)

	loaded, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOnHold, loaded.Status)

	_, err = svc.MarkProcessing(ctx, MarkProcessingCommand{PayoutID: created.ID, ExternalPayoutID: "po_2"})
	require.NoError(t, err)

	loaded, err = svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, loaded.Status)
}

func TestGetByIDUnknownPayout(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
