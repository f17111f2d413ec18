package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/partnerportal/backend/internal/domain/account"
	"github.com/partnerportal/backend/internal/domain/shared"
	"github.com/partnerportal/backend/internal/infrastructure/persistence/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_pragma=foreign_keys(1)"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.AccountModel{}, &models.CustomerAttributeModel{}))
	t.Cleanup(func() {
		db.Exec("DELETE FROM accounts")
		db.Exec("DELETE FROM customer_attributes")
	})
	return db
}

func mustAccount(t *testing.T, email string) *account.Account {
	t.Helper()
	a, err := account.NewAccount(email, "", account.RolePartner)
	require.NoError(t, err)
	return a
}

func TestGormAccountRepository_SaveAndFind(t *testing.T) {
	repo := NewGormAccountRepository(newTestDB(t))
	ctx := context.Background()

	a := mustAccount(t, "partner@example.com")
	require.NoError(t, a.SetCustomerNumber("K-4711"))
	require.NoError(t, repo.Save(ctx, a))

	found, err := repo.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "partner@example.com", found.Email)
	assert.Equal(t, "K-4711", found.CustomerNumber)
	assert.Equal(t, account.StatusPending, found.Status)

	byEmail, err := repo.FindByEmail(ctx, "Partner@Example.com")
	require.NoError(t, err)
	assert.Equal(t, a.ID, byEmail.ID)

	byNumber, err := repo.FindByCustomerNumber(ctx, "k-4711")
	require.NoError(t, err)
	require.Len(t, byNumber, 1)
	assert.Equal(t, a.ID, byNumber[0].ID)
}

func TestGormAccountRepository_FindByID_NotFound(t *testing.T) {
	repo := NewGormAccountRepository(newTestDB(t))

	_, err := repo.FindByID(context.Background(), mustAccount(t, "x@y.com").ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormAccountRepository_LinkRoundTrip(t *testing.T) {
	repo := NewGormAccountRepository(newTestDB(t))
	ctx := context.Background()

	a := mustAccount(t, "partner@example.com")
	require.NoError(t, a.LinkTo(account.RemoteSnapshot{
		ExternalID: 4711,
		Phone:      "+49 30 1234567",
		Tags:       "b2b",
	}))
	require.NoError(t, repo.Save(ctx, a))

	linked, err := repo.FindByLinkedExternalID(ctx, 4711)
	require.NoError(t, err)
	assert.Equal(t, a.ID, linked.ID)
	assert.Equal(t, "+49 30 1234567", linked.Phone)
	assert.NotNil(t, linked.LastSyncedAt)

	_, err = repo.FindByLinkedExternalID(ctx, 9999)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormAccountRepository_UniqueLinkConstraint(t *testing.T) {
	repo := NewGormAccountRepository(newTestDB(t))
	ctx := context.Background()

	first := mustAccount(t, "first@example.com")
	require.NoError(t, first.LinkTo(account.RemoteSnapshot{ExternalID: 4711}))
	require.NoError(t, repo.Save(ctx, first))

	// A second account claiming the same external id must hit the unique
	// index and surface as a conflict, not a silent overwrite.
	second := mustAccount(t, "second@example.com")
	require.NoError(t, second.LinkTo(account.RemoteSnapshot{ExternalID: 4711}))
	err := repo.Save(ctx, second)
	assert.ErrorIs(t, err, shared.ErrConflict)

	still, err := repo.FindByLinkedExternalID(ctx, 4711)
	require.NoError(t, err)
	assert.Equal(t, first.ID, still.ID)
}

func TestGormAccountRepository_FindUnlinked(t *testing.T) {
	repo := NewGormAccountRepository(newTestDB(t))
	ctx := context.Background()

	linked := mustAccount(t, "linked@example.com")
	require.NoError(t, linked.LinkTo(account.RemoteSnapshot{ExternalID: 1}))
	require.NoError(t, repo.Save(ctx, linked))

	unlinked := mustAccount(t, "unlinked@example.com")
	require.NoError(t, repo.Save(ctx, unlinked))

	accounts, err := repo.FindUnlinked(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, unlinked.ID, accounts[0].ID)
}

func TestGormAccountRepository_FindAll(t *testing.T) {
	repo := NewGormAccountRepository(newTestDB(t))
	ctx := context.Background()

	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		require.NoError(t, repo.Save(ctx, mustAccount(t, email)))
	}

	filter := shared.DefaultFilter()
	filter.PageSize = 2
	page, err := repo.FindAll(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 2, page.TotalPages)
}

func TestGormAttributeRepository_Upsert(t *testing.T) {
	repo := NewGormAttributeRepository(newTestDB(t))
	ctx := context.Background()

	attr, err := account.NewCustomerAttribute(4711, account.AttributeCustomerNumber, "K-4711")
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(ctx, attr))

	// Second write for the same external id and key updates in place.
	updated, err := account.NewCustomerAttribute(4711, account.AttributeCustomerNumber, "K-9999")
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(ctx, updated))

	company, err := account.NewCustomerAttribute(4711, account.AttributeCompanyName, "Acme GmbH")
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(ctx, company))

	attributes, err := repo.FindByExternalID(ctx, 4711)
	require.NoError(t, err)
	require.Len(t, attributes, 2)

	m := account.AttributeMap(attributes)
	assert.Equal(t, "K-9999", m[account.AttributeCustomerNumber])
	assert.Equal(t, "Acme GmbH", m[account.AttributeCompanyName])

	found, err := repo.Find(ctx, 4711, account.AttributeCompanyName)
	require.NoError(t, err)
	assert.Equal(t, "Acme GmbH", found.Value)

	_, err = repo.Find(ctx, 4711, "unknown")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	require.NoError(t, repo.DeleteByExternalID(ctx, 4711))
	attributes, err = repo.FindByExternalID(ctx, 4711)
	require.NoError(t, err)
	assert.Empty(t, attributes)
}
