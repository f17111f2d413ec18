package account

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccount(t *testing.T) {
	tests := []struct {
		name        string
		email       string
		displayName string
		role        Role
		wantErr     bool
	}{
		{
			name:        "valid partner account",
			email:       "partner@example.com",
			displayName: "Example Partner",
			role:        RolePartner,
			wantErr:     false,
		},
		{
			name:    "valid admin account",
			email:   "admin@example.com",
			role:    RoleAdmin,
			wantErr: false,
		},
		{
			name:    "empty email",
			email:   "",
			role:    RolePartner,
			wantErr: true,
		},
		{
			name:    "malformed email",
			email:   "not-an-email",
			role:    RolePartner,
			wantErr: true,
		},
		{
			name:    "unknown role",
			email:   "partner@example.com",
			role:    Role("superuser"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewAccount(tt.email, tt.displayName, tt.role)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, a)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StatusPending, a.Status)
			assert.False(t, a.IsLinked())
			assert.Len(t, a.GetDomainEvents(), 1)
		})
	}
}

func TestNewAccount_LowercasesEmail(t *testing.T) {
	a, err := NewAccount("Partner@Example.COM", "", RolePartner)
	require.NoError(t, err)
	assert.Equal(t, "partner@example.com", a.Email)
	assert.True(t, a.EmailEquals("PARTNER@example.com"))
}

func TestAccount_LinkTo(t *testing.T) {
	a, err := NewAccount("partner@example.com", "Example Partner", RolePartner)
	require.NoError(t, err)

	snapshot := RemoteSnapshot{
		ExternalID:     4711,
		Phone:          "+49 30 1234567",
		Address:        "Musterstr. 1, 10115 Berlin, DE",
		Verified:       true,
		MarketingOptIn: false,
		Tags:           "b2b,wholesale",
		Note:           "Kundennummer: 4711",
	}

	err = a.LinkTo(snapshot)
	require.NoError(t, err)

	assert.True(t, a.IsLinked())
	assert.True(t, a.IsLinkedTo(4711))
	assert.Equal(t, "+49 30 1234567", a.Phone)
	assert.True(t, a.ExternalVerified)
	assert.NotNil(t, a.LastSyncedAt)
}

func TestAccount_LinkTo_SameIDIsIdempotent(t *testing.T) {
	a, _ := NewAccount("partner@example.com", "", RolePartner)
	require.NoError(t, a.LinkTo(RemoteSnapshot{ExternalID: 4711}))

	err := a.LinkTo(RemoteSnapshot{ExternalID: 4711, Phone: "+49 30 1234567"})
	require.NoError(t, err)
	assert.True(t, a.IsLinkedTo(4711))
	assert.Equal(t, "+49 30 1234567", a.Phone)
}

func TestAccount_LinkTo_DifferentIDConflicts(t *testing.T) {
	a, _ := NewAccount("partner@example.com", "", RolePartner)
	require.NoError(t, a.LinkTo(RemoteSnapshot{ExternalID: 4711}))

	err := a.LinkTo(RemoteSnapshot{ExternalID: 9999})
	assert.Error(t, err)
	assert.True(t, a.IsLinkedTo(4711))
}

func TestAccount_Unlink_ClearsShadowFields(t *testing.T) {
	a, _ := NewAccount("partner@example.com", "", RolePartner)
	require.NoError(t, a.LinkTo(RemoteSnapshot{
		ExternalID: 4711,
		Phone:      "+49 30 1234567",
		Verified:   true,
		Tags:       "b2b",
	}))

	externalID, err := a.Unlink()
	require.NoError(t, err)

	assert.Equal(t, int64(4711), externalID)
	assert.False(t, a.IsLinked())
	assert.Empty(t, a.Phone)
	assert.Empty(t, a.ExternalTags)
	assert.False(t, a.ExternalVerified)
	assert.Nil(t, a.LastSyncedAt)
}

func TestAccount_Unlink_RequiresLink(t *testing.T) {
	a, _ := NewAccount("partner@example.com", "", RolePartner)

	_, err := a.Unlink()
	assert.Error(t, err)
}

func TestAccount_ApplyRemoteState(t *testing.T) {
	a, _ := NewAccount("partner@example.com", "", RolePartner)
	require.NoError(t, a.LinkTo(RemoteSnapshot{ExternalID: 4711, Phone: "old"}))

	err := a.ApplyRemoteState(RemoteSnapshot{
		ExternalID: 4711,
		Phone:      "",
		Tags:       "b2b",
	})
	require.NoError(t, err)

	// Remote state replaces shadow fields wholesale, including clearing them.
	assert.Equal(t, "", a.Phone)
	assert.Equal(t, "b2b", a.ExternalTags)
}

func TestAccount_ApplyRemoteState_RequiresMatchingLink(t *testing.T) {
	a, _ := NewAccount("partner@example.com", "", RolePartner)

	err := a.ApplyRemoteState(RemoteSnapshot{ExternalID: 4711})
	assert.Error(t, err)

	require.NoError(t, a.LinkTo(RemoteSnapshot{ExternalID: 4711}))
	err = a.ApplyRemoteState(RemoteSnapshot{ExternalID: 9999})
	assert.Error(t, err)
}

func TestAccount_StatusTransitions(t *testing.T) {
	a, _ := NewAccount("partner@example.com", "", RolePartner)

	require.NoError(t, a.Activate())
	assert.True(t, a.IsActive())
	assert.Error(t, a.Activate())

	require.NoError(t, a.Block())
	assert.Equal(t, StatusBlocked, a.Status)
	assert.Error(t, a.Block())
	assert.Error(t, a.Activate())
}

func TestAccount_SetCustomerNumber(t *testing.T) {
	a, _ := NewAccount("partner@example.com", "", RolePartner)

	require.NoError(t, a.SetCustomerNumber("K-4711"))
	assert.Equal(t, "K-4711", a.CustomerNumber)

	assert.Error(t, a.SetCustomerNumber("47 11"))
	assert.Equal(t, "K-4711", a.CustomerNumber)
}

func TestNewCustomerAttribute(t *testing.T) {
	attr, err := NewCustomerAttribute(4711, AttributeCustomerNumber, "K-4711")
	require.NoError(t, err)
	assert.Equal(t, int64(4711), attr.ExternalID)

	_, err = NewCustomerAttribute(0, AttributeCustomerNumber, "K-4711")
	assert.Error(t, err)

	_, err = NewCustomerAttribute(4711, "", "K-4711")
	assert.Error(t, err)
}

func TestAttributeMap(t *testing.T) {
	number, _ := NewCustomerAttribute(4711, AttributeCustomerNumber, "K-4711")
	company, _ := NewCustomerAttribute(4711, AttributeCompanyName, "Acme GmbH")

	m := AttributeMap([]*CustomerAttribute{number, company})
	assert.Equal(t, "K-4711", m[AttributeCustomerNumber])
	assert.Equal(t, "Acme GmbH", m[AttributeCompanyName])
}
