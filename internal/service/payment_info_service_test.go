package service

import (
	"context"
	"testing"

	"supportly/internal/domain"
	"supportly/internal/models"
	"supportly/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentInfo_WriteOnceAfterVerification(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewPaymentInfoService(db)
	creator := testutil.CreateCreator(t, db, "maya")
	ctx := context.Background()

	_, err := svc.Get(ctx, creator.ID)
	assert.ErrorIs(t, err, domain.ErrPaymentInfoMissing)
	_, err = svc.Verify(ctx, creator.ID)
	assert.ErrorIs(t, err, domain.ErrPaymentInfoMissing)

	info, err := svc.Save(ctx, creator.ID, "MTN_MOMO_UGA", "Maya K", "0772 123 456")
	require.NoError(t, err)
	assert.Equal(t, "256772123456", info.Phone)

	info, err = svc.Save(ctx, creator.ID, "AIRTEL_OAPI_UGA", "Maya Kato", "0701000000")
	require.NoError(t, err)
	assert.Equal(t, "AIRTEL_OAPI_UGA", info.Provider)
	assert.Equal(t, "256701000000", info.Phone)

	verified, err := svc.Verify(ctx, creator.ID)
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)
	require.NotNil(t, verified.VerifiedAt)

	_, err = svc.Save(ctx, creator.ID, "MTN_MOMO_UGA", "Someone Else", "0772999999")
	assert.ErrorIs(t, err, domain.ErrPaymentInfoLocked)
	_, err = svc.Verify(ctx, creator.ID)
	assert.ErrorIs(t, err, domain.ErrPaymentInfoLocked)

	// the model hook also refuses writes through a loaded record
	verified.FullName = "Someone Else"
	assert.ErrorIs(t, db.Save(verified).Error, domain.ErrPaymentInfoLocked)

	var stored models.VerifiedPaymentInfo
	require.NoError(t, db.Where("creator_id = ?", creator.ID).First(&stored).Error)
	assert.Equal(t, "Maya Kato", stored.FullName)
	assert.Equal(t, "256701000000", stored.Phone)
}

func TestPaymentInfo_Validation(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewPaymentInfoService(db)
	creator := testutil.CreateCreator(t, db, "maya")

	_, err := svc.Save(context.Background(), creator.ID, "MTN_MOMO_UGA", "Maya", "123")
	assert.ErrorIs(t, err, domain.ErrInvalidPhone)
	_, err = svc.Save(context.Background(), creator.ID, "", "Maya", "0772123456")
	assert.ErrorIs(t, err, domain.ErrInvalidPayoutMethod)
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in, want string
		ok       bool
	}{
		{"0772123456", "256772123456", true},
		{"+256 772-123-456", "256772123456", true},
		{"772123456", "256772123456", true},
		{"256772123456", "256772123456", true},
		{"", "", false},
		{"07721234567", "", false},
	}
	for _, tt := range tests {
		got, err := NormalizePhone(tt.in)
		if !tt.ok {
			assert.ErrorIs(t, err, domain.ErrInvalidPhone, tt.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
