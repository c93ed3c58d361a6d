package usecase

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Elmalamb/vdm/internal/domain/entity"
	"github.com/Elmalamb/vdm/internal/testutil"
)

func visitorInput() VisitorMessageInput {
	return VisitorMessageInput{
		VisitorEmail: "a@b.com",
		AdID:         "AD1",
		AdTitle:      "Bike",
		SellerEmail:  "s@x.com",
		Message:      "Is this still available?",
	}
}

func newRelayFixture(classifier *testutil.Classifier) (*RelayUseCase, *testutil.ConversationRepository, *testutil.Notifier) {
	convs := testutil.NewConversationRepository(testutil.NewClock())
	notifier := &testutil.Notifier{}
	return NewRelayUseCase(convs, classifier, notifier), convs, notifier
}

func TestSendVisitorMessage_Appropriate(t *testing.T) {
	uc, convs, notifier := newRelayFixture(&testutil.Classifier{Appropriate: true})

	res, err := uc.SendVisitorMessage(context.Background(), visitorInput())
	require.NoError(t, err)
	assert.True(t, res.Success)

	msgs := convs.Messages(entity.SurfaceSupport, "a_b_com_AD1")
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Text, "Is this still available?")
	assert.Contains(t, msgs[0].Text, "s@x.com")
	assert.Contains(t, msgs[0].Text, "Bike")
	assert.Equal(t, entity.SideUser, msgs[0].SenderSide)

	conv := convs.Raw(entity.SurfaceSupport, "a_b_com_AD1")
	require.NotNil(t, conv)
	assert.Equal(t, "AD1", conv.AdID)
	assert.NoError(t, conv.Validate())

	require.Len(t, notifier.Notices, 1)
	assert.Equal(t, "s@x.com", notifier.Notices[0].SellerEmail)
}

func TestSendVisitorMessage_InappropriateStillSucceeds(t *testing.T) {
	uc, convs, notifier := newRelayFixture(&testutil.Classifier{Appropriate: false})

	res, err := uc.SendVisitorMessage(context.Background(), visitorInput())
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Empty(t, convs.Messages(entity.SurfaceSupport, "a_b_com_AD1"))
	assert.Empty(t, notifier.Notices)
}

func TestSendVisitorMessage_ClassifierFailureMasked(t *testing.T) {
	uc, convs, _ := newRelayFixture(&testutil.Classifier{Err: stderrors.New("model offline")})

	res, err := uc.SendVisitorMessage(context.Background(), visitorInput())
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Empty(t, convs.Messages(entity.SurfaceSupport, "a_b_com_AD1"))
}

func TestSendVisitorMessage_DeliveryFailureMasked(t *testing.T) {
	uc, convs, notifier := newRelayFixture(&testutil.Classifier{Appropriate: true})
	notifier.Err = stderrors.New("nats down")

	res, err := uc.SendVisitorMessage(context.Background(), visitorInput())
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Len(t, convs.Messages(entity.SurfaceSupport, "a_b_com_AD1"), 1)
}

func TestSendVisitorMessage_InvalidInput(t *testing.T) {
	classifier := &testutil.Classifier{Appropriate: true}
	uc, _, _ := newRelayFixture(classifier)

	in := visitorInput()
	in.VisitorEmail = "not-an-email"
	_, err := uc.SendVisitorMessage(context.Background(), in)
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)

	in = visitorInput()
	in.Message = "   "
	_, err = uc.SendVisitorMessage(context.Background(), in)
	require.ErrorAs(t, err, &verrs)

	assert.Zero(t, classifier.Calls)
}

func TestSendVisitorMessage_RepeatVisitorAppends(t *testing.T) {
	uc, convs, _ := newRelayFixture(&testutil.Classifier{Appropriate: true})

	_, err := uc.SendVisitorMessage(context.Background(), visitorInput())
	require.NoError(t, err)
	_, err = uc.SendVisitorMessage(context.Background(), visitorInput())
	require.NoError(t, err)

	assert.Len(t, convs.Messages(entity.SurfaceSupport, "a_b_com_AD1"), 2)
}
