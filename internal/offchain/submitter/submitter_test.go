package submitter

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goPriceOracle/internal/core/fixed"
	"github.com/LeJamon/goPriceOracle/internal/core/tx"
	"github.com/LeJamon/goPriceOracle/internal/core/tx/price"
	"github.com/LeJamon/goPriceOracle/internal/crypto"
	"github.com/LeJamon/goPriceOracle/internal/keystore"
	"github.com/LeJamon/goPriceOracle/internal/metrics"
	"github.com/LeJamon/goPriceOracle/internal/offchain/fetcher"
)

type fixture struct {
	fetcher    *MockPriceFetcher
	keys       *MockKeyring
	dispatcher *MockDispatcher
	metrics    *metrics.Metrics
	logs       *logtest.Hook
	submitter  *Submitter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	l, hook := logtest.NewNullLogger()
	f := &fixture{
		fetcher:    NewMockPriceFetcher(ctrl),
		keys:       NewMockKeyring(ctrl),
		dispatcher: NewMockDispatcher(ctrl),
		metrics:    metrics.New(prometheus.NewRegistry()),
		logs:       hook,
	}
	f.submitter = New(f.fetcher, f.keys, f.dispatcher, WithLogger(l), WithMetrics(f.metrics))
	return f
}

func newIdentity(t *testing.T) *keystore.Identity {
	t.Helper()
	id, err := keystore.Generate(crypto.KeyTypeEd25519)
	require.NoError(t, err)
	return id
}

func TestRunCycleSubmitsFetchedPrice(t *testing.T) {
	f := newFixture(t)
	id := newIdentity(t)
	ctx := context.Background()
	want := fixed.MustParse("0.0123")

	f.fetcher.EXPECT().FetchPrice(gomock.Any()).Return(want, nil)
	f.keys.EXPECT().AnyLocalSigningIdentity().Return(id, true)
	f.dispatcher.EXPECT().SubmitSigned(gomock.Any(), gomock.Any(), id).
		DoAndReturn(func(_ context.Context, call tx.Transaction, _ tx.Signer) error {
			sp, ok := call.(*price.SetPrices)
			require.True(t, ok)
			assert.Equal(t, want, sp.Price)
			assert.Equal(t, uint64(42), sp.BlockNumber)
			return nil
		})

	require.NoError(t, f.submitter.RunCycle(ctx, 42))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Cycles.WithLabelValues("submitted")))
}

func TestRunCycleFetchFailureNeverDispatches(t *testing.T) {
	for _, cause := range []error{fetcher.ErrTimeout, fetcher.ErrIO, fetcher.ErrBadStatus, fetcher.ErrEncoding, fetcher.ErrMalformed} {
		t.Run(cause.Error(), func(t *testing.T) {
			f := newFixture(t)
			f.fetcher.EXPECT().FetchPrice(gomock.Any()).Return(fixed.Zero, cause)
			// No calls expected on keys or dispatcher; gomock fails on any.

			err := f.submitter.RunCycle(context.Background(), 7)
			require.ErrorIs(t, err, ErrFetchFailed)
			require.ErrorIs(t, err, cause)
		})
	}
}

func TestRunCycleWithoutIdentity(t *testing.T) {
	f := newFixture(t)
	f.fetcher.EXPECT().FetchPrice(gomock.Any()).Return(fixed.FromInt(1), nil)
	f.keys.EXPECT().AnyLocalSigningIdentity().Return(nil, false)

	err := f.submitter.RunCycle(context.Background(), 7)
	require.ErrorIs(t, err, ErrNoSigningIdentity)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Cycles.WithLabelValues("no_identity")))

	require.NotEmpty(t, f.logs.AllEntries())
	assert.Equal(t, "no local accounts available", f.logs.LastEntry().Message)
}

func TestRunCycleDispatchFailure(t *testing.T) {
	f := newFixture(t)
	cause := tx.Errorf(tx.TelCAN_NOT_QUEUE_FULL, "queue full")

	f.fetcher.EXPECT().FetchPrice(gomock.Any()).Return(fixed.FromInt(1), nil)
	f.keys.EXPECT().AnyLocalSigningIdentity().Return(newIdentity(t), true)
	f.dispatcher.EXPECT().SubmitSigned(gomock.Any(), gomock.Any(), gomock.Any()).Return(cause)

	err := f.submitter.RunCycle(context.Background(), 7)
	require.ErrorIs(t, err, ErrDispatchFailed)

	var re *tx.ResultError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, tx.TelCAN_NOT_QUEUE_FULL, re.Code)
}

func TestRunCycleSubmitsAtMostOnce(t *testing.T) {
	f := newFixture(t)
	id := newIdentity(t)
	f.fetcher.EXPECT().FetchPrice(gomock.Any()).Return(fixed.FromInt(3), nil).Times(2)
	f.keys.EXPECT().AnyLocalSigningIdentity().Return(id, true).Times(2)
	f.dispatcher.EXPECT().SubmitSigned(gomock.Any(), gomock.Any(), id).Return(nil).Times(2)

	require.NoError(t, f.submitter.RunCycle(context.Background(), 1))
	require.NoError(t, f.submitter.RunCycle(context.Background(), 2))
}
