package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/otp/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/config"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/hash"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/otpcode"
	"github.com/shandysiswandi/otpgate/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

type harness struct {
	uc    *usecase.Usecase
	store *memoryStore
	pub   *fakePublisher
	clock *clock.Mock
}

type harnessOption func(*usecase.Dependency)

func withCodes(codes ...string) harnessOption {
	return func(d *usecase.Dependency) { d.Code = &sequenceCode{codes: codes} }
}

func withHash(h hash.Hash) harnessOption {
	return func(d *usecase.Dependency) { d.Hash = h }
}

func withConfig(cfg config.Config) harnessOption {
	return func(d *usecase.Dependency) { d.Config = cfg }
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	gen, err := otpcode.NewNumeric(entity.CodeLength)
	require.NoError(t, err)

	h := &harness{
		store: newMemoryStore(),
		pub:   &fakePublisher{},
		clock: clock.NewMock(t0),
	}

	dep := usecase.Dependency{
		RepoDB:        h.store,
		RepoMessaging: h.pub,
		Tenant:        fakeTenant{members: map[string]string{"u1": "o1", "u2": "o2"}},
		Code:          gen,
		Hash:          hash.NewPlain(),
		Clock:         h.clock,
		Validator:     v,
		Instrument:    instrument.NewNoop(),
	}
	for _, opt := range opts {
		opt(&dep)
	}

	h.uc = usecase.New(dep)
	return h
}

func (h *harness) send(t *testing.T) *usecase.SendOTPOutput {
	t.Helper()

	out, err := h.uc.SendOTP(context.Background(), usecase.SendOTPInput{
		UserID:         "u1",
		OrganizationID: "o1",
		PhoneNumber:    "+1555",
	})
	require.NoError(t, err)
	return out
}

func (h *harness) verify(code string) (*usecase.VerifyOTPOutput, error) {
	return h.uc.VerifyOTP(context.Background(), usecase.VerifyOTPInput{
		UserID:         "u1",
		OrganizationID: "o1",
		PhoneNumber:    "+1555",
		Code:           code,
	})
}

func assertStatusCode(t *testing.T, err error, code int) {
	t.Helper()

	var gerr *goerror.Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, code, gerr.StatusCode())
}

func TestSendOTP(t *testing.T) {
	t.Run("creates pending record and publishes plaintext code", func(t *testing.T) {
		// Arrange
		h := newHarness(t, withCodes("48213"))

		// Act
		out := h.send(t)

		// Assert
		assert.NotEmpty(t, out.OTPID)
		assert.Equal(t, t0.Add(entity.DefaultTTL), out.ExpiresAt)
		assert.Equal(t, entity.StatusPending, h.store.status(out.OTPID))

		ev := h.pub.last()
		assert.Equal(t, out.OTPID, ev.OTPID)
		assert.Equal(t, "48213", ev.Code)
		assert.Equal(t, "+1555", ev.Phone)
		assert.Equal(t, out.ExpiresAt, ev.ExpiresAt)
	})

	t.Run("non member fails with invalid tenant and creates nothing", func(t *testing.T) {
		h := newHarness(t)

		_, err := h.uc.SendOTP(context.Background(), usecase.SendOTPInput{
			UserID:         "u1",
			OrganizationID: "o2",
			PhoneNumber:    "+1555",
		})

		require.ErrorIs(t, err, entity.ErrInvalidTenant)
		assertStatusCode(t, err, http.StatusBadRequest)
		assert.Zero(t, h.store.count())
		assert.Empty(t, h.pub.events)
	})

	t.Run("publish failure does not fail issuance", func(t *testing.T) {
		h := newHarness(t, withCodes("11111"))
		h.pub.err = errors.New("broker down")

		out := h.send(t)

		assert.Equal(t, entity.StatusPending, h.store.status(out.OTPID))
		_, err := h.verify("11111")
		assert.NoError(t, err)
	})

	t.Run("storage failure is storage unavailable", func(t *testing.T) {
		h := newHarness(t)
		h.store.err = errors.New("connection refused")

		_, err := h.uc.SendOTP(context.Background(), usecase.SendOTPInput{
			UserID:         "u1",
			OrganizationID: "o1",
			PhoneNumber:    "+1555",
		})

		require.ErrorIs(t, err, entity.ErrStorageUnavailable)
		assertStatusCode(t, err, http.StatusInternalServerError)
	})

	t.Run("tenant lookup failure is storage unavailable", func(t *testing.T) {
		v, err := validator.NewV10Validator()
		require.NoError(t, err)

		store := newMemoryStore()
		uc := usecase.New(usecase.Dependency{
			RepoDB:        store,
			RepoMessaging: &fakePublisher{},
			Tenant:        fakeTenant{err: errors.New("timeout")},
			Code:          &sequenceCode{codes: []string{"12345"}},
			Hash:          hash.NewPlain(),
			Clock:         clock.NewMock(t0),
			Validator:     v,
			Instrument:    instrument.NewNoop(),
		})

		_, err = uc.SendOTP(context.Background(), usecase.SendOTPInput{
			UserID:         "u1",
			OrganizationID: "o1",
			PhoneNumber:    "+1555",
		})

		require.ErrorIs(t, err, entity.ErrStorageUnavailable)
		assert.Zero(t, store.count())
	})

	t.Run("invalid input is a validation error", func(t *testing.T) {
		h := newHarness(t)

		_, err := h.uc.SendOTP(context.Background(), usecase.SendOTPInput{
			UserID:         "u1",
			OrganizationID: "o1",
			PhoneNumber:    "not-a-phone",
		})

		assertStatusCode(t, err, http.StatusUnprocessableEntity)
		assert.Zero(t, h.store.count())
	})

	t.Run("ttl comes from config", func(t *testing.T) {
		cfg, err := config.NewViperFromBytes("yaml", []byte("modules:\n  otp:\n    ttl_seconds: 60\n"))
		require.NoError(t, err)
		h := newHarness(t, withConfig(cfg))

		out := h.send(t)

		assert.Equal(t, t0.Add(time.Minute), out.ExpiresAt)
	})

	t.Run("codes are independent across issuances", func(t *testing.T) {
		h := newHarness(t)

		seen := map[string]struct{}{}
		for range 20 {
			h.send(t)
			code := h.pub.last().Code
			assert.Len(t, code, entity.CodeLength)
			seen[code] = struct{}{}
		}

		assert.Greater(t, len(seen), 1)
	})
}

func TestVerifyOTP(t *testing.T) {
	t.Run("correct code verifies exactly once", func(t *testing.T) {
		h := newHarness(t, withCodes("20001"))
		issued := h.send(t)
		h.clock.Advance(time.Minute)

		out, err := h.verify("20001")
		require.NoError(t, err)
		assert.Equal(t, issued.OTPID, out.OTPID)
		assert.True(t, out.Verified)
		assert.Equal(t, entity.StatusVerified, h.store.status(issued.OTPID))

		_, err = h.verify("20001")
		require.ErrorIs(t, err, entity.ErrInvalidOrExpiredCode)
		assertStatusCode(t, err, http.StatusBadRequest)
	})

	t.Run("wrong code never mutates", func(t *testing.T) {
		h := newHarness(t, withCodes("30001"))
		issued := h.send(t)

		_, err := h.verify("30002")

		require.ErrorIs(t, err, entity.ErrInvalidOrExpiredCode)
		assert.Equal(t, entity.StatusPending, h.store.status(issued.OTPID))
	})

	t.Run("expired code is marked expired", func(t *testing.T) {
		h := newHarness(t, withCodes("40001"))
		issued := h.send(t)
		h.clock.Advance(entity.DefaultTTL + time.Second)

		_, err := h.verify("40001")

		require.ErrorIs(t, err, entity.ErrInvalidOrExpiredCode)
		assert.Equal(t, entity.StatusExpired, h.store.status(issued.OTPID))
	})

	t.Run("exactly at expires_at is still valid", func(t *testing.T) {
		h := newHarness(t, withCodes("40002"))
		h.send(t)
		h.clock.Advance(entity.DefaultTTL)

		_, err := h.verify("40002")

		assert.NoError(t, err)
	})

	t.Run("latest of two pending records wins", func(t *testing.T) {
		h := newHarness(t, withCodes("50001", "50002"))
		first := h.send(t)
		h.clock.Advance(time.Second)
		second := h.send(t)

		out, err := h.verify("50002")

		require.NoError(t, err)
		assert.Equal(t, second.OTPID, out.OTPID)
		assert.Equal(t, entity.StatusPending, h.store.status(first.OTPID))
	})

	t.Run("same code in two records resolves to the newest", func(t *testing.T) {
		h := newHarness(t, withCodes("60001", "60001"))
		h.send(t)
		second := h.send(t)

		out, err := h.verify("60001")

		require.NoError(t, err)
		assert.Equal(t, second.OTPID, out.OTPID)
	})

	t.Run("malformed code is a validation error", func(t *testing.T) {
		h := newHarness(t)

		_, err := h.verify("12ab5")

		assertStatusCode(t, err, http.StatusUnprocessableEntity)
	})

	t.Run("storage failure is storage unavailable", func(t *testing.T) {
		h := newHarness(t, withCodes("70001"))
		h.send(t)
		h.store.err = errors.New("connection reset")

		_, err := h.verify("70001")

		require.ErrorIs(t, err, entity.ErrStorageUnavailable)
		assert.NotErrorIs(t, err, entity.ErrInvalidOrExpiredCode)
	})

	t.Run("hashed storage still verifies", func(t *testing.T) {
		h := newHarness(t, withCodes("80001"), withHash(hash.New("server-secret")))
		issued := h.send(t)

		got, err := h.store.GetByID(context.Background(), issued.OTPID)
		require.NoError(t, err)
		assert.NotEqual(t, "80001", got.Code)

		_, err = h.verify("80001")
		assert.NoError(t, err)
	})
}

func TestVerifyOTP_Concurrent(t *testing.T) {
	h := newHarness(t, withCodes("90001"))
	h.send(t)

	const attempts = 16
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		success  int
		rejected int
	)
	for range attempts {
		wg.Go(func() {
			_, err := h.verify("90001")

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				success++
			case errors.Is(err, entity.ErrInvalidOrExpiredCode):
				rejected++
			}
		})
	}
	wg.Wait()

	assert.Equal(t, 1, success)
	assert.Equal(t, attempts-1, rejected)
}

func TestOTPLifecycle_Scenario(t *testing.T) {
	h := newHarness(t, withCodes("11223", "44556"))

	// issue C1 at t0, verify at t0+1m
	c1 := h.send(t)
	h.clock.Set(t0.Add(time.Minute))
	out, err := h.verify("11223")
	require.NoError(t, err)
	assert.Equal(t, c1.OTPID, out.OTPID)
	assert.Equal(t, entity.StatusVerified, h.store.status(c1.OTPID))

	// issue C2 at t0+2m, C1 is no longer pending
	h.clock.Set(t0.Add(2 * time.Minute))
	c2 := h.send(t)
	_, err = h.verify("11223")
	require.ErrorIs(t, err, entity.ErrInvalidOrExpiredCode)

	// C2 at t0+8m is past its window
	h.clock.Set(t0.Add(8 * time.Minute))
	_, err = h.verify("44556")
	require.ErrorIs(t, err, entity.ErrInvalidOrExpiredCode)
	assert.Equal(t, entity.StatusExpired, h.store.status(c2.OTPID))
}

func TestOTPDetail(t *testing.T) {
	h := newHarness(t, withCodes("12121"))
	issued := h.send(t)

	t.Run("unknown id is not found", func(t *testing.T) {
		_, err := h.uc.OTPDetail(context.Background(), usecase.OTPDetailInput{ID: "0190d7a2-0000-7000-8000-000000000000"})
		assertStatusCode(t, err, http.StatusNotFound)
	})

	t.Run("invalid id is a validation error", func(t *testing.T) {
		_, err := h.uc.OTPDetail(context.Background(), usecase.OTPDetailInput{ID: "nope"})
		assertStatusCode(t, err, http.StatusUnprocessableEntity)
	})

	t.Run("existing record has no code", func(t *testing.T) {
		h.store.mu.Lock()
		rec := h.store.records[issued.OTPID]
		delete(h.store.records, issued.OTPID)
		rec.ID = "0190d7a2-0000-7000-8000-000000000001"
		h.store.records[rec.ID] = rec
		h.store.mu.Unlock()

		out, err := h.uc.OTPDetail(context.Background(), usecase.OTPDetailInput{ID: rec.ID})

		require.NoError(t, err)
		assert.Empty(t, out.Record.Code)
		assert.Equal(t, entity.StatusPending, out.Record.Status)
		assert.Equal(t, "u1", out.Record.Scope.UserID)
	})
}

func TestSweepExpired(t *testing.T) {
	h := newHarness(t, withCodes("13131", "14141"))
	stale := h.send(t)
	h.clock.Advance(4 * time.Minute)
	fresh := h.send(t)
	h.clock.Advance(2 * time.Minute)

	n, err := h.uc.SweepExpired(context.Background())

	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Equal(t, entity.StatusExpired, h.store.status(stale.OTPID))
	assert.Equal(t, entity.StatusPending, h.store.status(fresh.OTPID))
}
